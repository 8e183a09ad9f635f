package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
)

func newWasteRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := newRouter()
	wc := NewWasteController(db)
	grp := r.Group("/api", authAs(userID, "alice"))
	grp.POST("/waste-entries", wc.CreateWasteEntry)
	grp.GET("/waste-entries", wc.ListWasteEntries)
	grp.GET("/user/analytics", wc.GetUserAnalytics)
	return r
}

func TestCreateWasteEntry(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	r := newWasteRouter(db, user.ID)

	tbl := []struct {
		name      string
		wasteType string
		quantity  float64
		status    int
		points    int
		carbon    float64
	}{
		{"plastic credits 10 per kg", "plastic", 2.5, http.StatusOK, 25, 3.75},
		{"organic credits 3 per kg", "organic", 4, http.StatusOK, 12, 0.8},
		{"rounds to nearest point", "paper", 0.5, http.StatusOK, 3, 0.45},
		{"unknown type rejected", "styrofoam", 1, http.StatusBadRequest, 0, 0},
		{"zero quantity rejected", "glass", 0, http.StatusBadRequest, 0, 0},
		{"over 1000 kg rejected", "metal", 1001, http.StatusBadRequest, 0, 0},
	}

	wantPoints := 0
	for _, tc := range tbl {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/waste-entries", map[string]interface{}{
				"waste_type": tc.wasteType,
				"quantity":   tc.quantity,
			})
			require.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.status != http.StatusOK {
				return
			}
			wantPoints += tc.points

			data := dataMap(t, w)
			entry := data["entry"].(map[string]interface{})
			assert.EqualValues(t, tc.points, entry["eco_points_earned"])
			assert.InDelta(t, tc.carbon, entry["carbon_saved"], 1e-9)

			var fresh models.User
			require.NoError(t, db.First(&fresh, user.ID).Error)
			assert.Equal(t, wantPoints, fresh.EcoPoints)
		})
	}
}

func TestListWasteEntriesFiltersByType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	r := newWasteRouter(db, user.ID)

	for _, wt := range []string{"plastic", "plastic", "glass"} {
		w := doJSON(r, http.MethodPost, "/api/waste-entries", map[string]interface{}{
			"waste_type": wt,
			"quantity":   1.0,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/waste-entries?waste_type=plastic", nil)
	data := dataMap(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)

	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 2, pagination["total"])
}

func TestUserAnalyticsAggregatesByType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	r := newWasteRouter(db, user.ID)

	for _, q := range []float64{2, 3} {
		w := doJSON(r, http.MethodPost, "/api/waste-entries", map[string]interface{}{
			"waste_type": "plastic",
			"quantity":   q,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(r, http.MethodPost, "/api/waste-entries", map[string]interface{}{
		"waste_type": "glass",
		"quantity":   1.5,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/user/analytics", nil)
	data := dataMap(t, w)

	byType := data["waste_by_type"].(map[string]interface{})
	assert.InDelta(t, 5.0, byType["plastic"], 1e-9)
	assert.InDelta(t, 1.5, byType["glass"], 1e-9)
	assert.InDelta(t, 6.5, data["total_quantity"], 1e-9)
	assert.EqualValues(t, 3, data["entry_count"])

	// 5 kg plastic at 10/kg plus 1.5 kg glass at 8/kg
	assert.EqualValues(t, 62, data["eco_points"])
}
