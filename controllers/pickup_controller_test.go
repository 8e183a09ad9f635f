package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/models"
)

func newPickupRouter(db *gorm.DB, userID uint, username string) *gin.Engine {
	r := newRouter()
	pc := NewPickupController(db)
	grp := r.Group("/api", authAs(userID, username))
	grp.POST("/pickups", pc.SchedulePickup)
	grp.GET("/pickups", pc.ListPickups)
	grp.PATCH("/pickups/:id/status", pc.UpdatePickupStatus)
	return r
}

func schedulePickup(t *testing.T, r *gin.Engine) uint {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/pickups", map[string]interface{}{
		"waste_type":     "electronic",
		"scheduled_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"address":        "42 Green street",
	})
	data := dataMap(t, w)
	pickup := data["pickup"].(map[string]interface{})
	return uint(pickup["id"].(float64))
}

func TestSchedulePickup(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	r := newPickupRouter(db, user.ID, "alice")

	id := schedulePickup(t, r)
	var pickup models.PickupSchedule
	require.NoError(t, db.First(&pickup, id).Error)
	assert.Equal(t, models.PickupScheduled, pickup.Status)

	// Past dates are rejected.
	w := doJSON(r, http.MethodPost, "/api/pickups", map[string]interface{}{
		"waste_type":     "glass",
		"scheduled_date": time.Now().Add(-time.Hour).Format(time.RFC3339),
		"address":        "42 Green street",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/pickups", map[string]interface{}{
		"waste_type":     "uranium",
		"scheduled_date": time.Now().Add(time.Hour).Format(time.RFC3339),
		"address":        "42 Green street",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPickupStatusTransitions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	admin := seedUser(t, db, "admin", 0)

	userRouter := newPickupRouter(db, user.ID, "alice")
	adminRouter := newPickupRouter(db, admin.ID, "admin")

	id := schedulePickup(t, userRouter)
	path := fmt.Sprintf("/api/pickups/%d/status", id)

	// Owners cannot confirm their own pickup.
	w := doJSON(userRouter, http.MethodPatch, path, map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(adminRouter, http.MethodPatch, path, map[string]interface{}{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Completion only from confirmed, and only by admins.
	w = doJSON(adminRouter, http.MethodPatch, path, map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	// Completed pickups are terminal.
	w = doJSON(adminRouter, http.MethodPatch, path, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPickupOwnerCanCancel(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	other := seedUser(t, db, "bob", 0)

	userRouter := newPickupRouter(db, user.ID, "alice")
	otherRouter := newPickupRouter(db, other.ID, "bob")

	id := schedulePickup(t, userRouter)
	path := fmt.Sprintf("/api/pickups/%d/status", id)

	// Another user cannot touch it.
	w := doJSON(otherRouter, http.MethodPatch, path, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(userRouter, http.MethodPatch, path, map[string]interface{}{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)

	var pickup models.PickupSchedule
	require.NoError(t, db.First(&pickup, id).Error)
	assert.Equal(t, models.PickupCancelled, pickup.Status)
}

func TestListPickupsScopedToUser(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)

	aliceRouter := newPickupRouter(db, alice.ID, "alice")
	bobRouter := newPickupRouter(db, bob.ID, "bob")

	schedulePickup(t, aliceRouter)
	schedulePickup(t, aliceRouter)
	schedulePickup(t, bobRouter)

	w := doJSON(aliceRouter, http.MethodGet, "/api/pickups", nil)
	data := dataMap(t, w)
	assert.Len(t, data["items"].([]interface{}), 2)

	w = doJSON(aliceRouter, http.MethodGet, "/api/pickups?status=completed", nil)
	data = dataMap(t, w)
	empty, _ := data["items"].([]interface{})
	assert.Empty(t, empty)
}
