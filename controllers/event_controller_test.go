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

func newEventRouter(db *gorm.DB, userID uint, username string) *gin.Engine {
	r := newRouter()
	ec := NewEventController(db)
	r.GET("/api/cleanup-events", ec.ListEvents)
	r.GET("/api/cleanup-events/:id", ec.GetEvent)
	r.GET("/api/cleanup-events/:id/participants", ec.ListEventParticipants)
	grp := r.Group("/api", authAs(userID, username))
	grp.POST("/cleanup-events", ec.CreateEvent)
	grp.POST("/cleanup-events/:id/join", ec.JoinEvent)
	grp.DELETE("/cleanup-events/:id/join", ec.LeaveEvent)
	grp.POST("/cleanup-events/:id/complete", ec.CompleteEvent)
	return r
}

func seedEvent(t *testing.T, db *gorm.DB, maxParticipants, pointsReward int) models.CleanupEvent {
	t.Helper()
	event := models.CleanupEvent{
		Title:           "River cleanup",
		Location:        "North bank",
		EventDate:       time.Now().Add(48 * time.Hour),
		MaxParticipants: maxParticipants,
		EcoPointsReward: pointsReward,
		Status:          models.EventUpcoming,
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func TestJoinEventIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	event := seedEvent(t, db, 10, 0)
	r := newEventRouter(db, user.ID, "alice")

	path := fmt.Sprintf("/api/cleanup-events/%d/join", event.ID)

	w := doJSON(r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var fresh models.CleanupEvent
	require.NoError(t, db.First(&fresh, event.ID).Error)
	assert.Equal(t, 1, fresh.CurrentParticipants)

	var count int64
	require.NoError(t, db.Model(&models.EventParticipant{}).
		Where("event_id = ?", event.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestJoinEventFull(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)
	event := seedEvent(t, db, 1, 0)

	path := fmt.Sprintf("/api/cleanup-events/%d/join", event.ID)

	w := doJSON(newEventRouter(db, alice.ID, "alice"), http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(newEventRouter(db, bob.ID, "bob"), http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The rejected join must not leave a participant row behind.
	var count int64
	require.NoError(t, db.Model(&models.EventParticipant{}).
		Where("event_id = ?", event.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var fresh models.CleanupEvent
	require.NoError(t, db.First(&fresh, event.ID).Error)
	assert.Equal(t, 1, fresh.CurrentParticipants)
}

func TestJoinEventNotUpcoming(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	event := seedEvent(t, db, 10, 0)
	require.NoError(t, db.Model(&event).Update("status", models.EventCompleted).Error)

	r := newEventRouter(db, user.ID, "alice")
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/cleanup-events/%d/join", event.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveEventDecrementsOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	event := seedEvent(t, db, 10, 0)
	r := newEventRouter(db, user.ID, "alice")

	path := fmt.Sprintf("/api/cleanup-events/%d/join", event.ID)
	w := doJSON(r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Leaving again is a conflict and must not drive the counter negative.
	w = doJSON(r, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var fresh models.CleanupEvent
	require.NoError(t, db.First(&fresh, event.ID).Error)
	assert.Equal(t, 0, fresh.CurrentParticipants)
}

func TestCompleteEventPaysEachParticipantOnce(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", 0)
	bob := seedUser(t, db, "bob", 0)
	admin := seedUser(t, db, "admin", 0)
	event := seedEvent(t, db, 10, 50)

	joinPath := fmt.Sprintf("/api/cleanup-events/%d/join", event.ID)
	require.Equal(t, http.StatusOK, doJSON(newEventRouter(db, alice.ID, "alice"), http.MethodPost, joinPath, nil).Code)
	require.Equal(t, http.StatusOK, doJSON(newEventRouter(db, bob.ID, "bob"), http.MethodPost, joinPath, nil).Code)

	adminRouter := newEventRouter(db, admin.ID, "admin")
	completePath := fmt.Sprintf("/api/cleanup-events/%d/complete", event.ID)

	w := doJSON(adminRouter, http.MethodPost, completePath, nil)
	data := dataMap(t, w)
	assert.EqualValues(t, 2, data["participants_rewarded"])

	// Completing again is a no-op payout wise.
	w = doJSON(adminRouter, http.MethodPost, completePath, nil)
	data = dataMap(t, w)
	assert.EqualValues(t, 0, data["participants_rewarded"])

	for _, id := range []uint{alice.ID, bob.ID} {
		var u models.User
		require.NoError(t, db.First(&u, id).Error)
		assert.Equal(t, 50, u.EcoPoints)
	}
}

func TestCompleteEventRequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", 0)
	event := seedEvent(t, db, 10, 50)

	r := newEventRouter(db, user.ID, "alice")
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/cleanup-events/%d/complete", event.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateEvent(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "admin", 0)
	r := newEventRouter(db, admin.ID, "admin")

	w := doJSON(r, http.MethodPost, "/api/cleanup-events", map[string]interface{}{
		"title":             "Beach day",
		"location":          "East beach",
		"event_date":        time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"max_participants":  25,
		"eco_points_reward": 30,
	})
	data := dataMap(t, w)
	event := data["event"].(map[string]interface{})
	assert.Equal(t, models.EventUpcoming, event["status"])

	// Past dates are rejected.
	w = doJSON(r, http.MethodPost, "/api/cleanup-events", map[string]interface{}{
		"title":            "Yesterday",
		"location":         "East beach",
		"event_date":       time.Now().Add(-time.Hour).Format(time.RFC3339),
		"max_participants": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEventParticipants(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", 0)
	event := seedEvent(t, db, 10, 0)

	r := newEventRouter(db, alice.ID, "alice")
	require.Equal(t, http.StatusOK,
		doJSON(r, http.MethodPost, fmt.Sprintf("/api/cleanup-events/%d/join", event.ID), nil).Code)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/cleanup-events/%d/participants", event.ID), nil)
	data := dataMap(t, w)
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "alice", items[0].(map[string]interface{})["username"])
}
