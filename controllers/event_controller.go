package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// EventController manages cleanup events and participation.
type EventController struct {
	db *gorm.DB
}

var (
	errAlreadyJoined = errors.New("already joined this event")
	errEventFull     = errors.New("event is full")
	errEventClosed   = errors.New("event is not open for joining")
	errNotJoined     = errors.New("not a participant of this event")
)

// NewEventController creates a new controller instance.
func NewEventController(db *gorm.DB) *EventController {
	return &EventController{db: db}
}

// ListEvents returns events, upcoming first. Cached when unfiltered.
func (e *EventController) ListEvents(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	status := strings.TrimSpace(ctx.Query("status"))

	cacheKey := fmt.Sprintf("cache:events:list:page=%d:size=%d", page, pageSize)
	if status == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := e.db.Model(&models.CleanupEvent{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to count events")
		return
	}

	var events []models.CleanupEvent
	if err := query.Order("event_date ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&events).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to list events")
		return
	}

	payload := gin.H{
		"items":      events,
		"pagination": paginationMeta(page, pageSize, total),
	}
	if status == "" {
		wrapper := struct {
			Code    int         `json:"code"`
			Message string      `json:"message"`
			Data    interface{} `json:"data"`
		}{Code: 0, Message: "success", Data: payload}
		utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// GetEvent returns a single event.
func (e *EventController) GetEvent(ctx *gin.Context) {
	var event models.CleanupEvent
	if err := e.db.First(&event, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40460, "event not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load event")
		return
	}
	utils.Success(ctx, gin.H{"event": event})
}

// CreateEvent registers a new cleanup event (admin only).
func (e *EventController) CreateEvent(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40360, "admin access required")
		return
	}

	var req struct {
		Title           string    `json:"title" binding:"required"`
		Description     string    `json:"description"`
		Location        string    `json:"location" binding:"required"`
		EventDate       time.Time `json:"event_date" binding:"required"`
		MaxParticipants int       `json:"max_participants" binding:"required,min=1"`
		EcoPointsReward int       `json:"eco_points_reward"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if req.EventDate.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, 40061, "event date must be in the future")
		return
	}
	if req.EcoPointsReward < 0 {
		utils.Error(ctx, http.StatusBadRequest, 40062, "eco points reward cannot be negative")
		return
	}

	event := models.CleanupEvent{
		Title:           utils.Sanitize(strings.TrimSpace(req.Title)),
		Description:     utils.Sanitize(req.Description),
		Location:        utils.Sanitize(strings.TrimSpace(req.Location)),
		EventDate:       req.EventDate,
		MaxParticipants: req.MaxParticipants,
		EcoPointsReward: req.EcoPointsReward,
		Status:          models.EventUpcoming,
	}

	if err := e.db.Create(&event).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to create event")
		return
	}

	utils.InvalidateByPrefix("cache:events:list:")

	utils.Success(ctx, gin.H{"event": event})
}

// JoinEvent adds the user as a participant. The participant insert and the
// counter increment run in one transaction: the conflict-skip insert makes the
// join idempotent, and the counter moves only when a row was actually created,
// guarded by the capacity check in the same UPDATE.
func (e *EventController) JoinEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	eventID := ctx.Param("id")

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var event models.CleanupEvent
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}
		if event.Status != models.EventUpcoming {
			return errEventClosed
		}

		participant := models.EventParticipant{
			EventID:  event.ID,
			UserID:   userID,
			JoinedAt: time.Now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&participant)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyJoined
		}

		upd := tx.Model(&models.CleanupEvent{}).
			Where("id = ? AND current_participants < max_participants", event.ID).
			UpdateColumn("current_participants", gorm.Expr("current_participants + 1"))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			// rolls back the participant row as well
			return errEventFull
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40460, "event not found")
		return
	case errors.Is(err, errAlreadyJoined):
		utils.Error(ctx, http.StatusConflict, 40960, err.Error())
		return
	case errors.Is(err, errEventFull):
		utils.Error(ctx, http.StatusConflict, 40961, err.Error())
		return
	case errors.Is(err, errEventClosed):
		utils.Error(ctx, http.StatusBadRequest, 40063, err.Error())
		return
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to join event")
		return
	}

	utils.InvalidateByPrefix("cache:events:list:")

	utils.Success(ctx, gin.H{"message": "joined event"})
}

// LeaveEvent removes the user's participation; the counter is decremented
// only when a row was actually deleted.
func (e *EventController) LeaveEvent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	eventID := ctx.Param("id")

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var event models.CleanupEvent
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}
		if event.Status != models.EventUpcoming {
			return errEventClosed
		}

		res := tx.Where("event_id = ? AND user_id = ?", event.ID, userID).
			Delete(&models.EventParticipant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotJoined
		}

		return tx.Model(&models.CleanupEvent{}).
			Where("id = ? AND current_participants > 0", event.ID).
			UpdateColumn("current_participants", gorm.Expr("current_participants - 1")).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40460, "event not found")
		return
	case errors.Is(err, errNotJoined):
		utils.Error(ctx, http.StatusConflict, 40962, err.Error())
		return
	case errors.Is(err, errEventClosed):
		utils.Error(ctx, http.StatusBadRequest, 40063, err.Error())
		return
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to leave event")
		return
	}

	utils.InvalidateByPrefix("cache:events:list:")

	utils.Success(ctx, gin.H{"message": "left event"})
}

// CompleteEvent marks an event completed and pays the attendance reward to
// every participant that has not been rewarded yet (admin only). Safe to call
// twice: RewardedAt guards double payouts.
func (e *EventController) CompleteEvent(ctx *gin.Context) {
	if !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40360, "admin access required")
		return
	}
	eventID := ctx.Param("id")

	var rewarded int64
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var event models.CleanupEvent
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}
		if event.Status == models.EventCancelled {
			return errEventClosed
		}

		if event.Status != models.EventCompleted {
			if err := tx.Model(&event).Update("status", models.EventCompleted).Error; err != nil {
				return err
			}
		}

		if event.EcoPointsReward > 0 {
			now := time.Now()
			if err := tx.Model(&models.User{}).
				Where("id IN (?)", tx.Model(&models.EventParticipant{}).
					Select("user_id").
					Where("event_id = ? AND rewarded_at IS NULL", event.ID)).
				UpdateColumn("eco_points", gorm.Expr("eco_points + ?", event.EcoPointsReward)).Error; err != nil {
				return err
			}

			res := tx.Model(&models.EventParticipant{}).
				Where("event_id = ? AND rewarded_at IS NULL", event.ID).
				Update("rewarded_at", now)
			if res.Error != nil {
				return res.Error
			}
			rewarded = res.RowsAffected
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40460, "event not found")
		return
	case errors.Is(err, errEventClosed):
		utils.Error(ctx, http.StatusBadRequest, 40064, "cancelled events cannot be completed")
		return
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to complete event")
		return
	}

	utils.InvalidateByPrefix("cache:events:list:")
	utils.InvalidateByPrefix("cache:user:")

	utils.Success(ctx, gin.H{"message": "event completed", "participants_rewarded": rewarded})
}

// ListEventParticipants returns the participants of an event with usernames.
func (e *EventController) ListEventParticipants(ctx *gin.Context) {
	eventID := ctx.Param("id")

	var participants []models.EventParticipant
	if err := e.db.Where("event_id = ?", eventID).Order("joined_at ASC").Find(&participants).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to list participants")
		return
	}

	userIDs := make([]uint, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	userIDs = utils.UniqueUint(userIDs)

	userMap := map[uint]string{}
	if len(userIDs) > 0 {
		var users []models.User
		if err := e.db.Find(&users, userIDs).Error; err == nil {
			for _, u := range users {
				userMap[u.ID] = u.Username
			}
		}
	}

	items := make([]gin.H, 0, len(participants))
	for _, p := range participants {
		items = append(items, gin.H{
			"user_id":     p.UserID,
			"username":    userMap[p.UserID],
			"joined_at":   p.JoinedAt,
			"rewarded_at": p.RewardedAt,
		})
	}

	utils.Success(ctx, gin.H{"items": items})
}
