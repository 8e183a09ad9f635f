package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/greenloop/ecotrack/config"
	"github.com/greenloop/ecotrack/middleware"
	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("ADMIN_USERNAMES", "admin")
	cfg := config.Load()
	_ = utils.InitLogger(cfg)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var testDBSeq atomic.Int64

// newTestDB opens an isolated in-memory database and migrates the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:controllers_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WasteEntry{},
		&models.PickupSchedule{},
		&models.CommunityReport{},
		&models.CleanupEvent{},
		&models.EventParticipant{},
		&models.EcoChallenge{},
		&models.UserChallengeProgress{},
		&models.Reward{},
		&models.UserReward{},
		&models.QuizAttempt{},
		&models.ActivityStat{},
	))
	return db
}

// authAs injects an authenticated identity without a real token.
func authAs(userID uint, username string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Set(middleware.ContextUsernameKey, username)
		c.Next()
	}
}

func newRouter() *gin.Engine {
	return gin.New()
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.Equal(t, http.StatusOK, w.Code, "unexpected status, body: %s", w.Body.String())
	require.Equal(t, 0, env.Code)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}

func seedUser(t *testing.T, db *gorm.DB, username string, points int) models.User {
	t.Helper()
	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		EcoPoints: points,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
