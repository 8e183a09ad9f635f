package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop/ecotrack/config"
	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/utils"
)

// QuizController serves generated quizzes, grades submissions and reports
// learning progress.
type QuizController struct {
	db *gorm.DB
}

// NewQuizController creates a new controller instance.
func NewQuizController(db *gorm.DB) *QuizController {
	return &QuizController{db: db}
}

// GenerateQuiz builds a question set for a topic. Correct answers stay on the
// server, keyed by the returned quiz id.
func (q *QuizController) GenerateQuiz(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
		Count      int    `json:"count"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}

	topic := strings.ToLower(strings.TrimSpace(req.Topic))
	if topic == "" {
		topic = "recycling"
	}
	difficulty := strings.ToLower(strings.TrimSpace(req.Difficulty))
	switch difficulty {
	case "":
		difficulty = "easy"
	case "easy", "medium", "hard":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40091, "difficulty must be easy, medium or hard")
		return
	}
	if req.Count == 0 {
		req.Count = 5
	}
	if req.Count < 1 || req.Count > 20 {
		utils.Error(ctx, http.StatusBadRequest, 40092, "count must be between 1 and 20")
		return
	}

	questions := utils.GenerateQuizQuestions(ctx.Request.Context(), topic, difficulty, req.Count)
	if len(questions) == 0 {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to generate quiz")
		return
	}

	answers := make([]int, len(questions))
	for i, question := range questions {
		answers[i] = question.Answer
	}

	quizID := uuid.NewString()
	utils.SaveQuizAnswerKey(quizID, utils.QuizKey{
		Topic:      topic,
		Difficulty: difficulty,
		Answers:    answers,
	})

	// QuizQuestion.Answer carries json:"-", so options ship without the key.
	utils.Success(ctx, gin.H{
		"quiz_id":    quizID,
		"topic":      topic,
		"difficulty": difficulty,
		"questions":  questions,
	})
}

// SubmitQuiz grades a submission against the stored answer key, records the
// attempt and credits points, both in one transaction.
func (q *QuizController) SubmitQuiz(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		QuizID  string `json:"quiz_id" binding:"required"`
		Answers []int  `json:"answers" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40093, "invalid request payload")
		return
	}

	key, found := utils.ConsumeQuizAnswerKey(req.QuizID)
	if !found {
		utils.Error(ctx, http.StatusNotFound, 40490, "quiz not found or already submitted")
		return
	}

	score := 0
	for i, correct := range key.Answers {
		if i < len(req.Answers) && req.Answers[i] == correct {
			score++
		}
	}

	points := score * config.Get().QuizPointsPerCorrect

	attempt := models.QuizAttempt{
		UserID:          userID,
		Topic:           key.Topic,
		Difficulty:      key.Difficulty,
		Score:           score,
		TotalQuestions:  len(key.Answers),
		EcoPointsEarned: points,
		CreatedAt:       time.Now(),
	}

	err := q.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		if points == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("eco_points", gorm.Expr("eco_points + ?", points)).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to record quiz attempt")
		return
	}

	utils.Success(ctx, gin.H{
		"score":             score,
		"total_questions":   len(key.Answers),
		"eco_points_earned": points,
		"attempt":           attempt,
	})
}

// LearningProgress aggregates the user's quiz history: totals plus a per-topic
// breakdown.
func (q *QuizController) LearningProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type topicRow struct {
		Topic     string `json:"topic"`
		Attempts  int64  `json:"attempts"`
		Correct   int64  `json:"correct"`
		Questions int64  `json:"questions"`
	}
	var rows []topicRow
	if err := q.db.Model(&models.QuizAttempt{}).
		Select("topic, COUNT(*) AS attempts, COALESCE(SUM(score),0) AS correct, COALESCE(SUM(total_questions),0) AS questions").
		Where("user_id = ?", userID).
		Group("topic").
		Scan(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to aggregate attempts")
		return
	}

	var totals struct {
		Attempts  int64
		Correct   int64
		Questions int64
		Points    int64
	}
	for _, r := range rows {
		totals.Attempts += r.Attempts
		totals.Correct += r.Correct
		totals.Questions += r.Questions
	}
	if err := q.db.Model(&models.QuizAttempt{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(eco_points_earned),0)").
		Scan(&totals.Points).Error; err != nil {
		totals.Points = 0
	}

	var recent []models.QuizAttempt
	if err := q.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to list attempts")
		return
	}

	utils.Success(ctx, gin.H{
		"total_attempts":    totals.Attempts,
		"total_correct":     totals.Correct,
		"total_questions":   totals.Questions,
		"eco_points_earned": totals.Points,
		"by_topic":          rows,
		"recent_attempts":   recent,
	})
}
