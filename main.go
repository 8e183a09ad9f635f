package main

import (
	"time"

	"github.com/greenloop/ecotrack/config"
	"github.com/greenloop/ecotrack/models"
	"github.com/greenloop/ecotrack/routes"
	"github.com/greenloop/ecotrack/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
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
	)

	r := routes.SetupRouter(db)

	// Background sweep for expired redemptions and stale events
	utils.StartMaintenance(db, 10*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
