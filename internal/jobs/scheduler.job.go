package jobs

import (
	"cronify/config"
	"cronify/internal/events"
	"cronify/internal/logger"
	"cronify/internal/repositories"
	"cronify/internal/services"

	"gorm.io/gorm"
)

const (
	Hourly        = services.Hourly
	AfterMidnight = services.AfterMidnight
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	db *gorm.DB,
	repos repositories.Repository,
	publisher events.Publisher,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	log.Info("Registering jobs")

	autoFailJob := NewAutoFailJob(db, repos, publisher, AfterMidnight)
	if err := schedulerService.AddJob(autoFailJob); err != nil {
		return log.Err("failed to register auto-fail job", err)
	}
	log.Info("Registered auto-fail job", "schedule", "daily 00:15 UTC")

	return nil
}
