package controllers

import (
	"cronify/internal/database"
	"cronify/internal/events"
	"cronify/internal/repositories"
	"cronify/internal/services"

	authController "cronify/internal/controllers/auth"
	encouragementController "cronify/internal/controllers/encouragements"
	habitController "cronify/internal/controllers/habits"
	logController "cronify/internal/controllers/logs"
	partnershipController "cronify/internal/controllers/partnerships"
	timerController "cronify/internal/controllers/timer"
	userController "cronify/internal/controllers/users"
)

type Controllers struct {
	Auth          authController.AuthControllerInterface
	User          userController.UserControllerInterface
	Habit         habitController.HabitControllerInterface
	Log           logController.LogControllerInterface
	Timer         timerController.TimerControllerInterface
	Partnership   partnershipController.PartnershipControllerInterface
	Encouragement encouragementController.EncouragementControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	publisher events.Publisher,
	db database.DB,
) Controllers {
	return Controllers{
		Auth:          authController.New(services, repos, db),
		User:          userController.New(repos, db),
		Habit:         habitController.New(repos, services, db),
		Log:           logController.New(repos, publisher, db),
		Timer:         timerController.New(repos, services, publisher, db),
		Partnership:   partnershipController.New(repos, services, publisher, db),
		Encouragement: encouragementController.New(repos, services, publisher, db),
	}
}
