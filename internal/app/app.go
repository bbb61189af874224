package app

import (
	"context"

	"cronify/config"
	"cronify/internal/controllers"
	"cronify/internal/database"
	"cronify/internal/events"
	"cronify/internal/handlers/middleware"
	"cronify/internal/jobs"
	"cronify/internal/logger"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/websockets"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	services := services.New(db, config)
	repos := repositories.New(db)
	controllers := controllers.New(services, repos, eventBus, db)

	websocket, err := websockets.New(eventBus, services.Auth, controllers.Timer)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, services.Auth, config, repos)

	if err := jobs.RegisterAllJobs(services.Scheduler, config, db.SQL, repos, eventBus); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}
	if config.SchedulerEnabled {
		if err := services.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Services:    services,
		Repos:       repos,
		Controllers: controllers,
		Websocket:   websocket,
		EventBus:    eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.Auth,
		a.Services.Scheduler,
		a.Services.Mailer,
		a.Services.Report,
		a.Repos.User,
		a.Repos.UserSettings,
		a.Repos.Habit,
		a.Repos.HabitLog,
		a.Repos.Partnership,
		a.Repos.Encouragement,
		a.Repos.Relapse,
		a.Controllers.Auth,
		a.Controllers.User,
		a.Controllers.Habit,
		a.Controllers.Log,
		a.Controllers.Timer,
		a.Controllers.Partnership,
		a.Controllers.Encouragement,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
