package middleware

import (
	"cronify/config"
	"cronify/internal/database"
	"cronify/internal/logger"
	"cronify/internal/repositories"
	"cronify/internal/services"
)

type Middleware struct {
	DB       database.DB
	userRepo repositories.UserRepository
	auth     services.TokenValidator
	Config   config.Config
	log      logger.Logger
}

func New(
	db database.DB,
	auth services.TokenValidator,
	config config.Config,
	repos repositories.Repository,
) Middleware {
	log := logger.New("middleware")

	return Middleware{
		DB:       db,
		userRepo: repos.User,
		auth:     auth,
		Config:   config,
		log:      log,
	}
}
