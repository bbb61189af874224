package config

import (
	"time"

	"cronify/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string        `mapstructure:"GENERAL_VERSION"`
	Environment          string        `mapstructure:"ENVIRONMENT"`
	ServerPort           int           `mapstructure:"SERVER_PORT"`
	DatabaseHost         string        `mapstructure:"DB_HOST"`
	DatabasePort         int           `mapstructure:"DB_PORT"`
	DatabaseName         string        `mapstructure:"DB_NAME"`
	DatabaseUser         string        `mapstructure:"DB_USER"`
	DatabasePassword     string        `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string        `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int           `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int           `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string        `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret            string        `mapstructure:"JWT_SECRET"`
	JWTExpiry            time.Duration `mapstructure:"JWT_EXPIRY"`
	SchedulerEnabled     bool          `mapstructure:"SCHEDULER_ENABLED"`
	SendGridAPIKey       string        `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail    string        `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendGridFromName     string        `mapstructure:"SENDGRID_FROM_NAME"`
	AppURL               string        `mapstructure:"APP_URL"`
}

const (
	defaultJWTExpiry    = 7 * 24 * time.Hour
	minJWTSecretLength  = 32
	defaultFromName     = "Cronify"
	defaultCacheResetID = -1
)

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"JWT_SECRET", "JWT_EXPIRY",
	"SCHEDULER_ENABLED",
	"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SENDGRID_FROM_NAME",
	"APP_URL",
}

var ConfigInstance Config

// New loads configuration from the environment, falling back to .env and
// .env.local when the core variables are not set.
func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	v := viper.New()
	v.AutomaticEnv()

	for _, env := range envVars {
		if err := v.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	v.SetDefault("JWT_EXPIRY", defaultJWTExpiry)
	v.SetDefault("DB_CACHE_RESET", defaultCacheResetID)
	v.SetDefault("SENDGRID_FROM_NAME", defaultFromName)
	v.SetDefault("SCHEDULER_ENABLED", true)

	if v.IsSet("SERVER_PORT") && v.IsSet("DB_HOST") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		v.SetConfigFile(".env.local")
		if err := v.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"scheduler", config.SchedulerEnabled,
		"email", config.SendGridAPIKey != "",
	)

	ConfigInstance = config
	return config, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 || config.ServerPort > 65535 {
		return log.Error("Fatal error: invalid server port", "port", config.ServerPort)
	}

	if len(config.JWTSecret) < minJWTSecretLength {
		return log.Error(
			"Fatal error: JWT_SECRET must be at least 32 characters",
			"length", len(config.JWTSecret),
		)
	}

	if config.JWTExpiry <= 0 {
		return log.Error("Fatal error: JWT_EXPIRY must be positive", "expiry", config.JWTExpiry)
	}

	if config.SendGridAPIKey != "" && config.SendGridFromEmail == "" {
		return log.Error("Fatal error: SENDGRID_FROM_EMAIL required when SENDGRID_API_KEY is set")
	}

	return nil
}
