package services

import (
	"cronify/config"
	"cronify/internal/database"
)

type Service struct {
	Transaction *TransactionService
	Auth        *AuthService
	Scheduler   *SchedulerService
	Mailer      Mailer
	Report      *ReportService
}

func New(db database.DB, config config.Config) Service {
	return Service{
		Transaction: NewTransactionService(db),
		Auth:        NewAuthService(config, NewSessionStore(db.Cache.Session)),
		Scheduler:   NewSchedulerService(),
		Mailer:      NewMailer(config),
		Report:      NewReportService(),
	}
}
