package cmd

import (
	"database/sql"
	"fmt"

	"teacher_savings_portal/internal/app"
	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/infra/config"
	"teacher_savings_portal/internal/infra/database"
	"teacher_savings_portal/internal/infra/logger"
	"teacher_savings_portal/internal/infra/storage"
)

type services struct {
	reconciliation *app.ReconciliationService
	admin          *app.AdminService
}

// buildServices wires the repositories, file store and notifier into the application services.
func buildServices(cfg *config.AppConfig, db *sql.DB, notifier notification.Notifier) (*services, error) {
	files, err := storage.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("could not prepare upload storage: %w", err)
	}
	teacherRepo := database.NewPostgresTeacherRepository(db)
	ledgerRepo := database.NewPostgresLedgerRepository(db)
	reportRepo := database.NewPostgresReportRepository(db)

	return &services{
		reconciliation: app.NewReconciliationService(teacherRepo, ledgerRepo, reportRepo, files, notifier,
			logger.Entry(), cfg.MaxUploadBytes),
		admin: app.NewAdminService(reportRepo, files, notifier, logger.Entry()),
	}, nil
}
