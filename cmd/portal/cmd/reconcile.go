package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"teacher_savings_portal/internal/app"
	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/infra/database"
	"teacher_savings_portal/internal/infra/logger"
	"teacher_savings_portal/internal/infra/telegram"

	"github.com/spf13/cobra"
)

var (
	reconcileFile  string
	reconcileMonth int
	reconcileYear  int
)

// cliPrincipal is the caller used for command line runs.
var cliPrincipal = &identity.Principal{UserID: "cli", Role: identity.RoleAdmin}

var contentTypeByExt = map[string]string{
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Preview how a controller report would be reconciled, without posting anything",
	Long: `Parses a controller report and matches every row against the live teacher
roster. The preview is written to stdout as JSON. Nothing is posted or recorded.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileFile, "file", "f", "", "controller report (.csv or .xlsx)")
	reconcileCmd.Flags().IntVarP(&reconcileMonth, "month", "m", 0, "report month (1-12)")
	reconcileCmd.Flags().IntVarP(&reconcileYear, "year", "y", 0, "report year (4 digits)")
	reconcileCmd.MarkFlagRequired("file")
	reconcileCmd.MarkFlagRequired("month")
	reconcileCmd.MarkFlagRequired("year")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	in, err := readReportFile(reconcileFile, reconcileMonth, reconcileYear)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.NewPostgresConnection(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := buildServices(cfg, db, telegram.NewLogNotifier(logger.Entry()))
	if err != nil {
		return err
	}
	preview, err := svc.reconciliation.PreviewReport(cmd.Context(), cliPrincipal, in)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(preview)
}

// readReportFile loads a report from disk as if it had been uploaded.
func readReportFile(path string, month, year int) (app.UploadInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return app.UploadInput{}, fmt.Errorf("could not read %s: %w", path, err)
	}
	contentType, ok := contentTypeByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return app.UploadInput{}, fmt.Errorf("unsupported file extension %q, expected .csv, .xls or .xlsx", filepath.Ext(path))
	}
	return app.UploadInput{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		Month:       strconv.Itoa(month),
		Year:        strconv.Itoa(year),
	}, nil
}
