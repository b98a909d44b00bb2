package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"teacher_savings_portal/internal/domain/identity"
	"teacher_savings_portal/internal/domain/notification"
	"teacher_savings_portal/internal/infra/config"
	"teacher_savings_portal/internal/infra/database"
	"teacher_savings_portal/internal/infra/httpapi"
	"teacher_savings_portal/internal/infra/logger"
	"teacher_savings_portal/internal/infra/scheduler"
	"teacher_savings_portal/internal/infra/telegram"

	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the stale report sweeper and the admin bot",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Component("main")
	log.WithField("environment", cfg.Environment).Info("Configuration loaded")

	auth, err := identity.ParseTokenTable(cfg.APITokens)
	if err != nil {
		return err
	}

	db, err := database.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("Database connection established")

	var bot *telebot.Bot
	var notifier notification.Notifier = telegram.NewLogNotifier(logger.Entry())
	if cfg.BotEnabled() {
		bot, err = newBot(cfg)
		if err != nil {
			return err
		}
		notifier = telegram.NewBotNotifier(telegram.NewTelebotAdapter(bot), cfg.AdminTelegramID, logger.Entry())
	}

	svc, err := buildServices(cfg, db, notifier)
	if err != nil {
		return err
	}

	reportScheduler := scheduler.NewReportScheduler(svc.admin, logger.Entry(), cfg.CronSpecStale, cfg.StaleReportAfter)
	if err := reportScheduler.Start(); err != nil {
		return err
	}
	defer reportScheduler.Stop()

	if bot != nil {
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, svc.admin, cfg.AdminTelegramID, botLogger)
		go bot.Start()
		defer bot.Stop()
		log.Info("Telegram admin bot started")
	}

	handler := httpapi.NewHandler(svc.reconciliation, svc.admin, auth, logger.Entry(), cfg.MaxUploadBytes)
	server := httpapi.NewServer(cfg.HTTPAddr, handler.Routes())

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server did not shut down cleanly")
	}
	log.Info("Application shut down gracefully")
	return nil
}

func newBot(cfg *config.AppConfig) (*telebot.Bot, error) {
	botLogger := logger.Component("telebot")
	return telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler failed")
		},
	})
}
