package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bill_reminder_bot/internal/app"
	"bill_reminder_bot/internal/domain/notify"
	"bill_reminder_bot/internal/infra/config"
	idb "bill_reminder_bot/internal/infra/database"
	"bill_reminder_bot/internal/infra/logger"
	"bill_reminder_bot/internal/infra/mailer"
	"bill_reminder_bot/internal/infra/scheduler"
	"bill_reminder_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	accountRepo := idb.NewPostgresAccountRepository(db)
	userRepo := idb.NewPostgresUserRepository(db)

	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				log.WithError(err).Error("Telegram bot error")
			},
		})
		if err != nil {
			log.Fatalf("Could not create Telegram bot: %v", err)
		}
	}

	var notifier notify.Notifier
	switch cfg.NotifyChannel {
	case config.NotifyChannelTelegram:
		notifier = telegram.NewNotifier(
			telegram.NewTelebotAdapter(bot),
			userRepo,
			log.WithField("component", "telegram_notifier"),
		)
	default:
		notifier = mailer.New(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom,
			userRepo,
			log.WithField("component", "mailer"),
		)
	}

	sched := scheduler.NewReminderScheduler(accountRepo, notifier, log.WithField("component", "scheduler"))

	// Jobs do not survive restarts; replay every account before the
	// engine starts ticking.
	rebuildCtx, cancelRebuild := context.WithTimeout(context.Background(), 30*time.Second)
	if err := sched.RebuildAll(rebuildCtx); err != nil {
		cancelRebuild()
		log.Fatalf("Could not rebuild reminder schedule: %v", err)
	}
	cancelRebuild()
	sched.Start()

	accountService := app.NewAccountService(accountRepo, sched, log.WithField("component", "account_service"))

	if bot != nil {
		telegram.RegisterAdminHandlers(bot, accountService, sched.Registry(), cfg.AdminTelegramID, log.WithField("component", "telegram_admin"))
		go bot.Start()
		log.Info("Telegram bot started")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if bot != nil {
		bot.Stop()
	}
	sched.Stop()
	log.Info("Shut down gracefully")
}
