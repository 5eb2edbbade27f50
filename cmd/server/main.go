package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tradecrm/internal/db"
	"tradecrm/internal/logging"
	"tradecrm/internal/notify"
	"tradecrm/internal/reminder"
	"tradecrm/internal/repository"
	"tradecrm/internal/scheduler"
	"tradecrm/internal/web"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}

	logger := logging.GetLogger(os.Getenv("LOG_LEVEL"))

	// Initialize database
	postgresURL := os.Getenv("DATABASE_URL")
	if postgresURL == "" {
		logger.Fatalln("DATABASE_URL environment variable is empty")
	}

	database, err := db.NewDB(postgresURL)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %s\n", err.Error())
	}
	defer func() {
		err = errors.Join(err, database.Close())
	}()

	// For repositories structs embedding common fields
	repo := repository.Repository{
		DB:     database,
		Logger: logger,
	}
	reminders := repository.Reminders{Repository: repo}
	calculations := repository.Calculations{Repository: repo}

	engine := reminder.NewEngine(&reminders, &calculations, logger)

	// Sweep summaries always go to the log; Telegram and email channels
	// join in when configured.
	notifier := buildNotifier(logger)

	sched := scheduler.NewScheduler(engine, notifier, logger)
	sched.Start(sweepIntervalMin())
	defer sched.Stop()

	webServer := web.NewServer(logger, engine, database, os.Getenv("ADMIN_API_TOKEN"))

	webHost := os.Getenv("WEB_HOST")
	if webHost == "" {
		webHost = "0.0.0.0"
	}
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}
	addr := fmt.Sprintf("%s:%s", webHost, webPort)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: webServer.Router(),
	}

	go func() {
		logger.Infof("Starting web server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Web server failed: %s", err.Error())
		}
	}()

	// Block until asked to stop, then drain in-flight requests.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Failed to shut down web server cleanly: %v", err)
	}
}

func sweepIntervalMin() int {
	raw := os.Getenv("SWEEP_INTERVAL_MIN")
	if raw == "" {
		return scheduler.DefaultSweepIntervalMin
	}
	interval, err := strconv.Atoi(raw)
	if err != nil || interval <= 0 {
		return scheduler.DefaultSweepIntervalMin
	}
	return interval
}

func buildNotifier(logger *logrus.Logger) notify.Notifier {
	notifiers := notify.Multi{&notify.LogNotifier{Logger: logger}}

	if token := os.Getenv("TELEGRAM_BOT_API_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_OPS_CHAT_ID"), 10, 64)
		if err != nil {
			logger.Warn("TELEGRAM_OPS_CHAT_ID is not set or invalid, skipping telegram notifications")
		} else {
			tg, err := notify.NewTelegramNotifier(token, chatID)
			if err != nil {
				logger.Errorf("Failed to set up telegram notifier: %v", err)
			} else {
				notifiers = append(notifiers, tg)
			}
		}
	}

	if apiKey := os.Getenv("BREVO_API_KEY"); apiKey != "" {
		email, err := notify.NewEmailNotifier(
			apiKey,
			os.Getenv("EMAIL_FROM_NAME"),
			os.Getenv("EMAIL_FROM_ADDRESS"),
			os.Getenv("EMAIL_OPS_ADDRESS"),
		)
		if err != nil {
			logger.Errorf("Failed to set up email notifier: %v", err)
		} else {
			notifiers = append(notifiers, email)
		}
	}

	return notifiers
}
