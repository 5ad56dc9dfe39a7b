// Command notifier consumes the domain events queue and emails a rescue
// team's contact when the team is assigned to a disaster.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/config"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/firebase"
	"reliefnet-backend-go/pkg/mailer"
	"reliefnet-backend-go/pkg/messagequeue"
)

func main() {
	newLogger := zap.NewDevelopment
	if os.Getenv("GIN_MODE") == "release" {
		newLogger = zap.NewProduction
	}
	logger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load application configuration", zap.Error(err))
	}
	if appConfig.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL is required by the notifier")
	}

	m, err := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.MailFrom,
	})
	if err != nil {
		logger.Fatal("Failed to configure mailer", zap.Error(err))
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	clients, err := firebase.NewClients(initCtx, appConfig)
	cancelInit()
	if err != nil {
		logger.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	defer clients.Close()
	repos := db.NewFirestoreRepositories(clients.Firestore)

	mq, err := messagequeue.NewRabbitMQService(messagequeue.RabbitMQConfig{URL: appConfig.RabbitMQURL}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := &notifier{teams: repos.RescueTeams, disasters: repos.Disasters, mail: m, logger: logger}
	logger.Info("Notifier started", zap.String("queue", appConfig.EventsQueue))
	if err := mq.Consume(ctx, appConfig.EventsQueue, n.handle); err != nil {
		logger.Error("Consumer stopped", zap.Error(err))
		return
	}
	logger.Info("Notifier exiting gracefully.")
}
