package main

import (
	"context"
	"fmt"
	"log"

	"github.com/avocadohq/avocado.go/db"
	"github.com/avocadohq/avocado.go/lib/logging"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// script to rebuild the bonus ledger from scratch, resuming from the stored
// checkpoint when a previous run was interrupted
func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := logging.Logger(c.LogFilePath)

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{Dsn: c.SentryDSN}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	svc := &service.AvocadoService{
		Config:       c,
		DB:           dbConn,
		Logger:       logger,
		Dispatcher:   service.NewDispatcher(),
		LedgerPubSub: service.NewPubsub(),
	}

	result, err := svc.RecalculateAllBonuses(context.Background())
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatalf("Bonus recalculation failed: %v", err)
	}

	logger.Infof("Bonus recalculation finished total:%d updated:%d earned_total:%d spent_total:%d",
		result.Total, result.Updated, result.EarnedTotal, result.SpentTotal)
}
