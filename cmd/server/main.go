package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db"
	"github.com/avocadohq/avocado.go/db/migrations"
	"github.com/avocadohq/avocado.go/lib/logging"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/avocadohq/avocado.go/lib/tokens"
	"github.com/avocadohq/avocado.go/lib/transport"
	"github.com/avocadohq/avocado.go/rabbitmq"
	"github.com/cenkalti/backoff/v4"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

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

	// Open a DB connection based on the configured DATABASE_URI, retrying
	// while the database comes up
	var dbConn *bun.DB
	err = backoff.Retry(func() error {
		conn, err := db.Open(c)
		if err != nil {
			logger.Errorf("Error initializing db connection, retrying: %v", err)
			return err
		}
		dbConn = conn
		return nil
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	// Migrate the DB
	startupCtx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(startupCtx)
	if err != nil {
		logger.Fatalf("Error initializing db migrator: %v", err)
	}
	_, err = migrator.Migrate(startupCtx)
	if err != nil {
		logger.Fatalf("Error migrating database: %v", err)
	}

	// Setup exception tracking with Sentry if configured
	// sentry init needs to happen before the echo middlewares are added
	if c.SentryDSN != "" {
		if err = sentry.Init(sentry.ClientOptions{
			Dsn:              c.SentryDSN,
			IgnoreErrors:     []string{"401"},
			EnableTracing:    c.SentryTracesSampleRate > 0,
			TracesSampleRate: c.SentryTracesSampleRate,
		}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
	}

	// If no RABBITMQ_URI was provided we will not attempt to create a client
	// No rabbitmq features will be available in this case.
	var rabbitmqClient rabbitmq.Client
	if c.RabbitMQUri != "" {
		rabbitmqClient, err = rabbitmq.Dial(c.RabbitMQUri,
			rabbitmq.WithLogger(logger),
			rabbitmq.WithLedgerExchange(c.RabbitMQLedgerExchange),
		)
		if err != nil {
			logger.Fatal(err)
		}

		// close the connection gently at the end of the runtime
		defer rabbitmqClient.Close()
	}

	svc := &service.AvocadoService{
		Config:       c,
		DB:           dbConn,
		Logger:       logger,
		Dispatcher:   service.NewDispatcher(),
		LedgerPubSub: service.NewPubsub(),
	}
	svc.RegisterEngineHandlers()

	// The processing switches survive restarts through the settings table.
	bonusSettings, err := svc.LoadBonusSettings(startupCtx)
	if err != nil {
		logger.Fatalf("Error loading bonus settings: %v", err)
	}
	svc.Dispatcher.SetEnabled(common.EngineBonus, bonusSettings.Enabled)

	discountSettings, err := svc.LoadDiscountSettings(startupCtx)
	if err != nil {
		logger.Fatalf("Error loading discount settings: %v", err)
	}
	svc.Dispatcher.SetEnabled(common.EngineDiscount, discountSettings.Enabled)

	//init echo server
	e := transport.InitEcho(c, logger)

	logMw := transport.CreateLoggingMiddleware(logger)
	// strict rate limit for the admin control surface
	strictRateLimitMiddleware := transport.CreateRateLimitMiddleware(c.StrictRateLimit, c.BurstRateLimit)

	transport.RegisterEndpoints(svc, e, tokens.AdminTokenMiddleware(c.AdminToken), strictRateLimitMiddleware, logMw)

	var backgroundWg sync.WaitGroup
	backGroundCtx, _ := signal.NotifyContext(context.Background(), os.Interrupt)

	//Start rabbit publisher
	if rabbitmqClient != nil {
		backgroundWg.Add(1)
		go func() {
			err = rabbitmqClient.StartPublishLedgerEntries(backGroundCtx,
				svc.SubscribeEarnSpendEntries,
				svc.EncodeLedgerEntry,
			)
			if err != nil {
				svc.Logger.Error(err)
				sentry.CaptureException(err)
			}

			svc.Logger.Info("Rabbit ledger publisher done")
			backgroundWg.Done()
		}()
	}

	//Start Prometheus server if necessary
	if svc.Config.EnablePrometheus {
		go transport.StartPrometheusEcho(logger, svc, e)
	}

	// Start server
	go func() {
		if err := e.Start(fmt.Sprintf(":%v", c.Port)); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backGroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
	//Wait for graceful shutdown of background routines
	backgroundWg.Wait()
	svc.Logger.Info("Avocado exiting gracefully. Goodbye.")
}
