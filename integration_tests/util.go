package integration_tests

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/avocadohq/avocado.go/db"
	"github.com/avocadohq/avocado.go/db/migrations"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/avocadohq/avocado.go/lib/logging"
	"github.com/avocadohq/avocado.go/lib/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// avocadoServiceInit builds a service against the DATABASE_URI test database.
// Tests that need it skip when the variable is unset, so the unit-test run
// stays database-free.
func avocadoServiceInit(t *testing.T) *service.AvocadoService {
	t.Helper()

	dbUri, ok := os.LookupEnv("DATABASE_URI")
	if !ok {
		t.Skip("DATABASE_URI not set, skipping database test")
	}

	c := &service.Config{
		DatabaseUri:             dbUri,
		DatabaseMaxConns:        4,
		DatabaseMaxIdleConns:    2,
		DatabaseConnMaxLifetime: 10,
		// small batches so the recompute checkpoint loop gets exercised
		RecalcBatchSize:   2,
		BonusHistoryLimit: 100,
	}

	dbConn, err := db.Open(c)
	require.NoError(t, err)

	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return &service.AvocadoService{
		Config:       c,
		DB:           dbConn,
		Logger:       logging.Logger(""),
		Dispatcher:   service.NewDispatcher(),
		LedgerPubSub: service.NewPubsub(),
	}
}

func clearTables(t *testing.T, svc *service.AvocadoService) {
	t.Helper()
	for _, table := range []string{"transaction_bonus", "transaction_products", "transactions", "clients", "system_settings", "engine_dead_letters"} {
		_, err := svc.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err)
	}
}

func seedClient(t *testing.T, svc *service.AvocadoService, clientID int64) {
	t.Helper()
	client := &models.Client{ClientID: clientID, Firstname: "Test"}
	_, err := svc.DB.NewInsert().Model(client).Exec(context.Background())
	require.NoError(t, err)
}

func seedClosedTransaction(t *testing.T, svc *service.AvocadoService, transactionID, clientID int64, sum, percent, paidBonus string, closedAt time.Time) {
	t.Helper()
	transaction := &models.Transaction{
		TransactionID: transactionID,
		ClientID:      sql.NullInt64{Int64: clientID, Valid: true},
		DateClose:     bun.NullTime{Time: closedAt},
		Sum:           decimal.RequireFromString(sum),
		Bonus:         decimal.RequireFromString(percent),
	}
	if paidBonus != "" {
		transaction.PayedBonus = decimal.NullDecimal{Decimal: decimal.RequireFromString(paidBonus), Valid: true}
	}
	_, err := svc.DB.NewInsert().Model(transaction).Exec(context.Background())
	require.NoError(t, err)
}

func ledgerCount(t *testing.T, svc *service.AvocadoService, transactionID int64) int {
	t.Helper()
	count, err := svc.DB.NewSelect().Model((*models.TransactionBonus)(nil)).
		Where("transaction_id = ?", transactionID).
		Count(context.Background())
	require.NoError(t, err)
	return count
}
