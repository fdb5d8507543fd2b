package integration_tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent duplicate finalized events for one transaction must still yield
// exactly one SPEND/EARN pair: the duplicate guard is decided while holding
// the client row lock.
func TestConcurrentDuplicateFinalizedPostsOnce(t *testing.T) {
	svc := avocadoServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.SetSetting(ctx, common.SettingBonusSystemEnabled, "true", ""))
	seedClient(t, svc, 7)
	seedClosedTransaction(t, svc, 42, 7, "100.00", "5", "10.00", time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ProcessTransactionBonus(ctx, 42))
		}()
	}
	wg.Wait()

	// a later retry is a no-op too
	require.NoError(t, svc.ProcessTransactionBonus(ctx, 42))

	assert.Equal(t, 2, ledgerCount(t, svc, 42))

	balance, err := svc.ClientBonusBalance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(-500), balance)

	ledgerBalance, err := svc.ClientLedgerBalance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, balance, ledgerBalance)
}

// Running the full rebuild twice with no writes in between must reproduce
// the same ledger and the same balances.
func TestRecalculateAllBonusesIdempotent(t *testing.T) {
	svc := avocadoServiceInit(t)
	clearTables(t, svc)
	ctx := context.Background()

	seedClient(t, svc, 9)
	closedAt := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	seedClosedTransaction(t, svc, 50, 9, "100.00", "5", "", closedAt)
	seedClosedTransaction(t, svc, 51, 9, "60.00", "5", "3.00", closedAt.Add(time.Hour))
	seedClosedTransaction(t, svc, 52, 9, "40.00", "10", "2.00", closedAt.Add(2*time.Hour))
	// open transactions are not eligible and must not be counted
	transaction := &models.Transaction{
		TransactionID: 53,
		Sum:           decimal.RequireFromString("10.00"),
		Bonus:         decimal.RequireFromString("5"),
	}
	_, err := svc.DB.NewInsert().Model(transaction).Exec(ctx)
	require.NoError(t, err)

	first, err := svc.RecalculateAllBonuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Total)
	assert.Equal(t, int64(3), first.Updated)

	firstBalance, err := svc.ClientBonusBalance(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(700), firstBalance)

	firstRows, err := svc.DB.NewSelect().Model((*models.TransactionBonus)(nil)).Count(ctx)
	require.NoError(t, err)

	second, err := svc.RecalculateAllBonuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	secondBalance, err := svc.ClientBonusBalance(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, firstBalance, secondBalance)

	secondRows, err := svc.DB.NewSelect().Model((*models.TransactionBonus)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstRows, secondRows)

	// a finished run leaves no checkpoint behind
	checkpoint, err := svc.GetSetting(ctx, common.SettingBonusRecalcCheckpoint)
	require.NoError(t, err)
	assert.Nil(t, checkpoint)
}
