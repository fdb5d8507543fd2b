package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func closedTransaction(transactionID, clientID int64, sum, percent, paidBonus string) *models.Transaction {
	transaction := &models.Transaction{
		TransactionID: transactionID,
		ClientID:      sql.NullInt64{Int64: clientID, Valid: true},
		DateClose:     bun.NullTime{Time: time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)},
		Sum:           decimal.RequireFromString(sum),
		Bonus:         decimal.RequireFromString(percent),
	}
	if paidBonus != "" {
		transaction.PayedBonus = decimal.NullDecimal{Decimal: decimal.RequireFromString(paidBonus), Valid: true}
	}
	return transaction
}

func TestBuildBonusPostingsSpendThenEarn(t *testing.T) {
	// 100.00 sale at 5%, 10.00 of it paid with bonus points
	transaction := closedTransaction(42, 7, "100.00", "5", "10.00")
	now := time.Now()

	plan := buildBonusPostings(transaction, 0, now)

	assert.Len(t, plan.Entries, 2)

	spend := plan.Entries[0]
	assert.Equal(t, common.OperationTypeSpend, spend.OperationType)
	assert.Equal(t, int64(-1000), spend.Amount)
	assert.Equal(t, int64(0), spend.BalanceBefore)
	assert.Equal(t, int64(-1000), spend.BalanceAfter)
	assert.Equal(t, int64(7), spend.ClientID)
	assert.Equal(t, "Bonus spent on transaction 42", spend.Description)

	earn := plan.Entries[1]
	assert.Equal(t, common.OperationTypeEarn, earn.OperationType)
	assert.Equal(t, int64(500), earn.Amount)
	assert.Equal(t, int64(-1000), earn.BalanceBefore)
	assert.Equal(t, int64(-500), earn.BalanceAfter)
	assert.True(t, earn.BonusPercent.Valid)
	assert.True(t, earn.TransactionSum.Valid)

	assert.Equal(t, int64(-500), plan.FinalBalance)
	assert.Equal(t, int64(500), plan.EarnedMinor)
	assert.Equal(t, int64(1000), plan.SpentMinor)
}

func TestBuildBonusPostingsEarnOnly(t *testing.T) {
	transaction := closedTransaction(43, 7, "250.00", "3", "")

	plan := buildBonusPostings(transaction, 1200, time.Now())

	assert.Len(t, plan.Entries, 1)
	assert.Equal(t, common.OperationTypeEarn, plan.Entries[0].OperationType)
	assert.Equal(t, int64(750), plan.Entries[0].Amount)
	assert.Equal(t, int64(1200), plan.Entries[0].BalanceBefore)
	assert.Equal(t, int64(1950), plan.FinalBalance)
}

func TestBuildBonusPostingsZeroPercentNoSpend(t *testing.T) {
	transaction := closedTransaction(44, 7, "99.99", "0", "")

	plan := buildBonusPostings(transaction, 300, time.Now())

	assert.Empty(t, plan.Entries)
	assert.Equal(t, int64(300), plan.FinalBalance)
}

func TestBuildBonusPostingsRoundsEarnToMinorUnits(t *testing.T) {
	// 33.33 at 5% = 1.6665, rounds to 1.67 major = 167 minor
	transaction := closedTransaction(45, 7, "33.33", "5", "")

	plan := buildBonusPostings(transaction, 0, time.Now())

	assert.Len(t, plan.Entries, 1)
	assert.Equal(t, int64(167), plan.Entries[0].Amount)
}

func TestBuildBonusPostingsChainedBalances(t *testing.T) {
	balance := int64(0)
	transactions := []*models.Transaction{
		closedTransaction(50, 9, "100.00", "5", ""),
		closedTransaction(51, 9, "60.00", "5", "3.00"),
		closedTransaction(52, 9, "40.00", "10", "2.00"),
	}

	for _, transaction := range transactions {
		plan := buildBonusPostings(transaction, balance, time.Now())
		for _, entry := range plan.Entries {
			assert.Equal(t, balance, entry.BalanceBefore)
			assert.Equal(t, entry.BalanceBefore+entry.Amount, entry.BalanceAfter)
			balance = entry.BalanceAfter
		}
		assert.Equal(t, balance, plan.FinalBalance)
	}

	// 500 - 300 + 300 - 200 + 400
	assert.Equal(t, int64(700), balance)
}

func TestBonusGate(t *testing.T) {
	enabled := BonusSettings{Enabled: true}
	transaction := closedTransaction(60, 7, "10.00", "5", "")

	ok, _ := bonusGate(enabled, transaction, true)
	assert.True(t, ok)

	ok, reason := bonusGate(BonusSettings{Enabled: false}, transaction, true)
	assert.False(t, ok)
	assert.Equal(t, "bonus system disabled", reason)

	// bulk recompute skips the enabled switch
	ok, _ = bonusGate(BonusSettings{Enabled: false}, transaction, false)
	assert.True(t, ok)

	unlinked := closedTransaction(61, 7, "10.00", "5", "")
	unlinked.ClientID = sql.NullInt64{}
	ok, reason = bonusGate(enabled, unlinked, true)
	assert.False(t, ok)
	assert.Equal(t, "transaction has no client", reason)

	open := closedTransaction(62, 7, "10.00", "5", "")
	open.DateClose = bun.NullTime{}
	ok, reason = bonusGate(enabled, open, true)
	assert.False(t, ok)
	assert.Equal(t, "transaction not closed", reason)
}

func TestBonusGateStartDate(t *testing.T) {
	settings := BonusSettings{
		Enabled:   true,
		StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	before := closedTransaction(70, 7, "10.00", "5", "")
	before.DateClose = bun.NullTime{Time: time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)}
	ok, reason := bonusGate(settings, before, true)
	assert.False(t, ok)
	assert.Equal(t, "closed before bonus start date", reason)

	// closing on the start date itself counts
	onDate := closedTransaction(71, 7, "10.00", "5", "")
	onDate.DateClose = bun.NullTime{Time: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)}
	ok, _ = bonusGate(settings, onDate, true)
	assert.True(t, ok)
}

func TestBonusGateStartDateKeepsLocalCalendarDay(t *testing.T) {
	settings := BonusSettings{
		Enabled:   true,
		StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	// 01:00 on July 1st POS-local is still June 30th in UTC; the recorded
	// calendar day is what counts
	pos := time.FixedZone("POS", 3*60*60)
	early := closedTransaction(72, 7, "10.00", "5", "")
	early.DateClose = bun.NullTime{Time: time.Date(2025, 7, 1, 1, 0, 0, 0, pos)}
	ok, _ := bonusGate(settings, early, true)
	assert.True(t, ok)

	// and the late hours of June 30th POS-local stay before the start date
	// even though they are already July 1st in UTC
	lateJune := closedTransaction(73, 7, "10.00", "5", "")
	lateJune.DateClose = bun.NullTime{Time: time.Date(2025, 6, 30, 23, 30, 0, 0, time.FixedZone("POS", -3*60*60))}
	ok, reason := bonusGate(settings, lateJune, true)
	assert.False(t, ok)
	assert.Equal(t, "closed before bonus start date", reason)
}

func TestCheckpointRoundtrip(t *testing.T) {
	cp := recalcCheckpoint{
		DateClose:     time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC),
		TransactionID: 12345,
	}

	decoded, ok := decodeCheckpoint(encodeCheckpoint(cp))
	assert.True(t, ok)
	assert.Equal(t, cp.TransactionID, decoded.TransactionID)
	assert.True(t, cp.DateClose.Equal(decoded.DateClose))
}

func TestCheckpointDecodeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "123", "a|b", "123|", "|456"} {
		_, ok := decodeCheckpoint(raw)
		assert.False(t, ok, "raw %q should not decode", raw)
	}
}
