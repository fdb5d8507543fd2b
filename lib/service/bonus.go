package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

var minorFactor = decimal.NewFromInt(common.MinorUnitsPerMajor)

// BonusPostingPlan is the computed outcome of posting one transaction:
// the ledger entries to append (SPEND before EARN) and the balance the
// client ends up with. Amounts are minor units.
type BonusPostingPlan struct {
	Entries      []models.TransactionBonus
	FinalBalance int64
	EarnedMinor  int64
	SpentMinor   int64
}

// buildBonusPostings computes the ledger entries for a closed transaction
// given the client's balance before posting. Pure: all reads come from the
// transaction row, so the arithmetic is testable without a database.
func buildBonusPostings(transaction *models.Transaction, balanceBefore int64, now time.Time) BonusPostingPlan {
	plan := BonusPostingPlan{FinalBalance: balanceBefore}

	earned := decimal.Zero
	if transaction.Bonus.IsPositive() {
		earned = transaction.Sum.Mul(transaction.Bonus).Div(decimal.NewFromInt(100)).Round(2)
	}
	spent := transaction.PaidBonus()

	earnedMinor := earned.Mul(minorFactor).Round(0).IntPart()
	spentMinor := spent.Mul(minorFactor).Round(0).IntPart()

	balance := balanceBefore
	if spentMinor > 0 {
		plan.Entries = append(plan.Entries, models.TransactionBonus{
			ClientID:      transaction.ClientID.Int64,
			TransactionID: sql.NullInt64{Int64: transaction.TransactionID, Valid: true},
			OperationType: common.OperationTypeSpend,
			Amount:        -spentMinor,
			BalanceBefore: balance,
			BalanceAfter:  balance - spentMinor,
			Description:   fmt.Sprintf("Bonus spent on transaction %d", transaction.TransactionID),
			ProcessedAt:   now,
		})
		balance -= spentMinor
		plan.SpentMinor = spentMinor
	}
	if earnedMinor > 0 {
		plan.Entries = append(plan.Entries, models.TransactionBonus{
			ClientID:       transaction.ClientID.Int64,
			TransactionID:  sql.NullInt64{Int64: transaction.TransactionID, Valid: true},
			OperationType:  common.OperationTypeEarn,
			Amount:         earnedMinor,
			BalanceBefore:  balance,
			BalanceAfter:   balance + earnedMinor,
			Description:    fmt.Sprintf("Bonus earned on transaction %d (%s%% of %s)", transaction.TransactionID, transaction.Bonus.String(), transaction.Sum.StringFixed(2)),
			BonusPercent:   decimal.NullDecimal{Decimal: transaction.Bonus, Valid: true},
			TransactionSum: decimal.NullDecimal{Decimal: transaction.Sum, Valid: true},
			ProcessedAt:    now,
		})
		balance += earnedMinor
		plan.EarnedMinor = earnedMinor
	}

	plan.FinalBalance = balance
	return plan
}

// bonusGate checks the posting preconditions. A failed gate is a silent
// no-op, not an error. The start date comparison is by the calendar date the
// POS recorded, so a close timestamp with a non-UTC offset stays on its own
// day.
func bonusGate(settings BonusSettings, transaction *models.Transaction, enforceEnabled bool) (bool, string) {
	if enforceEnabled && !settings.Enabled {
		return false, "bonus system disabled"
	}
	if !transaction.ClientID.Valid {
		return false, "transaction has no client"
	}
	if transaction.DateClose.IsZero() {
		return false, "transaction not closed"
	}
	if !settings.StartDate.IsZero() {
		if calendarDate(transaction.DateClose.Time).Before(calendarDate(settings.StartDate)) {
			return false, "closed before bonus start date"
		}
	}
	return true, ""
}

// calendarDate drops the clock and the zone offset, keeping the wall date.
func calendarDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ProcessTransactionBonus posts the bonus ledger entries for one transaction
// and moves the client balance, at most once per transaction. It is invoked
// by the dispatcher on transaction.finalized and by the bulk recompute.
func (svc *AvocadoService) ProcessTransactionBonus(ctx context.Context, transactionID int64) error {
	settings, err := svc.LoadBonusSettings(ctx)
	if err != nil {
		return err
	}
	_, err = svc.processTransactionBonus(ctx, settings, transactionID, true)
	return err
}

func (svc *AvocadoService) processTransactionBonus(ctx context.Context, settings BonusSettings, transactionID int64, enforceEnabled bool) (BonusPostingPlan, error) {
	plan := BonusPostingPlan{}

	var transaction models.Transaction
	err := svc.DB.NewSelect().Model(&transaction).Where("transaction_id = ?", transactionID).Limit(1).Scan(ctx)
	if err != nil {
		return plan, fmt.Errorf("transaction %d not found: %w", transactionID, err)
	}

	if ok, reason := bonusGate(settings, &transaction, enforceEnabled); !ok {
		svc.Logger.Debugf("Skipping bonus posting transaction_id:%d reason:%s", transactionID, reason)
		return plan, nil
	}

	// at most one posting per transaction, retries and re-applied updates
	// no-op; cheap unlocked fast path, re-checked under the lock below
	count, err := svc.DB.NewSelect().Model((*models.TransactionBonus)(nil)).Where("transaction_id = ?", transactionID).Count(ctx)
	if err != nil {
		return plan, err
	}
	if count > 0 {
		svc.Logger.Debugf("Skipping bonus posting transaction_id:%d reason:already posted", transactionID)
		return plan, nil
	}

	err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// the client row lock serializes concurrent postings for one client
		var client models.Client
		err := tx.NewSelect().Model(&client).Where("client_id = ?", transaction.ClientID.Int64).For("UPDATE").Limit(1).Scan(ctx)
		if err != nil {
			return fmt.Errorf("client %d not found: %w", transaction.ClientID.Int64, err)
		}

		// authoritative duplicate guard: concurrent finalized events for the
		// same transaction both pass the unlocked count, so only the count
		// taken while holding the client lock decides
		count, err := tx.NewSelect().Model((*models.TransactionBonus)(nil)).Where("transaction_id = ?", transactionID).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			svc.Logger.Debugf("Skipping bonus posting transaction_id:%d reason:already posted", transactionID)
			plan = BonusPostingPlan{}
			return nil
		}

		plan = buildBonusPostings(&transaction, client.Bonus, time.Now())
		if len(plan.Entries) == 0 {
			return nil
		}

		for i := range plan.Entries {
			if _, err := tx.NewInsert().Model(&plan.Entries[i]).Exec(ctx); err != nil {
				return err
			}
		}

		client.Bonus = plan.FinalBalance
		_, err = tx.NewUpdate().Model(&client).Column("bonus", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return BonusPostingPlan{}, err
	}

	for _, entry := range plan.Entries {
		svc.LedgerPubSub.Publish(entry.OperationType, entry)
	}
	return plan, nil
}

// ManageBonusProcessing flips the automatic bonus posting switch: the
// dispatcher handler and the settings flag change together.
func (svc *AvocadoService) ManageBonusProcessing(ctx context.Context, enable bool) (string, error) {
	err := svc.SetSetting(ctx, common.SettingBonusSystemEnabled, strconv.FormatBool(enable), "Whether the bonus system processes transactions automatically")
	if err != nil {
		return "", err
	}
	svc.Dispatcher.SetEnabled(common.EngineBonus, enable)
	if enable {
		return "Bonus processing enabled", nil
	}
	return "Bonus processing disabled", nil
}

type BonusRecalculationResult struct {
	Total       int64 `json:"total"`
	Updated     int64 `json:"updated"`
	EarnedTotal int64 `json:"earned_total"`
	SpentTotal  int64 `json:"spent_total"`
}

type recalcCheckpoint struct {
	DateClose     time.Time
	TransactionID int64
}

func encodeCheckpoint(cp recalcCheckpoint) string {
	return fmt.Sprintf("%d|%d", cp.DateClose.UnixNano(), cp.TransactionID)
}

func decodeCheckpoint(raw string) (recalcCheckpoint, bool) {
	nanosPart, idPart, found := strings.Cut(raw, "|")
	if !found {
		return recalcCheckpoint{}, false
	}
	nanos, err := strconv.ParseInt(nanosPart, 10, 64)
	if err != nil {
		return recalcCheckpoint{}, false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return recalcCheckpoint{}, false
	}
	return recalcCheckpoint{DateClose: time.Unix(0, nanos), TransactionID: id}, true
}

// RecalculateAllBonuses rebuilds the whole ledger from the eligible
// transactions in closing-timestamp order. Automatic posting is paused for
// the duration of the run. Progress is checkpointed in the settings table
// after every batch, so an interrupted run resumes where it stopped instead
// of wiping again; a fresh run starts with a full wipe of the ledger and all
// client balances. Totals are minor units.
func (svc *AvocadoService) RecalculateAllBonuses(ctx context.Context) (BonusRecalculationResult, error) {
	result := BonusRecalculationResult{}

	wasEnabled := svc.Dispatcher.Enabled(common.EngineBonus)
	svc.Dispatcher.SetEnabled(common.EngineBonus, false)
	defer svc.Dispatcher.SetEnabled(common.EngineBonus, wasEnabled)

	settings, err := svc.LoadBonusSettings(ctx)
	if err != nil {
		return result, err
	}

	var checkpoint *recalcCheckpoint
	rawCheckpoint, err := svc.GetSetting(ctx, common.SettingBonusRecalcCheckpoint)
	if err != nil {
		return result, err
	}
	if rawCheckpoint != nil {
		if cp, ok := decodeCheckpoint(*rawCheckpoint); ok {
			checkpoint = &cp
			svc.Logger.Infof("Resuming bonus recalculation from transaction_id:%d", cp.TransactionID)
		}
	}

	if checkpoint == nil {
		err = svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewDelete().Model((*models.TransactionBonus)(nil)).Where("1=1").Exec(ctx); err != nil {
				return err
			}
			_, err := tx.NewUpdate().Model((*models.Client)(nil)).Set("bonus = 0").Where("1=1").Exec(ctx)
			return err
		})
		if err != nil {
			return result, err
		}
	}

	batchSize := svc.Config.RecalcBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	for {
		transactions := []models.Transaction{}
		query := svc.DB.NewSelect().Model(&transactions).
			Where("client_id IS NOT NULL").
			Where("date_close IS NOT NULL")
		if !settings.StartDate.IsZero() {
			// same calendar-day semantics as bonusGate
			query = query.Where("date_close::date >= ?", settings.StartDate.Format(settingDateLayout))
		}
		if checkpoint != nil {
			query = query.Where("(date_close, transaction_id) > (?, ?)", checkpoint.DateClose, checkpoint.TransactionID)
		}
		err = query.OrderExpr("date_close ASC, transaction_id ASC").Limit(batchSize).Scan(ctx)
		if err != nil {
			return result, err
		}
		if len(transactions) == 0 {
			break
		}

		for i := range transactions {
			transaction := &transactions[i]
			result.Total++
			plan, err := svc.processTransactionBonus(ctx, settings, transaction.TransactionID, false)
			if err != nil {
				return result, err
			}
			if len(plan.Entries) > 0 {
				result.Updated++
				result.EarnedTotal += plan.EarnedMinor
				result.SpentTotal += plan.SpentMinor
			}
		}

		last := transactions[len(transactions)-1]
		checkpoint = &recalcCheckpoint{DateClose: last.DateClose.Time, TransactionID: last.TransactionID}
		if err := svc.SetSetting(ctx, common.SettingBonusRecalcCheckpoint, encodeCheckpoint(*checkpoint), "Bonus recalculation progress"); err != nil {
			return result, err
		}
	}

	if err := svc.deleteSetting(ctx, common.SettingBonusRecalcCheckpoint); err != nil {
		return result, err
	}
	svc.Logger.Infof("Bonus recalculation done total:%d updated:%d earned:%d spent:%d", result.Total, result.Updated, result.EarnedTotal, result.SpentTotal)
	return result, nil
}
