package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
)

// computeDiscount derives the effective discount from the line-item total
// and the recorded payments, clamped to zero: inconsistent overpayment data
// never yields a negative discount.
func computeDiscount(itemTotal, paidSum, paidBonus decimal.Decimal) decimal.Decimal {
	discount := itemTotal.Sub(paidSum).Sub(paidBonus)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// ReconcileTransactionDiscount recomputes one transaction's discount from
// its line items and payment fields. Invoked by the dispatcher on
// transaction.items_changed and transaction.payment_changed.
func (svc *AvocadoService) ReconcileTransactionDiscount(ctx context.Context, transactionID int64) error {
	settings, err := svc.LoadDiscountSettings(ctx)
	if err != nil {
		return err
	}
	if !settings.Enabled {
		svc.Logger.Debugf("Skipping discount reconciliation transaction_id:%d reason:discount system disabled", transactionID)
		return nil
	}

	var transaction models.Transaction
	err = svc.DB.NewSelect().Model(&transaction).Where("transaction_id = ?", transactionID).Limit(1).Scan(ctx)
	if err != nil {
		return fmt.Errorf("transaction %d not found: %w", transactionID, err)
	}

	var itemTotal decimal.NullDecimal
	err = svc.DB.NewSelect().Model((*models.TransactionProduct)(nil)).
		ColumnExpr("SUM(sum)").
		Where("transaction_id = ?", transactionID).
		Scan(ctx, &itemTotal)
	if err != nil {
		return err
	}
	total := decimal.Zero
	if itemTotal.Valid {
		total = itemTotal.Decimal
	}

	discount := computeDiscount(total, transaction.PaidSum(), transaction.PaidBonus())
	if transaction.Discount.Equal(discount) {
		return nil
	}

	transaction.Discount = discount
	_, err = svc.DB.NewUpdate().Model(&transaction).Column("discount", "updated_at").WherePK().Exec(ctx)
	return err
}

// ManageDiscountProcessing flips the automatic discount reconciliation
// switch, dispatcher handler and settings flag together.
func (svc *AvocadoService) ManageDiscountProcessing(ctx context.Context, enable bool) (string, error) {
	err := svc.SetSetting(ctx, common.SettingDiscountSystemEnabled, strconv.FormatBool(enable), "Whether transaction discounts are reconciled automatically")
	if err != nil {
		return "", err
	}
	svc.Dispatcher.SetEnabled(common.EngineDiscount, enable)
	if enable {
		return "Discount processing enabled", nil
	}
	return "Discount processing disabled", nil
}

type DiscountRecalculationResult struct {
	Total         int64           `json:"total"`
	Updated       int64           `json:"updated"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
}

// RecalculateAllDiscounts recomputes every transaction's discount in one
// aggregated join query. Automatic reconciliation is paused for the run to
// avoid redundant firing from the mass update.
func (svc *AvocadoService) RecalculateAllDiscounts(ctx context.Context) (DiscountRecalculationResult, error) {
	result := DiscountRecalculationResult{DiscountTotal: decimal.Zero}

	wasEnabled := svc.Dispatcher.Enabled(common.EngineDiscount)
	svc.Dispatcher.SetEnabled(common.EngineDiscount, false)
	defer svc.Dispatcher.SetEnabled(common.EngineDiscount, wasEnabled)

	total, err := svc.DB.NewSelect().Model((*models.Transaction)(nil)).Count(ctx)
	if err != nil {
		return result, err
	}
	result.Total = int64(total)

	res, err := svc.DB.ExecContext(ctx, `
		UPDATE transactions AS t
		SET discount = sub.new_discount, updated_at = now()
		FROM (
			SELECT t2.id,
			       GREATEST(COALESCE(li.total, 0) - COALESCE(t2.payed_sum, 0) - COALESCE(t2.payed_bonus, 0), 0) AS new_discount
			FROM transactions AS t2
			LEFT JOIN (
				SELECT transaction_id, SUM(sum) AS total
				FROM transaction_products
				GROUP BY transaction_id
			) AS li ON li.transaction_id = t2.transaction_id
		) AS sub
		WHERE sub.id = t.id AND t.discount IS DISTINCT FROM sub.new_discount
	`)
	if err != nil {
		return result, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return result, err
	}
	result.Updated = updated

	var discountTotal decimal.NullDecimal
	err = svc.DB.NewSelect().Model((*models.Transaction)(nil)).ColumnExpr("SUM(discount)").Scan(ctx, &discountTotal)
	if err != nil {
		return result, err
	}
	if discountTotal.Valid {
		result.DiscountTotal = discountTotal.Decimal
	}

	svc.Logger.Infof("Discount recalculation done total:%d updated:%d discount_total:%s", result.Total, result.Updated, result.DiscountTotal.StringFixed(2))
	return result, nil
}
