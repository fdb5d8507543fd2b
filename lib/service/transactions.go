package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// DefaultBonusPercent returns the configured fallback earn percentage for
// sales synced without one.
func (svc *AvocadoService) DefaultBonusPercent(ctx context.Context) (decimal.Decimal, error) {
	raw, err := svc.GetSetting(ctx, common.SettingDefaultBonusPercent)
	if err != nil {
		return decimal.Zero, err
	}
	return parseDecimalSetting(raw), nil
}

func (svc *AvocadoService) FindTransaction(ctx context.Context, transactionID int64) (*models.Transaction, error) {
	var transaction models.Transaction
	err := svc.DB.NewSelect().Model(&transaction).Where("transaction_id = ?", transactionID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (svc *AvocadoService) TransactionProductsFor(ctx context.Context, transactionID int64) ([]models.TransactionProduct, error) {
	products := []models.TransactionProduct{}
	err := svc.DB.NewSelect().Model(&products).Where("transaction_id = ?", transactionID).Scan(ctx)
	return products, err
}

// UpsertTransaction is the POS sync write path. It persists the row and then
// publishes the domain events the engines react to:
// transaction.finalized when the closing timestamp appears (insert or
// null-to-set update), transaction.payment_changed when payed_sum or
// payed_bonus actually changed.
func (svc *AvocadoService) UpsertTransaction(ctx context.Context, incoming *models.Transaction) (*models.Transaction, error) {
	var existing models.Transaction
	err := svc.DB.NewSelect().Model(&existing).Where("transaction_id = ?", incoming.TransactionID).Limit(1).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if errors.Is(err, sql.ErrNoRows) {
		if _, err := svc.DB.NewInsert().Model(incoming).Exec(ctx); err != nil {
			return nil, err
		}
		if !incoming.DateClose.IsZero() {
			svc.Dispatcher.Publish(ctx, TransactionEvent{Kind: EventTransactionFinalized, TransactionID: incoming.TransactionID})
		}
		return incoming, nil
	}

	finalized := existing.DateClose.IsZero() && !incoming.DateClose.IsZero()
	paymentChanged := !existing.PaidSum().Equal(incoming.PaidSum()) || !existing.PaidBonus().Equal(incoming.PaidBonus())

	incoming.ID = existing.ID
	incoming.Discount = existing.Discount // engine-owned, never overwritten by the sync layer
	incoming.CreatedAt = existing.CreatedAt
	if _, err := svc.DB.NewUpdate().Model(incoming).WherePK().Exec(ctx); err != nil {
		return nil, err
	}

	if finalized {
		svc.Dispatcher.Publish(ctx, TransactionEvent{Kind: EventTransactionFinalized, TransactionID: incoming.TransactionID})
	}
	if paymentChanged {
		svc.Dispatcher.Publish(ctx, TransactionEvent{Kind: EventPaymentChanged, TransactionID: incoming.TransactionID})
	}
	return incoming, nil
}

// ReplaceTransactionProducts swaps the full line-item set of a transaction
// and publishes transaction.items_changed, covering inserts, updates and
// deletes in one sync call.
func (svc *AvocadoService) ReplaceTransactionProducts(ctx context.Context, transactionID int64, products []models.TransactionProduct) error {
	if _, err := svc.FindTransaction(ctx, transactionID); err != nil {
		return err
	}

	err := svc.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.TransactionProduct)(nil)).Where("transaction_id = ?", transactionID).Exec(ctx); err != nil {
			return err
		}
		for i := range products {
			products[i].ID = 0
			products[i].TransactionID = transactionID
			if _, err := tx.NewInsert().Model(&products[i]).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	svc.Dispatcher.Publish(ctx, TransactionEvent{Kind: EventLineItemsChanged, TransactionID: transactionID})
	return nil
}
