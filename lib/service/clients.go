package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avocadohq/avocado.go/db/models"
)

func (svc *AvocadoService) FindClient(ctx context.Context, clientID int64) (*models.Client, error) {
	var client models.Client
	err := svc.DB.NewSelect().Model(&client).Where("client_id = ?", clientID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// UpsertClient syncs a client record from the POS. The bonus balance is
// engine-owned and never touched here.
func (svc *AvocadoService) UpsertClient(ctx context.Context, incoming *models.Client) (*models.Client, error) {
	var existing models.Client
	err := svc.DB.NewSelect().Model(&existing).Where("client_id = ?", incoming.ClientID).Limit(1).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if errors.Is(err, sql.ErrNoRows) {
		if _, err := svc.DB.NewInsert().Model(incoming).Exec(ctx); err != nil {
			return nil, err
		}
		return incoming, nil
	}

	incoming.ID = existing.ID
	incoming.Bonus = existing.Bonus
	incoming.CreatedAt = existing.CreatedAt
	if _, err := svc.DB.NewUpdate().Model(incoming).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return incoming, nil
}

// ClientBonusBalance returns the current balance in minor units.
func (svc *AvocadoService) ClientBonusBalance(ctx context.Context, clientID int64) (int64, error) {
	client, err := svc.FindClient(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return client.Bonus, nil
}

// ClientLedgerBalance recomputes the balance from the ledger. Useful for
// drift checks against the clients.bonus field.
func (svc *AvocadoService) ClientLedgerBalance(ctx context.Context, clientID int64) (int64, error) {
	var balance sql.NullInt64
	err := svc.DB.NewSelect().Model((*models.TransactionBonus)(nil)).
		ColumnExpr("SUM(amount)").
		Where("client_id = ?", clientID).
		Scan(ctx, &balance)
	return balance.Int64, err
}

// BonusHistoryFor lists a client's ledger entries, newest first.
func (svc *AvocadoService) BonusHistoryFor(ctx context.Context, clientID int64) ([]models.TransactionBonus, error) {
	entries := []models.TransactionBonus{}
	limit := svc.Config.BonusHistoryLimit
	if limit <= 0 {
		limit = 100
	}
	err := svc.DB.NewSelect().Model(&entries).
		Where("client_id = ?", clientID).
		OrderExpr("created_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	return entries, err
}
