package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avocadohq/avocado.go/db/models"
)

func (svc *AvocadoService) UpsertProduct(ctx context.Context, incoming *models.Product) (*models.Product, error) {
	var existing models.Product
	err := svc.DB.NewSelect().Model(&existing).Where("product_id = ?", incoming.ProductID).Limit(1).Scan(ctx)
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
	incoming.CreatedAt = existing.CreatedAt
	if _, err := svc.DB.NewUpdate().Model(incoming).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return incoming, nil
}

func (svc *AvocadoService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := svc.DB.NewSelect().Model(&products).OrderExpr("name ASC").Scan(ctx)
	return products, err
}

func (svc *AvocadoService) UpsertSpot(ctx context.Context, incoming *models.Spot) (*models.Spot, error) {
	var existing models.Spot
	err := svc.DB.NewSelect().Model(&existing).Where("spot_id = ?", incoming.SpotID).Limit(1).Scan(ctx)
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
	incoming.CreatedAt = existing.CreatedAt
	if _, err := svc.DB.NewUpdate().Model(incoming).WherePK().Exec(ctx); err != nil {
		return nil, err
	}
	return incoming, nil
}

func (svc *AvocadoService) ListSpots(ctx context.Context) ([]models.Spot, error) {
	spots := []models.Spot{}
	err := svc.DB.NewSelect().Model(&spots).OrderExpr("spot_id ASC").Scan(ctx)
	return spots, err
}
