package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Product : catalog item synced from the POS.
type Product struct {
	ID        int64           `json:"id" bun:",pk,autoincrement"`
	ProductID int64           `json:"product_id" bun:",unique,notnull"`
	Name      string          `json:"name" bun:",notnull"`
	Category  string          `json:"category" bun:",nullzero"`
	Price     decimal.Decimal `json:"price" bun:"type:numeric(10,2),notnull,default:0"`
	CreatedAt time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime    `json:"updated_at"`
}

func (p *Product) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		p.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Product)(nil)
