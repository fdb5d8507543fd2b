package models

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Transaction : a sale synced from the POS. The Discount field is owned by
// the discount reconciliation engine; everything else is written by the sync
// layer. ClientID and DateClose are nullable: unlinked and still-open sales
// exist.
type Transaction struct {
	ID            int64               `json:"id" bun:",pk,autoincrement"`
	TransactionID int64               `json:"transaction_id" bun:",unique,notnull"`
	SpotID        int64               `json:"spot_id" bun:",nullzero"`
	ClientID      sql.NullInt64       `json:"client_id"`
	DateStart     bun.NullTime        `json:"date_start"`
	DateClose     bun.NullTime        `json:"date_close"`
	Sum           decimal.Decimal     `json:"sum" bun:"type:numeric(10,2),notnull"`
	PayedSum      decimal.NullDecimal `json:"payed_sum" bun:"type:numeric(10,2)"`
	PayedCash     decimal.NullDecimal `json:"payed_cash" bun:"type:numeric(10,2)"`
	PayedCard     decimal.NullDecimal `json:"payed_card" bun:"type:numeric(10,2)"`
	PayedBonus    decimal.NullDecimal `json:"payed_bonus" bun:"type:numeric(10,2)"`
	RoundSum      decimal.NullDecimal `json:"round_sum" bun:"type:numeric(10,2)"`
	Bonus         decimal.Decimal     `json:"bonus" bun:"type:numeric(5,2),notnull,default:0"`
	Discount      decimal.Decimal     `json:"discount" bun:"type:numeric(10,2),notnull,default:0"`
	Status        int                 `json:"status" bun:",nullzero"`
	CreatedAt     time.Time           `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     bun.NullTime        `json:"updated_at"`
}

func (t *Transaction) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		t.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

// PaidSum returns payed_sum with NULL treated as zero.
func (t *Transaction) PaidSum() decimal.Decimal {
	if !t.PayedSum.Valid {
		return decimal.Zero
	}
	return t.PayedSum.Decimal
}

// PaidBonus returns payed_bonus with NULL treated as zero.
func (t *Transaction) PaidBonus() decimal.Decimal {
	if !t.PayedBonus.Valid {
		return decimal.Zero
	}
	return t.PayedBonus.Decimal
}

var _ bun.BeforeAppendModelHook = (*Transaction)(nil)
