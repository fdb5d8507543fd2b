package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionProduct : one product line within a transaction. Line sums are
// in major units; any change to the lines of a transaction re-triggers
// discount reconciliation for it.
type TransactionProduct struct {
	ID            int64           `json:"id" bun:",pk,autoincrement"`
	TransactionID int64           `json:"transaction_id" bun:",notnull"`
	ProductID     int64           `json:"product_id" bun:",nullzero"`
	Count         decimal.Decimal `json:"count" bun:"type:numeric(10,3),notnull,default:1"`
	Sum           decimal.Decimal `json:"sum" bun:"type:numeric(10,2),notnull"`
	CreatedAt     time.Time       `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
