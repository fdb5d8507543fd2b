package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionBonus : one atomic bonus ledger posting. Append-only; amounts
// and balance snapshots are in minor units (signed, negative for SPEND).
// BonusPercent and TransactionSum carry the earn context in major units and
// are only set on EARN entries. Rows without a transaction reference are
// manual adjustments (ADJUST/EXPIRE).
type TransactionBonus struct {
	ID             int64               `json:"id" bun:",pk,autoincrement"`
	ClientID       int64               `json:"client_id" bun:",notnull"`
	TransactionID  sql.NullInt64       `json:"transaction_id"`
	OperationType  string              `json:"operation_type" bun:",notnull"`
	Amount         int64               `json:"amount" bun:",notnull"`
	BalanceBefore  int64               `json:"balance_before" bun:",notnull"`
	BalanceAfter   int64               `json:"balance_after" bun:",notnull"`
	Description    string              `json:"description" bun:",nullzero"`
	BonusPercent   decimal.NullDecimal `json:"bonus_percent" bun:"type:numeric(5,2)"`
	TransactionSum decimal.NullDecimal `json:"transaction_sum" bun:"type:numeric(10,2)"`
	ProcessedAt    time.Time           `json:"processed_at" bun:",notnull"`
	CreatedAt      time.Time           `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
