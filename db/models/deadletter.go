package models

import (
	"time"
)

// EngineDeadLetter : durable record of an engine failure. The write path
// never fails because of an engine error; the failure lands here so
// reconciliation tooling can find and repair the drift.
type EngineDeadLetter struct {
	ID            int64     `json:"id" bun:",pk,autoincrement"`
	Engine        string    `json:"engine" bun:",notnull"`
	TransactionID int64     `json:"transaction_id" bun:",nullzero"`
	Error         string    `json:"error" bun:",notnull"`
	CreatedAt     time.Time `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
}
