package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Spot : a physical store location.
type Spot struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	SpotID    int64        `json:"spot_id" bun:",unique,notnull"`
	Name      string       `json:"name" bun:",notnull"`
	Address   string       `json:"address" bun:",nullzero"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}
