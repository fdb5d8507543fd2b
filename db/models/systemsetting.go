package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// SystemSetting : key/value configuration read by the engines on every
// invocation. Values are stored as text; callers do their own coercion.
type SystemSetting struct {
	ID          int64        `json:"id" bun:",pk,autoincrement"`
	Key         string       `json:"key" bun:",unique,notnull"`
	Value       string       `json:"value" bun:",nullzero"`
	Description string       `json:"description" bun:",nullzero"`
	CreatedAt   time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt   bun.NullTime `json:"updated_at"`
}

func (s *SystemSetting) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		s.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*SystemSetting)(nil)
