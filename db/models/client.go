package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Client : POS client enrolled in the bonus program.
// The Bonus field is the running balance in minor units and is owned
// exclusively by the bonus posting engine.
type Client struct {
	ID              int64               `json:"id" bun:",pk,autoincrement"`
	ClientID        int64               `json:"client_id" bun:",unique,notnull"`
	Firstname       string              `json:"firstname" bun:",nullzero"`
	Lastname        string              `json:"lastname" bun:",nullzero"`
	Phone           string              `json:"phone" bun:",nullzero"`
	DiscountPercent decimal.NullDecimal `json:"discount_percent" bun:"discount_percent,type:numeric(5,2)"`
	Bonus           int64               `json:"bonus" bun:",notnull,default:0"`
	CreatedAt       time.Time           `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt       bun.NullTime        `json:"updated_at"`
}

func (c *Client) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		c.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Client)(nil)
