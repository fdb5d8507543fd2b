package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- every ledger row must be a consistent balance step
				alter table transaction_bonus
				ADD CONSTRAINT check_balance_step
				CHECK (balance_after = balance_before + amount);

			-- only the declared operation kinds are allowed
				alter table transaction_bonus
				ADD CONSTRAINT check_operation_type
				CHECK (operation_type IN ('EARN', 'SPEND', 'ADJUST', 'EXPIRE'));
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
