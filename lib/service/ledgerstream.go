package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
)

// SubscribeEarnSpendEntries hands the RabbitMQ publisher channels for both
// posting directions.
func (svc *AvocadoService) SubscribeEarnSpendEntries() (earned chan models.TransactionBonus, spent chan models.TransactionBonus, err error) {
	earned = make(chan models.TransactionBonus)
	spent = make(chan models.TransactionBonus)
	svc.LedgerPubSub.Subscribe(common.OperationTypeEarn, earned)
	svc.LedgerPubSub.Subscribe(common.OperationTypeSpend, spent)
	return earned, spent, nil
}

func (svc *AvocadoService) EncodeLedgerEntry(ctx context.Context, w io.Writer, entry models.TransactionBonus) error {
	return json.NewEncoder(w).Encode(entry)
}
