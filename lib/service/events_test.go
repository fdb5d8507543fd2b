package service

import (
	"context"
	"errors"
	"testing"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/stretchr/testify/assert"
)

func TestDispatcherRoutesByKind(t *testing.T) {
	dispatcher := NewDispatcher()

	var finalized, changed []int64
	dispatcher.Register("bonus", EventTransactionFinalized, func(ctx context.Context, event TransactionEvent) error {
		finalized = append(finalized, event.TransactionID)
		return nil
	})
	dispatcher.Register("discount", EventLineItemsChanged, func(ctx context.Context, event TransactionEvent) error {
		changed = append(changed, event.TransactionID)
		return nil
	})

	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventTransactionFinalized, TransactionID: 1})
	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventLineItemsChanged, TransactionID: 2})
	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventPaymentChanged, TransactionID: 3})

	assert.Equal(t, []int64{1}, finalized)
	assert.Equal(t, []int64{2}, changed)
}

func TestDispatcherPauseByEngine(t *testing.T) {
	dispatcher := NewDispatcher()

	calls := 0
	dispatcher.Register("bonus", EventTransactionFinalized, func(ctx context.Context, event TransactionEvent) error {
		calls++
		return nil
	})

	assert.True(t, dispatcher.Enabled("bonus"))

	dispatcher.SetEnabled("bonus", false)
	assert.False(t, dispatcher.Enabled("bonus"))
	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventTransactionFinalized, TransactionID: 1})
	assert.Zero(t, calls)

	dispatcher.SetEnabled("bonus", true)
	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventTransactionFinalized, TransactionID: 1})
	assert.Equal(t, 1, calls)
}

func TestDispatcherFailOpen(t *testing.T) {
	dispatcher := NewDispatcher()

	boom := errors.New("boom")
	dispatcher.Register("bonus", EventTransactionFinalized, func(ctx context.Context, event TransactionEvent) error {
		return boom
	})

	reached := false
	dispatcher.Register("discount", EventTransactionFinalized, func(ctx context.Context, event TransactionEvent) error {
		reached = true
		return nil
	})

	var sunkEngine string
	var sunkErr error
	dispatcher.OnError(func(ctx context.Context, engine string, event TransactionEvent, err error) {
		sunkEngine = engine
		sunkErr = err
	})

	// Publish never surfaces handler errors; the failing handler does not
	// stop the next one.
	dispatcher.Publish(context.Background(), TransactionEvent{Kind: EventTransactionFinalized, TransactionID: 9})

	assert.True(t, reached)
	assert.Equal(t, "bonus", sunkEngine)
	assert.Equal(t, boom, sunkErr)
}

func TestPubsubFansOutByTopic(t *testing.T) {
	ps := NewPubsub()

	earned := make(chan models.TransactionBonus, 1)
	spent := make(chan models.TransactionBonus, 1)
	ps.Subscribe(common.OperationTypeEarn, earned)
	subID := ps.Subscribe(common.OperationTypeSpend, spent)

	ps.Publish(common.OperationTypeEarn, models.TransactionBonus{ClientID: 7, Amount: 500})

	entry := <-earned
	assert.Equal(t, int64(7), entry.ClientID)
	assert.Equal(t, int64(500), entry.Amount)
	assert.Empty(t, spent)

	// publishing to a topic with no subscribers is a no-op
	ps.Unsubscribe(subID, common.OperationTypeSpend)
	ps.Publish(common.OperationTypeSpend, models.TransactionBonus{ClientID: 7, Amount: -100})
}
