package service

import (
	"context"

	"github.com/avocadohq/avocado.go/common"
	"github.com/avocadohq/avocado.go/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

type AvocadoService struct {
	Config       *Config
	DB           *bun.DB
	Logger       *lecho.Logger
	Dispatcher   *Dispatcher
	LedgerPubSub *Pubsub
}

// RegisterEngineHandlers wires the bonus and discount engines into the event
// dispatcher. Engine errors never reach the publisher: they are recorded as
// dead letters by the dispatcher's error sink.
func (svc *AvocadoService) RegisterEngineHandlers() {
	svc.Dispatcher.OnError(svc.recordDeadLetter)

	svc.Dispatcher.Register(common.EngineBonus, EventTransactionFinalized, func(ctx context.Context, event TransactionEvent) error {
		return svc.ProcessTransactionBonus(ctx, event.TransactionID)
	})
	svc.Dispatcher.Register(common.EngineDiscount, EventLineItemsChanged, func(ctx context.Context, event TransactionEvent) error {
		return svc.ReconcileTransactionDiscount(ctx, event.TransactionID)
	})
	svc.Dispatcher.Register(common.EngineDiscount, EventPaymentChanged, func(ctx context.Context, event TransactionEvent) error {
		return svc.ReconcileTransactionDiscount(ctx, event.TransactionID)
	})
}

func (svc *AvocadoService) recordDeadLetter(ctx context.Context, engine string, event TransactionEvent, engineErr error) {
	svc.Logger.Errorf("Engine failure engine:%s transaction_id:%d error:%v", engine, event.TransactionID, engineErr)
	sentry.CaptureException(engineErr)

	deadLetter := models.EngineDeadLetter{
		Engine:        engine,
		TransactionID: event.TransactionID,
		Error:         engineErr.Error(),
	}
	if _, err := svc.DB.NewInsert().Model(&deadLetter).Exec(ctx); err != nil {
		// nothing durable left to do, the diagnostic log line above remains
		svc.Logger.Errorf("Failed to record dead letter for transaction_id:%d error: %v", event.TransactionID, err)
	}
}
