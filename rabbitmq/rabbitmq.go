package rabbitmq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/avocadohq/avocado.go/db/models"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool is a classic buffer pool pattern that allows more clever reuse of heap memory.
// Instead of allocating new memory everytime we need to encode a ledger entry
// we reuse buffers from this buffer pool. If we consume events sequentially
// there will only be one buffer in this pool at all times, but when scaling to
// multiple go routines this memory pool will scale with it.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const (
	contentTypeJSON = "application/json"
)

type (
	// SubscribeToLedgerFunc returns channels of earn and spend postings as
	// the engine settles them.
	SubscribeToLedgerFunc = func() (earned chan models.TransactionBonus, spent chan models.TransactionBonus, err error)
	EncodeLedgerEntryFunc = func(ctx context.Context, w io.Writer, entry models.TransactionBonus) error
)

type Client interface {
	StartPublishLedgerEntries(context.Context, SubscribeToLedgerFunc, EncodeLedgerEntryFunc) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	conn *amqp.Connection

	// Publishing gets its own channel so it stays isolated from any future
	// consumers and the flow control measures applied to them.
	publishChannel *amqp.Channel

	logger *lecho.Logger

	ledgerExchange string
}

type ClientOption = func(client *DefaultClient)

func WithLedgerExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.ledgerExchange = exchange
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// Dial sets up a connection to rabbitmq with a channel ready to publish
func Dial(uri string, options ...ClientOption) (Client, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}

	publishChannel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	client := &DefaultClient{
		conn: conn,

		publishChannel: publishChannel,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		ledgerExchange: "avocado_ledger",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.conn.Close() }

// StartPublishLedgerEntries pushes every settled bonus posting to the ledger
// exchange so downstream consumers (the notification bot, reporting) see
// balance changes without polling. Runs until the context is cancelled.
func (client *DefaultClient) StartPublishLedgerEntries(ctx context.Context, ledgerSubscribeFunc SubscribeToLedgerFunc, payloadFunc EncodeLedgerEntryFunc) error {
	err := client.publishChannel.ExchangeDeclare(
		client.ledgerExchange,
		// topic exchanges route to queues based on a routing key
		"topic",
		// Durable and Non-Auto-Deleted exchanges will survive server restarts
		// and remain declared when there are no remaining bindings.
		true,
		false,
		// Non-Internal exchange's accept direct publishing
		false,
		// Nowait: we wait for a server response to check whether the
		// exchange was created succesfully
		false,
		nil,
	)
	if err != nil {
		return err
	}

	client.logger.Info("Starting rabbitmq ledger publisher")

	earned, spent, err := ledgerSubscribeFunc()
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case entry := <-earned:
			if err = client.publishToLedgerExchange(ctx, entry, payloadFunc); err != nil {
				captureErr(client.logger, err)
			}
		case entry := <-spent:
			if err = client.publishToLedgerExchange(ctx, entry, payloadFunc); err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) publishToLedgerExchange(ctx context.Context, entry models.TransactionBonus, payloadFunc EncodeLedgerEntryFunc) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := payloadFunc(ctx, payload, entry)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("bonus.%s", strings.ToLower(entry.OperationType))

	err = client.publishChannel.PublishWithContext(ctx,
		client.ledgerExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		captureErr(client.logger, err)
		return err
	}

	client.logger.Debugf("Successfully published ledger entry to rabbitmq client_id:%d amount:%d", entry.ClientID, entry.Amount)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
