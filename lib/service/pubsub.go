package service

import (
	"sync"

	"github.com/avocadohq/avocado.go/db/models"
	"github.com/labstack/gommon/random"
)

// Pubsub fans settled ledger entries out to background consumers (the
// RabbitMQ publisher). Topics are ledger operation types.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan models.TransactionBonus
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan models.TransactionBonus)
	return ps
}

func (ps *Pubsub) Subscribe(topic string, ch chan models.TransactionBonus) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		ps.subs[topic] = make(map[string]chan models.TransactionBonus)
	}
	subId = random.String(16, random.Alphanumeric)
	ps.subs[topic][subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string, topic string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		return
	}
	if ps.subs[topic][id] == nil {
		return
	}
	close(ps.subs[topic][id])
	delete(ps.subs[topic], id)
}

func (ps *Pubsub) Publish(topic string, msg models.TransactionBonus) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.subs[topic] == nil {
		return
	}

	for _, ch := range ps.subs[topic] {
		ch <- msg
	}
}
