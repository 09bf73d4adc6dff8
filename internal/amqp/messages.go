package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on ledger mutations.
const (
	EventShopCreated     = "shop.created"
	EventShopDeleted     = "shop.deleted"
	EventExpenseRecorded = "expense.recorded"
	EventPaymentRecorded = "payment.recorded"
)

// LedgerEvent is a lightweight notification of a ledger mutation.
// Consumers that need more than the ids fetch the rows themselves.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	ShopID    int64     `json:"shop_id"`
	EntryID   int64     `json:"entry_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind string, shopID, entryID, amount int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		ShopID:    shopID,
		EntryID:   entryID,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
