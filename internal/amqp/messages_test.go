package amqp

import "testing"

func TestLedgerEventJSON(t *testing.T) {
	e := NewLedgerEvent(EventExpenseRecorded, 3, 17, 250)
	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("LedgerEventFromJSON failed: %v", err)
	}
	if got.Kind != EventExpenseRecorded || got.ShopID != 3 || got.EntryID != 17 || got.Amount != 250 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestLedgerEventFromJSONInvalid(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
