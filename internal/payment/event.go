package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// EventKind is the closed set of internal webhook event types. Provider
// payloads are normalized into one of these before anything touches the
// state machine.
type EventKind string

const (
	EventSuccess EventKind = "success"
	EventFailure EventKind = "failure"
	EventPending EventKind = "pending"
	EventUnknown EventKind = "unknown"
)

// Event is a normalized provider notification.
type Event struct {
	Kind          EventKind
	OrderID       string
	TransactionID string
	AmountCents   int64
}

// VerifySignature checks the provider's HMAC-SHA512 hex signature over the
// raw payload using constant-time comparison. An empty signature never
// verifies.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// rawEvent tolerates both payload shapes the provider sends: a flat object
// and the envelope with the fields under "obj".
type rawEvent struct {
	Type string    `json:"type"`
	Obj  *rawInner `json:"obj"`
	rawInner
}

type rawInner struct {
	ID      json.Number `json:"id"`
	Success *bool       `json:"success"`
	Pending *bool       `json:"pending"`
	Amount  int64       `json:"amount_cents"`
	Order   struct {
		ID json.Number `json:"id"`
	} `json:"order"`
	OrderID json.Number `json:"order_id"`
}

// ParseEvent normalizes a raw webhook payload into an Event. Payloads the
// parser cannot classify come back as EventUnknown with whatever references
// could be extracted; the processor acknowledges those without acting.
func ParseEvent(payload []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, fmt.Errorf("malformed webhook payload: %w", err)
	}

	inner := raw.rawInner
	if raw.Obj != nil {
		inner = *raw.Obj
	}

	ev := Event{
		Kind:          EventUnknown,
		TransactionID: inner.ID.String(),
		AmountCents:   inner.Amount,
	}

	ev.OrderID = inner.Order.ID.String()
	if ev.OrderID == "" {
		ev.OrderID = inner.OrderID.String()
	}

	switch {
	case inner.Success == nil:
		// No outcome flag at all: not a transaction notification.
	case inner.Pending != nil && *inner.Pending:
		ev.Kind = EventPending
	case *inner.Success:
		ev.Kind = EventSuccess
	default:
		ev.Kind = EventFailure
	}

	return ev, nil
}
