package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	AccountRegistered    = "account.registered"
	ProductCreated       = "product.created"
	ProductUpdated       = "product.updated"
	ProductDeleted       = "product.deleted"
	PaymentCreated       = "payment.created"
	PaymentStatusChanged = "payment.status_changed"
	PaymentDeleted       = "payment.deleted"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type AccountRegisteredEvent struct {
	AccountID    string    `json:"account_id"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type ProductEvent struct {
	ProductID string    `json:"product_id"`
	SellerID  string    `json:"seller_id"`
	Category  string    `json:"category,omitempty"`
	Status    string    `json:"status,omitempty"`
	At        time.Time `json:"at"`
}

type PaymentEvent struct {
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method,omitempty"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// NATSPublisher sends JSON encoded events on <prefix>.<subject>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	log    zerolog.Logger
}

func NewNATSPublisher(url, prefix string, log zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("marketplace-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, prefix: prefix, log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	full := subject
	if p.prefix != "" {
		full = p.prefix + "." + subject
	}

	p.log.Debug().Str("subject", full).RawJSON("data", payload).Msg("publishing event")
	return p.conn.Publish(full, payload)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
