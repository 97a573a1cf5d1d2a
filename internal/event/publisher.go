// Package event publishes storefront domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vxsahu/urban-threadz/internal/domain"
	pkgkafka "github.com/vxsahu/urban-threadz/pkg/kafka"
	"github.com/vxsahu/urban-threadz/pkg/logger"
)

// Kafka topics for cart events.
const (
	TopicCartUpdated = "storefront.cart.updated"
	TopicCartCleared = "storefront.cart.cleared"
)

// Event types carried in the envelope.
const (
	TypeCartUpdated = "cart.updated"
	TypeCartCleared = "cart.cleared"
)

// Source identifies events emitted by this service.
const Source = "storefront"

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Lines     []CartLineData `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     int64          `json:"total"`
}

// CartLineData is one cart line inside CartUpdatedData.
type CartLineData struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// CartClearedData is the payload of a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// Publisher emits cart events after successful mutations.
type Publisher interface {
	CartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) error
	CartCleared(ctx context.Context, sessionID string) error
}

// Sender writes an envelope to a topic. *pkgkafka.Producer implements it.
type Sender interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// KafkaPublisher publishes cart events through a Sender.
type KafkaPublisher struct {
	sender Sender
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher writing through sender.
func NewKafkaPublisher(sender Sender, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{sender: sender, logger: logger}
}

// CartUpdated publishes the full cart contents for sessionID.
func (p *KafkaPublisher) CartUpdated(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		Lines:     make([]CartLineData, 0, len(lines)),
		ItemCount: domain.CartItemCount(lines),
		Total:     domain.CartTotal(lines),
	}
	for _, l := range lines {
		data.Lines = append(data.Lines, CartLineData{
			ProductID: l.ID,
			Name:      l.Name,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice(),
		})
	}

	if err := p.publish(ctx, TopicCartUpdated, TypeCartUpdated, sessionID, data); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// CartCleared publishes that sessionID emptied its cart.
func (p *KafkaPublisher) CartCleared(ctx context.Context, sessionID string) error {
	if err := p.publish(ctx, TopicCartCleared, TypeCartCleared, sessionID, CartClearedData{SessionID: sessionID}); err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "published cart.cleared event", slog.String("session_id", sessionID))
	return nil
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, eventType, sessionID string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, sessionID, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)

	if err := p.sender.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

// Noop discards every event. It is used when Kafka is disabled.
type Noop struct{}

func (Noop) CartUpdated(context.Context, string, []domain.CartLine) error { return nil }
func (Noop) CartCleared(context.Context, string) error                   { return nil }
