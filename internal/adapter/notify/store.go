package notify

import (
	"context"
	"fmt"

	"github.com/example/microstore-service/internal/domain"
)

const notificationCollection = "notification"

// Store — сток уведомлений, пишущий человекочитаемый документ
// в коллекцию notification (мок доставки в WhatsApp).
type Store struct {
	Docs domain.DocumentStore
}

func (s Store) Notify(ctx context.Context, ev domain.OrderEvent) error {
	_, err := s.Docs.Create(ctx, notificationCollection, domain.Document{
		"type":       "whatsapp",
		"store_slug": ev.StoreSlug,
		"order_id":   ev.OrderID,
		"message": fmt.Sprintf("New order paid: %d items, KES %.2f from %s",
			ev.ItemCount, ev.Total, ev.CustomerPhone),
	})
	return err
}

// Fanout рассылает событие всем стокам; возвращает первую ошибку,
// но не прерывает остальные доставки.
type Fanout []domain.NotificationSink

func (f Fanout) Notify(ctx context.Context, ev domain.OrderEvent) error {
	var first error
	for _, sink := range f {
		if err := sink.Notify(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var (
	_ domain.NotificationSink = Store{}
	_ domain.NotificationSink = Fanout{}
)
