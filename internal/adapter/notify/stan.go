package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	stan "github.com/nats-io/stan.go"
	log "github.com/sirupsen/logrus"

	"github.com/example/microstore-service/internal/domain"
)

// Stan — публикация событий заказов в NATS Streaming.
type Stan struct {
	Conn    stan.Conn
	Subject string
}

// DialStan подключается к кластеру NATS Streaming.
func DialStan(clusterID, clientID, url string) (stan.Conn, error) {
	if clientID == "" {
		clientID = fmt.Sprintf("microstore-%d", time.Now().UnixNano())
	}
	return stan.Connect(clusterID, clientID, stan.NatsURL(url))
}

func (s Stan) Notify(ctx context.Context, ev domain.OrderEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Conn.Publish(s.Subject, b)
}

// Subscribe — долговременная подписка на события заказов с ручным ack;
// обработчик с ошибкой не подтверждает сообщение, оно переотправится.
func Subscribe(ctx context.Context, sc stan.Conn, subject, durable string, handler func(ctx context.Context, ev domain.OrderEvent) error) (stan.Subscription, error) {
	return sc.QueueSubscribe(subject, "microstore-workers", func(m *stan.Msg) {
		var ev domain.OrderEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			log.WithError(err).Warn("invalid notification message")
			_ = m.Ack()
			return
		}
		hCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := handler(hCtx, ev); err != nil {
			log.WithError(err).Warn("notification handler failed")
			return
		}
		if err := m.Ack(); err != nil {
			log.WithError(err).Warn("ack failed")
		}
	}, stan.DurableName(durable), stan.SetManualAckMode(), stan.AckWait(10*time.Second), stan.DeliverAllAvailable())
}

var _ domain.NotificationSink = Stan{}
