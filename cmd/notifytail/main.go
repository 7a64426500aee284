// notifytail tails paid-order events off NATS Streaming and prints them.
// Useful as a stand-in for a real WhatsApp/webhook delivery worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/example/microstore-service/internal/adapter/notify"
	"github.com/example/microstore-service/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clusterID := getenv("STAN_CLUSTER_ID", "microstore-cluster")
	clientID := getenv("STAN_TAIL_ID", "")
	natsURL := getenv("NATS_URL", "nats://localhost:4222")
	subject := getenv("STAN_SUBJECT", "order-events")

	sc, err := notify.DialStan(clusterID, clientID, natsURL)
	if err != nil {
		log.WithError(err).Fatal("stan connect")
	}
	defer sc.Close()

	sub, err := notify.Subscribe(ctx, sc, subject, "notifytail", func(_ context.Context, ev domain.OrderEvent) error {
		fmt.Printf("order %s paid: %d items, KES %.2f from %s (store %s)\n",
			ev.OrderID, ev.ItemCount, ev.Total, ev.CustomerPhone, ev.StoreSlug)
		return nil
	})
	if err != nil {
		log.WithError(err).Fatal("stan subscribe")
	}
	defer sub.Close()

	log.WithField("subject", subject).Info("tailing order events")
	<-ctx.Done()
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
