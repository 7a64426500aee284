package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/example/microstore-service/internal/domain"
)

const orderCollection = "order"

// OrderService — оформление заказа: итог, персистентность, платёж,
// уведомление.
type OrderService struct {
	Store   domain.DocumentStore
	Gateway domain.PaymentGateway
	Sink    domain.NotificationSink
	// Catalog включает строгий режим: slug магазина обязан разрешаться,
	// а каждая позиция сверяется с живым товаром. Без него снимок
	// позиций принимается на веру, как в исходной системе.
	Catalog *CatalogService
}

// Round2 округляет до 2 знаков, половина — от нуля.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Checkout проводит заказ: pending -> {paid, failed}.
// Итог считается как round2 от суммы, не от каждой строки.
func (s OrderService) Checkout(ctx context.Context, storeSlug string, items []domain.OrderItem, customer domain.CustomerInfo) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, domain.Validation("order must contain at least one item")
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return domain.Order{}, domain.Validation("customer phone is required")
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return domain.Order{}, domain.Validation("item quantity must be at least 1")
		}
		if it.Price < 0 {
			return domain.Order{}, domain.Validation("item price must be non-negative")
		}
	}
	slug := NormalizeSlug(storeSlug)

	if s.Catalog != nil {
		if _, err := s.Catalog.GetStore(ctx, slug); err != nil {
			return domain.Order{}, err
		}
		if err := s.verifyItems(ctx, slug, items); err != nil {
			return domain.Order{}, err
		}
	}

	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	order := domain.Order{
		StoreSlug: slug,
		Items:     items,
		Total:     Round2(total),
		Customer:  customer,
		Status:    domain.OrderPending,
		Mpesa:     map[string]string{},
	}
	doc, err := domain.ToDocument(order)
	if err != nil {
		return domain.Order{}, err
	}
	id, err := s.Store.Create(ctx, orderCollection, doc)
	if err != nil {
		return domain.Order{}, err
	}
	order.ID = id

	res, err := s.Gateway.Charge(ctx, order)
	if err != nil {
		// исход платежа неизвестен — заказ остаётся pending
		return order, domain.GatewayFailure(err)
	}
	status := domain.OrderPaid
	if !res.Approved {
		status = domain.OrderFailed
	}
	meta := res.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	if _, err := s.Store.UpdateOne(ctx, orderCollection, id, domain.Document{
		"status": status,
		"mpesa":  meta,
	}); err != nil {
		return order, err
	}
	order.Status = status
	order.Mpesa = meta

	if order.Status == domain.OrderPaid && s.Sink != nil {
		ev := domain.OrderEvent{
			StoreSlug:     slug,
			OrderID:       id,
			ItemCount:     len(items),
			Total:         order.Total,
			CustomerPhone: customer.Phone,
		}
		if err := s.Sink.Notify(ctx, ev); err != nil {
			log.WithError(err).WithField("order_id", id).Warn("notification delivery failed")
		}
	}
	return order, nil
}

// verifyItems сверяет снимок позиций с живым каталогом: товар существует,
// принадлежит магазину, активен, цена совпадает.
func (s OrderService) verifyItems(ctx context.Context, slug string, items []domain.OrderItem) error {
	for _, it := range items {
		p, err := s.Catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.Validation(fmt.Sprintf("unknown product %q", it.ProductID))
			}
			return err
		}
		if p.StoreSlug != slug {
			return domain.Validation(fmt.Sprintf("product %q does not belong to store %q", it.ProductID, slug))
		}
		if !p.IsActive {
			return domain.Validation(fmt.Sprintf("product %q is not available", it.ProductID))
		}
		if p.Price != it.Price {
			return domain.Validation(fmt.Sprintf("price for product %q has changed", it.ProductID))
		}
	}
	return nil
}

// GetOrder — поиск заказа по идентификатору.
func (s OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	doc, found, err := s.Store.FindOne(ctx, orderCollection, domain.Filter{"id": id})
	if err != nil {
		return domain.Order{}, err
	}
	if !found {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	var o domain.Order
	if err := domain.FromDocument(doc, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
