package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/example/microstore-service/internal/domain"
)

// HTTP — адаптер внешнего платёжного шлюза: POST запроса на списание
// на настроенный URL. Не реализует протокол Daraja — только точку
// расширения. Таймаут обязателен: его истечение — сбой шлюза,
// не отказ в платеже.
type HTTP struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

type chargeRequest struct {
	OrderID   string  `json:"order_id"`
	StoreSlug string  `json:"store_slug"`
	Amount    float64 `json:"amount"`
	Phone     string  `json:"phone"`
}

type chargeResponse struct {
	Metadata map[string]string `json:"metadata"`
}

func (g HTTP) Charge(ctx context.Context, o domain.Order) (domain.PaymentResult, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(chargeRequest{
		OrderID:   o.ID,
		StoreSlug: o.StoreSlug,
		Amount:    o.Total,
		Phone:     o.Customer.Phone,
	})
	if err != nil {
		return domain.PaymentResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL, bytes.NewReader(body))
	if err != nil {
		return domain.PaymentResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return domain.PaymentResult{}, errors.Wrap(err, "charge request")
	}
	defer resp.Body.Close()

	var cr chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		cr.Metadata = map[string]string{}
	}
	if cr.Metadata == nil {
		cr.Metadata = map[string]string{}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// явный отказ шлюза, не транспортный сбой
		if _, ok := cr.Metadata["status"]; !ok {
			cr.Metadata["status"] = "declined"
		}
		return domain.PaymentResult{Approved: false, Metadata: cr.Metadata}, nil
	}
	if _, ok := cr.Metadata["status"]; !ok {
		cr.Metadata["status"] = "success"
	}
	return domain.PaymentResult{Approved: true, Metadata: cr.Metadata}, nil
}

var _ domain.PaymentGateway = HTTP{}
