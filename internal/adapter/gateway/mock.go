package gateway

import (
	"context"

	"github.com/example/microstore-service/internal/domain"
)

// Mock — детерминированный шлюз для разработки и тестов: всегда
// одобряет платёж. Поведение эталонной конфигурации.
type Mock struct{}

func (Mock) Charge(ctx context.Context, o domain.Order) (domain.PaymentResult, error) {
	return domain.PaymentResult{
		Approved: true,
		Metadata: map[string]string{"status": "success"},
	}, nil
}

var _ domain.PaymentGateway = Mock{}
