package usecase

import (
	"context"
	"net/mail"
	"strings"

	"github.com/example/microstore-service/internal/domain"
)

const sellerCollection = "seller"

// SellerRegistry — регистрация и поиск продавцов.
// Уникальность телефона/почты не требуется.
type SellerRegistry struct {
	Store domain.DocumentStore
}

func (r SellerRegistry) Register(ctx context.Context, s domain.Seller) (string, error) {
	if strings.TrimSpace(s.Name) == "" {
		return "", domain.Validation("seller name is required")
	}
	if strings.TrimSpace(s.Phone) == "" {
		return "", domain.Validation("seller phone is required")
	}
	if s.Email != "" {
		if _, err := mail.ParseAddress(s.Email); err != nil {
			return "", domain.Validation("invalid email address")
		}
	}
	s.ID = ""
	doc, err := domain.ToDocument(s)
	if err != nil {
		return "", err
	}
	return r.Store.Create(ctx, sellerCollection, doc)
}

func (r SellerRegistry) Get(ctx context.Context, id string) (domain.Seller, error) {
	doc, found, err := r.Store.FindOne(ctx, sellerCollection, domain.Filter{"id": id})
	if err != nil {
		return domain.Seller{}, err
	}
	if !found {
		return domain.Seller{}, domain.ErrSellerNotFound
	}
	var s domain.Seller
	if err := domain.FromDocument(doc, &s); err != nil {
		return domain.Seller{}, err
	}
	return s, nil
}
