package usecase

import (
	"context"
	"strings"

	"github.com/example/microstore-service/internal/domain"
)

const productCollection = "product"

// CatalogService — жизненный цикл магазинов и товаров.
type CatalogService struct {
	Store   domain.DocumentStore
	Sellers SellerRegistry
	Slugs   SlugRegistry
}

// CreateStore проверяет владельца и уникальность slug, выводит
// эффективный whatsapp_number: явное значение, иначе whatsapp владельца,
// иначе его телефон.
func (c CatalogService) CreateStore(ctx context.Context, st domain.Store) (string, error) {
	if strings.TrimSpace(st.Name) == "" {
		return "", domain.Validation("store name is required")
	}
	st.Slug = NormalizeSlug(st.Slug)
	if !slugPattern.MatchString(st.Slug) {
		return "", domain.Validation("slug must contain only letters, digits and dashes")
	}
	owner, err := c.Sellers.Get(ctx, st.OwnerID)
	if err != nil {
		return "", err
	}
	if err := c.Slugs.EnsureUnique(ctx, st.Slug); err != nil {
		return "", err
	}
	if st.WhatsAppNumber == "" {
		st.WhatsAppNumber = owner.WhatsAppNumber
	}
	if st.WhatsAppNumber == "" {
		st.WhatsAppNumber = owner.Phone
	}
	st.ID = ""
	doc, err := domain.ToDocument(st)
	if err != nil {
		return "", err
	}
	return c.Store.Create(ctx, storeCollection, doc)
}

func (c CatalogService) GetStore(ctx context.Context, slug string) (domain.Store, error) {
	return c.Slugs.Resolve(ctx, slug)
}

func (c CatalogService) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	if strings.TrimSpace(p.Name) == "" {
		return "", domain.Validation("product name is required")
	}
	if p.Price < 0 {
		return "", domain.Validation("price must be non-negative")
	}
	p.StoreSlug = NormalizeSlug(p.StoreSlug)
	if _, err := c.Slugs.Resolve(ctx, p.StoreSlug); err != nil {
		return "", err
	}
	p.IsActive = true
	p.ID = ""
	doc, err := domain.ToDocument(p)
	if err != nil {
		return "", err
	}
	return c.Store.Create(ctx, productCollection, doc)
}

// ListProducts возвращает только активные товары в порядке вставки.
// Существование магазина не проверяется: для неизвестного slug —
// пустой список, не ошибка.
func (c CatalogService) ListProducts(ctx context.Context, storeSlug string) ([]domain.Product, error) {
	docs, err := c.Store.FindMany(ctx, productCollection, domain.Filter{
		"store_slug": NormalizeSlug(storeSlug),
		"is_active":  true,
	})
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		var p domain.Product
		if err := domain.FromDocument(doc, &p); err != nil {
			// пропускаем битые записи, не прерывая выдачу
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (c CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	doc, found, err := c.Store.FindOne(ctx, productCollection, domain.Filter{"id": id})
	if err != nil {
		return domain.Product{}, err
	}
	if !found {
		return domain.Product{}, domain.ErrProductNotFound
	}
	var p domain.Product
	if err := domain.FromDocument(doc, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// SetProductActive переключает видимость товара в каталоге.
func (c CatalogService) SetProductActive(ctx context.Context, id string, active bool) error {
	found, err := c.Store.UpdateOne(ctx, productCollection, id, domain.Document{"is_active": active})
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrProductNotFound
	}
	return nil
}
