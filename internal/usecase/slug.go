package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/example/microstore-service/internal/domain"
)

const storeCollection = "store"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// NormalizeSlug приводит slug к каноническому виду.
// Нормализация выполняется ровно один раз — на пути записи;
// хранилище содержит только канонические slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// SlugRegistry — глобальная уникальность slug и разрешение slug -> Store.
type SlugRegistry struct {
	Store domain.DocumentStore
}

// EnsureUnique — быстрая проверка перед записью. Гонку двух
// одновременных вставок закрывает уникальный индекс хранилища.
func (r SlugRegistry) EnsureUnique(ctx context.Context, slug string) error {
	_, found, err := r.Store.FindOne(ctx, storeCollection, domain.Filter{"slug": NormalizeSlug(slug)})
	if err != nil {
		return err
	}
	if found {
		return domain.ErrDuplicateSlug
	}
	return nil
}

func (r SlugRegistry) Resolve(ctx context.Context, slug string) (domain.Store, error) {
	doc, found, err := r.Store.FindOne(ctx, storeCollection, domain.Filter{"slug": NormalizeSlug(slug)})
	if err != nil {
		return domain.Store{}, err
	}
	if !found {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	var st domain.Store
	if err := domain.FromDocument(doc, &st); err != nil {
		return domain.Store{}, err
	}
	return st, nil
}
