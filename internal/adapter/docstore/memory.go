package docstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/example/microstore-service/internal/domain"
)

type memoryCollection struct {
	order []string
	docs  map[string]domain.Document
}

// Memory — хранилище документов в памяти для тестов и локальной
// разработки. Ограничения уникальности ведут себя как индексы
// дисковых реализаций.
type Memory struct {
	mu     sync.RWMutex
	colls  map[string]*memoryCollection
	unique map[string][]string // collection -> уникальные поля
}

func NewMemory() *Memory {
	return &Memory{
		colls:  make(map[string]*memoryCollection),
		unique: make(map[string][]string),
	}
}

// EnsureUniqueField регистрирует ограничение уникальности поля коллекции.
func (m *Memory) EnsureUniqueField(collection, field string) {
	m.mu.Lock()
	m.unique[collection] = append(m.unique[collection], field)
	m.mu.Unlock()
}

func (m *Memory) coll(name string) *memoryCollection {
	c, ok := m.colls[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]domain.Document)}
		m.colls[name] = c
	}
	return c
}

func (m *Memory) Create(ctx context.Context, collection string, doc domain.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	for _, field := range m.unique[collection] {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for _, id := range c.order {
			if c.docs[id][field] == v {
				return "", domain.Duplicate(fmt.Sprintf("duplicate value for unique field %q", field))
			}
		}
	}
	id := uuid.NewString()
	stored := make(domain.Document, len(doc))
	for k, v := range doc {
		stored[k] = v
	}
	c.docs[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter domain.Filter) (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colls[collection]
	if !ok {
		return nil, false, nil
	}
	for _, id := range c.order {
		if matches(id, c.docs[id], filter) {
			return withID(id, c.docs[id]), true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) FindMany(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Document
	c, ok := m.colls[collection]
	if !ok {
		return out, nil
	}
	for _, id := range c.order {
		if matches(id, c.docs[id], filter) {
			out = append(out, withID(id, c.docs[id]))
		}
	}
	return out, nil
}

func (m *Memory) UpdateOne(ctx context.Context, collection, id string, set domain.Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[collection]
	if !ok {
		return false, nil
	}
	doc, ok := c.docs[id]
	if !ok {
		return false, nil
	}
	for k, v := range set {
		doc[k] = v
	}
	return true, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func matches(id string, doc domain.Document, filter domain.Filter) bool {
	for k, want := range filter {
		if k == "id" {
			if id != fmt.Sprint(want) {
				return false
			}
			continue
		}
		if fmt.Sprint(doc[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func withID(id string, doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = id
	return out
}

var _ domain.DocumentStore = (*Memory)(nil)
