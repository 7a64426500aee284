package domain

import "context"

// Document — бессхемное представление записи: поле -> значение.
// Ключ "id" зарезервирован за идентификатором записи.
type Document map[string]any

// Filter — конъюнкция равенств по полям документа.
// Ключ "id" адресует идентификатор записи.
type Filter map[string]any

// DocumentStore — порт доступа к именованным коллекциям документов.
// Отсутствие записи — не ошибка; инфраструктурные сбои оборачиваются
// в StorageFailure.
type DocumentStore interface {
	// Create сохраняет документ и возвращает назначенный идентификатор.
	Create(ctx context.Context, collection string, doc Document) (string, error)
	// FindOne возвращает первый документ, удовлетворяющий фильтру.
	FindOne(ctx context.Context, collection string, filter Filter) (Document, bool, error)
	// FindMany возвращает документы в порядке вставки.
	FindMany(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// UpdateOne частично обновляет документ по идентификатору.
	UpdateOne(ctx context.Context, collection, id string, set Document) (bool, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// PaymentResult — исход обращения к платёжному шлюзу.
type PaymentResult struct {
	Approved bool
	Metadata map[string]string
}

// PaymentGateway — порт платёжного коллаборатора (STK push).
// Ошибка транспорта/таймаут не означает отказ: исход платежа неизвестен.
type PaymentGateway interface {
	Charge(ctx context.Context, o Order) (PaymentResult, error)
}

// NotificationSink — порт побочного канала уведомлений, best effort.
type NotificationSink interface {
	Notify(ctx context.Context, ev OrderEvent) error
}
