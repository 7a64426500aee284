package domain

// Seller — владелец одного или нескольких магазинов.
type Seller struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
	Password       string `json:"password,omitempty"`
}

// Store — витрина продавца, адресуемая уникальным slug.
type Store struct {
	ID             string `json:"id,omitempty"`
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
	MpesaPaybill   string `json:"mpesa_paybill,omitempty"`
}

// Product — товар магазина; цена в KES.
type Product struct {
	ID          string  `json:"id,omitempty"`
	StoreSlug   string  `json:"store_slug"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// OrderItem — снимок позиции на момент оформления заказа.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CustomerInfo — покупатель; телефон обязателен для STK push.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone"`
}

// Статусы заказа. pending -> {paid, failed}; cancelled выставляется
// только внешним административным действием.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderFailed    = "failed"
	OrderCancelled = "cancelled"
)

// Order — заказ магазина с итогом, округлённым до 2 знаков.
type Order struct {
	ID        string            `json:"id,omitempty"`
	StoreSlug string            `json:"store_slug"`
	Items     []OrderItem       `json:"items"`
	Total     float64           `json:"total"`
	Customer  CustomerInfo      `json:"customer"`
	Status    string            `json:"status"`
	Mpesa     map[string]string `json:"mpesa"`
}

// OrderEvent — событие для канала уведомлений об оплаченном заказе.
type OrderEvent struct {
	StoreSlug     string  `json:"store_slug"`
	OrderID       string  `json:"order_id"`
	ItemCount     int     `json:"item_count"`
	Total         float64 `json:"total"`
	CustomerPhone string  `json:"customer_phone"`
}
