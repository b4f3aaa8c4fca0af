package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
	IsArchived  bool       `db:"is_archived"`
}

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	CategoryID  int64           `db:"category_id"`
	IsActive    bool            `db:"is_active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   *time.Time      `db:"updated_at"`
}

// CustomerModel представляет запись таблицы customers в PostgreSQL.
type CustomerModel struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Address   string    `db:"address"`
	CreatedAt time.Time `db:"created_at"`
}

// PromotionModel представляет запись таблицы promotions в PostgreSQL.
// ProductIDs собирается из promotion_products.
type PromotionModel struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	Kind          string          `db:"kind"`
	Value         decimal.Decimal `db:"value"`
	RequiredUnits int             `db:"required_units"`
	PaidUnits     int             `db:"paid_units"`
	IsActive      bool            `db:"is_active"`
	StartDate     *time.Time      `db:"start_date"`
	EndDate       *time.Time      `db:"end_date"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     *time.Time      `db:"updated_at"`
	ProductIDs    []int64         `db:"product_ids"`
}

// CartModel представляет запись таблицы carts в PostgreSQL.
type CartModel struct {
	ID            int64           `db:"id"`
	CustomerID    int64           `db:"customer_id"`
	IsActive      bool            `db:"is_active"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	TotalDiscount decimal.Decimal `db:"total_discount"`
	Total         decimal.Decimal `db:"total"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// CartLineModel — запись cart_items вместе с названием и текущей ценой товара.
type CartLineModel struct {
	ID          int64               `db:"id"`
	CartID      int64               `db:"cart_id"`
	ProductID   int64               `db:"product_id"`
	ProductName string              `db:"product_name"`
	Quantity    int                 `db:"quantity"`
	UnitPrice   decimal.NullDecimal `db:"unit_price"`
	ListPrice   decimal.Decimal     `db:"list_price"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID                  int64           `db:"id"`
	Number              uuid.UUID       `db:"number"`
	CustomerID          int64           `db:"customer_id"`
	Status              string          `db:"status"`
	Subtotal            decimal.Decimal `db:"subtotal"`
	DiscountTotal       decimal.Decimal `db:"discount_total"`
	Total               decimal.Decimal `db:"total"`
	ShippingAddress     string          `db:"shipping_address"`
	PaymentMethod       string          `db:"payment_method"`
	PlacedAt            time.Time       `db:"placed_at"`
	ShippedAt           *time.Time      `db:"shipped_at"`
	EstimatedDelivery   *time.Time      `db:"estimated_delivery"`
	DeliveredAt         *time.Time      `db:"delivered_at"`
	ConfirmedByCustomer bool            `db:"confirmed_by_customer"`
	ConfirmedByAdmin    bool            `db:"confirmed_by_admin"`
}

// OrderLineModel представляет запись таблицы order_items в PostgreSQL.
type OrderLineModel struct {
	ID          int64           `db:"id"`
	OrderID     int64           `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     uuid.UUID  `db:"event_id"`
	EventType   string     `db:"event_type"`
	OrderID     int64      `db:"order_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}

// NewsModel представляет запись таблицы news в PostgreSQL.
type NewsModel struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	PublishedOn time.Time  `db:"published_on"`
	ImageURL    string     `db:"image_url"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// ContactMessageModel представляет запись таблицы contact_messages в PostgreSQL.
type ContactMessageModel struct {
	ID          int64     `db:"id"`
	SenderName  string    `db:"sender_name"`
	SenderEmail string    `db:"sender_email"`
	Message     string    `db:"message"`
	SentAt      time.Time `db:"sent_at"`
	IsRead      bool      `db:"is_read"`
}
