package usecase

import (
	"context"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetForUpdate блокирует строку товара до конца транзакции.
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	// AdjustStock меняет остаток на delta; возвращает e.ErrInsufficientStock, если остаток ушёл бы в минус.
	AdjustStock(ctx context.Context, id int64, delta int) error
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	GetProductsInfo(ctx context.Context, ids []int64) ([]ProductInfo, error)
	AddImages(ctx context.Context, productID int64, keys []string) error
	Count(ctx context.Context) (int64, error)
	// Delete удаляет товар вместе с позициями корзин и возвращает ключи его изображений.
	// Товар из оформленных заказов не удаляется: e.ErrProductInUse.
	Delete(ctx context.Context, id int64) ([]string, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	// Archive скрывает категорию; товары сохраняют ссылку на неё.
	Archive(ctx context.Context, id int64) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// Delete удаляет покупателя и его корзины; при наличии заказов — e.ErrCustomerInUse.
	Delete(ctx context.Context, id int64) error
}

type PromotionRepository interface {
	Create(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error)
	Update(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error)
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	List(ctx context.Context) ([]domain.Promotion, error)
	// ListActive возвращает активные акции, окно которых содержит day, по возрастанию id.
	ListActive(ctx context.Context, day time.Time) ([]domain.Promotion, error)
	SetProducts(ctx context.Context, promotionID int64, productIDs []int64) error
	CountActive(ctx context.Context, day time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type CartRepository interface {
	// GetActiveForUpdate блокирует активную корзину покупателя; e.ErrCartNotFound, если её нет.
	GetActiveForUpdate(ctx context.Context, customerID int64) (*domain.Cart, error)
	CreateActive(ctx context.Context, customerID int64) (*domain.Cart, error)
	ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	UpsertLine(ctx context.Context, line *domain.CartLine) (*domain.CartLine, error)
	DeleteLine(ctx context.Context, cartID int64, lineID int64) error
	UpdateTotals(ctx context.Context, cartID int64, totals domain.Totals) error
	// Consume удаляет позиции и деактивирует корзину после оформления заказа.
	Consume(ctx context.Context, cartID int64) error
}

type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	// UpdateProgress сохраняет статус, флаги подтверждения и даты. Денежные поля не меняются.
	UpdateProgress(ctx context.Context, order *domain.Order) error
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

type NewsRepository interface {
	Create(ctx context.Context, news *domain.News) (*domain.News, error)
	Update(ctx context.Context, news *domain.News) (*domain.News, error)
	GetByID(ctx context.Context, id int64) (*domain.News, error)
	// List возвращает новости от свежих к старым.
	List(ctx context.Context, limit, offset int) ([]domain.News, error)
	Delete(ctx context.Context, id int64) error
}

type ContactMessageRepository interface {
	Create(ctx context.Context, message *domain.ContactMessage) (*domain.ContactMessage, error)
	// List возвращает обращения от новых к старым.
	List(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error)
	SetRead(ctx context.Context, id int64, read bool) (*domain.ContactMessage, error)
	CountUnread(ctx context.Context) (int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// Release возвращает событие в очередь после неудачной публикации.
	Release(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}
