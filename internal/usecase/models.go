package usecase

import (
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CATALOG

// ProductFilter — условия выборки витрины.
type ProductFilter struct {
	CategoryID  *int64
	Search      string
	OnlyInStock bool
	Limit       int
	Offset      int
}

// ProductListing — товар витрины с ценой после действующих акций.
type ProductListing struct {
	Product      domain.Product
	DisplayPrice decimal.Decimal
	OnPromotion  bool
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// GetProductsReq запрос информации о продуктах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes — ответ с данными запрошенных продуктов.
type GetProductsRes struct {
	Products         []ProductInfo
	NotFoundProducts []int64
}

// ProductInfo — DTO с информацией о продукте для внешнего использования.
type ProductInfo struct {
	ID           int64
	Name         string
	CategoryName string
	Price        decimal.Decimal
	Stock        int
}

type CreateCategoryReq struct {
	Name        string
	Description string
}

type CreateProductReq struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  int64
}

// UpdateProductReq — частичное обновление: nil означает «не менять».
type UpdateProductReq struct {
	ID          int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *int64
	IsActive    *bool
}

// UpdateCategoryReq — частичное обновление категории.
type UpdateCategoryReq struct {
	ID          int64
	Name        *string
	Description *string
}

type UploadProductImagesReq struct {
	ProductID int64
	Images    []ProductImage
}

// CART

type AddItemReq struct {
	CustomerID int64
	ProductID  int64
	Quantity   int
}

type UpdateItemReq struct {
	CustomerID int64
	LineID     int64
	Quantity   int
}

type RemoveItemReq struct {
	CustomerID int64
	LineID     int64
}

// CartView — корзина после пересчёта вместе с расшифровкой скидок.
type CartView struct {
	Cart      *domain.Cart
	Discounts []domain.DiscountContribution
}

// CHECKOUT / ORDERS

type CheckoutReq struct {
	CustomerID        int64
	PaymentMethod     domain.PaymentMethod
	ShippingAddress   string
	EstimatedDelivery string // YYYY-MM-DD, некорректное значение игнорируется
}

type OrderFilter struct {
	Status     *domain.OrderStatus
	CustomerID *int64
	Limit      int
	Offset     int
}

type UpdateOrderStatusReq struct {
	OrderID int64
	Status  domain.OrderStatus
}

// PROMOTIONS

type CreatePromotionReq struct {
	Name          string
	Description   string
	Kind          domain.PromotionKind
	Value         decimal.Decimal
	RequiredUnits int
	PaidUnits     int
	ProductIDs    []int64
	IsActive      bool
	StartDate     *time.Time
	EndDate       *time.Time
}

// UpdatePromotionReq — частичное обновление акции. ClearStartDate/ClearEndDate снимают границу окна.
type UpdatePromotionReq struct {
	ID             int64
	Name           *string
	Description    *string
	Kind           *domain.PromotionKind
	Value          *decimal.Decimal
	RequiredUnits  *int
	PaidUnits      *int
	IsActive       *bool
	StartDate      *time.Time
	EndDate        *time.Time
	ClearStartDate bool
	ClearEndDate   bool
}

type SetPromotionProductsReq struct {
	PromotionID int64
	ProductIDs  []int64
}

// CUSTOMERS

type RegisterCustomerReq struct {
	Username string
	FullName string
	Email    string
	Phone    string
	Address  string
}

// UpdateCustomerReq — частичное обновление профиля из админки.
type UpdateCustomerReq struct {
	ID       int64
	Username *string
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
}

// Dashboard — сводные счётчики для админки.
type Dashboard struct {
	Customers        int64
	Products         int64
	Orders           int64
	ActivePromotions int64
	UnreadMessages   int64
	Revenue          decimal.Decimal
}

// CONTENT

// CreateNewsReq — новость; пустая дата публикации означает «сегодня» по календарю магазина.
type CreateNewsReq struct {
	Title       string
	Description string
	PublishedOn *time.Time
	ImageURL    string
}

type UpdateNewsReq struct {
	ID          int64
	Title       *string
	Description *string
	PublishedOn *time.Time
	ImageURL    *string
}

type SendMessageReq struct {
	Name    string
	Email   string
	Message string
}

type ContactFilter struct {
	OnlyUnread bool
	Limit      int
	Offset     int
}

// INFRASTUCTURE

// UploadImagesRes — результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	ImagesKeys []string
}

// UploadImagesReq — запрос на загрузку изображений продукта.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// WriteRawMessageReq — уже сериализованное событие outbox для публикации.
type WriteRawMessageReq struct {
	EventID   string
	EventType OutboxEventType
	OrderID   int64
	Payload   []byte
}

// MAPPERS

func NewProductInfo(id int64, name string, category string, price decimal.Decimal, stock int) ProductInfo {
	return ProductInfo{
		ID:           id,
		Name:         name,
		CategoryName: category,
		Price:        price,
		Stock:        stock,
	}
}

func NewProductListing(product domain.Product, displayPrice decimal.Decimal, onPromotion bool) ProductListing {
	return ProductListing{
		Product:      product,
		DisplayPrice: displayPrice,
		OnPromotion:  onPromotion,
	}
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewGetProductsRes(pr []ProductInfo, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewAddItemReq(customerID, productID int64, quantity int) *AddItemReq {
	return &AddItemReq{
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
	}
}

func NewUpdateItemReq(customerID, lineID int64, quantity int) *UpdateItemReq {
	return &UpdateItemReq{
		CustomerID: customerID,
		LineID:     lineID,
		Quantity:   quantity,
	}
}

func NewRemoveItemReq(customerID, lineID int64) *RemoveItemReq {
	return &RemoveItemReq{
		CustomerID: customerID,
		LineID:     lineID,
	}
}

func NewCartView(cart *domain.Cart, discounts []domain.DiscountContribution) *CartView {
	return &CartView{
		Cart:      cart,
		Discounts: discounts,
	}
}

func NewCheckoutReq(customerID int64, method domain.PaymentMethod, address, estimatedDelivery string) *CheckoutReq {
	return &CheckoutReq{
		CustomerID:        customerID,
		PaymentMethod:     method,
		ShippingAddress:   address,
		EstimatedDelivery: estimatedDelivery,
	}
}

func NewWriteRawMessageReq(event *OutboxEvent) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		EventID:   event.EventID.String(),
		EventType: event.EventType,
		OrderID:   event.OrderID,
		Payload:   event.Payload,
	}
}
