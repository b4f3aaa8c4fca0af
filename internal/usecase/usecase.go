package usecase

import (
	"context"

	"github.com/circley-tech/storefront/internal/domain"
)

type CartUC interface {
	GetCart(ctx context.Context, customerID int64) (*CartView, error)
	AddItem(ctx context.Context, req *AddItemReq) (*CartView, error)
	UpdateItem(ctx context.Context, req *UpdateItemReq) (*CartView, error)
	RemoveItem(ctx context.Context, req *RemoveItemReq) (*CartView, error)
}

type CheckoutUC interface {
	Checkout(ctx context.Context, req *CheckoutReq) (*domain.Order, error)
}

type OrderUC interface {
	ListCustomerOrders(ctx context.Context, customerID int64) ([]domain.Order, error)
	GetCustomerOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error)
	ConfirmByCustomer(ctx context.Context, customerID, orderID int64) (*domain.Order, error)
	ConfirmByAdmin(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
}

type CatalogUC interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]ProductListing, error)
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
	CreateCategory(ctx context.Context, req *CreateCategoryReq) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	UploadProductImages(ctx context.Context, req *UploadProductImagesReq) (*UploadImagesRes, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*domain.Category, error)
	ArchiveCategory(ctx context.Context, id int64) error
}

type PromotionUC interface {
	ListCurrentPromotions(ctx context.Context) ([]domain.Promotion, error)
	ListPromotions(ctx context.Context) ([]domain.Promotion, error)
	CreatePromotion(ctx context.Context, req *CreatePromotionReq) (*domain.Promotion, error)
	UpdatePromotion(ctx context.Context, req *UpdatePromotionReq) (*domain.Promotion, error)
	SetPromotionProducts(ctx context.Context, req *SetPromotionProductsReq) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, id int64) error
}

type CustomerUC interface {
	Register(ctx context.Context, req *RegisterCustomerReq) (*domain.Customer, error)
	GetProfile(ctx context.Context, customerID int64) (*domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, req *UpdateCustomerReq) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type NewsUC interface {
	ListNews(ctx context.Context, limit, offset int) ([]domain.News, error)
	CreateNews(ctx context.Context, req *CreateNewsReq) (*domain.News, error)
	UpdateNews(ctx context.Context, req *UpdateNewsReq) (*domain.News, error)
	DeleteNews(ctx context.Context, id int64) error
}

type ContactUC interface {
	SendMessage(ctx context.Context, req *SendMessageReq) (*domain.ContactMessage, error)
	ListMessages(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error)
	SetRead(ctx context.Context, id int64, read bool) (*domain.ContactMessage, error)
}
