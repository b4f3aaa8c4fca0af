package http

import (
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/shopspring/decimal"
)

// money печатает сумму строкой с двумя знаками.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// REQUESTS

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type checkoutRequest struct {
	PaymentMethod     string `json:"payment_method"`
	ShippingAddress   string `json:"shipping_address"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

type registerCustomerRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int64           `json:"category_id"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *int64           `json:"category_id"`
	IsActive    *bool            `json:"is_active"`
}

type promotionRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Kind           *string          `json:"kind"`
	Value          *decimal.Decimal `json:"value"`
	RequiredUnits  *int             `json:"required_units"`
	PaidUnits      *int             `json:"paid_units"`
	ProductIDs     []int64          `json:"product_ids"`
	IsActive       *bool            `json:"is_active"`
	StartDate      string           `json:"start_date"`
	EndDate        string           `json:"end_date"`
	ClearStartDate bool             `json:"clear_start_date"`
	ClearEndDate   bool             `json:"clear_end_date"`
}

type setPromotionProductsRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type updateCustomerRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

type newsRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PublishedOn string  `json:"published_on"`
	ImageURL    *string `json:"image_url"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type setReadRequest struct {
	IsRead *bool `json:"is_read"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// RESPONSES

type categoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

type productResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        string  `json:"price"`
	DisplayPrice *string `json:"display_price,omitempty"`
	OnPromotion  bool    `json:"on_promotion"`
	Stock        int     `json:"stock"`
	CategoryID   int64   `json:"category_id"`
	IsActive     bool    `json:"is_active"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       money(p.Price),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
	}
}

func toListingResponse(l *usecase.ProductListing) productResponse {
	res := toProductResponse(&l.Product)
	display := money(l.DisplayPrice)
	res.DisplayPrice = &display
	res.OnPromotion = l.OnPromotion
	return res
}

type productInfoResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
}

type productsInfoResponse struct {
	Products []productInfoResponse `json:"products"`
	NotFound []int64               `json:"not_found"`
}

func toProductsInfoResponse(res *usecase.GetProductsRes) productsInfoResponse {
	out := productsInfoResponse{
		Products: make([]productInfoResponse, 0, len(res.Products)),
		NotFound: res.NotFoundProducts,
	}
	if out.NotFound == nil {
		out.NotFound = []int64{}
	}
	for _, p := range res.Products {
		out.Products = append(out.Products, productInfoResponse{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.CategoryName,
			Price:    money(p.Price),
			Stock:    p.Stock,
		})
	}
	return out
}

type cartItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type discountResponse struct {
	PromotionID   int64  `json:"promotion_id"`
	PromotionName string `json:"promotion_name"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
}

type cartResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	Items         []cartItemResponse `json:"items"`
	Subtotal      string             `json:"subtotal"`
	TotalDiscount string             `json:"total_discount"`
	Total         string             `json:"total"`
	Discounts     []discountResponse `json:"discounts"`
}

func toCartResponse(view *usecase.CartView) cartResponse {
	cart := view.Cart
	res := cartResponse{
		ID:            cart.ID,
		CustomerID:    cart.CustomerID,
		Items:         make([]cartItemResponse, 0, len(cart.Lines)),
		Subtotal:      money(cart.Subtotal),
		TotalDiscount: money(cart.TotalDiscount),
		Total:         money(cart.Total),
		Discounts:     make([]discountResponse, 0, len(view.Discounts)),
	}

	for _, l := range cart.Lines {
		res.Items = append(res.Items, cartItemResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.Price()),
			LineTotal:   money(l.Amount()),
		})
	}

	for _, d := range view.Discounts {
		res.Discounts = append(res.Discounts, discountResponse{
			PromotionID:   d.PromotionID,
			PromotionName: d.PromotionName,
			Kind:          string(d.Kind),
			Amount:        money(d.Amount),
		})
	}

	return res
}

type orderItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type orderResponse struct {
	ID                  int64               `json:"id"`
	Number              string              `json:"number"`
	CustomerID          int64               `json:"customer_id"`
	Status              string              `json:"status"`
	Items               []orderItemResponse `json:"items"`
	Subtotal            string              `json:"subtotal"`
	DiscountTotal       string              `json:"discount_total"`
	Total               string              `json:"total"`
	ShippingAddress     string              `json:"shipping_address"`
	PaymentMethod       string              `json:"payment_method"`
	PlacedAt            time.Time           `json:"placed_at"`
	ShippedAt           *time.Time          `json:"shipped_at,omitempty"`
	EstimatedDelivery   *string             `json:"estimated_delivery,omitempty"`
	DeliveredAt         *time.Time          `json:"delivered_at,omitempty"`
	ConfirmedByCustomer bool                `json:"confirmed_by_customer"`
	ConfirmedByAdmin    bool                `json:"confirmed_by_admin"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	res := orderResponse{
		ID:                  o.ID,
		Number:              o.Number.String(),
		CustomerID:          o.CustomerID,
		Status:              string(o.Status),
		Items:               make([]orderItemResponse, 0, len(o.Lines)),
		Subtotal:            money(o.Subtotal),
		DiscountTotal:       money(o.DiscountTotal),
		Total:               money(o.Total),
		ShippingAddress:     o.ShippingAddress,
		PaymentMethod:       string(o.PaymentMethod),
		PlacedAt:            o.PlacedAt,
		ShippedAt:           o.ShippedAt,
		EstimatedDelivery:   dateString(o.EstimatedDelivery),
		DeliveredAt:         o.DeliveredAt,
		ConfirmedByCustomer: o.ConfirmedByCustomer,
		ConfirmedByAdmin:    o.ConfirmedByAdmin,
	}

	for _, l := range o.Lines {
		res.Items = append(res.Items, orderItemResponse{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			Subtotal:    money(l.Subtotal()),
		})
	}

	return res
}

func toOrdersResponse(orders []domain.Order) []orderResponse {
	res := make([]orderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i]))
	}
	return res
}

type promotionResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Kind          string  `json:"kind"`
	Value         string  `json:"value"`
	RequiredUnits int     `json:"required_units,omitempty"`
	PaidUnits     int     `json:"paid_units,omitempty"`
	ProductIDs    []int64 `json:"product_ids"`
	IsActive      bool    `json:"is_active"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
}

func toPromotionResponse(p *domain.Promotion) promotionResponse {
	res := promotionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Kind:        string(p.Kind),
		Value:       money(p.Value),
		ProductIDs:  p.ProductIDs,
		IsActive:    p.IsActive,
		StartDate:   dateString(p.StartDate),
		EndDate:     dateString(p.EndDate),
	}
	if res.ProductIDs == nil {
		res.ProductIDs = []int64{}
	}
	if p.Kind == domain.PromotionBuyNPayM {
		res.RequiredUnits, res.PaidUnits = p.GroupSize()
	}
	return res
}

func toPromotionsResponse(promotions []domain.Promotion) []promotionResponse {
	res := make([]promotionResponse, 0, len(promotions))
	for i := range promotions {
		res = append(res, toPromotionResponse(&promotions[i]))
	}
	return res
}

type customerResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Username:    c.Username,
		DisplayName: c.DisplayName(),
		FullName:    c.FullName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
}

type dashboardResponse struct {
	Customers        int64  `json:"customers"`
	Products         int64  `json:"products"`
	Orders           int64  `json:"orders"`
	ActivePromotions int64  `json:"active_promotions"`
	UnreadMessages   int64  `json:"unread_messages"`
	Revenue          string `json:"revenue"`
}

func toDashboardResponse(d *usecase.Dashboard) dashboardResponse {
	return dashboardResponse{
		Customers:        d.Customers,
		Products:         d.Products,
		Orders:           d.Orders,
		ActivePromotions: d.ActivePromotions,
		UnreadMessages:   d.UnreadMessages,
		Revenue:          money(d.Revenue),
	}
}

type newsResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedOn string `json:"published_on"`
	ImageURL    string `json:"image_url,omitempty"`
}

func toNewsResponse(n *domain.News) newsResponse {
	return newsResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		PublishedOn: n.PublishedOn.Format(dateLayout),
		ImageURL:    n.ImageURL,
	}
}

type contactMessageResponse struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Text   string    `json:"message"`
	SentAt time.Time `json:"sent_at"`
	IsRead bool      `json:"is_read"`
}

func toContactMessageResponse(m *domain.ContactMessage) contactMessageResponse {
	return contactMessageResponse{
		ID:     m.ID,
		Name:   m.SenderName,
		Email:  m.SenderEmail,
		Text:   m.Message,
		SentAt: m.SentAt,
		IsRead: m.IsRead,
	}
}
