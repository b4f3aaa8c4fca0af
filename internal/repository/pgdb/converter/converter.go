// Package converter преобразует сущности domain/usecase в модели PostgreSQL и обратно.
package converter

import (
	"slices"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToModel(entity *domain.Category) *CategoryModel {
	return &CategoryModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
		IsArchived:  entity.IsArchived,
	}
}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		IsArchived:  model.IsArchived,
	}
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Description: entity.Description,
		Price:       entity.Price,
		Stock:       entity.Stock,
		CategoryID:  entity.CategoryID,
		IsActive:    entity.IsActive,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		Price:       model.Price,
		Stock:       model.Stock,
		CategoryID:  model.CategoryID,
		IsActive:    model.IsActive,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type CustomerConverter struct{}

func (CustomerConverter) ToModel(entity *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:        entity.ID,
		Username:  entity.Username,
		FullName:  entity.FullName,
		Email:     entity.Email,
		Phone:     entity.Phone,
		Address:   entity.Address,
		CreatedAt: entity.CreatedAt,
	}
}

func (CustomerConverter) ToEntity(model *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:        model.ID,
		Username:  model.Username,
		FullName:  model.FullName,
		Email:     model.Email,
		Phone:     model.Phone,
		Address:   model.Address,
		CreatedAt: model.CreatedAt,
	}
}

// PromotionConverter преобразует акции. Даты окна хранятся как DATE.
type PromotionConverter struct{}

func (PromotionConverter) ToModel(entity *domain.Promotion) *PromotionModel {
	return &PromotionModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Description:   entity.Description,
		Kind:          string(entity.Kind),
		Value:         entity.Value,
		RequiredUnits: entity.RequiredUnits,
		PaidUnits:     entity.PaidUnits,
		IsActive:      entity.IsActive,
		StartDate:     entity.StartDate,
		EndDate:       entity.EndDate,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
		ProductIDs:    slices.Clone(entity.ProductIDs),
	}
}

func (PromotionConverter) ToEntity(model *PromotionModel) *domain.Promotion {
	productIDs := slices.Clone(model.ProductIDs)
	slices.Sort(productIDs)

	return &domain.Promotion{
		ID:            model.ID,
		Name:          model.Name,
		Description:   model.Description,
		Kind:          domain.PromotionKind(model.Kind),
		Value:         model.Value,
		RequiredUnits: model.RequiredUnits,
		PaidUnits:     model.PaidUnits,
		ProductIDs:    productIDs,
		IsActive:      model.IsActive,
		StartDate:     model.StartDate,
		EndDate:       model.EndDate,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

type CartConverter struct{}

func (CartConverter) ToEntity(model *CartModel) *domain.Cart {
	return &domain.Cart{
		ID:            model.ID,
		CustomerID:    model.CustomerID,
		IsActive:      model.IsActive,
		Subtotal:      model.Subtotal,
		TotalDiscount: model.TotalDiscount,
		Total:         model.Total,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func (CartConverter) LineToModel(entity *domain.CartLine) *CartLineModel {
	return &CartLineModel{
		ID:          entity.ID,
		CartID:      entity.CartID,
		ProductID:   entity.ProductID,
		ProductName: entity.ProductName,
		Quantity:    entity.Quantity,
		UnitPrice:   entity.UnitPrice,
		ListPrice:   entity.ListPrice,
	}
}

func (CartConverter) LineToEntity(model *CartLineModel) domain.CartLine {
	return domain.CartLine{
		ID:          model.ID,
		CartID:      model.CartID,
		ProductID:   model.ProductID,
		ProductName: model.ProductName,
		Quantity:    model.Quantity,
		UnitPrice:   model.UnitPrice,
		ListPrice:   model.ListPrice,
	}
}

type OrderConverter struct{}

func (OrderConverter) ToModel(entity *domain.Order) *OrderModel {
	return &OrderModel{
		ID:                  entity.ID,
		Number:              entity.Number,
		CustomerID:          entity.CustomerID,
		Status:              string(entity.Status),
		Subtotal:            entity.Subtotal,
		DiscountTotal:       entity.DiscountTotal,
		Total:               entity.Total,
		ShippingAddress:     entity.ShippingAddress,
		PaymentMethod:       string(entity.PaymentMethod),
		PlacedAt:            entity.PlacedAt,
		ShippedAt:           entity.ShippedAt,
		EstimatedDelivery:   entity.EstimatedDelivery,
		DeliveredAt:         entity.DeliveredAt,
		ConfirmedByCustomer: entity.ConfirmedByCustomer,
		ConfirmedByAdmin:    entity.ConfirmedByAdmin,
	}
}

func (OrderConverter) ToEntity(model *OrderModel, lines []OrderLineModel) *domain.Order {
	order := &domain.Order{
		ID:                  model.ID,
		Number:              model.Number,
		CustomerID:          model.CustomerID,
		Status:              domain.OrderStatus(model.Status),
		Subtotal:            model.Subtotal,
		DiscountTotal:       model.DiscountTotal,
		Total:               model.Total,
		ShippingAddress:     model.ShippingAddress,
		PaymentMethod:       domain.PaymentMethod(model.PaymentMethod),
		PlacedAt:            model.PlacedAt,
		ShippedAt:           model.ShippedAt,
		EstimatedDelivery:   model.EstimatedDelivery,
		DeliveredAt:         model.DeliveredAt,
		ConfirmedByCustomer: model.ConfirmedByCustomer,
		ConfirmedByAdmin:    model.ConfirmedByAdmin,
		Lines:               make([]domain.OrderLine, 0, len(lines)),
	}

	for _, l := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	return order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		OrderID:     entity.OrderID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		OrderID:     model.OrderID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, c.ToEntity(m))
	}
	return result
}

type NewsConverter struct{}

func (NewsConverter) ToModel(entity *domain.News) *NewsModel {
	return &NewsModel{
		ID:          entity.ID,
		Title:       entity.Title,
		Description: entity.Description,
		PublishedOn: entity.PublishedOn,
		ImageURL:    entity.ImageURL,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (NewsConverter) ToEntity(model *NewsModel) *domain.News {
	return &domain.News{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		PublishedOn: domain.DateOf(model.PublishedOn),
		ImageURL:    model.ImageURL,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type ContactMessageConverter struct{}

func (ContactMessageConverter) ToModel(entity *domain.ContactMessage) *ContactMessageModel {
	return &ContactMessageModel{
		ID:          entity.ID,
		SenderName:  entity.SenderName,
		SenderEmail: entity.SenderEmail,
		Message:     entity.Message,
		SentAt:      entity.SentAt,
		IsRead:      entity.IsRead,
	}
}

func (ContactMessageConverter) ToEntity(model *ContactMessageModel) *domain.ContactMessage {
	return &domain.ContactMessage{
		ID:          model.ID,
		SenderName:  model.SenderName,
		SenderEmail: model.SenderEmail,
		Message:     model.Message,
		SentAt:      model.SentAt,
		IsRead:      model.IsRead,
	}
}
