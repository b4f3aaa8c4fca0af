package http

import (
	"net/http"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// CartHandler обслуживает корзину и оформление заказа текущего покупателя.
type CartHandler struct {
	cartUC     usecase.CartUC
	checkoutUC usecase.CheckoutUC
	logger     logger.Logger
}

func NewCartHandler(cartUC usecase.CartUC, checkoutUC usecase.CheckoutUC, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUC: cartUC, checkoutUC: checkoutUC, logger: logger}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	view, err := h.cartUC.GetCart(r.Context(), customerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.ProductID <= 0 {
		respondError(w, r, h.logger, e.Wrap("product_id", e.ErrInvalidID))
		return
	}

	view, err := h.cartUC.AddItem(r.Context(), usecase.NewAddItemReq(customerID, req.ProductID, req.Quantity))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

// updateItem меняет количество; ноль или меньше удаляет позицию.
func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	lineID, err := pathID(r, "lineID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	view, err := h.cartUC.UpdateItem(r.Context(), usecase.NewUpdateItemReq(customerID, lineID, req.Quantity))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	lineID, err := pathID(r, "lineID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	view, err := h.cartUC.RemoveItem(r.Context(), usecase.NewRemoveItemReq(customerID, lineID))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(view))
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.checkoutUC.Checkout(r.Context(), usecase.NewCheckoutReq(
		customerID,
		domain.PaymentMethod(req.PaymentMethod),
		req.ShippingAddress,
		req.EstimatedDelivery,
	))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}
