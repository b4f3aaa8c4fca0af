package http

import (
	"net/http"
	"strings"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

type OrderHandler struct {
	orderUC usecase.OrderUC
	logger  logger.Logger
}

func NewOrderHandler(orderUC usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, logger: logger}
}

// parseStatus приводит статус из запроса к домену; неизвестное значение — ошибка клиента.
func parseStatus(raw string) (domain.OrderStatus, error) {
	status := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", e.Wrap(raw, e.ErrStatusBadRequest)
	}
	return status, nil
}

func (h *OrderHandler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	orders, err := h.orderUC.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrdersResponse(orders))
}

func (h *OrderHandler) getMyOrder(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.orderUC.GetCustomerOrder(r.Context(), customerID, orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// confirmMyOrder — покупатель подтверждает получение.
func (h *OrderHandler) confirmMyOrder(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.orderUC.ConfirmByCustomer(r.Context(), customerID, orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		filter usecase.OrderFilter
		err    error
	)

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		filter.CustomerID = &id
	}

	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	orders, err := h.orderUC.ListOrders(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrdersResponse(orders))
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.orderUC.UpdateStatus(r.Context(), &usecase.UpdateOrderStatusReq{OrderID: orderID, Status: status})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// confirmOrder — подтверждение доставки со стороны магазина.
func (h *OrderHandler) confirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	order, err := h.orderUC.ConfirmByAdmin(r.Context(), orderID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}
