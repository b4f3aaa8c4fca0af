package http

import (
	"net/http"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/logger"
)

type CustomerHandler struct {
	customerUC usecase.CustomerUC
	logger     logger.Logger
}

func NewCustomerHandler(customerUC usecase.CustomerUC, logger logger.Logger) *CustomerHandler {
	return &CustomerHandler{customerUC: customerUC, logger: logger}
}

func (h *CustomerHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	customer, err := h.customerUC.Register(r.Context(), &usecase.RegisterCustomerReq{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) me(w http.ResponseWriter, r *http.Request) {
	customerID, _ := customerFromCtx(r.Context())

	customer, err := h.customerUC.GetProfile(r.Context(), customerID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) list(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerUC.ListCustomers(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res := make([]customerResponse, 0, len(customers))
	for i := range customers {
		res = append(res, toCustomerResponse(&customers[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

// dashboard — сводка для главной страницы админки.
func (h *CustomerHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.customerUC.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toDashboardResponse(d))
}

func (h *CustomerHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req updateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	customer, err := h.customerUC.UpdateCustomer(r.Context(), &usecase.UpdateCustomerReq{
		ID:       id,
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.customerUC.DeleteCustomer(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}
