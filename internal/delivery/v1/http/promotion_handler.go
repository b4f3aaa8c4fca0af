package http

import (
	"net/http"
	"strings"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

type PromotionHandler struct {
	promotionUC usecase.PromotionUC
	logger      logger.Logger
}

func NewPromotionHandler(promotionUC usecase.PromotionUC, logger logger.Logger) *PromotionHandler {
	return &PromotionHandler{promotionUC: promotionUC, logger: logger}
}

func parseKind(raw string) (domain.PromotionKind, error) {
	kind := domain.PromotionKind(strings.ToUpper(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", e.Wrap("kind "+raw, e.ErrInvalidPromotion)
	}
	return kind, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// listCurrent — акции, действующие сегодня, для витрины.
func (h *PromotionHandler) listCurrent(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotionUC.ListCurrentPromotions(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPromotionsResponse(promotions))
}

func (h *PromotionHandler) listAll(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotionUC.ListPromotions(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPromotionsResponse(promotions))
}

func (h *PromotionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	kind, err := parseKind(deref(req.Kind))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	promotion, err := h.promotionUC.CreatePromotion(r.Context(), &usecase.CreatePromotionReq{
		Name:          deref(req.Name),
		Description:   deref(req.Description),
		Kind:          kind,
		Value:         deref(req.Value),
		RequiredUnits: deref(req.RequiredUnits),
		PaidUnits:     deref(req.PaidUnits),
		ProductIDs:    req.ProductIDs,
		IsActive:      isActive,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Infof("promotion %d (%s) created", promotion.ID, promotion.Kind)
	WriteSuccess(w, http.StatusCreated, toPromotionResponse(promotion))
}

func (h *PromotionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "promotionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.ProductIDs != nil {
		respondError(w, r, h.logger, e.Wrap("product_ids are set via PUT /products", e.ErrStatusBadRequest))
		return
	}

	update := &usecase.UpdatePromotionReq{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Value:          req.Value,
		RequiredUnits:  req.RequiredUnits,
		PaidUnits:      req.PaidUnits,
		IsActive:       req.IsActive,
		ClearStartDate: req.ClearStartDate,
		ClearEndDate:   req.ClearEndDate,
	}

	if req.Kind != nil {
		kind, err := parseKind(*req.Kind)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		update.Kind = &kind
	}
	if update.StartDate, err = parseDate(req.StartDate); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if update.EndDate, err = parseDate(req.EndDate); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	promotion, err := h.promotionUC.UpdatePromotion(r.Context(), update)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPromotionResponse(promotion))
}

// setProducts заменяет набор товаров акции целиком.
func (h *PromotionHandler) setProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "promotionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req setPromotionProductsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	promotion, err := h.promotionUC.SetPromotionProducts(r.Context(), &usecase.SetPromotionProductsReq{
		PromotionID: id,
		ProductIDs:  req.ProductIDs,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toPromotionResponse(promotion))
}

func (h *PromotionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "promotionID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.promotionUC.DeletePromotion(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}
