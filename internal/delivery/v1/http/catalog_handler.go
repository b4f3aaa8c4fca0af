package http

import (
	"net/http"
	"strings"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/logger"
)

type CatalogHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, logger: logger}
}

// listProducts — витрина: только активные товары в наличии, с ценой после акций.
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ProductFilter{Search: strings.TrimSpace(r.URL.Query().Get("search"))}

	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		filter.CategoryID = &id
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	listings, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res := make([]productResponse, 0, len(listings))
	for i := range listings {
		res = append(res, toListingResponse(&listings[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

func (h *CatalogHandler) productsInfo(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.catalogUC.GetProductsInfo(r.Context(), usecase.NewGetProductsReq(ids))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductsInfoResponse(res))
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUC.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, toCategoryResponse(&categories[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	category, err := h.catalogUC.CreateCategory(r.Context(), &usecase.CreateCategoryReq{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	product, err := h.catalogUC.CreateProduct(r.Context(), &usecase.CreateProductReq{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	product, err := h.catalogUC.UpdateProduct(r.Context(), &usecase.UpdateProductReq{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// uploadImages принимает multipart/form-data с файлами в поле images.
func (h *CatalogHandler) uploadImages(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	id, err := pathID(r, "productID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)
	if err := ensureMultipartForm(r, maxMemory); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res, err := h.catalogUC.UploadProductImages(r.Context(), &usecase.UploadProductImagesReq{
		ProductID: id,
		Images:    images,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{"keys": res.ImagesKeys})
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	category, err := h.catalogUC.UpdateCategory(r.Context(), &usecase.UpdateCategoryReq{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

// archiveCategory — DELETE категории: она уходит в архив, товары и заказы не трогаются.
func (h *CatalogHandler) archiveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "categoryID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.catalogUC.ArchiveCategory(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "productID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.catalogUC.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}
