package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const dateLayout = "2006-01-02"

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// httpErrors сопоставляет доменные ошибки с HTTP-статусами. Порядок важен: проверяется сверху вниз.
var httpErrors = []struct {
	err  error
	code int
}{
	{e.ErrUnauthorized, http.StatusUnauthorized},
	{e.ErrForbidden, http.StatusForbidden},

	{e.ErrProductNotFound, http.StatusNotFound},
	{e.ErrCategoryNotFound, http.StatusNotFound},
	{e.ErrCustomerNotFound, http.StatusNotFound},
	{e.ErrCartNotFound, http.StatusNotFound},
	{e.ErrCartLineNotFound, http.StatusNotFound},
	{e.ErrOrderNotFound, http.StatusNotFound},
	{e.ErrPromotionNotFound, http.StatusNotFound},
	{e.ErrNewsNotFound, http.StatusNotFound},
	{e.ErrMessageNotFound, http.StatusNotFound},

	{e.ErrInsufficientStock, http.StatusConflict},
	{e.ErrAlreadyExists, http.StatusConflict},
	{e.ErrProductInUse, http.StatusConflict},
	{e.ErrCustomerInUse, http.StatusConflict},
	{e.ErrInvalidOrderStatus, http.StatusConflict},

	{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},

	{e.ErrStatusBadRequest, http.StatusBadRequest},
	{e.ErrExpectedMultipart, http.StatusBadRequest},
	{e.ErrMissingFields, http.StatusBadRequest},
	{e.ErrInvalidPrice, http.StatusBadRequest},
	{e.ErrPricePrecision, http.StatusBadRequest},
	{e.ErrPriceMustBePositive, http.StatusBadRequest},
	{e.ErrProductNameRequired, http.StatusBadRequest},
	{e.ErrCategoryNameRequired, http.StatusBadRequest},
	{e.ErrNegativeStock, http.StatusBadRequest},
	{e.ErrNoImages, http.StatusBadRequest},
	{e.ErrTooManyImages, http.StatusBadRequest},
	{e.ErrInvalidQuantity, http.StatusBadRequest},
	{e.ErrInvalidID, http.StatusBadRequest},
	{e.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{e.ErrShippingAddressNeeded, http.StatusBadRequest},
	{e.ErrInvalidPromotion, http.StatusBadRequest},
	{e.ErrInvalidDateRange, http.StatusBadRequest},
	{e.ErrUsernameRequired, http.StatusBadRequest},
	{e.ErrInvalidEmail, http.StatusBadRequest},
	{e.ErrTitleRequired, http.StatusBadRequest},
	{e.ErrTitleTooLong, http.StatusBadRequest},
	{e.ErrInvalidImageURL, http.StatusBadRequest},
	{e.ErrSenderNameRequired, http.StatusBadRequest},
	{e.ErrSenderNameTooLong, http.StatusBadRequest},
	{e.ErrMessageRequired, http.StatusBadRequest},
	{e.ErrNoProducts, http.StatusBadRequest},
	{e.ErrEmptyCart, http.StatusBadRequest},
}

// ToHTTPResponse возвращает статус и сообщение для клиента. Сообщение начинается с текста
// доменной ошибки, поэтому детали валидации сохраняются, а место возникновения — нет.
func ToHTTPResponse(err error) (int, string) {
	for _, m := range httpErrors {
		if errors.Is(err, m.err) {
			msg := err.Error()
			if idx := strings.Index(msg, m.err.Error()); idx >= 0 {
				return m.code, msg[idx:]
			}
			return m.code, m.err.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError пишет ошибку клиенту; серверные ошибки логируются целиком.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%s %s failed", r.Method, r.URL.Path)
	} else {
		log.Warnf("%d %s %s: %v", code, r.Method, r.URL.Path, err)
	}

	WriteError(w, err)
}

// decodeJSON читает тело запроса; неизвестные поля считаются ошибкой клиента.
func decodeJSON(r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	return nil
}

// pathID читает положительный идентификатор из параметра маршрута.
func pathID(r *http.Request, name string) (int64, error) {
	return parseID(chi.URLParam(r, name))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(s, e.ErrInvalidID)
	}
	return id, nil
}

// parseIDList разбирает список вида "1,2,3".
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, e.ErrNoProducts
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryInt читает неотрицательное число из query, пустое значение — def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, e.Wrap(name, e.ErrStatusBadRequest)
	}
	return n, nil
}

// parseDate разбирает дату YYYY-MM-DD; пустая строка означает «не задано».
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, e.Wrap(s, e.ErrStatusBadRequest)
	}
	return &t, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

func parseImages(files []*multipart.FileHeader) ([]usecase.ProductImage, error) {
	const (
		maxImageCount = 10
		maxFileSize   = 15 << 20
	)

	if len(files) == 0 {
		return nil, e.ErrNoImages
	}
	if len(files) > maxImageCount {
		return nil, e.ErrTooManyImages
	}

	images := make([]usecase.ProductImage, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		images = append(images, *usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename))
	}
	return images, nil
}

// readFile читает файл целиком; тип определяется по содержимому, а не по заголовку клиента.
func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}
