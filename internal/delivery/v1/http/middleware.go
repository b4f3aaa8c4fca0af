package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	headerCustomerID = "X-Customer-ID"
	headerRole       = "X-Role"
	roleAdmin        = "admin"
)

type customerKey struct{}

// customerFromCtx возвращает id покупателя, положенный requireCustomer.
func customerFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(customerKey{}).(int64)
	return id, ok
}

// requireCustomer пускает только запросы с идентификатором покупателя в заголовке.
// Аутентификация выполняется шлюзом перед сервисом.
func requireCustomer(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(headerCustomerID)
			if raw == "" {
				respondError(w, r, log, e.ErrUnauthorized)
				return
			}

			id, err := parseID(raw)
			if err != nil {
				respondError(w, r, log, e.Wrap(err.Error(), e.ErrUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), customerKey{}, id)))
		})
	}
}

// requireAdmin пускает только запросы с ролью администратора.
func requireAdmin(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.EqualFold(r.Header.Get(headerRole), roleAdmin) {
				respondError(w, r, log, e.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger пишет одну строку на запрос.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debugf("%s %s %d %dB %s request_id=%s",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}
