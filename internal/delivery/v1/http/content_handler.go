package http

import (
	"net/http"
	"strconv"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// ContentHandler обслуживает новости и форму обратной связи.
type ContentHandler struct {
	newsUC    usecase.NewsUC
	contactUC usecase.ContactUC
	logger    logger.Logger
}

func NewContentHandler(newsUC usecase.NewsUC, contactUC usecase.ContactUC, logger logger.Logger) *ContentHandler {
	return &ContentHandler{newsUC: newsUC, contactUC: contactUC, logger: logger}
}

// listNews — лента новостей; ?limit=3 даёт блок свежих новостей для главной.
func (h *ContentHandler) listNews(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	news, err := h.newsUC.ListNews(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res := make([]newsResponse, 0, len(news))
	for i := range news {
		res = append(res, toNewsResponse(&news[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

func (h *ContentHandler) createNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	publishedOn, err := parseDate(req.PublishedOn)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	news, err := h.newsUC.CreateNews(r.Context(), &usecase.CreateNewsReq{
		Title:       deref(req.Title),
		Description: deref(req.Description),
		PublishedOn: publishedOn,
		ImageURL:    deref(req.ImageURL),
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toNewsResponse(news))
}

func (h *ContentHandler) updateNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req newsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	publishedOn, err := parseDate(req.PublishedOn)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	news, err := h.newsUC.UpdateNews(r.Context(), &usecase.UpdateNewsReq{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		PublishedOn: publishedOn,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toNewsResponse(news))
}

func (h *ContentHandler) deleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "newsID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.newsUC.DeleteNews(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}

func (h *ContentHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	message, err := h.contactUC.SendMessage(r.Context(), &usecase.SendMessageReq{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]any{"id": message.ID})
}

// listMessages — обращения для админки; ?unread=true оставляет только непрочитанные.
func (h *ContentHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	var (
		filter usecase.ContactFilter
		err    error
	)

	if raw := r.URL.Query().Get("unread"); raw != "" {
		if filter.OnlyUnread, err = strconv.ParseBool(raw); err != nil {
			respondError(w, r, h.logger, e.Wrap("unread", e.ErrStatusBadRequest))
			return
		}
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	messages, err := h.contactUC.ListMessages(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	res := make([]contactMessageResponse, 0, len(messages))
	for i := range messages {
		res = append(res, toContactMessageResponse(&messages[i]))
	}

	WriteSuccess(w, http.StatusOK, res)
}

func (h *ContentHandler) setMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req setReadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.IsRead == nil {
		respondError(w, r, h.logger, e.Wrap("is_read", e.ErrMissingFields))
		return
	}

	message, err := h.contactUC.SetRead(r.Context(), id, *req.IsRead)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toContactMessageResponse(message))
}
