package usecase

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/pricing"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// NewsUseCase ведёт ленту новостей магазина.
type NewsUseCase struct {
	newsRepo NewsRepository
	engine   *pricing.Engine
	logger   logger.Logger
}

func NewNewsUC(newsRepo NewsRepository, engine *pricing.Engine, logger logger.Logger) *NewsUseCase {
	return &NewsUseCase{
		newsRepo: newsRepo,
		engine:   engine,
		logger:   logger,
	}
}

// ListNews возвращает новости от свежих к старым; limit = 0 — без ограничения.
func (n *NewsUseCase) ListNews(ctx context.Context, limit, offset int) ([]domain.News, error) {
	const op = "NewsUseCase.ListNews"

	news, err := n.newsRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return news, nil
}

func (n *NewsUseCase) CreateNews(ctx context.Context, req *CreateNewsReq) (*domain.News, error) {
	const op = "NewsUseCase.CreateNews"

	publishedOn := n.engine.Today()
	if req.PublishedOn != nil {
		publishedOn = *req.PublishedOn
	}

	news := domain.NewNews(
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		publishedOn,
		strings.TrimSpace(req.ImageURL),
	)
	if err := validateNews(news); err != nil {
		return nil, e.Wrap(op, err)
	}

	created, err := n.newsRepo.Create(ctx, news)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	n.logger.Infof("News published. news_id: %d", created.ID)
	return created, nil
}

func (n *NewsUseCase) UpdateNews(ctx context.Context, req *UpdateNewsReq) (*domain.News, error) {
	const op = "NewsUseCase.UpdateNews"

	news, err := n.newsRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Title != nil {
		news.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		news.Description = strings.TrimSpace(*req.Description)
	}
	if req.PublishedOn != nil {
		news.PublishedOn = domain.DateOf(*req.PublishedOn)
	}
	if req.ImageURL != nil {
		news.ImageURL = strings.TrimSpace(*req.ImageURL)
	}

	if err := validateNews(news); err != nil {
		return nil, e.Wrap(op, err)
	}

	updated, err := n.newsRepo.Update(ctx, news)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

func (n *NewsUseCase) DeleteNews(ctx context.Context, id int64) error {
	const op = "NewsUseCase.DeleteNews"

	if err := n.newsRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func validateNews(news *domain.News) error {
	if news.Title == "" {
		return e.ErrTitleRequired
	}
	if utf8.RuneCountInString(news.Title) > domain.NewsTitleMaxLen {
		return e.ErrTitleTooLong
	}

	if news.ImageURL != "" {
		u, err := url.ParseRequestURI(news.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return e.Wrap(news.ImageURL, e.ErrInvalidImageURL)
		}
	}

	return nil
}
