package pgdb

import (
	"context"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const newsColumns = `id, title, description, published_on, image_url, created_at, updated_at`

type NewsRepo struct {
	pool *pgxpool.Pool
	conv converter.NewsConverter
}

func NewNewsRepo(pool *pgxpool.Pool, conv converter.NewsConverter) *NewsRepo {
	return &NewsRepo{pool: pool, conv: conv}
}

func scanNews(row pgx.Row, model *converter.NewsModel) error {
	return row.Scan(
		&model.ID, &model.Title, &model.Description, &model.PublishedOn, &model.ImageURL,
		&model.CreatedAt, &model.UpdatedAt,
	)
}

func (n *NewsRepo) Create(ctx context.Context, news *domain.News) (*domain.News, error) {
	q := tr.QuerierFromCtx(ctx, n.pool)

	query := `
		INSERT INTO news (title, description, published_on, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + newsColumns

	model := n.conv.ToModel(news)
	if err := scanNews(q.QueryRow(ctx, query,
		model.Title, model.Description, model.PublishedOn, model.ImageURL,
	), model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return n.conv.ToEntity(model), nil
}

func (n *NewsRepo) Update(ctx context.Context, news *domain.News) (*domain.News, error) {
	q := tr.QuerierFromCtx(ctx, n.pool)

	query := `
		UPDATE news
		SET title = $2, description = $3, published_on = $4, image_url = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + newsColumns

	model := n.conv.ToModel(news)
	if err := scanNews(q.QueryRow(ctx, query,
		model.ID, model.Title, model.Description, model.PublishedOn, model.ImageURL,
	), model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrNewsNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return n.conv.ToEntity(model), nil
}

func (n *NewsRepo) GetByID(ctx context.Context, id int64) (*domain.News, error) {
	q := tr.QuerierFromCtx(ctx, n.pool)

	var model converter.NewsModel
	if err := scanNews(q.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id), &model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrNewsNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return n.conv.ToEntity(&model), nil
}

// List возвращает новости от свежих к старым.
func (n *NewsRepo) List(ctx context.Context, limit, offset int) ([]domain.News, error) {
	q := tr.QuerierFromCtx(ctx, n.pool)

	var args []any
	query := `SELECT ` + newsColumns + ` FROM news ORDER BY published_on DESC, id DESC` +
		paginate(&args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.News, 0)
	for rows.Next() {
		var model converter.NewsModel
		if err := scanNews(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *n.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (n *NewsRepo) Delete(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, n.pool)

	tag, err := q.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNewsNotFound)
	}

	return nil
}
