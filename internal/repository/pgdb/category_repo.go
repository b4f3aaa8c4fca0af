package pgdb

import (
	"context"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const categoryColumns = `id, name, description, created_at, updated_at, is_archived`

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// Create создаёт категорию; имя уникально.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		INSERT INTO categories(name, description) VALUES ($1, $2)
		RETURNING ` + categoryColumns

	model := c.conv.ToModel(category)
	if err := q.QueryRow(ctx, query, model.Name, model.Description).
		Scan(
			&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var model converter.CategoryModel
	if err := q.QueryRow(ctx, query, id).
		Scan(
			&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// List возвращает неархивные категории по алфавиту.
func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE NOT is_archived ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Category, 0)
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Update меняет название и описание неархивной категории.
func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		UPDATE categories SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1 AND NOT is_archived
		RETURNING ` + categoryColumns

	model := c.conv.ToModel(category)
	if err := q.QueryRow(ctx, query, model.ID, model.Name, model.Description).
		Scan(
			&model.ID, &model.Name, &model.Description, &model.CreatedAt, &model.UpdatedAt, &model.IsArchived,
		); err != nil {
		switch {
		case noRows(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		case postgresDuplicate(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// Archive помечает категорию архивной. Повторная архивация — e.ErrCategoryNotFound.
func (c *CategoryRepo) Archive(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, c.pool)

	tag, err := q.Exec(ctx,
		`UPDATE categories SET is_archived = true, updated_at = NOW() WHERE id = $1 AND NOT is_archived`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}
