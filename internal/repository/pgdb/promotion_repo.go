package pgdb

import (
	"context"
	"time"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// promotionSelect выбирает акции вместе с идентификаторами их товаров.
const promotionSelect = `
	SELECT p.id, p.name, p.description, p.kind, p.value, p.required_units, p.paid_units,
		p.is_active, p.start_date, p.end_date, p.created_at, p.updated_at,
		COALESCE(array_agg(pp.product_id ORDER BY pp.product_id)
			FILTER (WHERE pp.product_id IS NOT NULL), '{}') AS product_ids
	FROM promotions p
	LEFT JOIN promotion_products pp ON pp.promotion_id = p.id
`

// activeOn — условие «акция действует в день $1»: окно включительно, NULL — открытая граница.
const activeOn = `
	p.is_active
	AND (p.start_date IS NULL OR p.start_date <= $1::date)
	AND (p.end_date IS NULL OR p.end_date >= $1::date)
`

type PromotionRepo struct {
	pool *pgxpool.Pool
	conv converter.PromotionConverter
}

func NewPromotionRepo(pool *pgxpool.Pool, conv converter.PromotionConverter) *PromotionRepo {
	return &PromotionRepo{pool: pool, conv: conv}
}

func scanPromotion(row pgx.Row, model *converter.PromotionModel) error {
	return row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Kind, &model.Value,
		&model.RequiredUnits, &model.PaidUnits, &model.IsActive, &model.StartDate, &model.EndDate,
		&model.CreatedAt, &model.UpdatedAt, &model.ProductIDs,
	)
}

func (p *PromotionRepo) Create(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		INSERT INTO promotions (name, description, kind, value, required_units, paid_units, is_active, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	model := p.conv.ToModel(promotion)
	if err := q.QueryRow(ctx, query,
		model.Name, model.Description, model.Kind, model.Value, model.RequiredUnits, model.PaidUnits,
		model.IsActive, model.StartDate, model.EndDate,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *PromotionRepo) Update(ctx context.Context, promotion *domain.Promotion) (*domain.Promotion, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE promotions
		SET name = $2, description = $3, kind = $4, value = $5, required_units = $6, paid_units = $7,
			is_active = $8, start_date = $9, end_date = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	model := p.conv.ToModel(promotion)
	if err := q.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Kind, model.Value, model.RequiredUnits, model.PaidUnits,
		model.IsActive, model.StartDate, model.EndDate,
	).Scan(&model.UpdatedAt); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrPromotionNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *PromotionRepo) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	var model converter.PromotionModel
	err := scanPromotion(q.QueryRow(ctx, promotionSelect+` WHERE p.id = $1 GROUP BY p.id`, id), &model)
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrPromotionNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

func (p *PromotionRepo) List(ctx context.Context) ([]domain.Promotion, error) {
	return p.list(ctx, promotionSelect+` GROUP BY p.id ORDER BY p.id`)
}

// ListActive возвращает действующие в день day акции по возрастанию id.
// Этот порядок и есть порядок применения акций к корзине.
func (p *PromotionRepo) ListActive(ctx context.Context, day time.Time) ([]domain.Promotion, error) {
	return p.list(ctx, promotionSelect+` WHERE `+activeOn+` GROUP BY p.id ORDER BY p.id`, domain.DateOf(day))
}

func (p *PromotionRepo) list(ctx context.Context, query string, args ...any) ([]domain.Promotion, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Promotion, 0)
	for rows.Next() {
		var model converter.PromotionModel
		if err := scanPromotion(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// SetProducts заменяет набор товаров акции.
func (p *PromotionRepo) SetProducts(ctx context.Context, promotionID int64, productIDs []int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM promotion_products WHERE promotion_id = $1`, promotionID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if len(productIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO promotion_products (promotion_id, product_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`
	if _, err := tx.Exec(ctx, query, promotionID, productIDs); err != nil {
		if postgresForeignKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *PromotionRepo) CountActive(ctx context.Context, day time.Time) (int64, error) {
	var count int64
	query := `SELECT count(*) FROM promotions p WHERE ` + activeOn
	if err := p.pool.QueryRow(ctx, query, domain.DateOf(day)).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

// Delete удаляет акцию; привязки к товарам удаляются каскадом.
func (p *PromotionRepo) Delete(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, p.pool)

	tag, err := q.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrPromotionNotFound)
	}

	return nil
}
