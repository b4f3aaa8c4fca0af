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

const cartColumns = `id, customer_id, is_active, subtotal, total_discount, total, created_at, updated_at`

// CartRepo хранит корзины и их позиции. Все изменения выполняются в транзакции
// под блокировкой строки корзины.
type CartRepo struct {
	pool *pgxpool.Pool
	conv converter.CartConverter
}

func NewCartRepo(pool *pgxpool.Pool, conv converter.CartConverter) *CartRepo {
	return &CartRepo{pool: pool, conv: conv}
}

func scanCart(row pgx.Row, model *converter.CartModel) error {
	return row.Scan(
		&model.ID, &model.CustomerID, &model.IsActive, &model.Subtotal, &model.TotalDiscount, &model.Total,
		&model.CreatedAt, &model.UpdatedAt,
	)
}

func (c *CartRepo) GetActiveForUpdate(ctx context.Context, customerID int64) (*domain.Cart, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + cartColumns + ` FROM carts WHERE customer_id = $1 AND is_active FOR UPDATE`

	var model converter.CartModel
	if err := scanCart(tx.QueryRow(ctx, query, customerID), &model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCartNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// CreateActive создаёт активную корзину. При гонке двух запросов второй получает
// уже созданную корзину под блокировкой.
func (c *CartRepo) CreateActive(ctx context.Context, customerID int64) (*domain.Cart, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO carts (customer_id) VALUES ($1)
		ON CONFLICT (customer_id) WHERE is_active DO NOTHING
		RETURNING ` + cartColumns

	var model converter.CartModel
	if err := scanCart(tx.QueryRow(ctx, query, customerID), &model); err != nil {
		switch {
		case noRows(err):
			return c.GetActiveForUpdate(ctx, customerID)
		case postgresForeignKey(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCustomerNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

// ListLines возвращает позиции корзины с названием и текущей ценой товара.
func (c *CartRepo) ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, ci.unit_price, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.CartLine, 0)
	for rows.Next() {
		var model converter.CartLineModel
		if err := rows.Scan(
			&model.ID, &model.CartID, &model.ProductID, &model.ProductName,
			&model.Quantity, &model.UnitPrice, &model.ListPrice,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, c.conv.LineToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// UpsertLine сохраняет позицию: одна позиция на товар в корзине.
func (c *CartRepo) UpsertLine(ctx context.Context, line *domain.CartLine) (*domain.CartLine, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_price = EXCLUDED.unit_price
		RETURNING id
	`

	model := c.conv.LineToModel(line)
	if err := tx.QueryRow(ctx, query, model.CartID, model.ProductID, model.Quantity, model.UnitPrice).
		Scan(&model.ID); err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := c.conv.LineToEntity(model)
	return &result, nil
}

func (c *CartRepo) DeleteLine(ctx context.Context, cartID int64, lineID int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, lineID, cartID)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCartLineNotFound)
	}

	return nil
}

// UpdateTotals сохраняет результат последнего пересчёта.
func (c *CartRepo) UpdateTotals(ctx context.Context, cartID int64, totals domain.Totals) error {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		UPDATE carts
		SET subtotal = $2, total_discount = $3, total = $4, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := q.Exec(ctx, query, cartID, totals.Subtotal, totals.TotalDiscount, totals.Total); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Consume очищает и деактивирует корзину после оформления заказа.
func (c *CartRepo) Consume(ctx context.Context, cartID int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET is_active = false, updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
