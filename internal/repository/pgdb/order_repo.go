package pgdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, number, customer_id, status, subtotal, discount_total, total, shipping_address,
	payment_method, placed_at, shipped_at, estimated_delivery, delivered_at, confirmed_by_customer, confirmed_by_admin`

// OrderRepo хранит заказы. Денежные поля и позиции записываются один раз при создании.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

func scanOrder(row pgx.Row, model *converter.OrderModel) error {
	return row.Scan(
		&model.ID, &model.Number, &model.CustomerID, &model.Status, &model.Subtotal, &model.DiscountTotal,
		&model.Total, &model.ShippingAddress, &model.PaymentMethod, &model.PlacedAt, &model.ShippedAt,
		&model.EstimatedDelivery, &model.DeliveredAt, &model.ConfirmedByCustomer, &model.ConfirmedByAdmin,
	)
}

// Create сохраняет заказ и его позиции в текущей транзакции.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO orders (number, customer_id, status, subtotal, discount_total, total, shipping_address,
			payment_method, placed_at, estimated_delivery)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	model := o.conv.ToModel(order)
	if err := tx.QueryRow(ctx, query,
		model.Number, model.CustomerID, model.Status, model.Subtotal, model.DiscountTotal, model.Total,
		model.ShippingAddress, model.PaymentMethod, model.PlacedAt, model.EstimatedDelivery,
	).Scan(&model.ID); err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCustomerNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lines := make([]converter.OrderLineModel, len(order.Lines))
	batch := &pgx.Batch{}
	for i, l := range order.Lines {
		lines[i] = converter.OrderLineModel{
			OrderID:     model.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			model.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&lines[i].ID)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model, lines), nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return o.get(ctx, tr.QuerierFromCtx(ctx, o.pool), id, "")
}

// GetForUpdate блокирует заказ до конца текущей транзакции.
func (o *OrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.get(ctx, tx, id, "FOR UPDATE")
}

func (o *OrderRepo) get(ctx context.Context, q tr.Querier, id int64, lock string) (*domain.Order, error) {
	var model converter.OrderModel
	if err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 `+lock, id), &model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lines, err := o.loadLines(ctx, q, []int64{model.ID})
	if err != nil {
		return nil, err
	}

	return o.conv.ToEntity(&model, lines[model.ID]), nil
}

func (o *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	return o.List(ctx, usecase.OrderFilter{CustomerID: &customerID})
}

// List возвращает заказы по фильтру, новые первыми.
func (o *OrderRepo) List(ctx context.Context, filter usecase.OrderFilter) ([]domain.Order, error) {
	q := tr.QuerierFromCtx(ctx, o.pool)

	var (
		conds []string
		args  []any
	)
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY placed_at DESC, id DESC` + paginate(&args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var (
		models []converter.OrderModel
		ids    []int64
	)
	for rows.Next() {
		var model converter.OrderModel
		if err := scanOrder(rows, &model); err != nil {
			rows.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, model)
		ids = append(ids, model.ID)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lines, err := o.loadLines(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Order, 0, len(models))
	for i := range models {
		result = append(result, *o.conv.ToEntity(&models[i], lines[models[i].ID]))
	}

	return result, nil
}

func (o *OrderRepo) loadLines(ctx context.Context, q tr.Querier, orderIDs []int64) (map[int64][]converter.OrderLineModel, error) {
	result := make(map[int64][]converter.OrderLineModel, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var l converter.OrderLineModel
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// UpdateProgress сохраняет статус, флаги подтверждения и даты доставки.
func (o *OrderRepo) UpdateProgress(ctx context.Context, order *domain.Order) error {
	q := tr.QuerierFromCtx(ctx, o.pool)

	query := `
		UPDATE orders
		SET status = $2, confirmed_by_customer = $3, confirmed_by_admin = $4, shipped_at = $5, delivered_at = $6
		WHERE id = $1
	`

	model := o.conv.ToModel(order)
	tag, err := q.Exec(ctx, query,
		model.ID, model.Status, model.ConfirmedByCustomer, model.ConfirmedByAdmin, model.ShippedAt, model.DeliveredAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return nil
}

func (o *OrderRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := o.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

// Revenue — сумма итогов всех неотменённых заказов.
func (o *OrderRepo) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	query := `SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> $1`
	if err := o.pool.QueryRow(ctx, query, string(domain.OrderStatusCancelled)).Scan(&revenue); err != nil {
		return decimal.Zero, e.Wrap(whereami.WhereAmI(), err)
	}
	return revenue, nil
}
