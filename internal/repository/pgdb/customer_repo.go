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

const customerColumns = `id, username, full_name, email, phone, address, created_at`

type CustomerRepo struct {
	pool *pgxpool.Pool
	conv converter.CustomerConverter
}

func NewCustomerRepo(pool *pgxpool.Pool, conv converter.CustomerConverter) *CustomerRepo {
	return &CustomerRepo{pool: pool, conv: conv}
}

func scanCustomer(row pgx.Row, model *converter.CustomerModel) error {
	return row.Scan(
		&model.ID, &model.Username, &model.FullName, &model.Email, &model.Phone, &model.Address, &model.CreatedAt,
	)
}

// Create регистрирует покупателя; логин уникален.
func (c *CustomerRepo) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		INSERT INTO customers (username, full_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns

	model := c.conv.ToModel(customer)
	err := scanCustomer(q.QueryRow(ctx, query,
		model.Username, model.FullName, model.Email, model.Phone, model.Address,
	), model)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

func (c *CustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	var model converter.CustomerModel
	err := scanCustomer(q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), &model)
	if err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCustomerNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CustomerRepo) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		var model converter.CustomerModel
		if err := scanCustomer(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *CustomerRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

func (c *CustomerRepo) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		UPDATE customers
		SET username = $2, full_name = $3, email = $4, phone = $5, address = $6
		WHERE id = $1
		RETURNING ` + customerColumns

	model := c.conv.ToModel(customer)
	err := scanCustomer(q.QueryRow(ctx, query,
		model.ID, model.Username, model.FullName, model.Email, model.Phone, model.Address,
	), model)
	if err != nil {
		switch {
		case noRows(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCustomerNotFound)
		case postgresDuplicate(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// Delete удаляет покупателя вместе с корзинами. Заказы ссылаются на покупателя и защищают его от удаления.
func (c *CustomerRepo) Delete(ctx context.Context, id int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE customer_id = $1`, id); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrCustomerInUse)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCustomerNotFound)
	}

	return nil
}
