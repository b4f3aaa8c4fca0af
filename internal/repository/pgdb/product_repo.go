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
)

const productColumns = `id, name, description, price, stock, category_id, is_active, created_at, updated_at`

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

func scanProduct(row pgx.Row, model *converter.ProductModel) error {
	return row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Price, &model.Stock,
		&model.CategoryID, &model.IsActive, &model.CreatedAt, &model.UpdatedAt,
	)
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		INSERT INTO products (name, description, price, stock, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	err := scanProduct(q.QueryRow(ctx, query,
		model.Name, model.Description, model.Price, model.Stock, model.CategoryID, model.IsActive,
	), model)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category_id = $6, is_active = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	model := p.conv.ToModel(product)
	err := scanProduct(q.QueryRow(ctx, query,
		model.ID, model.Name, model.Description, model.Price, model.Stock, model.CategoryID, model.IsActive,
	), model)
	if err != nil {
		switch {
		case noRows(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		case postgresForeignKey(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		case postgresCheck(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrStatusBadRequest)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return p.get(ctx, tr.QuerierFromCtx(ctx, p.pool), id, "")
}

// GetForUpdate блокирует строку товара до конца текущей транзакции.
func (p *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.get(ctx, tx, id, "FOR UPDATE")
}

func (p *ProductRepo) get(ctx context.Context, q tr.Querier, id int64, lock string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 ` + lock

	var model converter.ProductModel
	if err := scanProduct(q.QueryRow(ctx, query, id), &model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// AdjustStock меняет остаток одним условным UPDATE, остаток не может уйти в минус.
func (p *ProductRepo) AdjustStock(ctx context.Context, id int64, delta int) error {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
	`

	tag, err := q.Exec(ctx, query, id, delta)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := p.get(ctx, q, id, ""); err != nil {
			return err
		}
		return e.Wrap(whereami.WhereAmI(), e.ErrInsufficientStock)
	}

	return nil
}

// List возвращает активные товары по фильтру.
func (p *ProductRepo) List(ctx context.Context, filter usecase.ProductFilter) ([]domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	var (
		conds = []string{"p.is_active", "NOT c.is_archived"}
		args  []any
	)
	if filter.OnlyInStock {
		conds = append(conds, "p.stock > 0")
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf(
			"(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR c.name ILIKE $%[1]d)", len(args),
		))
	}

	query := `
		SELECT ` + prefixed("p", productColumns) + `
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY p.id`
	query += paginate(&args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := scanProduct(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// GetProductsInfo возвращает информацию о продуктах по их идентификаторам, включая название категории.
func (p *ProductRepo) GetProductsInfo(ctx context.Context, ids []int64) ([]usecase.ProductInfo, error) {
	query := `
		SELECT pr.id, pr.name, pr.price, pr.stock, cat.name
		FROM products pr
		JOIN categories cat ON pr.category_id = cat.id
		WHERE pr.id = ANY($1)
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]usecase.ProductInfo, 0)
	for rows.Next() {
		var product usecase.ProductInfo
		if err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.CategoryName); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, product)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// AddImages привязывает загруженные объекты к товару одним батчем.
func (p *ProductRepo) AddImages(ctx context.Context, productID int64, keys []string) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(`INSERT INTO product_images (product_id, object_key) VALUES ($1, $2)`, productID, key)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if postgresForeignKey(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *ProductRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE is_active`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}

// Delete удаляет товар. Позиции корзин удаляются явно, изображения и привязки к акциям —
// каскадом; ссылка из order_items защищает товар от удаления.
func (p *ProductRepo) Delete(ctx context.Context, id int64) ([]string, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, id); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	rows, err := tx.Query(ctx, `SELECT object_key FROM product_images WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if postgresForeignKey(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductInUse)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return keys, nil
}

// paginate дописывает LIMIT/OFFSET, если они заданы.
func paginate(args *[]any, limit, offset int) string {
	var sb strings.Builder
	if limit > 0 {
		*args = append(*args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(*args))
	}
	if offset > 0 {
		*args = append(*args, offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(*args))
	}
	return sb.String()
}
