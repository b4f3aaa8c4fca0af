package pgdb

import (
	"context"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const contactMessageColumns = `id, sender_name, sender_email, message, sent_at, is_read`

type ContactMessageRepo struct {
	pool *pgxpool.Pool
	conv converter.ContactMessageConverter
}

func NewContactMessageRepo(pool *pgxpool.Pool, conv converter.ContactMessageConverter) *ContactMessageRepo {
	return &ContactMessageRepo{pool: pool, conv: conv}
}

func scanContactMessage(row pgx.Row, model *converter.ContactMessageModel) error {
	return row.Scan(
		&model.ID, &model.SenderName, &model.SenderEmail, &model.Message, &model.SentAt, &model.IsRead,
	)
}

func (c *ContactMessageRepo) Create(ctx context.Context, message *domain.ContactMessage) (*domain.ContactMessage, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `
		INSERT INTO contact_messages (sender_name, sender_email, message)
		VALUES ($1, $2, $3)
		RETURNING ` + contactMessageColumns

	model := c.conv.ToModel(message)
	if err := scanContactMessage(q.QueryRow(ctx, query,
		model.SenderName, model.SenderEmail, model.Message,
	), model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

// List возвращает обращения от новых к старым.
func (c *ContactMessageRepo) List(ctx context.Context, filter usecase.ContactFilter) ([]domain.ContactMessage, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `SELECT ` + contactMessageColumns + ` FROM contact_messages`
	if filter.OnlyUnread {
		query += ` WHERE NOT is_read`
	}

	var args []any
	query += ` ORDER BY sent_at DESC, id DESC` + paginate(&args, filter.Limit, filter.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.ContactMessage, 0)
	for rows.Next() {
		var model converter.ContactMessageModel
		if err := scanContactMessage(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *c.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (c *ContactMessageRepo) SetRead(ctx context.Context, id int64, read bool) (*domain.ContactMessage, error) {
	q := tr.QuerierFromCtx(ctx, c.pool)

	query := `UPDATE contact_messages SET is_read = $2 WHERE id = $1 RETURNING ` + contactMessageColumns

	var model converter.ContactMessageModel
	if err := scanContactMessage(q.QueryRow(ctx, query, id, read), &model); err != nil {
		if noRows(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrMessageNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}

func (c *ContactMessageRepo) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := c.pool.QueryRow(ctx, `SELECT count(*) FROM contact_messages WHERE NOT is_read`).Scan(&count); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}
	return count, nil
}
