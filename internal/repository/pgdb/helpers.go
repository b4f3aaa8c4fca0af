package pgdb

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func postgresDuplicate(err error) bool {
	return pgErrorCode(err) == uniqueViolation
}

func postgresForeignKey(err error) bool {
	return pgErrorCode(err) == foreignKeyViolation
}

func postgresCheck(err error) bool {
	return pgErrorCode(err) == checkViolation
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// prefixed квалифицирует список колонок псевдонимом таблицы: "id, name" -> "p.id, p.name".
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, col := range parts {
		parts[i] = alias + "." + strings.TrimSpace(col)
	}
	return strings.Join(parts, ", ")
}
