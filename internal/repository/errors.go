package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Стандартные ошибки слоя репозиториев.
var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate нарушение уникального ограничения.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidOperation операция недопустима в текущем состоянии записи.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Код Postgres для нарушения уникальности.
const pgUniqueViolation = "23505"

// isUniqueViolation проверяет, что ошибка вызвана нарушением уникального
// ограничения в Postgres.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
