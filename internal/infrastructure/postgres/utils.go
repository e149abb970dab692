package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isCheckViolation verifica si un error es una violación de CHECK constraint (23514).
// El guard de no-negatividad se valida antes de escribir; el CHECK de la tabla
// es el respaldo a nivel de base de datos.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return strings.Contains(err.Error(), "23514")
}
