package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// codigoPg extrae el código SQLSTATE de un error de PostgreSQL. Cadena vacía
// si el error no proviene del servidor.
func codigoPg(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation detecta la violación de una constraint única (23505),
// usada para traducirla a los errores de dominio de duplicado.
func isUniqueViolation(err error) bool {
	if codigoPg(err) == "23505" {
		return true
	}
	// Errores envueltos fuera de la cadena de pgconn.
	return err != nil && strings.Contains(err.Error(), "23505")
}
