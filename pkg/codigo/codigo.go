// Package codigo genera códigos cortos aleatorios para el flujo de
// autorización (alfabeto [A-Z0-9], fuente crypto/rand).
package codigo

import (
	"crypto/rand"
	"fmt"
)

const alfabeto = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generar devuelve un código aleatorio de n caracteres del alfabeto [A-Z0-9].
func Generar(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("codigo: longitud inválida %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("codigo: leer aleatorios: %w", err)
	}
	for i, b := range buf {
		buf[i] = alfabeto[int(b)%len(alfabeto)]
	}
	return string(buf), nil
}

// EsValido informa si s es un código bien formado: exactamente n caracteres,
// todos del alfabeto [A-Z0-9]. Los placeholders de solicitudes sin aprobar
// usan '-' y nunca pasan este filtro.
func EsValido(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
