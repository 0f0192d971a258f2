package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNoEncontrada            = errors.New("línea de vida no encontrada")
	ErrCodigoDuplicado         = errors.New("el código ya está registrado")
	ErrEntradaInvalida         = errors.New("entrada inválida")
	ErrRelacionExistente       = errors.New("la línea ya tiene una relación como padre")
	ErrLineaDerivada           = errors.New("la línea ya es hija de otra relación")
	ErrSolicitudDuplicada      = errors.New("ya existe una solicitud de autorización pendiente")
	ErrSolicitudInvalida       = errors.New("la solicitud no está pendiente o ya expiró")
	ErrAutorizacionNoRequerida = errors.New("la línea puede eliminarse directamente sin autorización")
	ErrAutorizacionRequerida   = errors.New("se requiere un código de autorización para eliminar esta línea")
	ErrNoAutorizado            = errors.New("no autorizado")
)
