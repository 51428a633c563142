package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// Validación: se rechazan antes de cualquier mutación.
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrInvalidQuantity = errors.New("la cantidad no puede ser cero")

	// Estado: se rechazan sin efectos secundarios.
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrAlreadyResolved   = errors.New("la alerta ya está resuelta")

	// No encontrado.
	ErrProductNotFound = errors.New("producto no encontrado")
	ErrAlertNotFound   = errors.New("alerta no encontrada")

	// Dependencias: fallas del forecaster externo; nunca tumban el resto del sistema.
	ErrInsufficientHistory = errors.New("historial insuficiente para pronosticar")
	ErrForecastUnavailable = errors.New("forecaster no disponible")
	ErrForecastTimeout     = errors.New("timeout del forecaster")

	// Concurrencia / almacenamiento.
	ErrLockTimeout      = errors.New("timeout adquiriendo el bloqueo del producto")
	ErrTransientStorage = errors.New("error transitorio de almacenamiento")
)
