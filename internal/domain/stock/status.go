package stock

// Status es el estado derivado del stock frente al punto de reorden.
type Status string

const (
	StatusSufficient Status = "sufficient"
	StatusLow        Status = "low"
	StatusCritical   Status = "critical"
)

// Evaluate deriva el estado del stock (servicio de dominio puro, sin I/O).
// critical: stock en cero; low: 0 < stock <= umbral; sufficient: el resto.
// Con umbral 0 solo el stock en cero es crítico: cualquier existencia es suficiente.
func Evaluate(currentStock, reorderThreshold int) Status {
	if currentStock == 0 {
		return StatusCritical
	}
	if currentStock <= reorderThreshold {
		return StatusLow
	}
	return StatusSufficient
}
