package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "ENTRADA" // suma stock
	MovementTypeSalida  = "SALIDA"  // resta stock
)

// StockMovement es una línea del libro de movimientos (append-only).
// TransactionID agrupa las líneas de una misma venta o importación.
type StockMovement struct {
	ID            int64
	TransactionID string
	ProductID     int64
	Type          string // ENTRADA | SALIDA
	Quantity      int    // siempre positivo; el signo lo da Type
	Date          time.Time
	Actor         string // usuario_responsable
	Notes         string
}

// IsValidMovementType reporta si t es ENTRADA o SALIDA.
func IsValidMovementType(t string) bool {
	return t == MovementTypeEntrada || t == MovementTypeSalida
}
