// Package inventory contiene las reglas puras del motor de stock (sin I/O).
package inventory

import (
	"fmt"
	"math"
	"time"

	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// DateLayout formato de fecha usado en filtros y reportes (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ApplyMovement calcula el stock resultante de aplicar un movimiento.
// ENTRADA suma sin condición; SALIDA exige quantity <= current.
func ApplyMovement(current int, movType string, quantity int) (int, error) {
	if quantity <= 0 {
		return current, domain.ErrInvalidInput
	}
	switch movType {
	case entity.MovementTypeEntrada:
		return current + quantity, nil
	case entity.MovementTypeSalida:
		if quantity > current {
			return current, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	default:
		return current, domain.ErrInvalidMovementType
	}
}

// AdjustmentFor devuelve el movimiento que lleva el stock de current a target.
// ok es false si no hay diferencia.
func AdjustmentFor(current, target int) (movType string, quantity int, ok bool) {
	switch {
	case target > current:
		return entity.MovementTypeEntrada, target - current, true
	case target < current:
		return entity.MovementTypeSalida, current - target, true
	default:
		return "", 0, false
	}
}

// SuggestedOrder cantidad sugerida para reponer: hasta 1.5 veces el punto de reorden.
func SuggestedOrder(stock, reorderPoint int) int {
	target := int(math.Ceil(float64(reorderPoint) * 1.5))
	if target <= stock {
		return 0
	}
	return target - stock
}

// StartOfDay devuelve las 00:00 del día de t en loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow devuelve el intervalo [day 00:00, day+1 00:00) en loc.
func DayWindow(day time.Time, loc *time.Location) (start, end time.Time) {
	start = StartOfDay(day, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDay interpreta s (YYYY-MM-DD) como el inicio de ese día en loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q, formato esperado YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}
