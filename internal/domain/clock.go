package domain

import "time"

// Clock entrega la hora actual para sellar movimientos y agrupar reportes por día.
type Clock interface {
	Now() time.Time
}

// SystemClock usa la hora del sistema en la zona horaria de la tienda.
type SystemClock struct {
	Location *time.Location
}

// Now devuelve time.Now() en Location (UTC si no se configuró).
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// FixedClock devuelve siempre el mismo instante. Útil en pruebas y procesos batch.
type FixedClock struct {
	T time.Time
}

// Now devuelve T.
func (c FixedClock) Now() time.Time { return c.T }
