package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad entre el stock del producto y el libro de movimientos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// ChangeNotifier recibe aviso después de cada commit que altera stock o el historial
// (la caché de reportes incrementa su versión).
type ChangeNotifier interface {
	Bump(ctx context.Context) error
}

// MovementRecorder métricas de negocio del motor de inventario.
type MovementRecorder interface {
	RecordMovement(movType string, quantity int)
	RecordCheckout(items int, total decimal.Decimal)
	RecordRejected(reason string)
}

// Hooks colaboradores opcionales; los campos nil se ignoran.
type Hooks struct {
	Notifier ChangeNotifier
	Recorder MovementRecorder
}

func (h Hooks) bump(ctx context.Context) error {
	if h.Notifier == nil {
		return nil
	}
	return h.Notifier.Bump(ctx)
}

func (h Hooks) movement(movType string, quantity int) {
	if h.Recorder != nil {
		h.Recorder.RecordMovement(movType, quantity)
	}
}

func (h Hooks) checkout(items int, total decimal.Decimal) {
	if h.Recorder != nil {
		h.Recorder.RecordCheckout(items, total)
	}
}

func (h Hooks) rejected(reason string) {
	if h.Recorder != nil {
		h.Recorder.RecordRejected(reason)
	}
}
