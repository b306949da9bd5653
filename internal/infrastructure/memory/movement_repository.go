package memory

import (
	"context"
	"sort"
	"time"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos en memoria.
type StockMovementRepo struct {
	acc accessor
}

// Create agrega la línea y asigna ID.
func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.acc.write(func(st *state) error {
		st.movSeq++
		movement.ID = st.movSeq
		st.movements = append(st.movements, *movement)
		return nil
	})
}

// List une con el producto y ordena por fecha DESC, id DESC.
func (r *StockMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]repository.MovementRecord, error) {
	out := []repository.MovementRecord{}
	r.acc.read(func(st *state) {
		for _, m := range st.movements {
			if filter.From != nil && m.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !m.Date.Before(*filter.To) {
				continue
			}
			rec := repository.MovementRecord{StockMovement: m}
			if p, ok := st.products[m.ProductID]; ok {
				sku, name := p.SKU, p.Name
				rec.ProductSKU = &sku
				rec.ProductName = &name
			}
			out = append(out, rec)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DeleteBefore borra los movimientos con fecha < before.
func (r *StockMovementRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := r.acc.write(func(st *state) error {
		kept := st.movements[:0:0]
		for _, m := range st.movements {
			if m.Date.Before(before) {
				deleted++
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	return deleted, err
}
