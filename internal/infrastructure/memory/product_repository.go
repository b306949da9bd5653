package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	acc accessor
}

func copyProduct(p entity.Product) *entity.Product {
	if p.DefaultSupplierID != nil {
		id := *p.DefaultSupplierID
		p.DefaultSupplierID = &id
	}
	return &p
}

// Create asigna ID y valida unicidad de SKU.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.acc.write(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		st.productSeq++
		product.ID = st.productSeq
		st.products[product.ID] = *copyProduct(*product)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	r.acc.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
	})
	return out, nil
}

// GetBySKU devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.acc.read(func(st *state) {
		for _, p := range st.products {
			if p.SKU == sku {
				out = copyProduct(p)
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate dentro de Store.Run la tx ya es exclusiva; equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update persiste campos descriptivos sin tocar el stock.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.acc.write(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, p := range st.products {
			if p.ID != product.ID && p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		upd := *copyProduct(*product)
		upd.Stock = cur.Stock
		upd.CreatedAt = cur.CreatedAt
		st.products[product.ID] = upd
		return nil
	})
}

// UpdateStock fija stock_actual.
func (r *ProductRepo) UpdateStock(_ context.Context, id int64, stock int) error {
	return r.acc.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Stock = stock
		st.products[id] = p
		return nil
	})
}

// List filtra por subcadena en sku/nombre y pagina en orden de ID.
func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	var all []*entity.Product
	needle := strings.ToLower(strings.TrimSpace(filter.Search))
	r.acc.read(func(st *state) {
		for _, p := range st.products {
			if needle != "" &&
				!strings.Contains(strings.ToLower(p.SKU), needle) &&
				!strings.Contains(strings.ToLower(p.Name), needle) {
				continue
			}
			all = append(all, copyProduct(p))
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if filter.Offset > 0 {
		if filter.Offset >= len(all) {
			return []*entity.Product{}, total, nil
		}
		all = all[filter.Offset:]
	}
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	if all == nil {
		all = []*entity.Product{}
	}
	return all, total, nil
}

// ListBelowReorderPoint productos con stock <= punto de reorden.
func (r *ProductRepo) ListBelowReorderPoint(_ context.Context) ([]*entity.Product, error) {
	out := []*entity.Product{}
	r.acc.read(func(st *state) {
		for _, p := range st.products {
			if p.NeedsRestock() {
				out = append(out, copyProduct(p))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete elimina el producto; los movimientos quedan huérfanos como en PostgreSQL.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.products, id)
		return nil
	})
}
