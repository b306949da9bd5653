package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productsTable = "productos"

var productColumns = []string{
	"id", "sku", "nombre", "COALESCE(descripcion, '') AS descripcion",
	"precio_compra", "precio_venta", "stock_actual", "punto_reorden",
	"proveedor_default_id", "created_at",
}

// productRow fila de productos tal como la devuelve la base.
type productRow struct {
	ID                int64           `db:"id"`
	SKU               string          `db:"sku"`
	Name              string          `db:"nombre"`
	Description       string          `db:"descripcion"`
	PurchasePrice     decimal.Decimal `db:"precio_compra"`
	SalePrice         decimal.Decimal `db:"precio_venta"`
	Stock             int             `db:"stock_actual"`
	ReorderPoint      int             `db:"punto_reorden"`
	DefaultSupplierID *int64          `db:"proveedor_default_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:                r.ID,
		SKU:               r.SKU,
		Name:              r.Name,
		Description:       r.Description,
		PurchasePrice:     r.PurchasePrice,
		SalePrice:         r.SalePrice,
		Stock:             r.Stock,
		ReorderPoint:      r.ReorderPoint,
		DefaultSupplierID: r.DefaultSupplierID,
		CreatedAt:         r.CreatedAt,
	}
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto y completa ID y CreatedAt.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO productos (sku, nombre, descripcion, precio_compra, precio_venta, stock_actual, punto_reorden, proveedor_default_id, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING id, created_at`
	var createdAt *time.Time
	if !product.CreatedAt.IsZero() {
		createdAt = &product.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		product.SKU, product.Name, product.Description, product.PurchasePrice, product.SalePrice,
		product.Stock, product.ReorderPoint, product.DefaultSupplierID, createdAt,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return mapError("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op string, where squirrel.Sqlizer, forUpdate bool) (*entity.Product, error) {
	q := psql.Select(productColumns...).From(productsTable).Where(where)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return row.toEntity(), nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product", squirrel.Eq{"id": id}, false)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", squirrel.Eq{"sku": sku}, false)
}

// GetForUpdate SELECT ... FOR UPDATE: solo tiene sentido con un Querier de transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", squirrel.Eq{"id": id}, true)
}

// Update actualiza campos descriptivos y precios. No toca stock_actual.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE productos
		SET sku = $2, nombre = $3, descripcion = NULLIF($4, ''), precio_compra = $5, precio_venta = $6,
		    punto_reorden = $7, proveedor_default_id = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description,
		product.PurchasePrice, product.SalePrice, product.ReorderPoint, product.DefaultSupplierID,
	)
	if err != nil {
		return mapError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija stock_actual.
func (r *ProductRepo) UpdateStock(ctx context.Context, id int64, stock int) error {
	tag, err := r.q.Exec(ctx, `UPDATE productos SET stock_actual = $2 WHERE id = $1`, id, stock)
	if err != nil {
		return mapError("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra por subcadena (ILIKE) en sku/nombre y pagina por ID.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"nombre": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From(productsTable).Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count products: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, mapError("count products", err)
	}

	q := psql.Select(productColumns...).From(productsTable).Where(where).OrderBy("id")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list products: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, mapError("list products", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

// ListBelowReorderPoint productos con stock_actual <= punto_reorden.
func (r *ProductRepo) ListBelowReorderPoint(ctx context.Context) ([]*entity.Product, error) {
	sql, args, err := psql.Select(productColumns...).From(productsTable).
		Where("stock_actual <= punto_reorden").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build low stock: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, mapError("list low stock", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Delete elimina un producto por ID. Los movimientos no tienen FK y se conservan.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
