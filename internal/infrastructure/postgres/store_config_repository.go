package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var (
	_ repository.StoreConfigRepository = (*StoreConfigRepo)(nil)
	_ repository.SupplierRepository    = (*SupplierRepo)(nil)
)

// StoreConfigRepo fila única (id = 1) de configuracion.
type StoreConfigRepo struct {
	q Querier
}

// NewStoreConfigRepository construye el adaptador.
func NewStoreConfigRepository(q Querier) *StoreConfigRepo {
	return &StoreConfigRepo{q: q}
}

// GetOrCreate inserta los defaults con ON CONFLICT DO NOTHING y luego lee la fila:
// dos primeras lecturas concurrentes nunca crean dos filas.
func (r *StoreConfigRepo) GetOrCreate(ctx context.Context, defaults entity.StoreConfig) (*entity.StoreConfig, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO configuracion (id, nombre_tienda, direccion, telefono, mensaje_ticket)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		entity.StoreConfigID, defaults.StoreName, defaults.Address, defaults.Phone, defaults.TicketMessage,
	)
	if err != nil {
		return nil, mapError("init store config", err)
	}
	var c entity.StoreConfig
	err = r.q.QueryRow(ctx, `
		SELECT id, nombre_tienda, COALESCE(direccion, ''), COALESCE(telefono, ''), COALESCE(mensaje_ticket, '')
		FROM configuracion WHERE id = $1`, entity.StoreConfigID,
	).Scan(&c.ID, &c.StoreName, &c.Address, &c.Phone, &c.TicketMessage)
	if err != nil {
		return nil, fmt.Errorf("get store config: %w", err)
	}
	return &c, nil
}

// Save upsert de la fila única.
func (r *StoreConfigRepo) Save(ctx context.Context, cfg *entity.StoreConfig) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO configuracion (id, nombre_tienda, direccion, telefono, mensaje_ticket)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET nombre_tienda = EXCLUDED.nombre_tienda, direccion = EXCLUDED.direccion,
		    telefono = EXCLUDED.telefono, mensaje_ticket = EXCLUDED.mensaje_ticket`,
		entity.StoreConfigID, cfg.StoreName, cfg.Address, cfg.Phone, cfg.TicketMessage,
	)
	if err != nil {
		return mapError("save store config", err)
	}
	return nil
}

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

type supplierRow struct {
	ID           int64  `db:"id"`
	CompanyName  string `db:"nombre_empresa"`
	ContactName  string `db:"contacto_nombre"`
	Phone        string `db:"telefono"`
	Email        string `db:"email"`
	LeadTimeDays int    `db:"tiempo_entrega_dias"`
}

func (s supplierRow) toEntity() *entity.Supplier {
	return &entity.Supplier{
		ID:           s.ID,
		CompanyName:  s.CompanyName,
		ContactName:  s.ContactName,
		Phone:        s.Phone,
		Email:        s.Email,
		LeadTimeDays: s.LeadTimeDays,
	}
}

const supplierSelect = `
	SELECT id, nombre_empresa, COALESCE(contacto_nombre, '') AS contacto_nombre,
	       COALESCE(telefono, '') AS telefono, COALESCE(email, '') AS email, tiempo_entrega_dias
	FROM proveedores`

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO proveedores (nombre_empresa, contacto_nombre, telefono, email, tiempo_entrega_dias)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING id`,
		s.CompanyName, s.ContactName, s.Phone, s.Email, s.LeadTimeDays,
	).Scan(&s.ID)
	if err != nil {
		return mapError("insert supplier", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	var row supplierRow
	if err := pgxscan.Get(ctx, r.q, &row, supplierSelect+` WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, mapError("get supplier", err)
	}
	return row.toEntity(), nil
}

// List todos los proveedores por ID.
func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	var rows []supplierRow
	if err := pgxscan.Select(ctx, r.q, &rows, supplierSelect+` ORDER BY id`); err != nil {
		return nil, mapError("list suppliers", err)
	}
	out := make([]*entity.Supplier, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
