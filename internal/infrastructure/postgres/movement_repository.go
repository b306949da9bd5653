package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementsTable = "movimientos"

// movementRow fila del libro unida con productos (LEFT JOIN: el producto puede no existir).
type movementRow struct {
	ID            int64     `db:"id"`
	TransactionID string    `db:"transaccion_id"`
	ProductID     int64     `db:"producto_id"`
	Type          string    `db:"tipo_movimiento"`
	Quantity      int       `db:"cantidad"`
	Date          time.Time `db:"fecha_movimiento"`
	Actor         string    `db:"usuario_responsable"`
	Notes         string    `db:"notas"`
	ProductSKU    *string   `db:"sku"`
	ProductName   *string   `db:"nombre"`
}

// StockMovementRepo libro de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega la línea y completa su ID.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	sql, args, err := psql.Insert(movementsTable).
		Columns("transaccion_id", "producto_id", "tipo_movimiento", "cantidad",
			"fecha_movimiento", "usuario_responsable", "notas").
		Values(nullUUID(m.TransactionID), m.ProductID, m.Type, m.Quantity,
			m.Date, m.Actor, squirrel.Expr("NULLIF(?, '')", m.Notes)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&m.ID); err != nil {
		return mapError("insert movement", err)
	}
	return nil
}

// List une con productos y ordena por fecha DESC, id DESC.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]repository.MovementRecord, error) {
	q := psql.Select(
		"m.id", "COALESCE(m.transaccion_id::text, '') AS transaccion_id", "m.producto_id",
		"m.tipo_movimiento", "m.cantidad", "m.fecha_movimiento", "m.usuario_responsable",
		"COALESCE(m.notas, '') AS notas", "p.sku", "p.nombre",
	).
		From(movementsTable + " m").
		LeftJoin(productsTable + " p ON p.id = m.producto_id").
		OrderBy("m.fecha_movimiento DESC", "m.id DESC")
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.fecha_movimiento": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"m.fecha_movimiento": *filter.To})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}

	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, mapError("list movements", err)
	}
	out := make([]repository.MovementRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.MovementRecord{
			StockMovement: entity.StockMovement{
				ID:            row.ID,
				TransactionID: row.TransactionID,
				ProductID:     row.ProductID,
				Type:          row.Type,
				Quantity:      row.Quantity,
				Date:          row.Date,
				Actor:         row.Actor,
				Notes:         row.Notes,
			},
			ProductSKU:  row.ProductSKU,
			ProductName: row.ProductName,
		})
	}
	return out, nil
}

// DeleteBefore borra los movimientos con fecha_movimiento < before.
func (r *StockMovementRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	sql, args, err := psql.Delete(movementsTable).
		Where(squirrel.Lt{"fecha_movimiento": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge movements: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError("purge movements", err)
	}
	return tag.RowsAffected(), nil
}

// nullUUID vacío -> NULL; la columna es UUID.
func nullUUID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
