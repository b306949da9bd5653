// Package catalog importa y exporta el catálogo de productos en Excel.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	stockrules "github.com/stockpilot/stockpilot-api/internal/domain/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// ImportNote notas de los movimientos generados por la importación.
const ImportNote = "Ajuste por importación"

// ImportRow fila leída de la hoja. Los punteros nil son celdas vacías (el campo no cambia).
type ImportRow struct {
	Line          int
	SKU           string
	Name          *string
	Description   *string
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	Stock         *int
	ReorderPoint  *int
}

// SpreadsheetCodec puerto hacia el formato de hoja de cálculo.
type SpreadsheetCodec interface {
	Encode(products []*entity.Product) ([]byte, error)
	// Decode devuelve las filas válidas y cuántas descartó por no tener SKU o tener valores ilegibles.
	Decode(r io.Reader) (rows []ImportRow, skipped int, err error)
}

// ExcelUseCase importación y exportación del catálogo.
type ExcelUseCase struct {
	codec       SpreadsheetCodec
	engine      *inventory.RegisterMovementUseCase
	txRunner    inventory.TxRunner
	productRepo repository.ProductRepository
	clock       domain.Clock
	notifier    inventory.ChangeNotifier
	log         *logger.Logger
}

// NewExcelUseCase construye el caso de uso. notifier puede ser nil.
func NewExcelUseCase(
	codec SpreadsheetCodec,
	engine *inventory.RegisterMovementUseCase,
	txRunner inventory.TxRunner,
	productRepo repository.ProductRepository,
	clock domain.Clock,
	notifier inventory.ChangeNotifier,
	log *logger.Logger,
) *ExcelUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ExcelUseCase{
		codec:       codec,
		engine:      engine,
		txRunner:    txRunner,
		productRepo: productRepo,
		clock:       clock,
		notifier:    notifier,
		log:         log,
	}
}

// Export devuelve el catálogo completo como .xlsx.
func (uc *ExcelUseCase) Export(ctx context.Context) ([]byte, error) {
	products, _, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("exportar: listar productos: %w", err)
	}
	data, err := uc.codec.Encode(products)
	if err != nil {
		return nil, fmt.Errorf("exportar: %w", err)
	}
	return data, nil
}

// Import aplica la hoja en UNA transacción: SKU nuevo -> alta; SKU existente -> actualiza campos
// descriptivos y, si el stock difiere, registra una ENTRADA/SALIDA por la diferencia.
func (uc *ExcelUseCase) Import(ctx context.Context, r io.Reader, actor string) (*dto.ImportResultResponse, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, fmt.Errorf("%w: usuario responsable requerido", domain.ErrInvalidInput)
	}
	rows, skipped, err := uc.codec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: archivo no legible: %v", domain.ErrInvalidInput, err)
	}

	now := uc.clock.Now()
	txID := uuid.New().String()
	var res dto.ImportResultResponse

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		res = dto.ImportResultResponse{Skipped: skipped}
		for _, row := range rows {
			existing, err := productRepo.GetBySKU(ctx, row.SKU)
			if err != nil {
				return fmt.Errorf("fila %d: %w", row.Line, err)
			}
			if existing == nil {
				ok, err := createFromRow(ctx, productRepo, row, now)
				if err != nil {
					return fmt.Errorf("fila %d: %w", row.Line, err)
				}
				if ok {
					res.Created++
				} else {
					res.Skipped++
				}
				continue
			}

			applyRow(existing, row)
			if existing.PurchasePrice.IsNegative() || existing.SalePrice.IsNegative() || existing.ReorderPoint < 0 {
				res.Skipped++
				continue
			}
			if err := productRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("fila %d: %w", row.Line, err)
			}
			res.Updated++

			if row.Stock == nil || *row.Stock < 0 {
				continue
			}
			locked, err := productRepo.GetForUpdate(ctx, existing.ID)
			if err != nil {
				return fmt.Errorf("fila %d: %w", row.Line, err)
			}
			if locked == nil {
				return fmt.Errorf("fila %d: %w", row.Line, domain.ErrNotFound)
			}
			movType, qty, ok := stockrules.AdjustmentFor(locked.Stock, *row.Stock)
			if !ok {
				continue
			}
			if _, _, err := uc.engine.ApplyInTx(ctx, movRepo, productRepo,
				existing.ID, movType, qty, actor, ImportNote, txID, now); err != nil {
				return fmt.Errorf("fila %d: ajuste de stock: %w", row.Line, err)
			}
			res.Adjusted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		if err := uc.notifier.Bump(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("invalidar caché de reportes")
		}
	}
	uc.log.Info().
		Str("usuario", actor).
		Int("nuevos", res.Created).
		Int("actualizados", res.Updated).
		Int("omitidos", res.Skipped).
		Int("ajustes_stock", res.Adjusted).
		Msg("catálogo importado desde Excel")
	return &res, nil
}

// createFromRow da de alta el producto; ok=false si la fila no alcanza para crearlo.
func createFromRow(ctx context.Context, repo repository.ProductRepository, row ImportRow, now time.Time) (bool, error) {
	if row.Name == nil || strings.TrimSpace(*row.Name) == "" {
		return false, nil
	}
	p := &entity.Product{
		SKU:           row.SKU,
		Name:          strings.TrimSpace(*row.Name),
		PurchasePrice: decimal.Zero,
		SalePrice:     decimal.Zero,
		ReorderPoint:  entity.DefaultReorderPoint,
		CreatedAt:     now,
	}
	applyRow(p, row)
	if row.Stock != nil {
		p.Stock = *row.Stock
	}
	if p.Stock < 0 || p.PurchasePrice.IsNegative() || p.SalePrice.IsNegative() || p.ReorderPoint < 0 {
		return false, nil
	}
	if err := repo.Create(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// applyRow copia las celdas no vacías sobre el producto (nunca el stock).
func applyRow(p *entity.Product, row ImportRow) {
	if row.Name != nil && strings.TrimSpace(*row.Name) != "" {
		p.Name = strings.TrimSpace(*row.Name)
	}
	if row.Description != nil {
		p.Description = *row.Description
	}
	if row.PurchasePrice != nil {
		p.PurchasePrice = *row.PurchasePrice
	}
	if row.SalePrice != nil {
		p.SalePrice = *row.SalePrice
	}
	if row.ReorderPoint != nil {
		p.ReorderPoint = *row.ReorderPoint
	}
}
