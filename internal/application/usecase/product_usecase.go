package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	supplierRepo repository.SupplierRepository
	clock        domain.Clock
	notifier     inventory.ChangeNotifier
	log          *logger.Logger
}

// NewProductUseCase construye el caso de uso. notifier y log pueden ser nil.
func NewProductUseCase(
	repo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	clock domain.Clock,
	notifier inventory.ChangeNotifier,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, supplierRepo: supplierRepo, clock: clock, notifier: notifier, log: log}
}

func (uc *ProductUseCase) bump(ctx context.Context) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de reportes")
	}
}

func validatePrices(purchase, sale decimal.Decimal) error {
	if purchase.IsNegative() || sale.IsNegative() {
		return fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *ProductUseCase) checkSupplier(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	s, err := uc.supplierRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("%w: proveedor %d", domain.ErrNotFound, *id)
	}
	return nil
}

// Create crea un nuevo producto. El stock inicial es carga de catálogo, no un movimiento.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sku y nombre requeridos", domain.ErrInvalidInput)
	}
	if err := validatePrices(in.PurchasePrice, in.SalePrice); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock_actual no puede ser negativo", domain.ErrInvalidInput)
	}
	reorder := entity.DefaultReorderPoint
	if in.ReorderPoint != nil {
		if *in.ReorderPoint < 0 {
			return nil, fmt.Errorf("%w: punto_reorden no puede ser negativo", domain.ErrInvalidInput)
		}
		reorder = *in.ReorderPoint
	}
	if err := uc.checkSupplier(ctx, in.DefaultSupplierID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, sku)
	}

	product := &entity.Product{
		SKU:               sku,
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		PurchasePrice:     in.PurchasePrice,
		SalePrice:         in.SalePrice,
		Stock:             in.Stock,
		ReorderPoint:      reorder,
		DefaultSupplierID: in.DefaultSupplierID,
		CreatedAt:         uc.clock.Now(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.bump(ctx)
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID. ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza campos descriptivos. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
		}
		if sku != product.SKU {
			other, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, sku)
			}
		}
		product.SKU = sku
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if err := validatePrices(product.PurchasePrice, product.SalePrice); err != nil {
		return nil, err
	}
	if in.ReorderPoint != nil {
		if *in.ReorderPoint < 0 {
			return nil, fmt.Errorf("%w: punto_reorden no puede ser negativo", domain.ErrInvalidInput)
		}
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.DefaultSupplierID != nil {
		if err := uc.checkSupplier(ctx, in.DefaultSupplierID); err != nil {
			return nil, err
		}
		product.DefaultSupplierID = in.DefaultSupplierID
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.bump(ctx)
	return ToProductResponse(product), nil
}

// List lista productos con paginación y búsqueda opcional por sku/nombre.
func (uc *ProductUseCase) List(ctx context.Context, search string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete elimina un producto por ID. Los movimientos históricos se conservan.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.bump(ctx)
	return nil
}

// ToProductResponse convierte la entidad en DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		PurchasePrice:     p.PurchasePrice,
		SalePrice:         p.SalePrice,
		Stock:             p.Stock,
		ReorderPoint:      p.ReorderPoint,
		DefaultSupplierID: p.DefaultSupplierID,
		CreatedAt:         p.CreatedAt,
	}
}
