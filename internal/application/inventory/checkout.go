package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// CheckoutItem línea de venta.
type CheckoutItem struct {
	Product  ProductRef
	Quantity int
}

// CheckoutInput carrito completo.
type CheckoutInput struct {
	Items []CheckoutItem
	Actor string
}

// CheckoutFromRequest adapta el body HTTP.
func CheckoutFromRequest(actor string, in dto.CheckoutRequest) CheckoutInput {
	items := make([]CheckoutItem, 0, len(in.Items))
	for _, it := range in.Items {
		ref := ProductRef{SKU: it.SKU}
		if it.ProductID != nil {
			ref.ID = *it.ProductID
		}
		items = append(items, CheckoutItem{Product: ref, Quantity: it.Quantity})
	}
	return CheckoutInput{Items: items, Actor: actor}
}

// CheckoutUseCase aplica una venta como un lote de SALIDAS todo-o-nada.
type CheckoutUseCase struct {
	engine      *RegisterMovementUseCase
	txRunner    TxRunner
	productRepo repository.ProductRepository
	clock       domain.Clock
	hooks       Hooks
	log         *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso reutilizando el motor de movimientos.
func NewCheckoutUseCase(
	engine *RegisterMovementUseCase,
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	clock domain.Clock,
	hooks Hooks,
	log *logger.Logger,
) *CheckoutUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutUseCase{
		engine:      engine,
		txRunner:    txRunner,
		productRepo: productRepo,
		clock:       clock,
		hooks:       hooks,
		log:         log,
	}
}

// saleLine cantidad agregada por producto.
type saleLine struct {
	product  *entity.Product
	quantity int
}

// prepare resuelve los productos, agrupa líneas repetidas y valida stock sin escribir nada.
// Devuelve las líneas en orden ascendente de ID (orden de bloqueo).
func (uc *CheckoutUseCase) prepare(ctx context.Context, items []CheckoutItem) ([]saleLine, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: el carrito está vacío", domain.ErrInvalidInput)
	}
	byID := make(map[int64]*saleLine, len(items))
	for i, it := range items {
		if err := it.Product.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		p, err := resolveProduct(ctx, uc.productRepo, it.Product)
		if err != nil {
			return nil, fmt.Errorf("buscar producto %s: %w", it.Product, err)
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.Product)
		}
		if line, ok := byID[p.ID]; ok {
			line.quantity += it.Quantity
			continue
		}
		byID[p.ID] = &saleLine{product: p, quantity: it.Quantity}
	}

	lines := make([]saleLine, 0, len(byID))
	for _, l := range byID {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].product.ID < lines[j].product.ID })
	return lines, nil
}

// Quote valoriza el carrito al precio de venta actual sin tocar el stock (ticket PDF).
func (uc *CheckoutUseCase) Quote(ctx context.Context, items []CheckoutItem) ([]dto.CheckoutLineResponse, decimal.Decimal, error) {
	lines, err := uc.prepare(ctx, items)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	out := make([]dto.CheckoutLineResponse, 0, len(lines))
	for _, l := range lines {
		subtotal := l.product.SalePrice.Mul(decimal.NewFromInt(int64(l.quantity)))
		total = total.Add(subtotal)
		out = append(out, dto.CheckoutLineResponse{
			ProductID: l.product.ID,
			SKU:       l.product.SKU,
			Name:      l.product.Name,
			Quantity:  l.quantity,
			UnitPrice: l.product.SalePrice,
			Subtotal:  subtotal,
			NewStock:  l.product.Stock,
		})
	}
	return out, total, nil
}

// Checkout pre-valida todo el carrito y luego, en UNA transacción, bloquea cada producto
// (en orden de ID), revalida y registra las SALIDAS con un transaccion_id común.
// Cualquier fallo revierte la venta completa.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, in CheckoutInput) (*dto.CheckoutResponse, error) {
	if in.Actor == "" {
		return nil, fmt.Errorf("%w: usuario responsable requerido", domain.ErrInvalidInput)
	}
	lines, err := uc.prepare(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.quantity > l.product.Stock {
			uc.hooks.rejected("stock_insuficiente")
			return nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)",
				domain.ErrInsufficientStock, l.product.Name, l.product.Stock, l.quantity)
		}
	}

	now := uc.clock.Now()
	txID := uuid.New().String()
	out := &dto.CheckoutResponse{
		Message:        "Venta realizada con éxito",
		TransactionID:  txID,
		ItemsProcessed: len(in.Items),
		Total:          decimal.Zero,
		Lines:          make([]dto.CheckoutLineResponse, 0, len(lines)),
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, l := range lines {
			_, newStock, err := uc.engine.ApplyInTx(ctx, movRepo, productRepo,
				l.product.ID, entity.MovementTypeSalida, l.quantity, in.Actor, "Venta POS", txID, now)
			if err != nil {
				return fmt.Errorf("producto %s: %w", l.product.SKU, err)
			}
			subtotal := l.product.SalePrice.Mul(decimal.NewFromInt(int64(l.quantity)))
			out.Total = out.Total.Add(subtotal)
			out.Lines = append(out.Lines, dto.CheckoutLineResponse{
				ProductID: l.product.ID,
				SKU:       l.product.SKU,
				Name:      l.product.Name,
				Quantity:  l.quantity,
				UnitPrice: l.product.SalePrice,
				Subtotal:  subtotal,
				NewStock:  newStock,
			})
		}
		return nil
	})
	if err != nil {
		uc.engine.rejectReason(err)
		return nil, err
	}

	uc.hooks.checkout(out.ItemsProcessed, out.Total)
	for _, l := range out.Lines {
		uc.hooks.movement(entity.MovementTypeSalida, l.Quantity)
	}
	if err := uc.hooks.bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de reportes")
	}
	uc.log.Info().
		Str("transaccion_id", txID).
		Int("items", out.ItemsProcessed).
		Str("total", out.Total.StringFixed(2)).
		Str("usuario", in.Actor).
		Msg("venta registrada")
	return out, nil
}
