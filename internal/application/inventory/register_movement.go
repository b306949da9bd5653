package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// ProductRef identifica un producto por ID o por SKU. Exactamente uno debe venir informado.
type ProductRef struct {
	ID  int64
	SKU string
}

// ProductByID referencia por ID numérico.
func ProductByID(id int64) ProductRef { return ProductRef{ID: id} }

// ProductBySKU referencia por SKU.
func ProductBySKU(sku string) ProductRef { return ProductRef{SKU: sku} }

// sku SKU sin espacios; vacío si la referencia es por ID.
func (r ProductRef) sku() string { return strings.TrimSpace(r.SKU) }

// Validate exige un solo tipo de identificador.
func (r ProductRef) Validate() error {
	hasID := r.ID != 0
	hasSKU := r.sku() != ""
	if hasID == hasSKU {
		return fmt.Errorf("%w: indique producto_id o sku (solo uno)", domain.ErrInvalidInput)
	}
	if r.ID < 0 {
		return fmt.Errorf("%w: producto_id inválido", domain.ErrInvalidInput)
	}
	return nil
}

func (r ProductRef) String() string {
	if sku := r.sku(); sku != "" {
		return "sku:" + sku
	}
	return fmt.Sprintf("id:%d", r.ID)
}

// resolveProduct busca el producto según el tipo de referencia. (nil, nil) si no existe.
func resolveProduct(ctx context.Context, repo repository.ProductRepository, ref ProductRef) (*entity.Product, error) {
	if sku := ref.sku(); sku != "" {
		return repo.GetBySKU(ctx, sku)
	}
	return repo.GetByID(ctx, ref.ID)
}

// RegisterMovementUseCase motor de ajuste de stock: aplica ENTRADA/SALIDA con bloqueo de fila
// (SELECT FOR UPDATE) y escribe stock + movimiento en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	clock       domain.Clock
	hooks       Hooks
	log         *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	clock domain.Clock,
	hooks Hooks,
	log *logger.Logger,
) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		clock:       clock,
		hooks:       hooks,
		log:         log,
	}
}

// MovementInput entrada del motor. Actor es el usuario autenticado, nunca un campo del request.
type MovementInput struct {
	Product  ProductRef
	Type     string
	Quantity int
	Actor    string
	Notes    string
}

// FromRequest adapta el body HTTP a MovementInput.
func FromRequest(actor string, in dto.RegisterMovementRequest) MovementInput {
	ref := ProductRef{SKU: in.SKU}
	if in.ProductID != nil {
		ref.ID = *in.ProductID
	}
	return MovementInput{
		Product:  ref,
		Type:     strings.ToUpper(strings.TrimSpace(in.Type)),
		Quantity: in.Quantity,
		Actor:    actor,
		Notes:    in.Notes,
	}
}

// ApplyMovement valida, bloquea la fila del producto, aplica el movimiento y hace Commit o Rollback.
// Errores: ErrInvalidMovementType, ErrInvalidInput, ErrNotFound, ErrInsufficientStock, ErrConflict.
func (uc *RegisterMovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*dto.MovementResponse, error) {
	// Validaciones previas a cualquier escritura
	if !entity.IsValidMovementType(in.Type) {
		uc.hooks.rejected("tipo_invalido")
		return nil, domain.ErrInvalidMovementType
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Actor) == "" {
		return nil, fmt.Errorf("%w: usuario responsable requerido", domain.ErrInvalidInput)
	}
	if err := in.Product.Validate(); err != nil {
		return nil, err
	}

	product, err := resolveProduct(ctx, uc.productRepo, in.Product)
	if err != nil {
		return nil, fmt.Errorf("buscar producto %s: %w", in.Product, err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := inventory.ApplyMovement(product.Stock, in.Type, in.Quantity); err != nil {
		uc.rejectReason(err)
		return nil, err
	}

	now := uc.clock.Now()
	txID := uuid.New().String()

	var (
		mov      *entity.StockMovement
		newStock int
	)
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, newStock, err = uc.ApplyInTx(ctx, movRepo, productRepo, product.ID, in.Type, in.Quantity, in.Actor, in.Notes, txID, now)
		return err
	})
	if err != nil {
		uc.rejectReason(err)
		return nil, err
	}

	uc.hooks.movement(mov.Type, mov.Quantity)
	if err := uc.hooks.bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de reportes")
	}
	uc.log.Info().
		Int64("producto_id", mov.ProductID).
		Str("tipo", mov.Type).
		Int("cantidad", mov.Quantity).
		Int("nuevo_stock", newStock).
		Str("usuario", mov.Actor).
		Msg("movimiento registrado")

	return toMovementResponse(mov, newStock), nil
}

// ApplyInTx aplica un movimiento con los repositorios de una transacción ya abierta por el caller.
// Bloquea la fila (GetForUpdate), revalida el stock, actualiza stock_actual y agrega la línea al libro.
func (uc *RegisterMovementUseCase) ApplyInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	productID int64,
	movType string,
	quantity int,
	actor, notes, transactionID string,
	now time.Time,
) (*entity.StockMovement, int, error) {
	locked, err := productRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	if locked == nil {
		return nil, 0, domain.ErrNotFound
	}
	newStock, err := inventory.ApplyMovement(locked.Stock, movType, quantity)
	if err != nil {
		return nil, 0, err
	}
	if err := productRepo.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, 0, err
	}
	mov := &entity.StockMovement{
		TransactionID: transactionID,
		ProductID:     productID,
		Type:          movType,
		Quantity:      quantity,
		Date:          now,
		Actor:         actor,
		Notes:         notes,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, 0, err
	}
	return mov, newStock, nil
}

func (uc *RegisterMovementUseCase) rejectReason(err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		uc.hooks.rejected("stock_insuficiente")
	case errors.Is(err, domain.ErrConflict):
		uc.hooks.rejected("conflicto")
	}
}

func toMovementResponse(m *entity.StockMovement, newStock int) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Date:          m.Date,
		Actor:         m.Actor,
		Notes:         m.Notes,
		NewStock:      newStock,
	}
}
