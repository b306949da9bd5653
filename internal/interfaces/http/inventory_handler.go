package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
)

// HeaderMaintenancePassphrase clave de mantenimiento para purgar el historial.
const HeaderMaintenancePassphrase = "X-Maintenance-Passphrase"

// InventoryHandler movimientos de stock e historial (protegido).
type InventoryHandler struct {
	uc     *inventory.RegisterMovementUseCase
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, ledger: ledger}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         movimientos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "producto_id o sku, tipo_movimiento (ENTRADA|SALIDA), cantidad"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movimientos [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ApplyMovement(c.UserContext(), inventory.FromRequest(GetUsername(c), in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        fecha_inicio  query  string  false  "YYYY-MM-DD, inclusivo"
// @Param        fecha_fin     query  string  false  "YYYY-MM-DD, incluye el día completo"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movimientos [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	out, err := h.ledger.List(c.UserContext(), c.Query("fecha_inicio"), c.Query("fecha_fin"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PurgeMovements godoc
// @Summary      Borrar movimientos anteriores a una fecha (admin)
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        fecha_limite              query   string  true  "YYYY-MM-DD; se borra lo anterior a ese día"
// @Param        X-Maintenance-Passphrase  header  string  true  "Clave de mantenimiento"
// @Success      200  {object}  dto.PurgeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/movimientos/limpiar [delete]
func (h *InventoryHandler) PurgeMovements(c *fiber.Ctx) error {
	before := c.Query("fecha_limite")
	if before == "" {
		return badRequest(c, "VALIDATION", "fecha_limite es requerida")
	}
	out, err := h.ledger.PurgeBefore(c.UserContext(), inventory.PurgeInput{
		Before:     before,
		Passphrase: c.Get(HeaderMaintenancePassphrase),
		Actor:      GetUsername(c),
		ActorRole:  GetRole(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
