package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/usecase"
)

// StoreConfigHandler datos de la tienda usados en el ticket.
type StoreConfigHandler struct {
	uc *usecase.StoreConfigUseCase
}

// NewStoreConfigHandler construye el handler.
func NewStoreConfigHandler(uc *usecase.StoreConfigUseCase) *StoreConfigHandler {
	return &StoreConfigHandler{uc: uc}
}

// Get godoc
// @Summary      Configuración de la tienda
// @Tags         configuracion
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StoreConfigResponse
// @Router       /api/configuracion [get]
func (h *StoreConfigHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetResponse(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar configuración (admin)
// @Tags         configuracion
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StoreConfigRequest  true  "Configuración"
// @Success      200  {object}  dto.StoreConfigResponse
// @Router       /api/configuracion [put]
func (h *StoreConfigHandler) Update(c *fiber.Ctx) error {
	var in dto.StoreConfigRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
