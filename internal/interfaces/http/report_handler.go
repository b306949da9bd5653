package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockpilot/stockpilot-api/internal/application/analytics"
)

// ReportHandler reportes de valor, corte del día y finanzas.
type ReportHandler struct {
	uc *analytics.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *analytics.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// InventoryValuation godoc
// @Summary      Valor del inventario a precio de compra
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryValuationResponse
// @Router       /api/reportes/valor-inventario [get]
func (h *ReportHandler) InventoryValuation(c *fiber.Ctx) error {
	out, err := h.uc.InventoryValuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DailyCutoff godoc
// @Summary      Corte de caja del día
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Param        fecha  query  string  false  "YYYY-MM-DD; por defecto hoy"
// @Success      200  {object}  dto.DailyCutoffResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reportes/corte-dia [get]
func (h *ReportHandler) DailyCutoff(c *fiber.Ctx) error {
	out, err := h.uc.DailyCutoff(c.UserContext(), c.Query("fecha"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// FinanceSummary godoc
// @Summary      Resumen financiero del inventario
// @Tags         reportes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.FinanceSummaryResponse
// @Router       /api/reportes/finanzas [get]
func (h *ReportHandler) FinanceSummary(c *fiber.Ctx) error {
	out, err := h.uc.FinanceSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
