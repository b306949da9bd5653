package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
)

// SalesHandler checkout y ticket PDF.
type SalesHandler struct {
	checkout *inventory.CheckoutUseCase
	ticket   *sales.TicketUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(checkout *inventory.CheckoutUseCase, ticket *sales.TicketUseCase) *SalesHandler {
	return &SalesHandler{checkout: checkout, ticket: ticket}
}

// Checkout godoc
// @Summary      Registrar venta (todo o nada)
// @Tags         ventas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito"
// @Success      201   {object}  dto.CheckoutResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ventas/checkout [post]
func (h *SalesHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.checkout.Checkout(c.UserContext(), inventory.CheckoutFromRequest(GetUsername(c), in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// TicketPDF godoc
// @Summary      Ticket de venta en PDF (no modifica stock)
// @Tags         ventas
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        body  body  dto.CheckoutRequest  true  "Carrito"
// @Success      200   {file}  binary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ventas/ticket-pdf [post]
func (h *SalesHandler) TicketPDF(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	items := inventory.CheckoutFromRequest(GetUsername(c), in).Items
	data, filename, err := h.ticket.GenerateTicket(c.UserContext(), items)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(data)
}
