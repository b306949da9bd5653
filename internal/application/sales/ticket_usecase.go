// Package sales genera el ticket de venta en PDF.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// Ticket datos listos para renderizar.
type Ticket struct {
	Store entity.StoreConfig
	Folio string
	Date  time.Time
	Lines []dto.CheckoutLineResponse
	Total decimal.Decimal
}

// TicketPDFGenerator puerto de salida hacia el motor de PDF.
type TicketPDFGenerator interface {
	GenerateTicketPDF(ctx context.Context, ticket Ticket) ([]byte, error)
}

// StoreConfigSource lectura de la configuración de la tienda (creándola si no existe).
type StoreConfigSource interface {
	Get(ctx context.Context) (*entity.StoreConfig, error)
}

// TicketUseCase valoriza un carrito y lo renderiza como ticket PDF. No modifica stock.
type TicketUseCase struct {
	quoter    *inventory.CheckoutUseCase
	config    StoreConfigSource
	generator TicketPDFGenerator
	clock     domain.Clock
	loc       *time.Location
}

// NewTicketUseCase construye el caso de uso.
func NewTicketUseCase(
	quoter *inventory.CheckoutUseCase,
	config StoreConfigSource,
	generator TicketPDFGenerator,
	clock domain.Clock,
	loc *time.Location,
) *TicketUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketUseCase{quoter: quoter, config: config, generator: generator, clock: clock, loc: loc}
}

// GenerateTicket devuelve (pdfBytes, filename). Productos inexistentes -> ErrNotFound.
func (uc *TicketUseCase) GenerateTicket(ctx context.Context, items []inventory.CheckoutItem) ([]byte, string, error) {
	lines, total, err := uc.quoter.Quote(ctx, items)
	if err != nil {
		return nil, "", err
	}
	store, err := uc.config.Get(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: configuración de tienda: %w", err)
	}

	folio := strings.ToUpper(uuid.New().String()[:8])
	ticket := Ticket{
		Store: *store,
		Folio: folio,
		Date:  uc.clock.Now().In(uc.loc),
		Lines: lines,
		Total: total,
	}
	pdf, err := uc.generator.GenerateTicketPDF(ctx, ticket)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generar pdf: %w", err)
	}
	return pdf, "ticket_" + folio + ".pdf", nil
}
