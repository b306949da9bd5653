// Package pdf implementa el ticket de venta en PDF con Maroto v2.
//
// Layout (ancho de rollo de 80 mm):
//
//	┌──────────────────────────────┐
//	│  NOMBRE TIENDA               │
//	│  Dirección / Tel             │
//	│  Folio + Fecha               │
//	│  ──────────────────────────  │
//	│  Cant | Producto | Subtotal  │
//	│  ──────────────────────────  │
//	│  TOTAL                       │
//	│  Mensaje del ticket          │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
)

// ── Dimensiones ───────────────────────────────────────────────────────────────

const (
	ticketWidthMM  = 80.0
	ticketMarginMM = 4.0
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.TicketPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

var _ sales.TicketPDFGenerator = (*MarotoPDFGenerator)(nil)

// GenerateTicketPDF genera el ticket y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateTicketPDF(_ context.Context, t sales.Ticket) ([]byte, error) {
	// alto aproximado: cabecera + una fila por línea + totales
	height := 70.0 + float64(len(t.Lines))*6
	cfg := config.NewBuilder().
		WithDimensions(ticketWidthMM, height).
		WithLeftMargin(ticketMarginMM).WithRightMargin(ticketMarginMM).
		WithTopMargin(ticketMarginMM).WithBottomMargin(ticketMarginMM).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Ticket de venta", true).
		WithAuthor(t.Store.StoreName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(t)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(t.Lines)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(totalRow(t.Total))
	if msg := strings.TrimSpace(t.Store.TicketMessage); msg != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New(msg, props.Text{Size: 8, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRows: nombre de la tienda, contacto, folio y fecha.
func headerRows(t sales.Ticket) []core.Row {
	return []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New(t.Store.StoreName, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New(nonEmpty(t.Store.Address, "-"), props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)),
		row.New(5).Add(col.New(12).Add(
			text.New("Tel: "+nonEmpty(t.Store.Phone, "-"), props.Text{Size: 7, Align: align.Center, Color: colorGray}),
		)),
		row.New(5).Add(
			col.New(6).Add(text.New("Folio: "+t.Folio, props.Text{Size: 7})),
			col.New(6).Add(text.New(t.Date.Format("02/01/2006 15:04"), props.Text{Size: 7, Align: align.Right})),
		),
	}
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Align: a}))
	}
	return row.New(5).Add(
		h("Cant.", 2, align.Left),
		h("Producto", 5, align.Left),
		h("P.Unit", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del carrito.
func tableDetailRows(lines []dto.CheckoutLineResponse) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 7})),
			col.New(5).Add(text.New(l.Name, props.Text{Size: 7})),
			col.New(2).Add(text.New(money(l.UnitPrice), props.Text{Size: 7, Align: align.Right})),
			col.New(3).Add(text.New(money(l.Subtotal), props.Text{Size: 7, Align: align.Right})),
		))
	}
	return result
}

func totalRow(total decimal.Decimal) core.Row {
	return row.New(8).Add(
		col.New(6).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 10, Top: 1})),
		col.New(6).Add(text.New(money(total), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separador de miles y dos decimales. Ej: 1234.5 -> "$1,234.50"
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	out := "$" + string(buf) + frac
	if neg {
		return "-" + out
	}
	return out
}
