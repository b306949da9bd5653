package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/application/sales"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

func TestGenerateTicketPDF_DevuelveDocumentoPDF(t *testing.T) {
	g := NewMarotoPDFGenerator()
	ticket := sales.Ticket{
		Store: entity.DefaultStoreConfig(),
		Folio: "AB12CD34",
		Date:  time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC),
		Lines: []dto.CheckoutLineResponse{
			{SKU: "A", Name: "Refresco", Quantity: 2, UnitPrice: decimal.RequireFromString("15.50"), Subtotal: decimal.RequireFromString("31.00")},
		},
		Total: decimal.RequireFromString("31.00"),
	}

	out, err := g.GenerateTicketPDF(context.Background(), ticket)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el documento debe iniciar con la firma PDF")
}

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"15.5":     "$15.50",
		"1234.5":   "$1,234.50",
		"1000000":  "$1,000,000.00",
		"-2500.25": "-$2,500.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), "money(%s)", in)
	}
}
