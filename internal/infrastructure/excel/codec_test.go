package excel

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"SKU":           "sku",
		"Descripción":   "descripcion",
		"Precio Compra": "preciocompra",
		"PRECIO_VENTA":  "precioventa",
		"Punto Reorden": "puntoreorden",
		"Código":        "codigo",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), "NormalizeHeader(%q)", in)
	}
}

func TestEncodeDecode_Catalogo(t *testing.T) {
	c := NewCodec()
	products := []*entity.Product{
		{SKU: "A-1", Name: "Arroz", Description: "1 kg", PurchasePrice: decimal.RequireFromString("18.50"),
			SalePrice: decimal.RequireFromString("25.00"), Stock: 12, ReorderPoint: 5},
	}

	data, err := c.Encode(products)
	require.NoError(t, err)

	rows, skipped, err := c.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, "A-1", r.SKU)
	require.NotNil(t, r.Name)
	assert.Equal(t, "Arroz", *r.Name)
	require.NotNil(t, r.PurchasePrice)
	assert.True(t, decimal.RequireFromString("18.50").Equal(*r.PurchasePrice))
	require.NotNil(t, r.Stock)
	assert.Equal(t, 12, *r.Stock)
	require.NotNil(t, r.ReorderPoint)
	assert.Equal(t, 5, *r.ReorderPoint)
}

// Cabeceras con acentos y mayúsculas, fila sin SKU y valor ilegible.
func TestDecode_CabecerasLibresYFilasOmitidas(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Código", "NOMBRE", "Existencia", "Precio"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"X-1", "Frijol", "7", "$1,200.00"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "Sin código", "3", "10"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"X-2", "Malo", "tres", "10"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, skipped, err := NewCodec().Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped, "fila sin SKU y fila con stock ilegible")
	require.Len(t, rows, 1)
	assert.Equal(t, "X-1", rows[0].SKU)
	require.NotNil(t, rows[0].Stock)
	assert.Equal(t, 7, *rows[0].Stock)
	require.NotNil(t, rows[0].SalePrice)
	assert.True(t, decimal.RequireFromString("1200").Equal(*rows[0].SalePrice))
	assert.Nil(t, rows[0].PurchasePrice, "columna ausente queda nil")
}

func TestDecode_SinColumnaSKU(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow(f.GetSheetName(0), "A1", &[]any{"Nombre", "Stock"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, _, err = NewCodec().Decode(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
