// Package excel lee y escribe el catálogo de productos en formato .xlsx con excelize.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/stockpilot/stockpilot-api/internal/application/catalog"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// SheetName hoja única del archivo exportado.
const SheetName = "Inventario"

// Headers columnas del archivo exportado, en orden.
var Headers = []string{"SKU", "Nombre", "Descripcion", "Precio Compra", "Precio Venta", "Stock", "Punto Reorden"}

type column int

const (
	colSKU column = iota
	colName
	colDescription
	colPurchase
	colSale
	colStock
	colReorder
)

// headerAliases encabezados aceptados al importar, ya normalizados.
var headerAliases = map[string]column{
	"sku":          colSKU,
	"codigo":       colSKU,
	"nombre":       colName,
	"producto":     colName,
	"descripcion":  colDescription,
	"preciocompra": colPurchase,
	"costo":        colPurchase,
	"precioventa":  colSale,
	"precio":       colSale,
	"stock":        colStock,
	"stockactual":  colStock,
	"existencia":   colStock,
	"puntoreorden": colReorder,
	"reorden":      colReorder,
}

// Codec implementa catalog.SpreadsheetCodec.
type Codec struct{}

// NewCodec construye el codec.
func NewCodec() *Codec { return &Codec{} }

var _ catalog.SpreadsheetCodec = (*Codec)(nil)

// Encode una fila por producto bajo la cabecera Headers.
func (c *Codec) Encode(products []*entity.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("excel: cabecera: %w", err)
	}
	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			p.SKU,
			p.Name,
			p.Description,
			p.PurchasePrice.InexactFloat64(),
			p.SalePrice.InexactFloat64(),
			p.Stock,
			p.ReorderPoint,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode lee la primera hoja. La primera fila es la cabecera; se requiere la columna SKU.
func (c *Codec) Decode(r io.Reader) ([]catalog.ImportRow, int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("excel: abrir: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, fmt.Errorf("excel: archivo sin hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("excel: leer filas: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("excel: hoja vacía")
	}

	index := map[column]int{}
	for i, h := range rows[0] {
		if col, ok := headerAliases[NormalizeHeader(h)]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	if _, ok := index[colSKU]; !ok {
		return nil, 0, fmt.Errorf("excel: falta la columna SKU")
	}

	var (
		out     []catalog.ImportRow
		skipped int
	)
	for n, cells := range rows[1:] {
		cell := func(col column) (string, bool) {
			i, ok := index[col]
			if !ok || i >= len(cells) {
				return "", false
			}
			v := strings.TrimSpace(cells[i])
			return v, v != ""
		}
		sku, ok := cell(colSKU)
		if !ok {
			if !blankRow(cells) {
				skipped++
			}
			continue
		}
		row := catalog.ImportRow{Line: n + 2, SKU: sku}
		if v, ok := cell(colName); ok {
			row.Name = &v
		}
		if v, ok := cell(colDescription); ok {
			row.Description = &v
		}

		valid := true
		if v, ok := cell(colPurchase); ok {
			d, err := parseMoney(v)
			valid = valid && err == nil
			row.PurchasePrice = &d
		}
		if v, ok := cell(colSale); ok {
			d, err := parseMoney(v)
			valid = valid && err == nil
			row.SalePrice = &d
		}
		if v, ok := cell(colStock); ok {
			q, err := parseInt(v)
			valid = valid && err == nil
			row.Stock = &q
		}
		if v, ok := cell(colReorder); ok {
			q, err := parseInt(v)
			valid = valid && err == nil
			row.ReorderPoint = &q
		}
		if !valid {
			skipped++
			continue
		}
		out = append(out, row)
	}
	return out, skipped, nil
}

// NormalizeHeader minúsculas, sin acentos, sin espacios ni guiones. "Precio Compra" -> "preciocompra".
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, s)
	if err != nil {
		clean = s
	}
	clean = strings.ToLower(clean)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '-' || r == '.' {
			return -1
		}
		return r
	}, clean)
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseMoney acepta "$1,234.50" y "1234.5".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// parseInt acepta enteros y flotantes sin parte decimal ("12", "12.0").
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%q no es entero", s)
	}
	return int(d.IntPart()), nil
}
