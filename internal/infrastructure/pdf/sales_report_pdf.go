// Package pdf genera el reporte de ventas por producto en PDF.
//
// Layout de la página A4: título y fecha de generación, tabla
// Producto | Nombre | Unidades | Total vendido, y una fila de totales.
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-tienda/internal/application/usecase"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

var _ usecase.SalesReportPDFGenerator = (*MarotoPDFGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoPDFGenerator implementa usecase.SalesReportPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	storeName string
}

// NewMarotoPDFGenerator construye el generador; storeName aparece en la cabecera.
func NewMarotoPDFGenerator(storeName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{storeName: storeName}
}

// GenerateSalesReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSalesReportPDF(_ context.Context, rows []entity.SalesReportRow, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ventas por producto", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.storeName, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(rows)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(storeName string, generatedAt time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Reporte de ventas por producto", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("ID", 1, align.Left),
		h("Producto", 6, align.Left),
		h("Unidades", 2, align.Right),
		h("Total vendido", 3, align.Right),
	)
}

func tableRows(rows []entity.SalesReportRow) []core.Row {
	if len(rows) == 0 {
		return []core.Row{row.New(8).Add(col.New(12).Add(text.New("Sin ventas registradas", props.Text{
			Size: 8, Align: align.Center, Top: 2, Color: colorGray,
		})))}
	}
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", r.ProductID), props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(formatThousands(fmt.Sprintf("%d", r.TotalQuantity)), props.Text{Size: 8, Top: 1, Align: align.Right})),
			col.New(3).Add(text.New(formatMoney(r.TotalSold), props.Text{Size: 8, Top: 1, Align: align.Right})),
		))
	}
	return out
}

func totalsRow(rows []entity.SalesReportRow) core.Row {
	var units int64
	total := decimal.Zero
	for _, r := range rows {
		units += r.TotalQuantity
		total = total.Add(r.TotalSold)
	}
	bold := props.Text{Style: fontstyle.Bold, Size: 9, Top: 2, Align: align.Right}
	return row.New(10).Add(
		col.New(7).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2})),
		col.New(2).Add(text.New(formatThousands(fmt.Sprintf("%d", units)), bold)),
		col.New(3).Add(text.New(formatMoney(total), bold)),
	)
}

// formatMoney "$ 1.234.567,50": puntos de miles y coma decimal.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := "$ " + formatThousands(intPart) + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// formatThousands inserta puntos de miles en un entero sin signo. Ej: "1000000" → "1.000.000".
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
