package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "$ 0,00",
		"17.5":       "$ 17,50",
		"1234.5":     "$ 1.234,50",
		"1234567.89": "$ 1.234.567,89",
		"-2500":      "-$ 2.500,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "999", formatThousands("999"))
	assert.Equal(t, "1.000", formatThousands("1000"))
	assert.Equal(t, "1.000.000", formatThousands("1000000"))
}

func TestGenerateSalesReportPDF(t *testing.T) {
	g := NewMarotoPDFGenerator("Tienda Centro")
	rows := []entity.SalesReportRow{
		{ProductID: 1, ProductName: "Café", TotalQuantity: 12, TotalSold: decimal.RequireFromString("150.00")},
		{ProductID: 2, ProductName: "Pan", TotalQuantity: 7, TotalSold: decimal.RequireFromString("17.50")},
	}
	out, err := g.GenerateSalesReportPDF(context.Background(), rows, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := g.GenerateSalesReportPDF(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}
