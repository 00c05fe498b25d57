package entity

import "github.com/shopspring/decimal"

// SalesReportRow agregado de ventas por producto.
type SalesReportRow struct {
	ProductID     int64
	ProductName   string
	TotalQuantity int64
	TotalSold     decimal.Decimal
}
