package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// SalesReport resumen de ventas para el dashboard.
type SalesReport struct {
	TotalSales      decimal.Decimal `json:"total_ventas"`
	OrdersProcessed int64           `json:"pedidos_procesados"`
	OverdueInvoices int64           `json:"facturas_vencidas"`
}

// StockAlert producto con existencia crítica.
type StockAlert struct {
	ProductID int64  `json:"producto"`
	Product   string `json:"producto_nombre"`
	Branch    string `json:"sucursal_nombre"`
	Quantity  int64  `json:"cantidad"`
}

// SellerReport rendimiento por vendedor.
type SellerReport struct {
	Seller string          `json:"vendedor"`
	Total  decimal.Decimal `json:"total"`
	Orders int64           `json:"pedidos"`
}

// SalesSummary reporte de ventas consolidado.
func (c *Client) SalesSummary(ctx context.Context) (*SalesReport, error) {
	var out SalesReport
	if err := c.do(ctx, http.MethodGet, "/reporte-ventas/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StockAlerts productos bajo el umbral de stock crítico.
func (c *Client) StockAlerts(ctx context.Context) ([]StockAlert, error) {
	var out []StockAlert
	if err := c.do(ctx, http.MethodGet, "/alertas-stock/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SellersSummary rendimiento por vendedor del periodo.
func (c *Client) SellersSummary(ctx context.Context) ([]SellerReport, error) {
	var out []SellerReport
	if err := c.do(ctx, http.MethodGet, "/reporte-vendedores/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
