package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Métodos de pago de la venta mostrador.
const (
	PaymentCash   = "EFECTIVO"
	PaymentCard   = "TARJETA"
	PaymentCredit = "FIADO"
)

// CounterSaleRequest venta mostrador creada por personal en caja.
// CustomerID solo aplica a ventas FIADO (crédito contra el límite del
// cliente); para contado basta el nombre.
type CounterSaleRequest struct {
	BranchID      int64           `json:"sucursal_id"`
	CustomerName  string          `json:"nombre_cliente"`
	CustomerID    int64           `json:"cliente_id,omitempty"`
	Items         []CartSyncItem  `json:"items"`
	PaymentMethod string          `json:"metodo_pago"`
	AmountPaid    decimal.Decimal `json:"monto_recibido"`
}

// CounterSaleResponse confirmación de la venta con el id para la factura.
type CounterSaleResponse struct {
	OrderID int64           `json:"pedido_id"`
	Change  decimal.Decimal `json:"cambio"`
}

// CashCutoffReport corte de caja del día.
type CashCutoffReport struct {
	Date       string          `json:"fecha"`
	Total      decimal.Decimal `json:"total"`
	SalesCount int64           `json:"ventas"`
	Sales      []CashCutoffRow `json:"detalles"`
}

// CashCutoffRow una venta dentro del corte.
type CashCutoffRow struct {
	OrderID int64           `json:"id"`
	Date    string          `json:"fecha_pedido"`
	Total   decimal.Decimal `json:"total"`
	Status  string          `json:"estado"`
}

// CounterSale registra una venta mostrador.
func (c *Client) CounterSale(ctx context.Context, req CounterSaleRequest) (*CounterSaleResponse, error) {
	var out CounterSaleResponse
	if err := c.do(ctx, http.MethodPost, "/venta-mostrador/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoicePDF descarga la factura renderizada por el backend (bytes PDF).
func (c *Client) InvoicePDF(ctx context.Context, orderID int64) ([]byte, error) {
	path := fmt.Sprintf("/factura/%d/", orderID)
	return c.doRaw(ctx, http.MethodGet, path, nil, nil)
}

// CashCutoff reporte de corte de caja del día en curso.
func (c *Client) CashCutoff(ctx context.Context) (*CashCutoffReport, error) {
	var out CashCutoffReport
	if err := c.do(ctx, http.MethodGet, "/corte-caja/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
