package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Customer cliente comercial con línea de crédito ("fiado").
type Customer struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nombre"`
	Phone       string          `json:"telefono"`
	Email       string          `json:"email"`
	TaxID       string          `json:"ruc"`
	CreditLimit decimal.Decimal `json:"limite_credito"`
	Debt        decimal.Decimal `json:"deuda_actual"`
}

// PaymentRequest abono contra la deuda de un cliente. El backend lo aplica
// FIFO sobre las facturas pendientes más antiguas.
type PaymentRequest struct {
	CustomerID int64           `json:"cliente_id"`
	Amount     decimal.Decimal `json:"monto"`
}

// PaymentResponse resultado del abono: cuánto se aplicó y cuánto se devuelve.
type PaymentResponse struct {
	AmountApplied  decimal.Decimal `json:"monto_aplicado"`
	ChangeReturned decimal.Decimal `json:"cambio_devuelto"`
}

// Customers lista los clientes comerciales.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/clientes/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomer da de alta un cliente comercial.
func (c *Client) CreateCustomer(ctx context.Context, cust Customer) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/clientes/", nil, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchCustomer actualiza datos del cliente.
func (c *Client) PatchCustomer(ctx context.Context, id int64, cust Customer) (*Customer, error) {
	path := fmt.Sprintf("/clientes/%d/", id)
	var out Customer
	if err := c.do(ctx, http.MethodPatch, path, nil, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCustomer elimina un cliente. El backend rechaza con conflicto si el
// cliente tiene historial de compras.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/clientes/%d/", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// RegisterPayment registra un abono contra la deuda del cliente.
func (c *Client) RegisterPayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	var out PaymentResponse
	if err := c.do(ctx, http.MethodPost, "/registrar-abono/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
