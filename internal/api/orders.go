package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/branesca/ferreteria-cliente/internal/domain"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CheckoutRequest compra de la tienda pública. TransactionID es el id de
// captura de PayPal: el pago ya ocurrió cuando este endpoint se invoca.
type CheckoutRequest struct {
	BranchID      int64          `json:"sucursal_id"`
	AddressID     int64          `json:"direccion_id"`
	Items         []CartSyncItem `json:"items"`
	TransactionID string         `json:"transaction_id"`
}

// CheckoutResponse confirmación del pedido creado.
type CheckoutResponse struct {
	OrderID int64 `json:"pedido_id"`
}

// OrderMonitor respuesta del endpoint de monitoreo para el vigilante de
// pedidos. LatestOrderID nil = todavía no existe ningún pedido.
type OrderMonitor struct {
	LatestOrderID *int64 `json:"ultimo_id"`
	PendingCount  int64  `json:"pendientes"`
}

// OrderPatch cambios parciales sobre un pedido; los campos nil no se envían.
type OrderPatch struct {
	Status      *string          `json:"estado,omitempty"`
	LateFeeRate *decimal.Decimal `json:"tasa_mora,omitempty"`
	Items       []OrderItemPatch `json:"detalles,omitempty"`
}

// OrderItemPatch edición de una línea de pedido existente.
type OrderItemPatch struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"cantidad"`
}

// Checkout registra la compra. Es la única llamada con timeout dedicado:
// si el backend no responde a tiempo se devuelve ErrCheckoutTimeout, que la
// UI distingue de un rechazo de negocio ("verifique la lista de pedidos").
func (c *Client) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.checkoutTimeout)
	defer cancel()

	var out CheckoutResponse
	err := c.do(ctx, http.MethodPost, "/checkout/", nil, req, &out)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrCheckoutTimeout
		}
		return nil, err
	}
	return &out, nil
}

// OrderHistory pedidos del cliente autenticado, más reciente primero.
func (c *Client) OrderHistory(ctx context.Context) ([]entity.Order, error) {
	var out []entity.Order
	if err := c.do(ctx, http.MethodGet, "/historial-pedidos/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder cancela un pedido propio si su estado aún lo permite.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("/cancelar-pedido/%d/", orderID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// AdminOrders listado completo de pedidos para la gestión del panel.
func (c *Client) AdminOrders(ctx context.Context) ([]entity.Order, error) {
	var out []entity.Order
	if err := c.do(ctx, http.MethodGet, "/gestion-pedidos/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatchOrder aplica cambios parciales a un pedido (estado, líneas, mora).
func (c *Client) PatchOrder(ctx context.Context, orderID int64, patch OrderPatch) (*entity.Order, error) {
	path := fmt.Sprintf("/gestion-pedidos/%d/", orderID)
	var out entity.Order
	if err := c.do(ctx, http.MethodPatch, path, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MonitorOrders consulta el último id de pedido y la cola pendiente.
func (c *Client) MonitorOrders(ctx context.Context) (*OrderMonitor, error) {
	var out OrderMonitor
	if err := c.do(ctx, http.MethodGet, "/monitor-pedidos/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
