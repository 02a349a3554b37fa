package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido según el backend.
const (
	OrderPending   = "PENDIENTE"
	OrderPaid      = "PAGADO"
	OrderDelivered = "ENTREGADO"
	OrderCancelled = "CANCELADO"
)

// Order pedido tal como lo listan historial-pedidos y gestion-pedidos.
type Order struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"fecha_pedido"`
	Status      string          `json:"estado"`
	Total       decimal.Decimal `json:"total"`
	Customer    string          `json:"cliente,omitempty"`
	Seller      string          `json:"vendedor,omitempty"`
	LateFeeRate decimal.Decimal `json:"tasa_mora,omitempty"`
	Items       []OrderItem     `json:"detalles,omitempty"`
}

// OrderItem línea de un pedido ya registrado.
type OrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"producto_id"`
	Name      string          `json:"producto_nombre"`
	Quantity  int64           `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}
