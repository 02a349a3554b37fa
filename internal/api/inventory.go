package api

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// StockRecord existencia de un producto en una sucursal.
type StockRecord struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"producto"`
	Product   string `json:"producto_nombre,omitempty"`
	BranchID  int64  `json:"sucursal"`
	Branch    string `json:"sucursal_nombre,omitempty"`
	Quantity  int64  `json:"cantidad"`
}

// AuditRecord movimiento del historial de inventario (solo lectura).
type AuditRecord struct {
	ID       int64     `json:"id"`
	Date     time.Time `json:"fecha"`
	User     string    `json:"usuario"`
	Product  string    `json:"producto"`
	Branch   string    `json:"sucursal"`
	Change   int64     `json:"cambio"`
	Resulted int64     `json:"cantidad_resultante"`
}

// Inventory lista las existencias por (producto, sucursal).
func (c *Client) Inventory(ctx context.Context) ([]StockRecord, error) {
	var out []StockRecord
	if err := c.do(ctx, http.MethodGet, "/inventario/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStock da de alta una existencia nueva.
func (c *Client) CreateStock(ctx context.Context, rec StockRecord) (*StockRecord, error) {
	var out StockRecord
	if err := c.do(ctx, http.MethodPost, "/inventario/", nil, rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchStock ajusta la cantidad de una existencia.
func (c *Client) PatchStock(ctx context.Context, id, quantity int64) (*StockRecord, error) {
	path := fmt.Sprintf("/inventario/%d/", id)
	body := map[string]int64{"cantidad": quantity}
	var out StockRecord
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InventoryAudit historial de movimientos de inventario.
func (c *Client) InventoryAudit(ctx context.Context) ([]AuditRecord, error) {
	var out []AuditRecord
	if err := c.do(ctx, http.MethodGet, "/auditoria-inventario/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
