package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CartSyncItem línea enviada al endpoint de reconciliación: solo el producto
// y la cantidad deseada; el servidor resuelve el upsert.
type CartSyncItem struct {
	ProductID int64 `json:"id"`
	Quantity  int64 `json:"cantidad"`
}

// cartSyncLine línea del carrito canónico que devuelve el servidor.
type cartSyncLine struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"producto_id"`
	Quantity  int64 `json:"cantidad"`
	Product   struct {
		Name           string          `json:"nombre"`
		Price          decimal.Decimal `json:"precio"`
		Image          string          `json:"imagen"`
		AvailableStock int64           `json:"stock_disponible"`
	} `json:"producto_detalle"`
}

// SyncCart envía líneas locales al endpoint de reconciliación y devuelve el
// carrito canónico del servidor. Sirve tanto para la fusión invitado→sesión
// (todas las líneas) como para el espejo de un cambio puntual (una línea).
func (c *Client) SyncCart(ctx context.Context, items []CartSyncItem) ([]entity.CartLine, error) {
	body := map[string][]CartSyncItem{"items": items}
	var raw []cartSyncLine
	if err := c.do(ctx, http.MethodPost, "/carrito/sincronizar/", nil, body, &raw); err != nil {
		return nil, err
	}
	lines := make([]entity.CartLine, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, entity.CartLine{
			ProductID:      l.ProductID,
			Name:           l.Product.Name,
			Price:          l.Product.Price,
			Image:          l.Product.Image,
			AvailableStock: l.Product.AvailableStock,
			Quantity:       l.Quantity,
			ServerLineID:   l.ID,
		})
	}
	return lines, nil
}

// DeleteCartLine borra una línea del carrito del servidor por su id de fila.
func (c *Client) DeleteCartLine(ctx context.Context, serverLineID int64) error {
	path := fmt.Sprintf("/carrito/%d/", serverLineID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
