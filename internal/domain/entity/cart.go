package entity

import "github.com/shopspring/decimal"

// CartLine una línea del carrito: producto + cantidad.
//
// Invariantes que mantiene el store del carrito:
//   - a lo sumo una línea por ProductID
//   - Quantity siempre >= 1 (al bajar de 1 la línea se elimina)
//   - Quantity nunca supera AvailableStock cuando la cota es conocida (> 0)
//
// ServerLineID es el id de la fila en el carrito del servidor; solo existe
// cuando hay sesión y la línea ya fue reconciliada (0 = desconocido).
// Los tags JSON replican la forma guardada por la SPA en localStorage para
// que un carrito de invitado sobreviva el cambio de cliente.
type CartLine struct {
	ProductID      int64           `json:"id"`
	Name           string          `json:"nombre"`
	Price          decimal.Decimal `json:"precio"`
	Image          string          `json:"imagen,omitempty"`
	AvailableStock int64           `json:"stock_disponible,omitempty"`
	Quantity       int64           `json:"cantidad"`
	ServerLineID   int64           `json:"db_id,omitempty"`
}

// Subtotal precio unitario por cantidad de esta línea.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}
