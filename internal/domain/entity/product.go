package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo público.
// AvailableStock puede venir en cero cuando el backend no expone la cota
// (el carrito entonces no aplica tope de stock).
type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"nombre"`
	Description    string          `json:"descripcion"`
	Price          decimal.Decimal `json:"precio"`
	Image          string          `json:"imagen"`
	AvailableStock int64           `json:"stock_disponible"`
	CategoryID     int64           `json:"categoria"`
}

// Category categoría del catálogo.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Branch sucursal física de la ferretería.
type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Address string `json:"direccion"`
}

// Address dirección de envío del cliente.
type Address struct {
	ID        int64  `json:"id"`
	Street    string `json:"calle"`
	City      string `json:"ciudad"`
	Reference string `json:"referencia"`
}
