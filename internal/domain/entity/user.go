package entity

// Roles válidos que entrega el backend en el perfil (/user/me/).
const (
	RoleAdmin    = "ADMIN"
	RoleGerente  = "GERENTE"
	RoleVendedor = "VENDEDOR"
	RoleCliente  = "CLIENTE"
)

// User perfil del usuario autenticado tal como lo devuelve el backend.
// Se persiste localmente junto al token y se limpia junto a él: nunca existe
// uno sin el otro.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
	IsStaff  bool   `json:"is_staff"`
}
