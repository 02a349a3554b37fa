package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/branesca/ferreteria-cliente/internal/access"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		nombre string
		rol    string
		ruta   access.Route
		quiere bool
	}{
		{"admin entra a todo", entity.RoleAdmin, access.RouteUsers, true},
		{"admin entra al dashboard", entity.RoleAdmin, access.RouteDashboard, true},
		{"gerente entra al dashboard", entity.RoleGerente, access.RouteDashboard, true},
		{"gerente entra a pedidos", entity.RoleGerente, access.RouteOrders, true},
		{"gerente entra a inventario", entity.RoleGerente, access.RouteInventory, true},
		{"gerente no gestiona usuarios", entity.RoleGerente, access.RouteUsers, false},
		{"gerente no gestiona productos", entity.RoleGerente, access.RouteProducts, false},
		{"vendedor entra a facturacion", entity.RoleVendedor, access.RoutePOS, true},
		{"vendedor entra al corte de caja", entity.RoleVendedor, access.RouteCashCutoff, true},
		{"vendedor entra a clientes", entity.RoleVendedor, access.RouteCustomers, true},
		{"vendedor no ve el dashboard", entity.RoleVendedor, access.RouteDashboard, false},
		{"vendedor no ve pedidos", entity.RoleVendedor, access.RouteOrders, false},
		{"cliente no entra al panel", entity.RoleCliente, access.RoutePOS, false},
		{"rol desconocido no entra", "BODEGUERO", access.RoutePOS, false},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			assert.Equal(t, tc.quiere, access.Allowed(tc.rol, tc.ruta))
		})
	}
}

func TestHomeRoute(t *testing.T) {
	assert.Equal(t, access.RouteDashboard, access.HomeRoute(entity.RoleAdmin))
	assert.Equal(t, access.RouteDashboard, access.HomeRoute(entity.RoleGerente))
	assert.Equal(t, access.RoutePOS, access.HomeRoute(entity.RoleVendedor))
	assert.Equal(t, access.RoutePOS, access.HomeRoute(entity.RoleCliente))
	assert.Equal(t, access.RoutePOS, access.HomeRoute(""))
}

// La zona segura es la caja POS: todo rol con acceso al panel puede aterrizar
// ahí tras una redirección silenciosa.
func TestSafeRouteAccesibleParaEmpleados(t *testing.T) {
	for _, rol := range []string{entity.RoleAdmin, entity.RoleGerente, entity.RoleVendedor} {
		assert.True(t, access.Allowed(rol, access.SafeRoute), "rol %s", rol)
	}
}
