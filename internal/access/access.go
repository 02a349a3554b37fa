// Package access centraliza la autorización por rol del panel en una tabla
// declarativa rol→rutas, en lugar de listas ad hoc repetidas por ruta.
package access

import "github.com/branesca/ferreteria-cliente/internal/domain/entity"

// Route etiqueta de página del panel admin.
type Route string

// Rutas del panel. Login es pública; las demás requieren sesión.
const (
	RouteLogin      Route = "login"
	RouteDashboard  Route = "dashboard"
	RouteOrders     Route = "pedidos"
	RouteProducts   Route = "productos"
	RouteUsers      Route = "usuarios"
	RouteAudit      Route = "auditoria"
	RouteInventory  Route = "inventario"
	RoutePOS        Route = "facturacion"
	RouteCashCutoff Route = "corte-caja"
	RouteCustomers  Route = "clientes"
)

// SafeRoute destino para un usuario autenticado sin permiso sobre la ruta
// pedida: la caja POS, zona segura de todo empleado. La redirección es
// silenciosa; no se revela qué existe detrás de la ruta negada.
const SafeRoute = RoutePOS

// permissions tabla de capacidades. ADMIN no aparece: su acceso total se
// resuelve como override global en Allowed.
var permissions = map[string]map[Route]bool{
	entity.RoleGerente: {
		RouteDashboard:  true,
		RouteOrders:     true,
		RouteAudit:      true,
		RouteInventory:  true,
		RoutePOS:        true,
		RouteCashCutoff: true,
		RouteCustomers:  true,
	},
	entity.RoleVendedor: {
		RoutePOS:        true,
		RouteCashCutoff: true,
		RouteCustomers:  true,
	},
}

// Allowed indica si el rol puede entrar a la ruta. ADMIN siempre puede,
// sin importar el contenido de la tabla.
func Allowed(role string, route Route) bool {
	if role == entity.RoleAdmin {
		return true
	}
	return permissions[role][route]
}

// HomeRoute ruta de aterrizaje tras el login: dashboard para quien dirige,
// caja POS para el resto. Función pura del rol, nunca persistida.
func HomeRoute(role string) Route {
	switch role {
	case entity.RoleAdmin, entity.RoleGerente:
		return RouteDashboard
	default:
		return RoutePOS
	}
}
