// Package nav resuelve navegación con guardas de autenticación y rol.
// Es una función pura sobre (ruta pedida, sesión actual): no guarda estado
// y en particular no recuerda la ruta original tras un login (el aterrizaje
// post-login siempre es la ruta de inicio calculada).
package nav

import (
	"github.com/branesca/ferreteria-cliente/internal/access"
)

// Session lo que el router necesita saber de la sesión.
type Session interface {
	Authenticated() bool
	Role() string
}

// Decision resultado de resolver una ruta.
type Decision struct {
	Route      access.Route
	Redirected bool
}

// show y redirect constructores internos para legibilidad.
func show(r access.Route) Decision     { return Decision{Route: r} }
func redirect(r access.Route) Decision { return Decision{Route: r, Redirected: true} }

// RouteIndex ruta raíz; se resuelve a la ruta de inicio del rol.
const RouteIndex access.Route = ""

// Resolve aplica los dos tipos de guarda en orden:
//
//  1. Autenticación: anónimo pidiendo ruta protegida → login. Sin memoria
//     de la ruta pedida.
//  2. Rol: autenticado sin permiso → redirección silenciosa a la zona
//     segura (caja POS). ADMIN nunca es redirigido.
//
// La raíz se resuelve a la ruta de inicio del rol; el login con sesión
// activa redirige al inicio; una ruta desconocida cae en la raíz.
func Resolve(requested access.Route, sess Session) Decision {
	if !sess.Authenticated() {
		if requested == access.RouteLogin {
			return show(access.RouteLogin)
		}
		return redirect(access.RouteLogin)
	}

	role := sess.Role()
	switch requested {
	case access.RouteLogin, RouteIndex:
		return redirect(access.HomeRoute(role))
	}

	if !known(requested) {
		return redirect(access.HomeRoute(role))
	}
	if !access.Allowed(role, requested) {
		return redirect(access.SafeRoute)
	}
	return show(requested)
}

func known(r access.Route) bool {
	switch r {
	case access.RouteDashboard, access.RouteOrders, access.RouteProducts,
		access.RouteUsers, access.RouteAudit, access.RouteInventory,
		access.RoutePOS, access.RouteCashCutoff, access.RouteCustomers:
		return true
	}
	return false
}
