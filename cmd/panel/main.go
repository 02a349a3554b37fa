// Cliente de terminal del panel administrativo: caja POS, gestión y
// dashboard con refresco de fondo.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/branesca/ferreteria-cliente/internal/access"
	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/nav"
	"github.com/branesca/ferreteria-cliente/internal/notify"
	"github.com/branesca/ferreteria-cliente/internal/session"
	"github.com/branesca/ferreteria-cliente/internal/storage"
	"github.com/branesca/ferreteria-cliente/internal/term"
	"github.com/branesca/ferreteria-cliente/pkg/config"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})
	log.Info().Str("api", cfg.API.BaseURL).Msg("iniciando panel")

	local, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento local")
	}

	apiClient := api.New(cfg.API.BaseURL, log, api.WithCheckoutTimeout(cfg.API.CheckoutTimeout))

	sess, err := session.New(apiClient, local, log)
	if err != nil {
		log.Fatal().Err(err).Msg("restaurar sesión")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := notify.NewOrderWatcher(apiClient, log, cfg.Polling.MonitorPedidos,
		func(orderID, pending int64) {
			fmt.Printf("\n🔔 Nuevo pedido #%d (%d pendientes)\n> ", orderID, pending)
		},
		nil, // sin salida de audio en terminal
	)
	dashboard := notify.NewDashboardRefresher(apiClient, log, cfg.Polling.Dashboard)

	p := &panel{api: apiClient, sess: sess, watcher: watcher, dashboard: dashboard}

	// Los sondeos viven solo mientras hay sesión: montar/desmontar explícito.
	// El Stop corre aparte porque el logout puede originarse dentro de un
	// tick del propio vigilante (hook 401) y esperar ahí sería un deadlock.
	sess.Subscribe(func(authenticated bool) {
		if authenticated {
			watcher.Start(ctx)
			dashboard.Start(ctx)
			return
		}
		go func() {
			watcher.Stop()
			dashboard.Stop()
		}()
	})
	if sess.Authenticated() {
		watcher.Start(ctx)
		dashboard.Start(ctx)
	}

	p.run(ctx)
	if sess.Authenticated() {
		watcher.Stop()
		dashboard.Stop()
	}
}

type panel struct {
	api       *api.Client
	sess      *session.Store
	watcher   *notify.OrderWatcher
	dashboard *notify.DashboardRefresher
}

func (p *panel) run(ctx context.Context) {
	fmt.Println("Ferretería Branesca — panel. Escriba 'ayuda' para ver comandos.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "salir" {
			return
		}
		p.dispatch(ctx, args[0], args[1:])
	}
}

func (p *panel) dispatch(ctx context.Context, cmd string, args []string) {
	var err error
	switch cmd {
	case "ayuda":
		fmt.Println("login <usuario> <clave> | logout | ir <ruta> | notificaciones | limpiar | venta <sucursal> <metodo> <recibido> <id:cant>... | factura <pedido> | estado <pedido> <estado> | abono <cliente> <monto> | salir")
	case "login":
		err = p.login(ctx, args)
	case "logout":
		p.sess.Logout()
		fmt.Println("Sesión cerrada.")
	case "ir":
		err = p.navigate(ctx, args)
	case "notificaciones":
		for _, n := range p.watcher.Notifications() {
			fmt.Printf("Pedido #%d — %s\n", n.OrderID, n.Observed.Format("15:04:05"))
		}
	case "limpiar":
		p.watcher.ClearAll()
	case "venta":
		err = p.venta(ctx, args)
	case "factura":
		err = p.factura(ctx, args)
	case "estado":
		err = p.estado(ctx, args)
	case "abono":
		err = p.abono(ctx, args)
	default:
		fmt.Println("Comando desconocido. Escriba 'ayuda'.")
	}
	if err != nil {
		fmt.Println("Error:", api.ServerMessage(err, err.Error()))
	}
}

func (p *panel) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("uso: login <usuario> <clave>")
	}
	if err := p.sess.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	user, _ := p.sess.User()
	home := nav.Resolve(nav.RouteIndex, p.sess)
	fmt.Printf("Bienvenido, %s (%s). Ruta de inicio: %s\n", user.Username, user.Role, home.Route)
	return nil
}

// navigate resuelve la ruta con las guardas de autenticación y rol, y
// renderiza la página resultante.
func (p *panel) navigate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("uso: ir <ruta>")
	}
	decision := nav.Resolve(access.Route(args[0]), p.sess)
	if decision.Redirected {
		fmt.Printf("→ redirigido a %s\n", routeName(decision.Route))
	}
	return p.render(ctx, decision.Route)
}

func routeName(r access.Route) string {
	if r == access.RouteLogin {
		return "login"
	}
	return string(r)
}

func (p *panel) render(ctx context.Context, route access.Route) error {
	switch route {
	case access.RouteLogin:
		fmt.Println("Use: login <usuario> <clave>")
		return nil
	case access.RouteDashboard:
		return p.renderDashboard()
	case access.RouteOrders:
		return p.renderOrders(ctx)
	case access.RouteProducts:
		return p.renderProducts(ctx)
	case access.RouteUsers:
		return p.renderUsers(ctx)
	case access.RouteAudit:
		return p.renderAudit(ctx)
	case access.RouteInventory:
		return p.renderInventory(ctx)
	case access.RouteCustomers:
		return p.renderCustomers(ctx)
	case access.RouteCashCutoff:
		return p.renderCashCutoff(ctx)
	case access.RoutePOS:
		fmt.Println("Caja POS. Use: venta <sucursal> <metodo> <recibido> <id:cant>...")
		return nil
	}
	return nil
}

func (p *panel) renderDashboard() error {
	if p.dashboard.Loading() {
		fmt.Println("Cargando datos...")
		return nil
	}
	if err := p.dashboard.Err(); err != nil {
		return fmt.Errorf("error cargando dashboard: %w", err)
	}
	snap, ok := p.dashboard.Current()
	if !ok {
		fmt.Println("Sin datos.")
		return nil
	}
	fmt.Printf("Actualizado: %s\n", snap.UpdatedAt.Format("15:04:05"))
	fmt.Printf("Ventas: %s en %s pedidos\n", term.Money(snap.Sales.TotalSales), term.Count(snap.Sales.OrdersProcessed))
	fmt.Printf("Alertas de stock: %d\n", len(snap.Alerts))
	for _, v := range snap.Sellers {
		fmt.Printf("  %-20s %12s (%d pedidos)\n", v.Seller, term.Money(v.Total), v.Orders)
	}
	return nil
}

func (p *panel) renderOrders(ctx context.Context) error {
	pedidos, err := p.api.AdminOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range pedidos {
		fmt.Printf("#%-5d %s  %-10s %12s  %s\n", o.ID, o.Date.Format("2006-01-02"), o.Status, term.Money(o.Total), o.Customer)
	}
	return nil
}

func (p *panel) renderProducts(ctx context.Context) error {
	productos, err := p.api.Products(ctx, 0)
	if err != nil {
		return err
	}
	for _, pr := range productos {
		fmt.Printf("%4d  %-30s %12s\n", pr.ID, pr.Name, term.Money(pr.Price))
	}
	return nil
}

func (p *panel) renderUsers(ctx context.Context) error {
	usuarios, err := p.api.StaffUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range usuarios {
		fmt.Printf("%4d  %-20s %-30s %s\n", u.ID, u.Username, u.Email, u.Role)
	}
	return nil
}

func (p *panel) renderAudit(ctx context.Context) error {
	registros, err := p.api.InventoryAudit(ctx)
	if err != nil {
		return err
	}
	for _, r := range registros {
		fmt.Printf("%s  %-15s %-25s %+d → %d\n", r.Date.Format("2006-01-02 15:04"), r.User, r.Product, r.Change, r.Resulted)
	}
	return nil
}

func (p *panel) renderInventory(ctx context.Context) error {
	existencias, err := p.api.Inventory(ctx)
	if err != nil {
		return err
	}
	for _, e := range existencias {
		fmt.Printf("%4d  %-25s %-15s %6d\n", e.ID, e.Product, e.Branch, e.Quantity)
	}
	return nil
}

func (p *panel) renderCustomers(ctx context.Context) error {
	clientes, err := p.api.Customers(ctx)
	if err != nil {
		return err
	}
	for _, c := range clientes {
		fmt.Printf("%4d  %-25s deuda %12s / límite %s\n", c.ID, c.Name, term.Money(c.Debt), term.Money(c.CreditLimit))
	}
	return nil
}

func (p *panel) renderCashCutoff(ctx context.Context) error {
	corte, err := p.api.CashCutoff(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Corte %s: %s en %d ventas\n", corte.Date, term.Money(corte.Total), corte.SalesCount)
	return nil
}

// venta registra una venta mostrador. Para EFECTIVO el monto recibido debe
// cubrir el total; el cambio se muestra al confirmar.
func (p *panel) venta(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("uso: venta <sucursal> <metodo> <recibido> <id:cant>...")
	}
	sucursal, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("sucursal inválida")
	}
	metodo := strings.ToUpper(args[1])
	recibido, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("monto inválido")
	}

	var items []api.CartSyncItem
	total := decimal.Zero
	for _, spec := range args[3:] {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("línea inválida: %s (use id:cantidad)", spec)
		}
		id, err1 := strconv.ParseInt(parts[0], 10, 64)
		cant, err2 := strconv.ParseInt(parts[1], 10, 64)
		if err1 != nil || err2 != nil || cant < 1 {
			return fmt.Errorf("línea inválida: %s", spec)
		}
		producto, err := p.api.Product(ctx, id)
		if err != nil {
			return err
		}
		items = append(items, api.CartSyncItem{ProductID: id, Quantity: cant})
		total = total.Add(producto.Price.Mul(decimal.NewFromInt(cant)))
	}

	if metodo == api.PaymentCash && recibido.LessThan(total) {
		return fmt.Errorf("monto insuficiente: total %s", term.Money(total))
	}

	resp, err := p.api.CounterSale(ctx, api.CounterSaleRequest{
		BranchID:      sucursal,
		CustomerName:  "Cliente Mostrador",
		Items:         items,
		PaymentMethod: metodo,
		AmountPaid:    recibido,
	})
	if err != nil {
		return err
	}
	fmt.Printf("¡Venta #%d registrada! Cambio: %s\n", resp.OrderID, term.Money(recibido.Sub(total)))
	return nil
}

func (p *panel) factura(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("uso: factura <pedido>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("pedido inválido")
	}
	pdf, err := p.api.InvoicePDF(ctx, id)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("factura-%d.pdf", id)
	if err := os.WriteFile(name, pdf, 0o644); err != nil {
		return fmt.Errorf("guardar %s: %w", name, err)
	}
	fmt.Printf("Factura guardada en %s\n", name)
	return nil
}

func (p *panel) estado(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("uso: estado <pedido> <estado>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("pedido inválido")
	}
	nuevo := strings.ToUpper(args[1])
	if _, err := p.api.PatchOrder(ctx, id, api.OrderPatch{Status: &nuevo}); err != nil {
		return err
	}
	fmt.Printf("Pedido #%d → %s\n", id, nuevo)
	return nil
}

func (p *panel) abono(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("uso: abono <cliente> <monto>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("cliente inválido")
	}
	monto, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("monto inválido")
	}
	resp, err := p.api.RegisterPayment(ctx, api.PaymentRequest{CustomerID: id, Amount: monto})
	if err != nil {
		return err
	}
	fmt.Printf("¡Pago exitoso! Aplicado: %s  Cambio: %s\n", term.Money(resp.AmountApplied), term.Money(resp.ChangeReturned))
	return nil
}
