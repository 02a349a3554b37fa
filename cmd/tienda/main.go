// Cliente de terminal de la tienda pública: catálogo, carrito y checkout
// contra el backend de la ferretería.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/cart"
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
	log.Info().Str("api", cfg.API.BaseURL).Msg("iniciando tienda")

	local, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento local")
	}

	apiClient := api.New(cfg.API.BaseURL, log, api.WithCheckoutTimeout(cfg.API.CheckoutTimeout))

	sess, err := session.New(apiClient, local, log)
	if err != nil {
		log.Fatal().Err(err).Msg("restaurar sesión")
	}

	carrito, err := cart.New(apiClient, local, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar carrito")
	}
	carrito.BindSession(sess)

	ctx := context.Background()
	if sess.Authenticated() {
		// Sesión restaurada de un arranque anterior: reconciliar ya.
		if err := carrito.Reconcile(ctx); err != nil {
			log.Error().Err(err).Msg("reconciliación inicial")
		}
	}

	app := &tienda{cfg: cfg, api: apiClient, sess: sess, cart: carrito}
	app.run(ctx)
	carrito.Flush()
}

type tienda struct {
	cfg  *config.Config
	api  *api.Client
	sess *session.Store
	cart *cart.Store
}

func (t *tienda) run(ctx context.Context) {
	fmt.Println("Ferretería Branesca — tienda. Escriba 'ayuda' para ver comandos.")
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
		t.dispatch(ctx, args[0], args[1:])
	}
}

func (t *tienda) dispatch(ctx context.Context, cmd string, args []string) {
	var err error
	switch cmd {
	case "ayuda":
		fmt.Println("catalogo [categoria] | producto <id> | agregar <id> | mas <id> | menos <id> | quitar <id> | carrito | vaciar | login <usuario> <clave> | logout | checkout <sucursal> <direccion> <transaccion> | historial | cancelar <id> | salir")
	case "catalogo":
		err = t.catalogo(ctx, args)
	case "producto":
		err = t.producto(ctx, args)
	case "agregar":
		err = t.agregar(ctx, args)
	case "mas":
		err = withID(args, func(id int64) error {
			if w := t.cart.Increment(id); w != nil {
				fmt.Println(w.Message())
			}
			return nil
		})
	case "menos":
		err = withID(args, func(id int64) error { t.cart.Decrement(id); return nil })
	case "quitar":
		err = withID(args, func(id int64) error { t.cart.Remove(id); return nil })
	case "carrito":
		t.mostrarCarrito()
	case "vaciar":
		t.cart.Clear()
	case "login":
		err = t.login(ctx, args)
	case "logout":
		t.sess.Logout()
		fmt.Println("Sesión cerrada.")
	case "checkout":
		err = t.checkout(ctx, args)
	case "historial":
		err = t.historial(ctx)
	case "cancelar":
		err = withID(args, func(id int64) error { return t.api.CancelOrder(ctx, id) })
	default:
		fmt.Println("Comando desconocido. Escriba 'ayuda'.")
	}
	if err != nil {
		fmt.Println("Error:", api.ServerMessage(err, err.Error()))
	}
}

func withID(args []string, fn func(int64) error) error {
	if len(args) < 1 {
		return fmt.Errorf("falta el id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("id inválido: %s", args[0])
	}
	return fn(id)
}

func (t *tienda) catalogo(ctx context.Context, args []string) error {
	var categoria int64
	if len(args) > 0 {
		categoria, _ = strconv.ParseInt(args[0], 10, 64)
	}
	productos, err := t.api.Products(ctx, categoria)
	if err != nil {
		return err
	}
	for _, p := range productos {
		fmt.Printf("%4d  %-30s %12s  stock %d\n", p.ID, p.Name, term.Money(p.Price), p.AvailableStock)
	}
	return nil
}

func (t *tienda) producto(ctx context.Context, args []string) error {
	return withID(args, func(id int64) error {
		p, err := t.api.Product(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\nPrecio: %s  Stock: %d\n", p.Name, p.Description, term.Money(p.Price), p.AvailableStock)
		return nil
	})
}

func (t *tienda) agregar(ctx context.Context, args []string) error {
	return withID(args, func(id int64) error {
		p, err := t.api.Product(ctx, id)
		if err != nil {
			return err
		}
		if w := t.cart.Add(*p); w != nil {
			fmt.Println(w.Message())
			return nil
		}
		fmt.Printf("Agregado: %s\n", p.Name)
		return nil
	})
}

func (t *tienda) mostrarCarrito() {
	lines := t.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("Carrito vacío.")
		return
	}
	for _, l := range lines {
		fmt.Printf("%4d  %-30s x%-3d %12s\n", l.ProductID, l.Name, l.Quantity, term.Money(l.Subtotal()))
	}
	tot := t.cart.Totals()
	fmt.Printf("Subtotal: %s  IVA: %s  Total: %s\n", term.Money(tot.Subtotal), term.Money(tot.Tax), term.Money(tot.Total))
}

func (t *tienda) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("uso: login <usuario> <clave>")
	}
	if err := t.sess.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	user, _ := t.sess.User()
	fmt.Printf("Bienvenido, %s.\n", user.Username)
	return nil
}

// checkout registra la compra. El id de transacción es el de la captura de
// PayPal, que ocurre fuera de este cliente.
func (t *tienda) checkout(ctx context.Context, args []string) error {
	if !t.sess.Authenticated() {
		return fmt.Errorf("inicie sesión antes de pagar")
	}
	if len(args) < 3 {
		return fmt.Errorf("uso: checkout <sucursal> <direccion> <transaccion>")
	}
	sucursal, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("sucursal inválida")
	}
	direccion, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("dirección inválida")
	}

	items := make([]api.CartSyncItem, 0)
	for _, l := range t.cart.Lines() {
		items = append(items, api.CartSyncItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if len(items) == 0 {
		return fmt.Errorf("el carrito está vacío")
	}

	resp, err := t.api.Checkout(ctx, api.CheckoutRequest{
		BranchID:      sucursal,
		AddressID:     direccion,
		Items:         items,
		TransactionID: args[2],
	})
	if err != nil {
		return err
	}
	t.cart.Clear()
	fmt.Printf("¡Compra registrada! Pedido #%d\n", resp.OrderID)
	return nil
}

func (t *tienda) historial(ctx context.Context) error {
	pedidos, err := t.api.OrderHistory(ctx)
	if err != nil {
		return err
	}
	for _, p := range pedidos {
		fmt.Printf("#%-5d %s  %-10s %12s\n", p.ID, p.Date.Format("2006-01-02"), p.Status, term.Money(p.Total))
	}
	return nil
}
