// Package apitest levanta un backend falso de la ferretería sobre Fiber para
// los tests del cliente. Implementa el subconjunto del contrato HTTP que los
// stores ejercitan: emisión de token, perfil, reconciliación de carrito,
// monitoreo de pedidos, reportes y checkout.
package apitest

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
)

const (
	secret     = "secreto-de-test-no-usar-en-serio"
	tokenTTL   = time.Hour
	bcryptCost = bcrypt.MinCost // suficiente para tests
)

type seededUser struct {
	hash []byte
	user entity.User
}

type cartRow struct {
	ID        int64
	ProductID int64
	Quantity  int64
}

// Server backend falso. Los campos se manipulan vía métodos Seed*/Set* desde
// los tests; todos son seguros para uso concurrente.
type Server struct {
	App *fiber.App
	URL string // base con el prefijo /api incluido

	mu            sync.Mutex
	users         map[string]seededUser
	googleTokens  map[string]string // providerToken -> username
	products      map[int64]entity.Product
	carts         map[string][]cartRow
	nextLineID    int64
	latestOrderID *int64
	pending       int64
	reportsFail   bool
	meFails       bool
	checkoutDelay time.Duration
	nextOrderID   int64

	tokenCalls int
	meCalls    int
}

// New arranca el servidor en un puerto loopback libre. cleanup lo apaga.
func New() (*Server, func(), error) {
	s := &Server{
		users:        make(map[string]seededUser),
		googleTokens: make(map[string]string),
		products:     make(map[int64]entity.Product),
		carts:        make(map[string][]cartRow),
		nextLineID:   1,
		nextOrderID:  100,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	s.App = app
	s.routes(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("apitest: puerto de escucha: %w", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	s.URL = "http://" + ln.Addr().String() + "/api"

	cleanup := func() { _ = app.Shutdown() }
	return s, cleanup, nil
}

// ── Siembra y control desde los tests ────────────────────────────────────────

// SeedUser registra un usuario con contraseña (hasheada con bcrypt, como el
// backend real).
func (s *Server) SeedUser(password string, user entity.User) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		panic(err) // costo constante válido: no puede fallar
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = seededUser{hash: hash, user: user}
}

// ForgetUser elimina un usuario sembrado; sus tokens vigentes pasan a
// producir 401 en rutas protegidas (simula sesión invalidada en el backend).
func (s *Server) ForgetUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, username)
}

// SeedGoogleToken asocia un token federado con un usuario sembrado.
func (s *Server) SeedGoogleToken(providerToken, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.googleTokens[providerToken] = username
}

// SeedProduct agrega un producto al catálogo.
func (s *Server) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// TokenFor emite un token válido para el usuario (atajo para tests que no
// pasan por /token/).
func (s *Server) TokenFor(username string) string {
	return s.issue(username, tokenTTL)
}

// ExpiredTokenFor emite un token ya vencido.
func (s *Server) ExpiredTokenFor(username string) string {
	return s.issue(username, -time.Minute)
}

// SetMeFailing hace que el endpoint de perfil responda 401 aunque el token
// sea válido (token vigente pero sesión revocada del lado del backend).
func (s *Server) SetMeFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meFails = fail
}

// SetMonitor fija la respuesta del endpoint de monitoreo.
func (s *Server) SetMonitor(latestOrderID *int64, pending int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latestOrderID = latestOrderID
	s.pending = pending
}

// SetReportsFailing hace fallar (500) los tres endpoints de reportes.
func (s *Server) SetReportsFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportsFail = fail
}

// SetCheckoutDelay retrasa la respuesta del checkout (para probar timeout).
func (s *Server) SetCheckoutDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkoutDelay = d
}

// CartOf devuelve el carrito del servidor para el usuario, como pares
// (producto, cantidad) en orden de fila.
func (s *Server) CartOf(username string) map[int64]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]int64)
	for _, row := range s.carts[username] {
		out[row.ProductID] = row.Quantity
	}
	return out
}

// TokenCalls y MeCalls contadores de llamadas (verificación de exenciones).
func (s *Server) TokenCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

func (s *Server) MeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meCalls
}

// ── Rutas ────────────────────────────────────────────────────────────────────

func (s *Server) routes(app *fiber.App) {
	apiGroup := app.Group("/api")

	// Rutas públicas primero; el middleware de auth aplica a lo registrado
	// después.
	apiGroup.Post("/token", s.handleToken)
	apiGroup.Post("/google-login", s.handleGoogleLogin)
	apiGroup.Get("/productos", s.handleProducts)

	apiGroup.Use(s.authMiddleware)
	apiGroup.Get("/user/me", s.handleMe)
	apiGroup.Post("/carrito/sincronizar", s.handleCartSync)
	apiGroup.Delete("/carrito/:id", s.handleCartDelete)
	apiGroup.Get("/monitor-pedidos", s.handleMonitor)
	apiGroup.Get("/reporte-ventas", s.handleSalesReport)
	apiGroup.Get("/alertas-stock", s.handleStockAlerts)
	apiGroup.Get("/reporte-vendedores", s.handleSellersReport)
	apiGroup.Post("/checkout", s.handleCheckout)
	apiGroup.Post("/venta-mostrador", s.handleCounterSale)
}

func (s *Server) issue(username string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return tok
}

// authMiddleware valida el bearer y deja el username en locals.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "credenciales no provistas"})
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(header[len(prefix):], &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "token inválido o expirado"})
	}
	c.Locals("username", claims.Subject)
	return c.Next()
}

func username(c *fiber.Ctx) string {
	v, _ := c.Locals("username").(string)
	return v
}

func (s *Server) handleToken(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "cuerpo inválido"})
	}

	s.mu.Lock()
	s.tokenCalls++
	seeded, ok := s.users[body.Username]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(seeded.hash, []byte(body.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"detail": "usuario o contraseña incorrectos",
		})
	}
	return c.JSON(fiber.Map{
		"access":  s.issue(body.Username, tokenTTL),
		"refresh": s.issue(body.Username, 24*tokenTTL),
	})
}

func (s *Server) handleGoogleLogin(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "cuerpo inválido"})
	}
	s.mu.Lock()
	uname, ok := s.googleTokens[body.Token]
	seeded := s.users[uname]
	s.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "token de Google inválido"})
	}
	return c.JSON(fiber.Map{
		"access": s.issue(uname, tokenTTL),
		"user":   seeded.user,
	})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	s.mu.Lock()
	s.meCalls++
	seeded, ok := s.users[username(c)]
	if s.meFails {
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "usuario desconocido"})
	}
	return c.JSON(seeded.user)
}

func (s *Server) handleProducts(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return c.JSON(out)
}

// handleCartSync upsert de las líneas recibidas sobre el carrito del usuario
// y respuesta con el conjunto canónico completo, con detalle de producto.
func (s *Server) handleCartSync(c *fiber.Ctx) error {
	var body struct {
		Items []struct {
			ID       int64 `json:"id"`
			Quantity int64 `json:"cantidad"`
		} `json:"items"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "cuerpo inválido"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uname := username(c)
	rows := s.carts[uname]
	for _, item := range body.Items {
		found := false
		for i := range rows {
			if rows[i].ProductID == item.ID {
				rows[i].Quantity = item.Quantity
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, cartRow{ID: s.nextLineID, ProductID: item.ID, Quantity: item.Quantity})
			s.nextLineID++
		}
	}
	s.carts[uname] = rows

	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		p := s.products[row.ProductID]
		out = append(out, fiber.Map{
			"id":          row.ID,
			"producto_id": row.ProductID,
			"cantidad":    row.Quantity,
			"producto_detalle": fiber.Map{
				"nombre":           p.Name,
				"precio":           p.Price,
				"imagen":           p.Image,
				"stock_disponible": p.AvailableStock,
			},
		})
	}
	return c.JSON(out)
}

func (s *Server) handleCartDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "id inválido"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uname := username(c)
	rows := s.carts[uname]
	for i := range rows {
		if rows[i].ID == id {
			s.carts[uname] = append(rows[:i], rows[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "línea no encontrada"})
}

func (s *Server) handleMonitor(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{"ultimo_id": s.latestOrderID, "pendientes": s.pending})
}

func (s *Server) handleSalesReport(c *fiber.Ctx) error {
	s.mu.Lock()
	fail := s.reportsFail
	s.mu.Unlock()
	if fail {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reporte no disponible"})
	}
	return c.JSON(fiber.Map{
		"total_ventas":       decimal.NewFromInt(1250),
		"pedidos_procesados": 8,
		"facturas_vencidas":  1,
	})
}

func (s *Server) handleStockAlerts(c *fiber.Ctx) error {
	s.mu.Lock()
	fail := s.reportsFail
	s.mu.Unlock()
	if fail {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reporte no disponible"})
	}
	return c.JSON([]fiber.Map{
		{"producto": 1, "producto_nombre": "Martillo", "sucursal_nombre": "Central", "cantidad": 2},
	})
}

func (s *Server) handleSellersReport(c *fiber.Ctx) error {
	s.mu.Lock()
	fail := s.reportsFail
	s.mu.Unlock()
	if fail {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reporte no disponible"})
	}
	return c.JSON([]fiber.Map{
		{"vendedor": "caja1", "total": decimal.NewFromInt(800), "pedidos": 5},
	})
}

func (s *Server) handleCheckout(c *fiber.Ctx) error {
	s.mu.Lock()
	delay := s.checkoutDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	s.carts[username(c)] = nil
	return c.JSON(fiber.Map{"pedido_id": s.nextOrderID})
}

func (s *Server) handleCounterSale(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextOrderID++
	return c.JSON(fiber.Map{"pedido_id": s.nextOrderID, "cambio": decimal.Zero})
}
