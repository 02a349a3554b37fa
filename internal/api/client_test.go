package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/apitest"
	"github.com/branesca/ferreteria-cliente/internal/domain"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

type tokenFijo string

func (t tokenFijo) Token() string { return string(t) }

func backend(t *testing.T) *apitest.Server {
	t.Helper()
	srv, shutdown, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(shutdown)
	srv.SeedUser("clave", entity.User{Username: "ana", Role: entity.RoleCliente})
	return srv
}

// ──────────────────────────────────────────────────────────────────────────────
// Bearer y interceptor 401/403
// ──────────────────────────────────────────────────────────────────────────────

// Sin credencial la petición sale sin Authorization y el backend la rechaza.
func TestClient_SinCredencial(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestClient_ConCredencial(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
}

// El hook de no-autorizado se dispara en rutas protegidas pero nunca en la
// ruta de emisión de token.
func TestClient_HookDeNoAutorizado(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())

	disparos := 0
	c.SetUnauthorizedHook(func() { disparos++ })

	// Login fallido: 401 del endpoint de token, exento.
	_, err := c.IssueToken(context.Background(), "ana", "incorrecta")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, disparos, "la ruta de token está exenta del interceptor")

	// Ruta protegida sin token: 401 estructural, sí dispara.
	_, err = c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, disparos)
}

func TestClient_TokenVencidoDispara(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())
	c.SetCredentialSource(tokenFijo(srv.ExpiredTokenFor("ana")))

	disparos := 0
	c.SetUnauthorizedHook(func() { disparos++ })

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, disparos)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_MapeoDeStatus(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	// 404: borrar una línea de carrito inexistente.
	err := c.DeleteCartLine(context.Background(), 9999)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "línea no encontrada", apiErr.Message)
}

func TestServerMessage(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())

	_, err := c.IssueToken(context.Background(), "ana", "incorrecta")
	require.Error(t, err)
	assert.Equal(t, "usuario o contraseña incorrectos", api.ServerMessage(err, "fallback"))

	// Error sin cuerpo del servidor: se usa el fallback.
	assert.Equal(t, "fallback", api.ServerMessage(context.Canceled, "fallback"))
	assert.Equal(t, "fallback", api.ServerMessage(nil, "fallback"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Checkout con timeout dedicado
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CheckoutDentroDelTiempo(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop(), api.WithCheckoutTimeout(2*time.Second))
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	resp, err := c.Checkout(context.Background(), api.CheckoutRequest{
		BranchID:      1,
		AddressID:     2,
		Items:         []api.CartSyncItem{{ProductID: 5, Quantity: 2}},
		TransactionID: "PAYPAL-ABC123",
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.OrderID)
}

// Un backend lento en el checkout produce el error de timeout dedicado, que
// la UI distingue de un rechazo de negocio.
func TestClient_CheckoutTimeout(t *testing.T) {
	srv := backend(t)
	srv.SetCheckoutDelay(300 * time.Millisecond)

	c := api.New(srv.URL, logger.Nop(), api.WithCheckoutTimeout(50*time.Millisecond))
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	_, err := c.Checkout(context.Background(), api.CheckoutRequest{BranchID: 1, AddressID: 2})
	require.ErrorIs(t, err, domain.ErrCheckoutTimeout)
}

// El timeout del checkout no afecta al resto de las llamadas.
func TestClient_TimeoutNoAfectaOtrasLlamadas(t *testing.T) {
	srv := backend(t)
	srv.SetCheckoutDelay(100 * time.Millisecond)

	c := api.New(srv.URL, logger.Nop(), api.WithCheckoutTimeout(10*time.Millisecond))
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	_, err := c.Me(context.Background())
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta de mostrador
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_CounterSale(t *testing.T) {
	srv := backend(t)
	c := api.New(srv.URL, logger.Nop())
	c.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	resp, err := c.CounterSale(context.Background(), api.CounterSaleRequest{
		PaymentMethod: api.PaymentCash,
		Items:         []api.CartSyncItem{{ProductID: 5, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.OrderID)
}
