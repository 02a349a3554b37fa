package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/apitest"
	"github.com/branesca/ferreteria-cliente/internal/cart"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/internal/storage"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func producto(id int64, nombre string, precio float64, stock int64) entity.Product {
	return entity.Product{
		ID:             id,
		Name:           nombre,
		Price:          decimal.NewFromFloat(precio),
		AvailableStock: stock,
	}
}

// guestStore carrito en modo invitado; el cliente HTTP no se usa.
func guestStore(t *testing.T) (*cart.Store, *storage.Local) {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	apiClient := api.New("http://127.0.0.1:0/api", logger.Nop())
	s, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	return s, local
}

// tokenFijo credencial estática para los tests de reconciliación.
type tokenFijo string

func (t tokenFijo) Token() string { return string(t) }

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes del carrito de invitado
// ──────────────────────────────────────────────────────────────────────────────

// Para toda secuencia de operaciones: a lo sumo una línea por producto y toda
// cantidad es un entero positivo.
func TestStore_InvariantesTrasSecuencia(t *testing.T) {
	s, _ := guestStore(t)
	p1 := producto(1, "Martillo", 10, 0)
	p2 := producto(2, "Clavos", 2.5, 0)

	require.Nil(t, s.Add(p1))
	require.Nil(t, s.Add(p1))
	require.Nil(t, s.Add(p2))
	require.Nil(t, s.Increment(1))
	s.Decrement(2)

	lines := s.Lines()
	seen := map[int64]bool{}
	for _, l := range lines {
		assert.False(t, seen[l.ProductID], "a lo sumo una línea por producto")
		seen[l.ProductID] = true
		assert.GreaterOrEqual(t, l.Quantity, int64(1), "cantidad siempre >= 1")
	}
	require.Len(t, lines, 1, "decrementar Clavos en cantidad 1 la elimina")
	assert.Equal(t, int64(3), lines[0].Quantity)
}

// Add en el tope de stock no muta nada y devuelve el aviso.
func TestStore_AddEnTopeDeStock(t *testing.T) {
	s, _ := guestStore(t)
	p := producto(1, "Taladro", 150, 2)

	require.Nil(t, s.Add(p))
	require.Nil(t, s.Add(p))

	warning := s.Add(p)
	require.NotNil(t, warning, "agregar sobre el stock debe avisar")
	assert.Equal(t, int64(2), warning.Available)
	assert.Contains(t, warning.Message(), "2 unidades")

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Quantity, "el carrito queda intacto")
}

// Sin cota de stock conocida (0) no se aplica tope.
func TestStore_SinCotaDeStock(t *testing.T) {
	s, _ := guestStore(t)
	p := producto(1, "Tornillos", 0.5, 0)
	for i := 0; i < 10; i++ {
		require.Nil(t, s.Add(p))
	}
	assert.Equal(t, int64(10), s.Lines()[0].Quantity)
}

// Decrement en cantidad 1 elimina la línea; repetirlo es no-op.
func TestStore_DecrementBajoElPiso(t *testing.T) {
	s, _ := guestStore(t)
	require.Nil(t, s.Add(producto(1, "Cinta", 3, 0)))

	s.Decrement(1)
	assert.Empty(t, s.Lines(), "decrementar en 1 elimina la línea")

	s.Decrement(1) // idempotente bajo el piso
	assert.Empty(t, s.Lines())
}

func TestStore_RemoveYClear(t *testing.T) {
	s, local := guestStore(t)
	require.Nil(t, s.Add(producto(1, "Pala", 20, 0)))
	require.Nil(t, s.Add(producto(2, "Pico", 25, 0)))

	s.Remove(1)
	require.Len(t, s.Lines(), 1)

	s.Clear()
	assert.Empty(t, s.Lines())
	_, ok, err := local.Get(storage.KeyCartItems)
	require.NoError(t, err)
	assert.False(t, ok, "Clear borra la copia persistida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

// Carrito [{precio 10, cant 2}]: subtotal 20.00, IVA 3.00, total 23.00.
func TestStore_Totales(t *testing.T) {
	s, _ := guestStore(t)
	p := producto(1, "Brocha", 10, 0)
	require.Nil(t, s.Add(p))
	require.Nil(t, s.Add(p))

	tot := s.Totals()
	assert.True(t, tot.Subtotal.Equal(decimal.NewFromInt(20)), "subtotal = 20, fue %s", tot.Subtotal)
	assert.True(t, tot.Tax.Equal(decimal.NewFromInt(3)), "IVA 15%% = 3, fue %s", tot.Tax)
	assert.True(t, tot.Total.Equal(decimal.NewFromInt(23)), "total = 23, fue %s", tot.Total)
}

func TestStore_TotalesCarritoVacio(t *testing.T) {
	s, _ := guestStore(t)
	tot := s.Totals()
	assert.True(t, tot.Total.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia de invitado
// ──────────────────────────────────────────────────────────────────────────────

// El carrito de invitado sobrevive un reinicio del proceso.
func TestStore_InvitadoPersisteYRecarga(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	apiClient := api.New("http://127.0.0.1:0/api", logger.Nop())

	s1, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.Nil(t, s1.Add(producto(5, "Llave inglesa", 12.5, 0)))
	require.Nil(t, s1.Increment(5))

	s2, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	lines := s2.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].ProductID)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.True(t, lines[0].Price.Equal(decimal.NewFromFloat(12.5)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconciliación invitado → sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_Reconciliacion(t *testing.T) {
	srv, shutdown, err := apitest.New()
	require.NoError(t, err)
	defer shutdown()

	srv.SeedUser("clave", entity.User{Username: "ana", Role: entity.RoleCliente})
	srv.SeedProduct(producto(5, "Serrucho", 18, 9))

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	apiClient := api.New(srv.URL, logger.Nop())
	apiClient.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	s, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.Nil(t, s.Add(producto(5, "Serrucho", 18, 9)))
	require.Nil(t, s.Increment(5)) // carrito local: producto 5, cantidad 2

	require.NoError(t, s.Reconcile(context.Background()))

	// El estado local es exactamente el conjunto canónico del servidor.
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].ProductID)
	assert.Equal(t, int64(2), lines[0].Quantity)
	assert.NotZero(t, lines[0].ServerLineID, "la línea canónica trae id de fila del servidor")
	assert.True(t, s.Synced())

	// La copia local desaparece: el servidor es la fuente de verdad.
	_, ok, err := local.Get(storage.KeyCartItems)
	require.NoError(t, err)
	assert.False(t, ok, "tras reconciliar no debe quedar carrito persistido")
}

// Si la reconciliación falla, el carrito sigue en modo invitado con sus
// líneas intactas (un solo intento, sin reintentos).
func TestStore_ReconciliacionFallida(t *testing.T) {
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	// Puerto cerrado: la llamada falla de plano.
	apiClient := api.New("http://127.0.0.1:1/api", logger.Nop())

	s, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.Nil(t, s.Add(producto(3, "Nivel", 9, 0)))

	require.Error(t, s.Reconcile(context.Background()))
	assert.False(t, s.Synced())
	require.Len(t, s.Lines(), 1)

	_, ok, err := local.Get(storage.KeyCartItems)
	require.NoError(t, err)
	assert.True(t, ok, "el carrito de invitado sigue persistido")
}

// En modo sincronizado cada cambio de cantidad se espeja al servidor y un
// borrado elimina la fila remota.
func TestStore_EspejoEnModoSincronizado(t *testing.T) {
	srv, shutdown, err := apitest.New()
	require.NoError(t, err)
	defer shutdown()

	srv.SeedUser("clave", entity.User{Username: "ana", Role: entity.RoleCliente})
	srv.SeedProduct(producto(5, "Serrucho", 18, 9))
	srv.SeedProduct(producto(7, "Lima", 4, 0))

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	apiClient := api.New(srv.URL, logger.Nop())
	apiClient.SetCredentialSource(tokenFijo(srv.TokenFor("ana")))

	s, err := cart.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.Nil(t, s.Add(producto(5, "Serrucho", 18, 9)))
	require.NoError(t, s.Reconcile(context.Background()))

	require.Nil(t, s.Increment(5))
	require.Nil(t, s.Add(producto(7, "Lima", 4, 0)))
	s.Flush()

	remoto := srv.CartOf("ana")
	assert.Equal(t, int64(2), remoto[5], "el incremento se espejó")
	assert.Equal(t, int64(1), remoto[7], "la línea nueva se espejó")

	// Borrado: decrementar la Lima (cantidad 1) elimina la línea local y,
	// como tiene id de servidor tras re-reconciliar, también la remota.
	require.NoError(t, s.Reconcile(context.Background()))
	s.Decrement(7)
	s.Flush()

	remoto = srv.CartOf("ana")
	assert.Equal(t, int64(2), remoto[5])
	_, existe := remoto[7]
	assert.False(t, existe, "la fila remota de la Lima debe desaparecer")
}
