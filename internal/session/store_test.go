package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/apitest"
	"github.com/branesca/ferreteria-cliente/internal/domain"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/internal/session"
	"github.com/branesca/ferreteria-cliente/internal/storage"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func servidor(t *testing.T) *apitest.Server {
	t.Helper()
	srv, shutdown, err := apitest.New()
	require.NoError(t, err)
	t.Cleanup(shutdown)
	return srv
}

func almacen(t *testing.T, dir string) *storage.Local {
	t.Helper()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)
	return local
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_LoginExitoso(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Email: "ana@branesca.com", Role: entity.RoleGerente})

	local := almacen(t, t.TempDir())
	apiClient := api.New(srv.URL, logger.Nop())
	s, err := session.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.False(t, s.Authenticated())

	require.NoError(t, s.Login(context.Background(), "ana", "clave123"))

	assert.True(t, s.Authenticated())
	assert.NotEmpty(t, s.Token())
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, entity.RoleGerente, s.Role())

	// Token y perfil quedan persistidos juntos.
	_, okTok, err := local.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, okTok)
	var persisted entity.User
	okPerfil, err := local.GetJSON(storage.KeyUserProfile, &persisted)
	require.NoError(t, err)
	require.True(t, okPerfil)
	assert.Equal(t, "ana", persisted.Username)
}

func TestStore_LoginCredencialesInvalidas(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	local := almacen(t, t.TempDir())
	s, err := session.New(api.New(srv.URL, logger.Nop()), local, logger.Nop())
	require.NoError(t, err)

	err = s.Login(context.Background(), "ana", "incorrecta")
	require.Error(t, err)

	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "usuario o contraseña incorrectos", authErr.Message,
		"el mensaje del servidor llega intacto al formulario")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Un fallo en /token/ no dispara el cierre global ni deja residuos.
	assert.Equal(t, 1, srv.TokenCalls(), "un solo intento, sin reintentos")
	assert.False(t, s.Authenticated())
	_, ok, err := local.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

// El perfil se pide con el token recién emitido; si /user/me/ falla la sesión
// queda limpia en vez de a medias.
func TestStore_LoginPerfilFalla(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	local := almacen(t, t.TempDir())
	s, err := session.New(api.New(srv.URL, logger.Nop()), local, logger.Nop())
	require.NoError(t, err)

	// El token se emite bien pero el backend rechaza el perfil.
	srv.SetMeFailing(true)

	err = s.Login(context.Background(), "ana", "clave123")
	require.Error(t, err)
	assert.False(t, s.Authenticated())
	_, ok := s.User()
	assert.False(t, ok, "nunca existe perfil sin token ni token sin perfil")
}

func TestStore_LoginConGoogle(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("n/a", entity.User{Username: "beto", Email: "beto@gmail.com", Role: entity.RoleCliente})
	srv.SeedGoogleToken("id-token-google", "beto")

	s, err := session.New(api.New(srv.URL, logger.Nop()), almacen(t, t.TempDir()), logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.LoginWithGoogle(context.Background(), "id-token-google"))
	assert.True(t, s.Authenticated())
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "beto", user.Username)
}

func TestStore_LoginConGoogleInvalido(t *testing.T) {
	srv := servidor(t)
	s, err := session.New(api.New(srv.URL, logger.Nop()), almacen(t, t.TempDir()), logger.Nop())
	require.NoError(t, err)

	err = s.LoginWithGoogle(context.Background(), "token-ajeno")
	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.False(t, s.Authenticated())
}

// ──────────────────────────────────────────────────────────────────────────────
// Restauración al arranque
// ──────────────────────────────────────────────────────────────────────────────

// Una sesión persistida se restaura en un proceso nuevo sin volver a pedir
// credenciales.
func TestStore_RestauraSesionPersistida(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleAdmin})
	dir := t.TempDir()

	s1, err := session.New(api.New(srv.URL, logger.Nop()), almacen(t, dir), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s1.Login(context.Background(), "ana", "clave123"))

	// Proceso nuevo: mismo directorio, cliente y store recién construidos.
	apiClient := api.New(srv.URL, logger.Nop())
	s2, err := session.New(apiClient, almacen(t, dir), logger.Nop())
	require.NoError(t, err)

	assert.True(t, s2.Authenticated())
	assert.Equal(t, entity.RoleAdmin, s2.Role())

	// La credencial quedó registrada antes de cualquier llamada: la primera
	// petición protegida ya sale con bearer.
	user, err := apiClient.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
}

// Token persistido vencido: se descarta el par completo al arrancar.
func TestStore_DescartaTokenVencido(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})
	dir := t.TempDir()

	local := almacen(t, dir)
	require.NoError(t, local.Set(storage.KeyAccessToken, []byte(srv.ExpiredTokenFor("ana"))))
	require.NoError(t, local.SetJSON(storage.KeyUserProfile, entity.User{Username: "ana"}))

	s, err := session.New(api.New(srv.URL, logger.Nop()), local, logger.Nop())
	require.NoError(t, err)

	assert.False(t, s.Authenticated())
	_, okTok, err := local.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, okTok)
	_, okPerfil, err := local.Get(storage.KeyUserProfile)
	require.NoError(t, err)
	assert.False(t, okPerfil)
}

// Token sin perfil (par incompleto): también se descarta entero.
func TestStore_DescartaParIncompleto(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	local := almacen(t, t.TempDir())
	require.NoError(t, local.Set(storage.KeyAccessToken, []byte(srv.TokenFor("ana"))))

	s, err := session.New(api.New(srv.URL, logger.Nop()), local, logger.Nop())
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre global ante 401/403
// ──────────────────────────────────────────────────────────────────────────────

// Un 401 en cualquier ruta protegida cierra la sesión una sola vez y limpia
// el almacenamiento local completo.
func TestStore_CierreGlobalAnte401(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	local := almacen(t, t.TempDir())
	apiClient := api.New(srv.URL, logger.Nop())
	s, err := session.New(apiClient, local, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "ana", "clave123"))

	cierres := 0
	s.Subscribe(func(authenticated bool) {
		if !authenticated {
			cierres++
		}
	})

	// El backend invalida la sesión; la siguiente llamada protegida da 401.
	srv.ForgetUser("ana")
	_, err = apiClient.Me(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, cierres, "el cierre se notifica exactamente una vez")

	_, okTok, err := local.Get(storage.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, okTok)
	_, okCarrito, err := local.Get(storage.KeyCartItems)
	require.NoError(t, err)
	assert.False(t, okCarrito, "las claves caen juntas")

	// Repetir el 401 no vuelve a notificar: el cierre es idempotente.
	_, _ = apiClient.Me(context.Background())
	assert.Equal(t, 1, cierres)
}

// Un 401 del endpoint de emisión de token NO cierra la sesión vigente: otro
// usuario tecleando mal su clave en el mismo proceso no expulsa al actual.
func TestStore_FalloDeTokenNoCierraSesion(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	apiClient := api.New(srv.URL, logger.Nop())
	s, err := session.New(apiClient, almacen(t, t.TempDir()), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "ana", "clave123"))

	cierres := 0
	s.Subscribe(func(authenticated bool) {
		if !authenticated {
			cierres++
		}
	})

	_, err = apiClient.IssueToken(context.Background(), "otro", "mala")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	assert.True(t, s.Authenticated(), "la sesión vigente sobrevive")
	assert.Equal(t, 0, cierres)
}

// ──────────────────────────────────────────────────────────────────────────────
// Logout
// ──────────────────────────────────────────────────────────────────────────────

func TestStore_LogoutIdempotente(t *testing.T) {
	srv := servidor(t)
	srv.SeedUser("clave123", entity.User{Username: "ana", Role: entity.RoleCliente})

	s, err := session.New(api.New(srv.URL, logger.Nop()), almacen(t, t.TempDir()), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "ana", "clave123"))

	notificaciones := 0
	s.Subscribe(func(bool) { notificaciones++ })

	s.Logout()
	s.Logout()
	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Equal(t, 1, notificaciones, "solo el primer cierre notifica")
}
