// Package session mantiene la sesión del usuario: token de acceso y perfil.
// Ambos se fijan y se limpian de forma atómica (nunca existe uno sin el otro)
// y se persisten en el almacenamiento local para sobrevivir reinicios.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/internal/storage"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
	"github.com/branesca/ferreteria-cliente/pkg/token"
)

// AuthError fallo de autenticación con el mensaje del servidor cuando existe,
// o un fallback genérico para mostrar en el formulario de login.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// Store sesión única del proceso. Toda mutación pasa por Login/LoginWithGoogle/
// Logout; nadie más toca la credencial del cliente HTTP.
type Store struct {
	mu    sync.RWMutex
	api   *api.Client
	local *storage.Local
	log   *logger.Logger

	tok  string
	user *entity.User

	subsMu sync.Mutex
	subs   []func(authenticated bool)
}

// New restaura la sesión persistida (si la hay) y se registra como fuente de
// credenciales y hook 401/403 del cliente HTTP. El registro ocurre aquí,
// antes de cualquier llamada de aplicación: la primera petición nunca sale
// sin bearer si había token guardado.
func New(apiClient *api.Client, local *storage.Local, log *logger.Logger) (*Store, error) {
	s := &Store{api: apiClient, local: local, log: log}

	if err := s.restore(); err != nil {
		return nil, err
	}

	apiClient.SetCredentialSource(s)
	apiClient.SetUnauthorizedHook(func() {
		s.log.Warn().Msg("sesión: respuesta 401/403 del backend, cerrando sesión")
		s.Logout()
	})
	return s, nil
}

// restore carga token y perfil persistidos. Un token vencido o un par
// incompleto se descartan completos para preservar la atomicidad.
func (s *Store) restore() error {
	raw, ok, err := s.local.Get(storage.KeyAccessToken)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	tok := string(raw)

	var user entity.User
	okUser, err := s.local.GetJSON(storage.KeyUserProfile, &user)
	if err != nil {
		return err
	}

	if !okUser || token.Expired(tok, time.Now()) {
		s.log.Debug().Msg("sesión: token persistido vencido o perfil ausente, descartando")
		if err := s.local.Delete(storage.KeyAccessToken); err != nil {
			return err
		}
		return s.local.Delete(storage.KeyUserProfile)
	}

	s.tok = tok
	s.user = &user
	return nil
}

// Token implementa api.CredentialSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok
}

// User devuelve una copia del perfil actual; ok=false sin sesión.
func (s *Store) User() (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return entity.User{}, false
	}
	return *s.user, true
}

// Role rol del usuario actual, o vacío sin sesión.
func (s *Store) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// Authenticated indica si hay sesión activa.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tok != ""
}

// Subscribe registra un observador de cambios de sesión. Se invoca con true
// al adquirir sesión (el carrito dispara ahí su reconciliación) y con false
// al cerrarla. Los observadores se llaman fuera de los locks del store.
func (s *Store) Subscribe(fn func(authenticated bool)) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Login intercambia credenciales por token y luego verifica el perfil.
// Cualquier fallo deja la sesión limpia y devuelve AuthError con el detalle
// del servidor o un mensaje genérico.
func (s *Store) Login(ctx context.Context, username, password string) error {
	pair, err := s.api.IssueToken(ctx, username, password)
	if err != nil {
		s.Logout()
		return &AuthError{Message: api.ServerMessage(err, "error al iniciar sesión"), Err: err}
	}

	// El token se fija en memoria antes de pedir el perfil para que la
	// llamada a /user/me/ ya salga autenticada.
	s.mu.Lock()
	s.tok = pair.Access
	s.mu.Unlock()

	user, err := s.api.Me(ctx)
	if err != nil {
		s.Logout()
		return &AuthError{Message: api.ServerMessage(err, "error al iniciar sesión"), Err: err}
	}

	return s.commit(pair.Access, user)
}

// LoginWithGoogle intercambia un token de identidad federada; el backend
// devuelve token y perfil en un solo viaje.
func (s *Store) LoginWithGoogle(ctx context.Context, providerToken string) error {
	resp, err := s.api.GoogleLogin(ctx, providerToken)
	if err != nil {
		s.Logout()
		return &AuthError{Message: api.ServerMessage(err, "falló el inicio de sesión con Google"), Err: err}
	}
	return s.commit(resp.Access, &resp.User)
}

// commit reemplaza la sesión completa, la persiste y notifica.
func (s *Store) commit(tok string, user *entity.User) error {
	s.mu.Lock()
	s.tok = tok
	s.user = user
	s.mu.Unlock()

	if err := s.local.Set(storage.KeyAccessToken, []byte(tok)); err != nil {
		return err
	}
	if err := s.local.SetJSON(storage.KeyUserProfile, user); err != nil {
		return err
	}

	s.log.Info().Str("usuario", user.Username).Str("rol", user.Role).Msg("sesión iniciada")
	s.notify(true)
	return nil
}

// Logout limpia memoria y almacenamiento local. Idempotente: cerrar una
// sesión ya cerrada no hace nada visible. El Clear borra también el carrito
// persistido (las tres claves caen juntas).
func (s *Store) Logout() {
	s.mu.Lock()
	had := s.tok != ""
	s.tok = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.local.Clear(); err != nil {
		s.log.Error().Err(err).Msg("sesión: limpiar almacenamiento local")
	}
	if had {
		s.log.Info().Msg("sesión cerrada")
		s.notify(false)
	}
}

func (s *Store) notify(authenticated bool) {
	s.subsMu.Lock()
	subs := make([]func(bool), len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(authenticated)
	}
}
