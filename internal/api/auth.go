package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
)

// TokenPair respuesta de la emisión de token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// GoogleLoginResponse respuesta del login federado: token más perfil en un
// solo viaje (a diferencia del login con contraseña, que requiere /user/me/).
type GoogleLoginResponse struct {
	Access string      `json:"access"`
	User   entity.User `json:"user"`
}

// RegisterRequest alta de cliente en la tienda pública.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueToken intercambia credenciales por un par de tokens.
// Esta llamada nunca lleva bearer ni dispara el interceptor de logout.
func (c *Client) IssueToken(ctx context.Context, username, password string) (*TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var out TokenPair
	if err := c.do(ctx, http.MethodPost, pathToken, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me devuelve el perfil del usuario autenticado.
func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var out entity.User
	if err := c.do(ctx, http.MethodGet, "/user/me/", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GoogleLogin intercambia un token de identidad de Google por sesión propia.
func (c *Client) GoogleLogin(ctx context.Context, providerToken string) (*GoogleLoginResponse, error) {
	body := map[string]string{"token": providerToken}
	var out GoogleLoginResponse
	if err := c.do(ctx, http.MethodPost, "/google-login/", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register registra una cuenta nueva (queda pendiente de activación por email).
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/registro/", nil, req, nil)
}

// ActivateAccount consume el enlace de activación enviado por correo.
func (c *Client) ActivateAccount(ctx context.Context, uid, activationToken string) error {
	path := fmt.Sprintf("/activar/%s/%s/", uid, activationToken)
	return c.do(ctx, http.MethodGet, path, nil, nil, nil)
}

// RequestPasswordReset solicita el correo de restablecimiento.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/password_reset/", nil, body, nil)
}

// ConfirmPasswordReset fija la contraseña nueva con el token del correo.
func (c *Client) ConfirmPasswordReset(ctx context.Context, resetToken, password string) error {
	body := map[string]string{"token": resetToken, "password": password}
	return c.do(ctx, http.MethodPost, "/password_reset/confirm/", nil, body, nil)
}

// ChangePassword cambia la contraseña del usuario autenticado.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"old_password": current, "new_password": next}
	return c.do(ctx, http.MethodPost, "/user/change-password/", nil, body, nil)
}
