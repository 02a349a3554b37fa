// Package api implementa el cliente HTTP hacia el backend REST de la
// ferretería. Toda la lógica de negocio (precios, impuestos, stock, crédito,
// PDF) vive en el backend; este paquete solo transporta.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// pathToken ruta de emisión de token. Es la única exenta del interceptor
// 401/403: un login fallido no debe disparar logout (bucle infinito).
const pathToken = "/token/"

// CredentialSource entrega el bearer token vigente. Lo implementa el store
// de sesión; ningún otro componente toca la credencial.
type CredentialSource interface {
	Token() string
}

// Client cliente único del backend, compartido por todo el proceso.
// La credencial y el hook de no-autorizado los registra el store de sesión
// una sola vez durante el arranque.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	log             *logger.Logger
	creds           CredentialSource
	onUnauthorized  func()
	checkoutTimeout time.Duration
}

// Option configura el cliente en construcción.
type Option func(*Client)

// WithCheckoutTimeout fija el timeout dedicado del checkout (default 15s).
func WithCheckoutTimeout(d time.Duration) Option {
	return func(c *Client) { c.checkoutTimeout = d }
}

// WithHTTPClient reemplaza el *http.Client subyacente (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New construye el cliente apuntando a baseURL (ej. http://host:8000/api).
func New(baseURL string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		httpClient:      &http.Client{},
		log:             log,
		checkoutTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredentialSource registra la fuente del bearer token. Mientras la fuente
// entregue token no vacío, toda petición sale con Authorization; si entrega
// vacío, la cabecera no se envía.
func (c *Client) SetCredentialSource(src CredentialSource) {
	c.creds = src
}

// SetUnauthorizedHook registra el observador estructural de respuestas
// 401/403 (logout automático). No aplica a la ruta de emisión de token.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// do ejecuta una petición JSON contra el backend.
// body nil = sin cuerpo; out nil = respuesta descartada.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decodificar respuesta de %s: %w", path, err)
	}
	return nil
}

// doRaw como do pero devuelve el cuerpo crudo (PDF de factura).
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: serializar petición a %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("api: crear petición %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if tok := c.creds.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: leer respuesta de %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Interceptor estructural: sesión vencida o permiso insuficiente.
		// El endpoint de token queda exento para no cerrar sesión durante
		// un intento de login fallido.
		if c.onUnauthorized != nil && path != pathToken {
			c.onUnauthorized()
		}
	}

	if resp.StatusCode >= 400 {
		return nil, newError(resp.StatusCode, path, data)
	}
	return data, nil
}
