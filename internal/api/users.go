package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
)

// StaffUser cuenta de personal administrada desde el panel.
type StaffUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"rol"`
}

// CreateStaffRequest alta de personal; Password solo viaja en la creación.
type CreateStaffRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"rol"`
}

// StaffUsers lista las cuentas de personal (solo administración).
func (c *Client) StaffUsers(ctx context.Context) ([]StaffUser, error) {
	var out []StaffUser
	if err := c.do(ctx, http.MethodGet, "/gestion-usuarios/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateStaffUser crea una cuenta de personal con el rol indicado.
func (c *Client) CreateStaffUser(ctx context.Context, req CreateStaffRequest) (*StaffUser, error) {
	if req.Role == "" {
		req.Role = entity.RoleVendedor
	}
	var out StaffUser
	if err := c.do(ctx, http.MethodPost, "/gestion-usuarios/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStaffUser elimina una cuenta de personal.
func (c *Client) DeleteStaffUser(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/gestion-usuarios/%d/", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
