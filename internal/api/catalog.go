package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
)

// Products lista el catálogo; categoryID > 0 filtra por categoría.
func (c *Client) Products(ctx context.Context, categoryID int64) ([]entity.Product, error) {
	var query url.Values
	if categoryID > 0 {
		query = url.Values{"categoria": {strconv.FormatInt(categoryID, 10)}}
	}
	var out []entity.Product
	if err := c.do(ctx, http.MethodGet, "/productos/", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product detalle de un producto.
func (c *Client) Product(ctx context.Context, id int64) (*entity.Product, error) {
	var out entity.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/productos/%d/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories lista las categorías del catálogo.
func (c *Client) Categories(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	if err := c.do(ctx, http.MethodGet, "/categorias/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Branches lista las sucursales.
func (c *Client) Branches(ctx context.Context) ([]entity.Branch, error) {
	var out []entity.Branch
	if err := c.do(ctx, http.MethodGet, "/sucursales/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Addresses direcciones de envío del usuario autenticado.
func (c *Client) Addresses(ctx context.Context) ([]entity.Address, error) {
	var out []entity.Address
	if err := c.do(ctx, http.MethodGet, "/direcciones/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAddress registra una dirección de envío nueva.
func (c *Client) CreateAddress(ctx context.Context, addr entity.Address) (*entity.Address, error) {
	var out entity.Address
	if err := c.do(ctx, http.MethodPost, "/direcciones/", nil, addr, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
