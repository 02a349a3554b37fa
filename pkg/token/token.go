// Package token inspecciona access tokens JWT del lado del cliente.
//
// El cliente nunca conoce el secreto de firma (eso es del backend), así que
// aquí solo se decodifican los claims sin verificar la firma. El único uso
// legítimo es descartar un token persistido ya vencido antes de la primera
// llamada; la autoridad final sobre validez sigue siendo el backend (401/403).
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims campos que el backend incluye en el access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
}

// Decode extrae los claims de un token SIN verificar la firma.
// Retorna error si el token está malformado.
func Decode(tokenString string) (*Claims, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims)
	if err != nil {
		return nil, fmt.Errorf("token: decodificar claims: %w", err)
	}
	return &claims, nil
}

// Expired indica si el token trae claim de expiración y ya venció.
// Un token sin claim exp se considera vigente (decide el backend).
func Expired(tokenString string, now time.Time) bool {
	claims, err := Decode(tokenString)
	if err != nil {
		// Malformado: tratarlo como vencido para forzar re-login.
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
