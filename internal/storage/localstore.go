// Package storage implementa el almacenamiento local durable del cliente:
// el equivalente del localStorage del navegador. Guarda el token de acceso,
// el perfil cacheado y, solo mientras no hay sesión, el carrito de invitado.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Claves conocidas. Sesión y carrito escriben claves disjuntas; Clear las
// borra todas juntas (semántica de logout).
const (
	KeyAccessToken = "accessToken"
	KeyUserProfile = "userProfile"
	KeyCartItems   = "cartItems"
)

var knownKeys = []string{KeyAccessToken, KeyUserProfile, KeyCartItems}

// Local almacén clave-valor respaldado por archivos en un directorio.
// Cada clave vive en su propio archivo; la escritura es atómica
// (tmp + rename) para no dejar valores a medias ante un corte.
type Local struct {
	mu  sync.Mutex
	dir string
}

// NewLocal crea (si hace falta) el directorio de datos y devuelve el almacén.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: directorio vacío")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: crear directorio %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Set guarda el valor bajo la clave. Escritura atómica.
func (s *Local) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: publicar %s: %w", key, err)
	}
	return nil
}

// Get devuelve el valor de la clave. ok=false si la clave no existe.
func (s *Local) Get(key string) (value []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: leer %s: %w", key, err)
	}
	return data, true, nil
}

// Delete elimina la clave. Idempotente: borrar lo que no existe no es error.
func (s *Local) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	return nil
}

// Clear elimina todas las claves conocidas de una vez (logout).
func (s *Local) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range knownKeys {
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: limpiar %s: %w", key, err)
		}
	}
	return nil
}

// SetJSON serializa v como JSON y lo guarda bajo la clave.
func (s *Local) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: serializar %s: %w", key, err)
	}
	return s.Set(key, data)
}

// GetJSON lee la clave y la deserializa en v. ok=false si no existe.
func (s *Local) GetJSON(key string, v any) (ok bool, err error) {
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("storage: deserializar %s: %w", key, err)
	}
	return true, nil
}

func (s *Local) path(key string) string {
	// Las claves conocidas son nombres simples; se usan tal cual como archivo.
	return filepath.Join(s.dir, key+".json")
}
