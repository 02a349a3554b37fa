// Package cart mantiene el carrito de compras con su doble fuente de verdad:
// en modo invitado el almacenamiento local es autoritativo; con sesión, el
// carrito del servidor. La transición invitado→sesión es una reconciliación
// explícita de un solo viaje.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/internal/storage"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// StockWarning aviso al usuario cuando agregar una unidad más superaría el
// stock disponible. No es un error: el carrito queda intacto y la UI muestra
// el aviso.
type StockWarning struct {
	Product   string
	Available int64
}

// Message texto listo para mostrar.
func (w *StockWarning) Message() string {
	return fmt.Sprintf("¡Solo quedan %d unidades de %s!", w.Available, w.Product)
}

// Store carrito único del proceso.
//
// En modo invitado cada mutación se persiste localmente. En modo
// sincronizado cada cambio de cantidad se espeja al servidor en segundo
// plano: el estado local es la fuente optimista para el render y los fallos
// del espejo solo se loguean (comportamiento observado del sistema original;
// ver DESIGN.md sobre la ausencia de rollback).
type Store struct {
	mu     sync.Mutex
	api    *api.Client
	local  *storage.Local
	log    *logger.Logger
	lines  []entity.CartLine
	synced bool

	mirrors sync.WaitGroup // espejos en vuelo, para Flush en tests y al salir
}

// New construye el store y carga el carrito de invitado persistido (si hay).
// La reconciliación con el servidor es explícita vía Reconcile.
func New(apiClient *api.Client, local *storage.Local, log *logger.Logger) (*Store, error) {
	s := &Store{api: apiClient, local: local, log: log}
	var lines []entity.CartLine
	ok, err := local.GetJSON(storage.KeyCartItems, &lines)
	if err != nil {
		return nil, err
	}
	if ok {
		s.lines = lines
	}
	return s, nil
}

// BindSession suscribe el carrito a los cambios de sesión: al adquirirla se
// reconcilia con el servidor; al cerrarla se vuelve a un carrito de invitado
// vacío (el persistido ya lo borró el logout).
func (s *Store) BindSession(sess interface {
	Subscribe(func(authenticated bool))
}) {
	sess.Subscribe(func(authenticated bool) {
		if authenticated {
			if err := s.Reconcile(context.Background()); err != nil {
				s.log.Error().Err(err).Msg("carrito: reconciliación tras login")
			}
			return
		}
		s.mu.Lock()
		s.lines = nil
		s.synced = false
		s.mu.Unlock()
	})
}

// Lines copia de las líneas actuales, en orden de inserción.
func (s *Store) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Synced true cuando el carrito del servidor es la fuente de verdad.
func (s *Store) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// Add agrega una unidad del producto: línea nueva o incremento de la
// existente. Si la cota de stock es conocida y se superaría, no muta nada y
// devuelve el aviso.
func (s *Store) Add(p entity.Product) *StockWarning {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(p.ID)
	var current int64
	if idx >= 0 {
		current = s.lines[idx].Quantity
	}
	if p.AvailableStock > 0 && current+1 > p.AvailableStock {
		return &StockWarning{Product: p.Name, Available: p.AvailableStock}
	}

	if idx >= 0 {
		s.lines[idx].Quantity++
		s.afterQuantityChange(s.lines[idx])
	} else {
		line := entity.CartLine{
			ProductID:      p.ID,
			Name:           p.Name,
			Price:          p.Price,
			Image:          p.Image,
			AvailableStock: p.AvailableStock,
			Quantity:       1,
		}
		s.lines = append(s.lines, line)
		s.afterQuantityChange(line)
	}
	return nil
}

// Increment suma una unidad a una línea existente, con la misma cota de
// stock que Add. Producto ausente: no-op.
func (s *Store) Increment(productID int64) *StockWarning {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(productID)
	if idx < 0 {
		return nil
	}
	line := s.lines[idx]
	if line.AvailableStock > 0 && line.Quantity+1 > line.AvailableStock {
		return &StockWarning{Product: line.Name, Available: line.AvailableStock}
	}
	s.lines[idx].Quantity++
	s.afterQuantityChange(s.lines[idx])
	return nil
}

// Decrement resta una unidad; en cantidad 1 elimina la línea. Producto
// ausente: no-op (idempotente bajo el piso).
func (s *Store) Decrement(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(productID)
	if idx < 0 {
		return
	}
	if s.lines[idx].Quantity > 1 {
		s.lines[idx].Quantity--
		s.afterQuantityChange(s.lines[idx])
		return
	}
	s.removeAt(idx)
}

// Remove elimina la línea completa sin importar su cantidad.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(productID)
	if idx < 0 {
		return
	}
	s.removeAt(idx)
}

// Clear vacía el carrito y borra la copia persistida (post-checkout).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	if err := s.local.Delete(storage.KeyCartItems); err != nil {
		s.log.Error().Err(err).Msg("carrito: borrar copia persistida")
	}
}

// Reconcile envía el carrito local al endpoint de reconciliación y adopta el
// resultado canónico del servidor. Un solo viaje, mejor esfuerzo: si falla,
// el carrito sigue en modo invitado y el error queda para el log del caller.
func (s *Store) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	items := make([]api.CartSyncItem, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, api.CartSyncItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	s.mu.Unlock()

	canonical, err := s.api.SyncCart(ctx, items)
	if err != nil {
		return fmt.Errorf("reconciliar carrito: %w", err)
	}

	s.mu.Lock()
	s.lines = canonical
	s.synced = true
	s.mu.Unlock()

	// El servidor es ahora la fuente de verdad; la copia local sobra.
	if err := s.local.Delete(storage.KeyCartItems); err != nil {
		s.log.Error().Err(err).Msg("carrito: borrar copia local tras reconciliar")
	}
	return nil
}

// Flush espera los espejos de servidor en vuelo (cierre ordenado y tests).
func (s *Store) Flush() {
	s.mirrors.Wait()
}

// ── internos (llamar con s.mu tomado) ────────────────────────────────────────

func (s *Store) find(productID int64) int {
	for i, l := range s.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	line := s.lines[idx]
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	if s.synced {
		if line.ServerLineID != 0 {
			s.mirrorDelete(line)
		}
		return
	}
	s.persistGuest()
}

// afterQuantityChange persiste (invitado) o espeja (sincronizado) el cambio.
func (s *Store) afterQuantityChange(line entity.CartLine) {
	if s.synced {
		s.mirrorQuantity(line)
		return
	}
	s.persistGuest()
}

func (s *Store) persistGuest() {
	if err := s.local.SetJSON(storage.KeyCartItems, s.lines); err != nil {
		s.log.Error().Err(err).Msg("carrito: persistir carrito de invitado")
	}
}

// mirrorQuantity espeja un cambio de cantidad al servidor en segundo plano.
// El fallo se loguea y nada más: el estado local ya se mostró al usuario.
func (s *Store) mirrorQuantity(line entity.CartLine) {
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		item := api.CartSyncItem{ProductID: line.ProductID, Quantity: line.Quantity}
		if _, err := s.api.SyncCart(context.Background(), []api.CartSyncItem{item}); err != nil {
			s.log.Error().Err(err).Int64("producto", line.ProductID).Msg("carrito: espejo de cantidad")
		}
	}()
}

func (s *Store) mirrorDelete(line entity.CartLine) {
	s.mirrors.Add(1)
	go func() {
		defer s.mirrors.Done()
		if err := s.api.DeleteCartLine(context.Background(), line.ServerLineID); err != nil {
			s.log.Error().Err(err).Int64("linea", line.ServerLineID).Msg("carrito: espejo de borrado")
		}
	}()
}
