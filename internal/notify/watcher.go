// Package notify implementa los refrescadores de fondo del panel: el
// vigilante de pedidos nuevos y el refrescador de métricas del dashboard.
//
// Ambos son tareas periódicas ligadas a la vida de la vista: Start al montar,
// Stop al desmontar, sin timers huérfanos. El bucle es serial, así que dos
// ticks nunca se solapan; si uno tarda más que el intervalo, el siguiente
// simplemente se corre.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/internal/domain/entity"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// ToastFunc aviso transitorio en pantalla por un pedido nuevo.
type ToastFunc func(orderID, pending int64)

// SoundFunc reproduce el sonido de notificación. Puede fallar (restricciones
// de reproducción del entorno); el fallo se traga en silencio.
type SoundFunc func() error

// OrderWatcher vigila el endpoint de monitoreo cada intervalo y acumula
// notificaciones en memoria. La primera observación solo fija la línea base,
// sin alertar: evita el falso "pedido nuevo" al entrar al panel.
type OrderWatcher struct {
	api      *api.Client
	log      *logger.Logger
	interval time.Duration
	toast    ToastFunc
	sound    SoundFunc

	mu       sync.Mutex
	baseline *int64
	list     []entity.Notification

	cancel context.CancelFunc
	done   chan struct{}
}

// NewOrderWatcher construye el vigilante. toast y sound pueden ser nil.
func NewOrderWatcher(apiClient *api.Client, log *logger.Logger, interval time.Duration, toast ToastFunc, sound SoundFunc) *OrderWatcher {
	return &OrderWatcher{
		api:      apiClient,
		log:      log,
		interval: interval,
		toast:    toast,
		sound:    sound,
	}
}

// Start arranca el bucle de sondeo con un primer tick inmediato.
func (w *OrderWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.Tick(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Tick(ctx)
			}
		}
	}()
}

// Stop cancela el bucle y espera a que termine. Idempotente tras Start.
func (w *OrderWatcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Tick una observación del monitor. Exportado para poder probar la lógica de
// línea base sin esperar intervalos reales.
func (w *OrderWatcher) Tick(ctx context.Context) {
	res, err := w.api.MonitorOrders(ctx)
	if err != nil {
		// Fallo de sondeo de fondo: log y nada más; jamás desestabiliza
		// la sesión en curso.
		w.log.Debug().Err(err).Msg("monitor de pedidos")
		return
	}
	if res.LatestOrderID == nil {
		return
	}
	latest := *res.LatestOrderID

	w.mu.Lock()
	if w.baseline == nil {
		w.baseline = &latest
		w.mu.Unlock()
		return
	}
	if latest <= *w.baseline {
		w.mu.Unlock()
		return
	}
	w.baseline = &latest
	n := entity.Notification{
		LocalID:  uuid.NewString(),
		OrderID:  latest,
		Observed: time.Now(),
	}
	w.list = append([]entity.Notification{n}, w.list...)
	w.mu.Unlock()

	w.log.Info().Int64("pedido", latest).Int64("pendientes", res.PendingCount).Msg("pedido nuevo")
	if w.toast != nil {
		w.toast(latest, res.PendingCount)
	}
	if w.sound != nil {
		if err := w.sound(); err != nil {
			// Mejor esfuerzo: el sonido jamás es fatal.
			w.log.Debug().Err(err).Msg("sonido de notificación")
		}
	}
}

// Notifications copia de la lista, más reciente primero.
func (w *OrderWatcher) Notifications() []entity.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]entity.Notification, len(w.list))
	copy(out, w.list)
	return out
}

// ClearAll vacía la lista (acción explícita del usuario).
func (w *OrderWatcher) ClearAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.list = nil
}
