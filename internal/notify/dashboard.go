package notify

import (
	"context"
	"sync"
	"time"

	"github.com/branesca/ferreteria-cliente/internal/api"
	"github.com/branesca/ferreteria-cliente/pkg/logger"
)

// Snapshot estado consolidado del dashboard: los tres reportes y la hora de
// la última actualización exitosa.
type Snapshot struct {
	Sales     *api.SalesReport
	Alerts    []api.StockAlert
	Sellers   []api.SellerReport
	UpdatedAt time.Time
}

// DashboardRefresher refresca los tres reportes del dashboard en paralelo.
//
// El primer fetch tras Start es de primer plano: marca Loading y su error se
// expone al usuario. Los siguientes son de fondo: un fallo solo se loguea y
// el snapshot anterior sigue en pantalla, nunca se deja en blanco un
// dashboard ya poblado.
type DashboardRefresher struct {
	api      *api.Client
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	snap    *Snapshot
	loading bool
	err     error

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDashboardRefresher construye el refrescador.
func NewDashboardRefresher(apiClient *api.Client, log *logger.Logger, interval time.Duration) *DashboardRefresher {
	return &DashboardRefresher{api: apiClient, log: log, interval: interval}
}

// Start arranca el bucle: fetch inmediato de primer plano y luego refrescos
// de fondo cada intervalo.
func (r *DashboardRefresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		r.Refresh(ctx, false)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Refresh(ctx, true)
			}
		}
	}()
}

// Stop cancela el bucle y espera a que termine.
func (r *DashboardRefresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// Refresh trae los tres reportes en paralelo. background controla el destino
// del error: superficie (primer plano) o solo log (fondo). Exportado para
// tests.
func (r *DashboardRefresher) Refresh(ctx context.Context, background bool) {
	var (
		wg      sync.WaitGroup
		sales   *api.SalesReport
		alerts  []api.StockAlert
		sellers []api.SellerReport

		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		s, err := r.api.SalesSummary(ctx)
		if err != nil {
			fail(err)
			return
		}
		sales = s
	}()
	go func() {
		defer wg.Done()
		a, err := r.api.StockAlerts(ctx)
		if err != nil {
			fail(err)
			return
		}
		alerts = a
	}()
	go func() {
		defer wg.Done()
		v, err := r.api.SellersSummary(ctx)
		if err != nil {
			fail(err)
			return
		}
		sellers = v
	}()
	wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false

	if firstErr != nil {
		if background {
			// El snapshot previo queda intacto.
			r.log.Debug().Err(firstErr).Msg("refresco de dashboard en fondo")
			return
		}
		r.err = firstErr
		return
	}

	r.err = nil
	r.snap = &Snapshot{
		Sales:     sales,
		Alerts:    alerts,
		Sellers:   sellers,
		UpdatedAt: time.Now(),
	}
}

// Current último snapshot exitoso; ok=false si aún no hay ninguno.
func (r *DashboardRefresher) Current() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snap == nil {
		return Snapshot{}, false
	}
	return *r.snap, true
}

// Loading true mientras corre la carga inicial.
func (r *DashboardRefresher) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Err error de la carga de primer plano, si lo hubo.
func (r *DashboardRefresher) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
