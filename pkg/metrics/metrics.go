// Package metrics expone los indicadores Prometheus del motor de inventario.
//
// Cada proceso crea un único Metrics con su propio Registry; /metrics lo
// publica mediante Handler. Todos los métodos aceptan receptor nil para que
// los casos de uso funcionen sin instrumentación (tests).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Motivos de rechazo (etiqueta reason).
const (
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonInvalidKind       = "invalid_kind"
	ReasonProductUnknown    = "product_unknown"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonConflict          = "conflict"
	ReasonStorageFailure    = "storage_failure"
)

// Metrics agrupa los colectores de la aplicación.
type Metrics struct {
	registry *prometheus.Registry

	// MovementsApplied movimientos confirmados. Etiquetas: kind, source.
	MovementsApplied *prometheus.CounterVec
	// MovementsRejected operaciones rechazadas o fallidas. Etiqueta: reason.
	MovementsRejected *prometheus.CounterVec
	// SalesRecorded ventas confirmadas.
	SalesRecorded prometheus.Counter
	// DriftDetected productos con proyección distinta del ledger.
	DriftDetected prometheus.Counter
	// ApplyDuration duración de la unidad atómica (incluye espera del bloqueo).
	ApplyDuration prometheus.Histogram
}

// New registra los colectores en un Registry propio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MovementsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "movements_applied_total",
			Help: "Movimientos de inventario confirmados",
		}, []string{"kind", "source"}),
		MovementsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "movements_rejected_total",
			Help: "Operaciones de inventario rechazadas",
		}, []string{"reason"}),
		SalesRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Ventas confirmadas",
		}),
		DriftDetected: f.NewCounter(prometheus.CounterOpts{
			Name: "stock_drift_detected_total",
			Help: "Productos cuya proyección difiere del ledger al conciliar",
		}),
		ApplyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "movement_apply_duration_seconds",
			Help:    "Duración de la transacción de movimiento",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// Registry devuelve el registro subyacente.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler handler HTTP en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveApplied registra un movimiento confirmado.
func (m *Metrics) ObserveApplied(kind, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.MovementsApplied.WithLabelValues(kind, source).Inc()
	m.ApplyDuration.Observe(d.Seconds())
}

// ObserveRejected registra un rechazo.
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.MovementsRejected.WithLabelValues(reason).Inc()
}

// IncSales registra una venta confirmada.
func (m *Metrics) IncSales() {
	if m == nil {
		return
	}
	m.SalesRecorded.Inc()
}

// AddDrift suma n productos con drift.
func (m *Metrics) AddDrift(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DriftDetected.Add(float64(n))
}
