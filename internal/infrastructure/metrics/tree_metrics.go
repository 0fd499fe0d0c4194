// Package metrics expone métricas Prometheus de las operaciones del árbol de categorías.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain"
)

const namespace = "categorias"

// Resultados de una mutación.
const (
	ResultOK          = "ok"
	ResultValidation  = "validation"
	ResultNotFound    = "not_found"
	ResultTransaction = "transaction"
	ResultError       = "error"
)

var _ appcategory.Observer = (*TreeMetrics)(nil)

// TreeMetrics implementa el Observer del caso de uso sobre un registro propio.
type TreeMetrics struct {
	registry *prometheus.Registry

	// MutationsTotal etiquetas: op (create, rename, update_status, delete), result.
	MutationsTotal *prometheus.CounterVec
	// CascadeAffected descendientes tocados por cada cascada a inactive.
	CascadeAffected prometheus.Histogram
	// RelinkAffected nodos recalculados por cada eliminación.
	RelinkAffected prometheus.Histogram
}

// NewTreeMetrics registra las métricas (y los colectores de proceso y runtime) en un registro nuevo.
func NewTreeMetrics() *TreeMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	buckets := []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
	return &TreeMetrics{
		registry: reg,
		MutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "mutations_total",
			Help:      "Mutaciones del árbol por operación y resultado.",
		}, []string{"op", "result"}),
		CascadeAffected: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "cascade_affected",
			Help:      "Descendientes desactivados por cascada.",
			Buckets:   buckets,
		}),
		RelinkAffected: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "relink_affected",
			Help:      "Categorías re-enlazadas al eliminar un nodo.",
			Buckets:   buckets,
		}),
	}
}

// ObserveMutation cuenta una mutación clasificada por tipo de error.
func (m *TreeMetrics) ObserveMutation(op string, err error) {
	m.MutationsTotal.WithLabelValues(op, Classify(err)).Inc()
}

// ObserveCascade registra el tamaño de una cascada.
func (m *TreeMetrics) ObserveCascade(affected int64) {
	m.CascadeAffected.Observe(float64(affected))
}

// ObserveRelink registra el tamaño de un re-enlace.
func (m *TreeMetrics) ObserveRelink(affected int) {
	m.RelinkAffected.Observe(float64(affected))
}

// Handler handler HTTP de exposición (formato Prometheus).
func (m *TreeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Classify etiqueta result para err.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrInvalidInput):
		return ResultValidation
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, domain.ErrTransaction):
		return ResultTransaction
	default:
		return ResultError
	}
}
