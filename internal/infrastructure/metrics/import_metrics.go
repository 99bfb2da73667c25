// Package metrics expone contadores Prometheus de las importaciones.
package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
)

const namespace = "registro_escuelas"

var _ importer.Recorder = (*ImportRecorder)(nil)

// ImportRecorder implementa importer.Recorder.
type ImportRecorder struct {
	rowsTotal       *prometheus.CounterVec
	sessionsTotal   *prometheus.CounterVec
	sessionDuration *prometheus.HistogramVec
}

// NewImportRecorder registra los colectores en reg.
func NewImportRecorder(reg prometheus.Registerer) *ImportRecorder {
	factory := promauto.With(reg)
	return &ImportRecorder{
		rowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Filas procesadas por resultado (created, updated, skipped, failed).",
		}, []string{"result"}),
		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_sessions_total",
			Help:      "Sesiones de importación terminadas por origen y resultado.",
		}, []string{"source", "outcome"}),
		sessionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_session_duration_seconds",
			Help:      "Duración de las sesiones de importación.",
			Buckets: []float64{
				0.1, 0.5,
				1, 2, 5,
				10, 30, 60,
				120, 300,
			},
		}, []string{"source"}),
	}
}

var defaultRecorder = sync.OnceValue(func() *ImportRecorder {
	return NewImportRecorder(prometheus.DefaultRegisterer)
})

// Default recorder registrado en el registry global; es el que publica /metrics.
func Default() *ImportRecorder { return defaultRecorder() }

// RowProcessed suma una fila al resultado indicado.
func (r *ImportRecorder) RowProcessed(result string) {
	r.rowsTotal.WithLabelValues(result).Inc()
}

// SessionFinished registra el cierre de una sesión.
func (r *ImportRecorder) SessionFinished(source, outcome string, elapsed time.Duration) {
	r.sessionsTotal.WithLabelValues(sourceLabel(source), outcome).Inc()
	r.sessionDuration.WithLabelValues(sourceLabel(source)).Observe(elapsed.Seconds())
}

// Handler exposición HTTP del registry global.
func Handler() http.Handler { return promhttp.Handler() }

// sourceLabel acota la cardinalidad: el origen puede ser un nombre de archivo arbitrario.
func sourceLabel(source string) string {
	kind, _, _ := strings.Cut(source, ":")
	switch kind {
	case importer.SourceHTTP, importer.SourceCLI, importer.SourceScheduler:
		return kind
	default:
		return "otro"
	}
}
