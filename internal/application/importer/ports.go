package importer

import (
	"context"
	"time"

	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

// RowTxRunner ejecuta la unidad de persistencia de una fila dentro de una transacción.
// Si fn devuelve error no queda ninguna escritura de la fila.
type RowTxRunner interface {
	RunRow(ctx context.Context, fn func(
		catalogs repository.CatalogRepository,
		sites repository.SiteRepository,
		schools repository.SchoolRepository,
		conns repository.ConnectivityRepository,
		floors repository.FloorRepository,
	) error) error
}

// RowSource entrega las filas en orden de entrada. Devuelve io.EOF al terminar.
// line es el número físico de registro en el archivo (el encabezado es la línea 1).
type RowSource interface {
	Next() (line int, raw normalize.RawRow, err error)
}

// SourceFunc abre la fuente de filas. Un error aquí es un fallo de sesión.
type SourceFunc func() (RowSource, error)

// CacheInvalidator descarta los reportes cacheados cuando cambian los datos.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context) error
}

// Recorder registra métricas de importación.
type Recorder interface {
	RowProcessed(result string)
	SessionFinished(source, outcome string, elapsed time.Duration)
}

// Resultados de fila usados en métricas.
const (
	RowCreated = "created"
	RowUpdated = "updated"
	RowSkipped = "skipped"
	RowFailed  = "failed"
)

// Tipos de origen. El origen de una sesión es "<tipo>:<nombre>", p. ej. "http:escuelas.csv".
const (
	SourceHTTP      = "http"
	SourceCLI       = "cli"
	SourceScheduler = "scheduler"
)

// SourceName arma el origen de una sesión.
func SourceName(kind, name string) string {
	if name == "" {
		return kind
	}
	return kind + ":" + name
}
