package ports

import "context"

// ReportCache define el puerto de salida para cachear reportes agregados.
// El adaptador de Redis lo implementa; sin Redis configurado la aplicación usa NoCache.
type ReportCache interface {
	// Get carga en dst el valor guardado bajo key. found=false si no existe o expiró.
	Get(ctx context.Context, key string, dst any) (found bool, err error)
	Set(ctx context.Context, key string, value any) error
	// InvalidateReports borra todas las claves de reportes. La llama el importador al confirmar cambios.
	InvalidateReports(ctx context.Context) error
}

// NoCache implementación vacía: nunca encuentra nada y no guarda.
type NoCache struct{}

func (NoCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NoCache) Set(context.Context, string, any) error { return nil }
func (NoCache) InvalidateReports(context.Context) error { return nil }
