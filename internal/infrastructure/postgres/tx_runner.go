package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/domain/repository"
)

var _ importer.RowTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRow inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Cada fila importada pasa por aquí: si fn falla, la fila no deja ninguna escritura.
func (r *TxRunner) RunRow(ctx context.Context, fn func(
	catalogs repository.CatalogRepository,
	sites repository.SiteRepository,
	schools repository.SchoolRepository,
	conns repository.ConnectivityRepository,
	floors repository.FloorRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewCatalogRepository(tx),
		NewSiteRepository(tx),
		NewSchoolRepository(tx),
		NewConnectivityRepository(tx),
		NewFloorRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
