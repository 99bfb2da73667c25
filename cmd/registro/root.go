package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
	"github.com/jhoicas/registro-escuelas/pkg/config"
	"github.com/jhoicas/registro-escuelas/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "registro",
		Short:         "Herramientas del registro de escuelas (importación, exportación, migraciones)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newTemplateCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newEnqueueCmd())
	return cmd
}

// Execute corre la CLI. SIGINT/SIGTERM cancelan el contexto: una importación en curso
// termina la fila actual y reporta el resumen parcial.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

// env configuración y logger compartidos por los subcomandos. Los logs van a stderr
// para no mezclarse con la salida JSON.
type env struct {
	cfg *config.Config
	log *logger.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitValidation, err)
	}
	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.App.LogLevel,
		Output: os.Stderr,
	})
	return &env{cfg: cfg, log: log}, nil
}

// connectDB abre un pool chico: la CLI importa de a una fila por transacción.
func (e *env) connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, e.cfg.DB, postgres.PoolOptions{AppName: "registro-cli", MaxConns: 2})
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	return pool, nil
}
