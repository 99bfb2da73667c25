package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
)

type migrateOutput struct {
	Command string `json:"command"`
	Version int64  `json:"version"`
}

func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes del esquema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := loadEnv()
			if err != nil {
				return err
			}
			pool, err := e.connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			command := "migrate status"
			if !statusOnly {
				command = "migrate up"
				if err := postgres.Migrate(ctx, pool); err != nil {
					return withCode(exitDB, err)
				}
			}
			v, err := postgres.MigrationVersion(ctx, pool)
			if err != nil {
				return withCode(exitDB, err)
			}
			return writeJSONLine(os.Stdout, migrateOutput{Command: command, Version: v})
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "Solo muestra la versión aplicada")
	return cmd
}
