package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta todas las escuelas en el formato CSV de carga masiva",
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

			w, err := createOutput(output)
			if err != nil {
				return err
			}
			defer w.Close()

			// El caso de uso de exportación no usa el importador.
			uc := usecase.NewDataUseCase(nil, postgres.NewSchoolQueryRepository(pool))
			if err := uc.Export(ctx, csvio.NewWriter(w)); err != nil {
				return withCode(exitDB, fmt.Errorf("exportar: %w", err))
			}
			e.log.Info().Str("output", output).Msg("exportación completa")
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Archivo destino (por defecto stdout)")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Escribe la plantilla CSV de carga masiva",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := createOutput(output)
			if err != nil {
				return err
			}
			defer w.Close()
			return csvio.WriteTemplate(w)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Archivo destino (por defecto stdout)")
	return cmd
}
