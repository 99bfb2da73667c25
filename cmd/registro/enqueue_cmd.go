package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/internal/infrastructure/scheduler"
)

type enqueueOutput struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
	Source string `json:"source"`
}

func newEnqueueCmd() *cobra.Command {
	var (
		source   string
		charset  string
		skipRows int
	)

	cmd := &cobra.Command{
		Use:   "encolar",
		Short: "Encola una importación para el worker programado",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(source) == "" {
				return withCode(exitUsage, fmt.Errorf("--source es obligatorio"))
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			client, err := scheduler.NewClient(e.cfg.Redis.URL, e.cfg.Scheduler.Queue)
			if err != nil {
				return withCode(exitValidation, err)
			}
			defer client.Close()

			payload := scheduler.ImportPayload{Source: source, Charset: charset}
			if skipRows >= 0 {
				payload.SkipRows = &skipRows
			}
			id, err := client.EnqueueImport(cmd.Context(), payload)
			if err != nil {
				return err
			}
			return writeJSONLine(os.Stdout, enqueueOutput{TaskID: id, Queue: e.cfg.Scheduler.Queue, Source: source})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Archivo CSV: ruta visible para el worker o s3://bucket/clave (obligatorio)")
	cmd.Flags().StringVar(&charset, "charset", "", "utf-8 | latin1 | auto (por defecto IMPORT_CHARSET del worker)")
	cmd.Flags().IntVar(&skipRows, "skip-rows", -1, "Filas a descartar después del encabezado")
	return cmd
}
