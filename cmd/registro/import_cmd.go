package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/application/usecase"
	"github.com/jhoicas/registro-escuelas/internal/domain/normalize"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/cache"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/postgres"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/storage"
	"github.com/jhoicas/registro-escuelas/pkg/config"
	"github.com/jhoicas/registro-escuelas/pkg/validator"
)

type importOptions struct {
	file      string
	charset   string
	delimiter string
	skipRows  int
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Carga masiva de escuelas desde un CSV (ruta local o s3://bucket/clave)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Archivo CSV: ruta local o s3://bucket/clave (obligatorio)")
	cmd.Flags().StringVar(&opts.charset, "charset", "", "utf-8 | latin1 | auto (por defecto IMPORT_CHARSET)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Separador de columnas (por defecto IMPORT_DELIMITER)")
	cmd.Flags().IntVar(&opts.skipRows, "skip-rows", -1, "Filas a descartar después del encabezado (por defecto IMPORT_SKIP_ROWS)")
	return cmd
}

// readerOptions combina los flags con los valores IMPORT_* de la configuración.
func readerOptions(cfg config.ImportConfig, opts importOptions) (csvio.Options, error) {
	if strings.TrimSpace(opts.file) == "" {
		return csvio.Options{}, withCode(exitUsage, fmt.Errorf("--file es obligatorio"))
	}
	if opts.charset != "" {
		cfg.Charset = strings.ToLower(opts.charset)
	}
	switch cfg.Charset {
	case csvio.CharsetUTF8, "utf8", csvio.CharsetLatin1, csvio.CharsetAuto:
	default:
		return csvio.Options{}, withCode(exitValidation, fmt.Errorf("--charset inválido %q", cfg.Charset))
	}
	if opts.delimiter != "" {
		if len([]rune(opts.delimiter)) != 1 {
			return csvio.Options{}, withCode(exitValidation, fmt.Errorf("--delimiter debe ser un solo carácter"))
		}
		cfg.Delimiter = opts.delimiter
	}
	if opts.skipRows >= 0 {
		cfg.SkipRows = opts.skipRows
	}
	return csvio.OptionsFromConfig(cfg), nil
}

func runImport(ctx context.Context, opts importOptions) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	readOpts, err := readerOptions(e.cfg.Import, opts)
	if err != nil {
		return err
	}

	pool, err := e.connectDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	var svcOpts []importer.Option
	if e.cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, e.cfg.Redis.URL)
		if err != nil {
			e.log.Warn().Err(err).Msg("redis no disponible, la caché de reportes no se invalidará")
		} else {
			defer rdb.Close()
			svcOpts = append(svcOpts, importer.WithCache(cache.NewRedisCache(rdb, e.cfg.Redis.CacheTTL)))
		}
	}

	opener, err := newOpener(e.cfg.Storage)
	if err != nil {
		return err
	}
	source := importer.SourceName(importer.SourceCLI, opts.file)
	rc, err := opener.Open(ctx, opts.file)
	if err != nil {
		return withCode(exitSession, err)
	}
	defer rc.Close()

	svc := importer.NewService(postgres.NewTxRunner(pool), normalize.NewNormalizer(validator.New()), e.log, svcOpts...)
	sum, err := svc.Import(ctx, source, csvio.Opener(rc, readOpts))
	if sum != nil {
		if werr := writeJSONLine(os.Stdout, usecase.ToImportResponse(sum)); werr != nil {
			return werr
		}
	}
	return importResult(sum, err)
}

// importResult traduce el resultado de una sesión al error (y código de salida) de la CLI.
func importResult(sum *importer.Summary, err error) error {
	if err != nil {
		if sum == nil {
			return withCode(exitSession, err)
		}
		return err
	}
	if sum.Outcome() != importer.OutcomeSuccess {
		return withCode(exitRowErrors, fmt.Errorf("importación %s: %d filas con error", sum.Outcome(), len(sum.Errors)))
	}
	return nil
}

func newOpener(cfg config.StorageConfig) (*storage.Opener, error) {
	if !cfg.Enabled() {
		return storage.NewOpener(nil), nil
	}
	client, err := storage.NewMinIOClient(cfg)
	if err != nil {
		return nil, withCode(exitValidation, err)
	}
	return storage.NewOpener(client), nil
}
