package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/registro-escuelas/internal/application/importer"
	"github.com/jhoicas/registro-escuelas/internal/infrastructure/csvio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeOpener struct {
	files  map[string]string
	err    error
	opened []string
}

func (o *fakeOpener) Open(_ context.Context, source string) (io.ReadCloser, error) {
	o.opened = append(o.opened, source)
	if o.err != nil {
		return nil, o.err
	}
	return io.NopCloser(strings.NewReader(o.files[source])), nil
}

// fakeImporter abre la fuente como lo haría importer.Service y cuenta las filas.
type fakeImporter struct {
	source string
	rows   int
	err    error
}

func (f *fakeImporter) Import(_ context.Context, source string, open importer.SourceFunc) (*importer.Summary, error) {
	f.source = source
	src, err := open()
	if err != nil {
		return nil, &importer.SessionError{Source: source, Err: err}
	}
	for {
		if _, _, err := src.Next(); err != nil {
			break
		}
		f.rows++
	}
	if f.err != nil {
		return nil, f.err
	}
	return &importer.Summary{SessionID: "s-1", Source: source, Total: f.rows, Created: f.rows}, nil
}

const validCSV = "CUE,Nombre,Direccion\n1,Escuela Uno,Calle 1\n2,Escuela Dos,Calle 2\n"

func task(t *testing.T, p ImportPayload) *asynq.Task {
	t.Helper()
	tk, err := NewImportTask(p)
	require.NoError(t, err)
	return tk
}

// ─────────────────────────────────────────────────────────────────────────────
// ProcessTask
// ─────────────────────────────────────────────────────────────────────────────

func TestProcessTask_ImportaElOrigen(t *testing.T) {
	opener := &fakeOpener{files: map[string]string{"s3://cargas/escuelas.csv": validCSV}}
	imp := &fakeImporter{}
	h := NewImportHandler(imp, opener, csvio.Options{}, nil)

	err := h.ProcessTask(context.Background(), task(t, ImportPayload{Source: "s3://cargas/escuelas.csv"}))
	require.NoError(t, err)
	assert.Equal(t, "scheduler:s3://cargas/escuelas.csv", imp.source)
	assert.Equal(t, 2, imp.rows)
}

func TestProcessTask_SkipRowsDelPayload(t *testing.T) {
	opener := &fakeOpener{files: map[string]string{"/data/e.csv": validCSV}}
	imp := &fakeImporter{}
	h := NewImportHandler(imp, opener, csvio.Options{SkipRows: 0}, nil)
	skip := 1

	err := h.ProcessTask(context.Background(), task(t, ImportPayload{Source: "/data/e.csv", SkipRows: &skip}))
	require.NoError(t, err)
	assert.Equal(t, 1, imp.rows, "la primera fila de datos se descarta")
}

func TestProcessTask_ArchivoInvalidoNoSeReintenta(t *testing.T) {
	opener := &fakeOpener{files: map[string]string{"/data/e.csv": "Nombre\nx\n"}}
	h := NewImportHandler(&fakeImporter{}, opener, csvio.Options{}, nil)

	err := h.ProcessTask(context.Background(), task(t, ImportPayload{Source: "/data/e.csv"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, csvio.ErrMissingColumn)
}

func TestProcessTask_FalloAlAbrirSeReintenta(t *testing.T) {
	boom := errors.New("minio caído")
	h := NewImportHandler(&fakeImporter{}, &fakeOpener{err: boom}, csvio.Options{}, nil)

	err := h.ProcessTask(context.Background(), task(t, ImportPayload{Source: "s3://b/k"}))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTask_PayloadInvalido(t *testing.T) {
	opener := &fakeOpener{}
	h := NewImportHandler(&fakeImporter{}, opener, csvio.Options{}, nil)

	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskImportCSV, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, opener.opened)
}

// ─────────────────────────────────────────────────────────────────────────────
// Tareas y conexión
// ─────────────────────────────────────────────────────────────────────────────

func TestImportTask_Payload(t *testing.T) {
	skip := 2
	tk := task(t, ImportPayload{Source: "s3://b/k", Charset: "latin1", SkipRows: &skip})
	assert.Equal(t, TaskImportCSV, tk.Type())

	p, err := ParseImportPayload(tk)
	require.NoError(t, err)
	assert.Equal(t, "latin1", p.Charset)
	require.NotNil(t, p.SkipRows)
	assert.Equal(t, 2, *p.SkipRows)

	_, err = NewImportTask(ImportPayload{})
	assert.Error(t, err)
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("redis://:secreto@localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secreto", opt.Password)
	assert.Equal(t, 2, opt.DB)

	_, err = redisClientOpt("")
	assert.Error(t, err)
}

func TestNewPeriodic_RequiereCronYOrigen(t *testing.T) {
	_, err := NewPeriodic("redis://localhost:6379", "", "", "s3://b/k", nil)
	assert.Error(t, err)
}
