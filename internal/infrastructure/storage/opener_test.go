package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/registro-escuelas/pkg/config"
)

func TestParseSource(t *testing.T) {
	cases := map[string]struct {
		source   string
		bucket   string
		key      string
		isObject bool
		wantErr  bool
	}{
		"objeto":          {source: "s3://cargas/2024/escuelas.csv", bucket: "cargas", key: "2024/escuelas.csv", isObject: true},
		"ruta local":      {source: "/tmp/escuelas.csv"},
		"sin clave":       {source: "s3://cargas", isObject: true, wantErr: true},
		"sin bucket":      {source: "s3:///escuelas.csv", isObject: true, wantErr: true},
		"vacío":           {source: "  ", wantErr: true},
		"ruta relativa":   {source: "datos/escuelas.csv"},
		"espacios extras": {source: " s3://b/k ", bucket: "b", key: "k", isObject: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			bucket, key, isObject, err := ParseSource(tc.source)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.isObject, isObject)
		})
	}
}

func TestOpener_ArchivoLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "escuelas.csv")
	require.NoError(t, os.WriteFile(path, []byte("CUE,Nombre,Direccion\n"), 0o600))

	rc, err := NewOpener(nil).Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "CUE,Nombre,Direccion\n", string(b))
}

func TestOpener_ObjetoSinCliente(t *testing.T) {
	_, err := NewOpener(nil).Open(context.Background(), "s3://cargas/escuelas.csv")
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestOpener_ArchivoInexistente(t *testing.T) {
	_, err := NewOpener(nil).Open(context.Background(), filepath.Join(t.TempDir(), "no.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewMinIOClient(t *testing.T) {
	_, err := NewMinIOClient(config.StorageConfig{})
	assert.ErrorIs(t, err, ErrStorageDisabled)

	client, err := NewMinIOClient(config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
