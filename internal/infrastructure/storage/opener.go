// Package storage abre los archivos de importación programada: objetos de
// MinIO/S3 (s3://bucket/clave) o rutas locales.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/registro-escuelas/pkg/config"
)

const objectScheme = "s3://"

var (
	ErrStorageDisabled = errors.New("almacenamiento de objetos no configurado")
	ErrInvalidSource   = errors.New("origen inválido")
)

// NewMinIOClient crea el cliente MinIO a partir de la configuración.
func NewMinIOClient(cfg config.StorageConfig) (*minio.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrStorageDisabled
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: crear cliente minio: %w", err)
	}
	return client, nil
}

// Opener resuelve un origen a un lector. client puede ser nil: entonces sólo se
// aceptan rutas locales.
type Opener struct {
	client *minio.Client
}

// NewOpener construye el opener.
func NewOpener(client *minio.Client) *Opener { return &Opener{client: client} }

// Open devuelve el contenido del origen. El llamador cierra el lector.
func (o *Opener) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	bucket, key, isObject, err := ParseSource(source)
	if err != nil {
		return nil, err
	}
	if !isObject {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("storage: abrir %s: %w", source, err)
		}
		return f, nil
	}
	if o.client == nil {
		return nil, ErrStorageDisabled
	}
	obj, err := o.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: obtener %s/%s: %w", bucket, key, err)
	}
	// GetObject es perezoso: Stat fuerza la petición y detecta objetos inexistentes.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("storage: obtener %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// ParseSource separa bucket y clave de un origen s3://. Para rutas locales
// isObject es false.
func ParseSource(source string) (bucket, key string, isObject bool, err error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", "", false, fmt.Errorf("%w: vacío", ErrInvalidSource)
	}
	if !strings.HasPrefix(source, objectScheme) {
		return "", "", false, nil
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(source, objectScheme), "/")
	if bucket == "" || key == "" {
		return "", "", true, fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}
	return bucket, key, true, nil
}
