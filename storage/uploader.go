package storage

import (
	"context"
	"io"
)

// FileUploader хранит логотипы тенантов и команд. Ключ задаёт вызывающая
// сторона ("tenants/<id>/logo"), повторная загрузка перезаписывает объект.
type FileUploader interface {
	// Upload returns the key the object was stored under.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (string, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL builds the public link for a stored key; empty key
	// yields an empty string.
	GetPublicURL(key string) string
}
