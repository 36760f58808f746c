// Package storage keeps profile images in an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/jobboard/apiserver/config"
	"github.com/jobboard/apiserver/internal/apperr"
)

// ErrObjectNotFound is returned by backends when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Backend defines common object operations across providers.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns the object body and its stored content type.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// AvatarStore lays profile images out as avatars/<user key>/<uuid><ext>.
type AvatarStore struct {
	backend Backend
	newID   func() string
}

func NewAvatarStore(backend Backend) *AvatarStore {
	return &AvatarStore{backend: backend, newID: uuid.NewString}
}

// Open builds the backend selected by cfg.Backend and makes sure its bucket
// exists. It returns nil when storage is disabled.
func Open(ctx context.Context, cfg config.StorageConfig) (*AvatarStore, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewAvatarStore(backend), nil
}

func (s *AvatarStore) PutAvatar(ctx context.Context, userKey string, r io.Reader, size int64, contentType, ext string) (string, error) {
	key := path.Join("avatars", userKey, s.newID()+ext)
	if err := s.backend.Put(ctx, key, r, size, contentType); err != nil {
		return "", fmt.Errorf("put avatar: %w", err)
	}
	return key, nil
}

func (s *AvatarStore) OpenAvatar(ctx context.Context, key string) (io.ReadCloser, string, error) {
	body, contentType, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, "", apperr.NotFound("profile image not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("open avatar: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return body, contentType, nil
}

func (s *AvatarStore) DeleteAvatar(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}
