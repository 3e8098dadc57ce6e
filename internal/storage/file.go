package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2beens/gymtracker/internal/telemetry/tracing"
	"github.com/2beens/gymtracker/pkg"

	"go.opentelemetry.io/otel/attribute"
)

// FileStore keeps every key in its own <key>.json file under dir.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := pkg.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure data dir [%s]: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(ctx context.Context, key string) (_ []byte, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "fileStore.load")
	span.SetAttributes(attribute.String("key", key))
	defer func() {
		if errors.Is(err, ErrNotFound) {
			tracing.EndSpanWithErrCheck(span, nil)
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blob, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read [%s]: %w", key, err)
	}
	return blob, nil
}

// Save writes to a temp file first and renames it over the old value,
// so a crash mid-write never leaves a truncated blob behind.
func (s *FileStore) Save(ctx context.Context, key string, blob []byte) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "fileStore.save")
	span.SetAttributes(attribute.String("key", key), attribute.Int("size", len(blob)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for [%s]: %w", key, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write [%s]: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for [%s]: %w", key, err)
	}
	if err = os.Rename(tmpName, s.path(key)); err != nil {
		return fmt.Errorf("rename temp file for [%s]: %w", key, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
