package kv

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/viant/afs"
	afsurl "github.com/viant/afs/url"
)

// FileStore writes one file per key under a base URL. Any scheme supported
// by afs works (file, mem, and cloud storage with the matching connector).
type FileStore struct {
	fs      afs.Service
	baseURL string
}

// NewFileStore creates a FileStore rooted at baseURL.
func NewFileStore(fs afs.Service, baseURL string) *FileStore {
	if fs == nil {
		fs = afs.New()
	}
	return &FileStore{fs: fs, baseURL: baseURL}
}

func (s *FileStore) location(key string) string {
	return afsurl.Join(s.baseURL, url.PathEscape(key)+".json")
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	loc := s.location(key)
	ok, err := s.fs.Exists(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("kv: checking %s: %w", loc, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("kv: reading %s: %w", loc, err)
	}
	return data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	loc := s.location(key)
	if err := s.fs.Upload(ctx, loc, 0o644, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("kv: writing %s: %w", loc, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	loc := s.location(key)
	ok, err := s.fs.Exists(ctx, loc)
	if err != nil {
		return fmt.Errorf("kv: checking %s: %w", loc, err)
	}
	if !ok {
		return nil
	}
	if err := s.fs.Delete(ctx, loc); err != nil {
		return fmt.Errorf("kv: deleting %s: %w", loc, err)
	}
	return nil
}
