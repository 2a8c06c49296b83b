package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FSStore writes blobs to a local directory. References are BaseURL-prefixed
// names when BaseURL is set, file:// paths otherwise.
type FSStore struct {
	BaseDir string // e.g. "./data/blobs"
	BaseURL string
}

func (s FSStore) SaveImage(ctx context.Context, b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return s.write(ctx, ".png", func(f *os.File) error {
		_, werr := f.Write(raw)
		return werr
	})
}

func (s FSStore) SaveVideo(ctx context.Context, r io.Reader) (string, error) {
	return s.write(ctx, ".mp4", func(f *os.File) error {
		_, werr := io.Copy(f, r)
		return werr
	})
}

func (s FSStore) write(ctx context.Context, ext string, fill func(*os.File) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.BaseDir, 0o755); err != nil {
		return "", err
	}
	name := blobName(ext)
	path := filepath.Join(s.BaseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := fill(f); err != nil {
		// A half-written blob must not yield a reference.
		os.Remove(path)
		return "", err
	}
	if s.BaseURL != "" {
		return s.BaseURL + "/" + name, nil
	}
	return "file://" + path, nil
}
