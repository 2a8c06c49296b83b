package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps blobs in process memory and issues sequential
// references ("blob-1.png", "blob-2.mp4", ...). Intended for tests and
// local experimentation.
type MemoryStore struct {
	mu    sync.Mutex
	next  int
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) SaveImage(ctx context.Context, b64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return m.put(ctx, ".png", raw)
}

func (m *MemoryStore) SaveVideo(ctx context.Context, r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return m.put(ctx, ".mp4", raw)
}

// Get returns a stored blob by reference.
func (m *MemoryStore) Get(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.blobs[ref]
	return raw, ok
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func (m *MemoryStore) put(ctx context.Context, ext string, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	ref := fmt.Sprintf("blob-%d%s", m.next, ext)
	m.blobs[ref] = raw
	return ref, nil
}
