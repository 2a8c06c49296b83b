// Package storage persists generated media and hands back the stable
// reference strings tools announce to their callers.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// BlobStore turns raw generated bytes into addressable references.
// A reference is assigned only after a successful write; implementations
// must be safe to drive sequentially from a single invocation.
type BlobStore interface {
	// SaveImage persists one base64-encoded image and returns its reference.
	SaveImage(ctx context.Context, b64 string) (string, error)
	// SaveVideo persists a video byte stream and returns its reference.
	SaveVideo(ctx context.Context, r io.Reader) (string, error)
}

// blobName produces a collision-resistant file name with the given
// extension.
func blobName(ext string) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// Timestamp alone still gives a usable name.
		return fmt.Sprintf("%s%s", time.Now().UTC().Format("20060102T150405.000Z"), ext)
	}
	return fmt.Sprintf("%s_%s%s", time.Now().UTC().Format("20060102T150405Z"), hex.EncodeToString(suffix), ext)
}
