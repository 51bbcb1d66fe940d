package scene

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Payload is a fully loaded checkpoint. Instances are immutable after
// construction and safe to share between the cache and the display state.
type Payload struct {
	Path     string
	Version  int
	Data     []byte
	LoadedAt time.Time
}

// Size returns the payload size in bytes.
func (p *Payload) Size() int64 {
	if p == nil {
		return 0
	}
	return int64(len(p.Data))
}

// Loader reads a checkpoint file into memory.
type Loader interface {
	Load(ctx context.Context, path string, version int) (*Payload, error)
}

// FileLoader reads checkpoint blobs from the local filesystem.
type FileLoader struct{}

// Load reads the whole checkpoint into memory. A payload is returned only on
// a complete successful read; partial reads surface as errors.
func (FileLoader) Load(ctx context.Context, path string, version int) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("read checkpoint: file is empty")
	}
	return &Payload{
		Path:     path,
		Version:  version,
		Data:     data,
		LoadedAt: time.Now().UTC(),
	}, nil
}
