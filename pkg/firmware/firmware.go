// Package firmware provides the image served by GET /firmware.
package firmware

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Goden-Gun/ota-server/pkg/config"
)

// ErrEmptyImage is returned when a configured image file has no content.
var ErrEmptyImage = errors.New("firmware image is empty")

// Source loads the current firmware image.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// stubImage is served when no image file is configured.
var stubImage = []byte{1, 2, 3, 4}

// Stub serves a fixed placeholder image.
type Stub struct{}

func (Stub) Load(context.Context) ([]byte, error) {
	out := make([]byte, len(stubImage))
	copy(out, stubImage)
	return out, nil
}

// File reads the image from disk on every request, so a replaced file is
// picked up without a restart.
type File struct {
	Path string
}

func (f File) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read firmware %s: %w", f.Path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", f.Path, ErrEmptyImage)
	}
	return data, nil
}

// FromConfig returns a File source when a path is configured, Stub otherwise.
func FromConfig(cfg config.FirmwareConfig) Source {
	if cfg.Path == "" {
		return Stub{}
	}
	return File{Path: cfg.Path}
}
