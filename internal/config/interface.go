package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/traverse/internal/ctxlog"
	"github.com/vk/traverse/internal/workflow"
)

// Loader is the interface for a format-specific workflow loader.
type Loader interface {
	// Load reads the description at path and translates it into a
	// workflow.Graph. Any failure to do so is a *workflow.MalformedInputError.
	Load(ctx context.Context, path string) (*workflow.Graph, error)
}

// ByExtension routes each path to the loader registered for its lower-cased
// file extension, including the leading dot.
type ByExtension map[string]Loader

// Load implements Loader.
func (b ByExtension) Load(ctx context.Context, path string) (*workflow.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	ext := strings.ToLower(filepath.Ext(path))

	loader, ok := b[ext]
	if !ok {
		return nil, &workflow.MalformedInputError{
			Source: path,
			Err:    fmt.Errorf("unsupported file extension %q, expected one of %s", ext, strings.Join(b.Extensions(), ", ")),
		}
	}

	logger.Debug("Loading workflow description.", "path", path, "extension", ext)
	return loader.Load(ctx, path)
}

// Extensions lists the registered extensions in sorted order.
func (b ByExtension) Extensions() []string {
	exts := make([]string, 0, len(b))
	for ext := range b {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
