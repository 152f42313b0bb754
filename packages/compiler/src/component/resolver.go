package component

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by resolvers for missing component sources.
var ErrNotFound = errors.New("component not found")

// Resolver locates and reads component sources.
type Resolver interface {
	// Resolve returns the path of specifier imported from the component at
	// from.
	Resolve(from, specifier string) (string, error)
	Read(path string) (string, error)
}

// FileResolver reads components from the filesystem. Absolute specifiers
// are taken relative to Root.
type FileResolver struct {
	Root string
}

func (r *FileResolver) Resolve(from, specifier string) (string, error) {
	if strings.HasPrefix(specifier, "/") {
		if r.Root == "" {
			return "", fmt.Errorf("cannot resolve %s without a root directory", specifier)
		}
		return filepath.Join(r.Root, filepath.FromSlash(specifier)), nil
	}
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return "", fmt.Errorf("component import %q must be relative", specifier)
	}
	return filepath.Join(filepath.Dir(from), filepath.FromSlash(specifier)), nil
}

func (r *FileResolver) Read(p string) (string, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// MemoryResolver serves components from a map of slash separated paths.
type MemoryResolver struct {
	Files map[string]string
}

// NewMemoryResolver creates a resolver over files.
func NewMemoryResolver(files map[string]string) *MemoryResolver {
	return &MemoryResolver{Files: files}
}

func (r *MemoryResolver) Resolve(from, specifier string) (string, error) {
	if strings.HasPrefix(specifier, "/") {
		return path.Clean(specifier), nil
	}
	return path.Join(path.Dir(from), specifier), nil
}

func (r *MemoryResolver) Read(p string) (string, error) {
	source, ok := r.Files[p]
	if !ok {
		return "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return source, nil
}
