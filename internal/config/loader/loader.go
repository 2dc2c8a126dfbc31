// Package loader reads configuration files and environment variables
// into nested maps.
//
// TOML and YAML files are supported; the format is chosen by the file
// extension. Maps from several sources are layered with DeepMerge.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist.
	Load() (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is the file access loaders need. Tests use an in-memory
// implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// ForPath returns the loader for path, chosen by its extension.
func ForPath(fsys FileSystem, path string) (Loader, error) {
	if fsys == nil {
		fsys = DefaultFS()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// readFile reads path, treating a missing file as no data.
func readFile(fsys FileSystem, path string) ([]byte, bool, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, true, nil
}

// DeepMerge recursively merges src into dst.
// Values in src override values in dst.
// Maps are merged recursively; other types are replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, srcVal := range src {
		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = srcVal
	}
	return dst
}

// Clone creates a deep copy of a configuration map.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, val := range src {
		if m, ok := val.(map[string]any); ok {
			dst[key] = Clone(m)
			continue
		}
		dst[key] = val
	}
	return dst
}

// Flatten turns nested maps into dotted keys: {"log": {"level": "x"}}
// becomes {"log.level": "x"}.
func Flatten(src map[string]any) map[string]any {
	out := make(map[string]any)
	flatten("", src, out)
	return out
}

func flatten(prefix string, src, out map[string]any) {
	for key, val := range src {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		if m, ok := val.(map[string]any); ok {
			flatten(name, m, out)
			continue
		}
		out[name] = val
	}
}
