package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved application directories. It is the single
// source of truth for file locations: the data directory for uploaded
// CSVs, the exports directory for generated CSV/XLSX/PDF downloads and
// the logs directory.
type Paths struct {
	DataDir    string
	ExportsDir string
	LogsDir    string
}

// NewPaths resolves the configured paths to absolute paths rooted at
// the working directory.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(wd, p)
	}

	return &Paths{
		DataDir:    resolve(cfg.DataDir),
		ExportsDir: resolve(cfg.ExportsDir),
		LogsDir:    resolve(cfg.LogsDir),
	}, nil
}

// EnsureDirectories creates every managed directory that does not
// exist yet.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the path of a named file inside the exports
// directory.
func (p *Paths) ExportPath(name string) string {
	return filepath.Join(p.ExportsDir, name)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
