package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirDestination writes snapshots into a local directory, replacing files
// atomically.
type DirDestination struct {
	dir string
}

// NewDirDestination creates dir if needed.
func NewDirDestination(dir string) (*DirDestination, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &DirDestination{dir: dir}, nil
}

func (d *DirDestination) Write(_ context.Context, name, _ string, data []byte) error {
	target := filepath.Join(d.dir, filepath.Base(name))
	tmp, err := os.CreateTemp(d.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
