package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"serbod/internal/common/fsutil"
	"serbod/pkg/types"
)

// LoadDir scans a directory for version templates and builds a registry from
// directory names. A subdirectory counts as a template only when it contains
// the runnable jar artifact; anything else is ignored.
func LoadDir(dir, jarName string) ([]types.Version, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var versions []types.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		jar := filepath.Join(abs, e.Name(), jarName)
		if _, err := os.Stat(jar); err != nil {
			continue
		}
		versions = append(versions, types.Version{
			ID:   e.Name(),
			Path: filepath.Join(abs, e.Name()),
			Jar:  jar,
		})
	}
	return versions, nil
}
