package levels

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.yaml
var LevelsFS embed.FS

// DefaultCatalog is the catalog file shipped with the game.
const DefaultCatalog = "levels.yaml"

// Load returns the named catalog file. A copy under levels/ on disk takes
// precedence over the embedded one so catalogs can be tuned without a rebuild.
func Load(name string) ([]byte, error) {
	clean := cleanLevelPath(name)
	if data, err := os.ReadFile(DiskPath(clean)); err == nil {
		return data, nil
	}
	data, err := LevelsFS.ReadFile(clean)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", clean, err)
	}
	return data, nil
}

// LoadCatalog reads and parses the named catalog file.
func LoadCatalog(name string) (*Catalog, error) {
	data, err := Load(name)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("levels: parse %s: %w", name, err)
	}
	return c, nil
}

// DiskPath returns where the on-disk override of a catalog file lives.
func DiskPath(name string) string {
	return filepath.Join("levels", filepath.FromSlash(cleanLevelPath(name)))
}

func cleanLevelPath(path string) string {
	if path == "" {
		return DefaultCatalog
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
