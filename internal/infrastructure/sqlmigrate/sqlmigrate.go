// Package sqlmigrate lee las migraciones SQL embebidas que comparten PostgreSQL y SQLite.
package sqlmigrate

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Migration archivo de migración reducido a su sección Up.
type Migration struct {
	Name string
	Up   string
}

// Load lee los archivos .sql de la raíz de fsys en orden de nombre. Los que no tienen
// sentencias en la sección Up se omiten.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		up := ExtractUp(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}
		out = append(out, Migration{Name: name, Up: up})
	}
	return out, nil
}

// ExtractUp devuelve el bloque "-- +migrate Up" (hasta "-- +migrate Down" si existe).
// Sin marcador devuelve el contenido completo.
func ExtractUp(content string) string {
	up := strings.Index(content, upMarker)
	if up == -1 {
		return content
	}
	rest := content[up+len(upMarker):]
	if down := strings.Index(rest, downMarker); down != -1 {
		return rest[:down]
	}
	return rest
}
