// Package tree contiene la lógica pura del árbol de categorías con path materializado:
// cálculo de ancestros, re-enlace de subárboles, ensamblado del bosque y auditoría de invariantes.
// No depende de ningún almacenamiento.
package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// PathSeparator separa los ids dentro de Category.Path.
const PathSeparator = ","

// Ancestry resultado del cálculo de ancestros para un nodo.
type Ancestry struct {
	Path   string
	Level  int
	Status entity.CategoryStatus
}

// Apply copia el resultado sobre la categoría.
func (a Ancestry) Apply(c *entity.Category) {
	c.Path = a.Path
	c.Level = a.Level
	c.Status = a.Status
}

// Derive calcula path, level y estado efectivo de un nodo a partir de su padre ya persistido.
// parent nil indica raíz. Un padre inactivo fuerza al hijo a inactive.
func Derive(parent *entity.Category, requested entity.CategoryStatus) Ancestry {
	if parent == nil {
		return Ancestry{Path: "", Level: 1, Status: requested}
	}
	status := requested
	if parent.Status == entity.CategoryInactive {
		status = entity.CategoryInactive
	}
	return Ancestry{
		Path:   SubtreePrefix(parent),
		Level:  parent.Level + 1,
		Status: status,
	}
}

// ParentFinder lo mínimo que Compute necesita del repositorio.
type ParentFinder interface {
	GetByID(ctx context.Context, id string) (*entity.Category, error)
}

// Compute resuelve parentID contra el almacenamiento y deriva los ancestros.
// Devuelve NotFoundError si el padre no existe. También devuelve el padre resuelto.
func Compute(ctx context.Context, finder ParentFinder, parentID *string, requested entity.CategoryStatus) (Ancestry, *entity.Category, error) {
	if parentID == nil {
		return Derive(nil, requested), nil, nil
	}
	parent, err := finder.GetByID(ctx, *parentID)
	if err != nil {
		return Ancestry{}, nil, fmt.Errorf("resolver padre: %w", err)
	}
	if parent == nil {
		return Ancestry{}, nil, domain.NewCategoryNotFound(*parentID)
	}
	return Derive(parent, requested), parent, nil
}

// SubtreePrefix path que llevan los hijos directos de c (path de c + id de c).
// Todo descendiente de c tiene un path que empieza por este valor.
func SubtreePrefix(c *entity.Category) string {
	return JoinPath(c.Path, c.ID)
}

// JoinPath agrega id al final de path.
func JoinPath(path, id string) string {
	if path == "" {
		return id
	}
	return path + PathSeparator + id
}

// SplitPath devuelve los ids de path en orden raíz → padre. Nil para path vacío.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// HasPathPrefix indica si path pertenece al subárbol identificado por prefix,
// respetando los límites entre ids.
func HasPathPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+PathSeparator)
}
