package tree_test

import (
	"time"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// node construye una categoría consistente con su padre usando Derive.
func node(id, name string, parent *entity.Category, status entity.CategoryStatus) *entity.Category {
	c := &entity.Category{ID: id, Name: name, CreatedAt: testNow, UpdatedAt: testNow}
	if parent != nil {
		pid := parent.ID
		c.ParentID = &pid
	}
	tree.Derive(parent, status).Apply(c)
	return c
}

func byID(list []*entity.Category) map[string]*entity.Category {
	out := make(map[string]*entity.Category, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out
}
