package category

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

// ReparentResult resumen de una eliminación con re-enlace.
type ReparentResult struct {
	Deleted        *entity.Category
	NewParentID    *string // antiguo padre del nodo eliminado; nil si era raíz
	DirectChildren int
	Relinked       int // hijos directos más todos sus descendientes recalculados
}

// ReparentChildrenAndDelete elimina id reasignando sus hijos directos al padre del nodo
// (o volviéndolos raíces) y recalculando path, level y estado de todo el subárbol afectado.
// Debe ejecutarse dentro de una transacción: cualquier error deja el árbol intacto.
func ReparentChildrenAndDelete(ctx context.Context, repo repository.CategoryRepository, id string, at time.Time) (*ReparentResult, error) {
	node, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cargar categoría: %w", err)
	}
	if node == nil {
		return nil, domain.NewCategoryNotFound(id)
	}

	var grandparent *entity.Category
	if node.ParentID != nil {
		grandparent, err = repo.GetByID(ctx, *node.ParentID)
		if err != nil {
			return nil, fmt.Errorf("cargar padre: %w", err)
		}
		if grandparent == nil {
			return nil, fmt.Errorf("padre %s de %s inexistente", *node.ParentID, node.ID)
		}
	}

	descendants, err := repo.ListByPathPrefix(ctx, tree.SubtreePrefix(node))
	if err != nil {
		return nil, fmt.Errorf("cargar descendientes: %w", err)
	}

	changed, err := tree.Relink(node, grandparent, descendants, at)
	if err != nil {
		return nil, err
	}

	direct := 0
	for _, c := range changed {
		if err := repo.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("re-enlazar %s: %w", c.ID, err)
		}
		if c.ParentIDValue() == node.ParentIDValue() {
			direct++
		}
	}

	if err := repo.Delete(ctx, node.ID); err != nil {
		return nil, fmt.Errorf("eliminar categoría: %w", err)
	}

	return &ReparentResult{
		Deleted:        node,
		NewParentID:    node.ParentID,
		DirectChildren: direct,
		Relinked:       len(changed),
	}, nil
}
