package category

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

// CascadeInactive propaga inactive a todos los descendientes de node con una sola escritura en bloque
// filtrada por el prefijo de path. No altera path ni level. Re-ejecutarlo sobre un subárbol ya inactivo
// no cambia nada. Debe correr dentro de la misma transacción que actualizó a node.
func CascadeInactive(ctx context.Context, repo repository.CategoryRepository, node *entity.Category, at time.Time) (int64, error) {
	affected, err := repo.SetStatusByPathPrefix(ctx, tree.SubtreePrefix(node), entity.CategoryInactive, at)
	if err != nil {
		return 0, fmt.Errorf("cascada de estado: %w", err)
	}
	return affected, nil
}
