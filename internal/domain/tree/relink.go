package tree

import (
	"fmt"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// Relink calcula el estado del subárbol de removed después de eliminarlo:
// los hijos directos pasan a colgar de newParent (el antiguo padre de removed, nil si era raíz)
// y path, level y estado de todos los descendientes se recalculan desde la nueva cadena.
//
// descendants debe ser el resultado completo de ListByPathPrefix(SubtreePrefix(removed)).
// Devuelve copias modificadas, cada padre antes que sus hijos. Las entradas no se modifican.
func Relink(removed, newParent *entity.Category, descendants []*entity.Category, at time.Time) ([]*entity.Category, error) {
	if newParent != nil && (removed.ParentID == nil || *removed.ParentID != newParent.ID) {
		return nil, fmt.Errorf("relink: %s no es el padre de %s", newParent.ID, removed.ID)
	}
	if newParent == nil && removed.ParentID != nil {
		return nil, fmt.Errorf("relink: falta el padre %s de %s", *removed.ParentID, removed.ID)
	}

	byParent := make(map[string][]*entity.Category, len(descendants))
	total := 0
	for _, d := range descendants {
		if d.ID == removed.ID {
			continue
		}
		if d.ParentID == nil {
			return nil, fmt.Errorf("relink: %s figura como descendiente de %s pero es raíz", d.ID, removed.ID)
		}
		byParent[*d.ParentID] = append(byParent[*d.ParentID], d.Clone())
		total++
	}

	out := make([]*entity.Category, 0, total)
	queue := make([]*entity.Category, 0, total)

	for _, child := range byParent[removed.ID] {
		if removed.ParentID == nil {
			child.ParentID = nil
		} else {
			gp := *removed.ParentID
			child.ParentID = &gp
		}
		Derive(newParent, child.Status).Apply(child)
		child.UpdatedAt = at
		out = append(out, child)
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, gc := range byParent[n.ID] {
			Derive(n, gc.Status).Apply(gc)
			gc.UpdatedAt = at
			out = append(out, gc)
			queue = append(queue, gc)
		}
	}

	if len(out) != total {
		return nil, fmt.Errorf("relink: subárbol inconsistente, %d de %d descendientes sin enlace", total-len(out), total)
	}
	return out, nil
}
