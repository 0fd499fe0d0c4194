package tree

import (
	"slices"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// BuildForest arma el bosque anidado a partir de la carga completa de categorías:
// índice por id, agrupación por padre y ordenamiento por nombre en cada nivel.
// Función pura; cada nodo lleva Children no nil. Registros cuyo padre no está en la
// entrada no se incluyen (Verify los reporta como padre inexistente).
func BuildForest(categories []*entity.Category) []*entity.CategoryNode {
	nodes := make(map[string]*entity.CategoryNode, len(categories))
	for _, c := range categories {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		nodes[c.ID] = &entity.CategoryNode{Category: c, Children: []*entity.CategoryNode{}}
	}

	roots := []*entity.CategoryNode{}
	for _, c := range categories {
		n := nodes[c.ID]
		if n.Category != c {
			continue
		}
		if c.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if p, ok := nodes[*c.ParentID]; ok {
			p.Children = append(p.Children, n)
		}
	}

	order := NewNameOrder()
	sortNodes(order, roots)
	return roots
}

func sortNodes(order *NameOrder, list []*entity.CategoryNode) {
	slices.SortStableFunc(list, func(a, b *entity.CategoryNode) int {
		return order.Compare(a.Category, b.Category)
	})
	for _, n := range list {
		sortNodes(order, n.Children)
	}
}

// Walk recorre el bosque en profundidad (preorden) con la profundidad relativa de cada nodo.
func Walk(forest []*entity.CategoryNode, fn func(n *entity.CategoryNode, depth int)) {
	var visit func(list []*entity.CategoryNode, depth int)
	visit = func(list []*entity.CategoryNode, depth int) {
		for _, n := range list {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(forest, 0)
}
