package tree

import (
	"fmt"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// Reglas auditadas por Verify.
const (
	RuleLevel     = "level"
	RulePath      = "path"
	RuleCycle     = "cycle"
	RuleParentRef = "parent_ref"
)

// Violation incumplimiento de un invariante en un registro.
type Violation struct {
	CategoryID string
	Rule       string
	Detail     string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s [%s] %s", v.CategoryID, v.Rule, v.Detail)
}

// Verify audita nivel, path, ciclos y referencias al padre sobre la carga completa del árbol.
func Verify(categories []*entity.Category) []Violation {
	byID := make(map[string]*entity.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var out []Violation
	for _, c := range categories {
		if c.ParentID == nil {
			if c.Level != 1 {
				out = append(out, Violation{c.ID, RuleLevel, fmt.Sprintf("raíz con level %d", c.Level)})
			}
			if c.Path != "" {
				out = append(out, Violation{c.ID, RulePath, fmt.Sprintf("raíz con path %q", c.Path)})
			}
			continue
		}

		parent, ok := byID[*c.ParentID]
		if !ok {
			out = append(out, Violation{c.ID, RuleParentRef, fmt.Sprintf("padre %s inexistente", *c.ParentID)})
			continue
		}
		if hasCycle(c, byID) {
			out = append(out, Violation{c.ID, RuleCycle, "el nodo aparece en su propia cadena de ancestros"})
			continue
		}
		if c.Level != parent.Level+1 {
			out = append(out, Violation{c.ID, RuleLevel, fmt.Sprintf("level %d, esperado %d", c.Level, parent.Level+1)})
		}
		if want := SubtreePrefix(parent); c.Path != want {
			out = append(out, Violation{c.ID, RulePath, fmt.Sprintf("path %q, esperado %q", c.Path, want)})
		}
	}
	return out
}

func hasCycle(c *entity.Category, byID map[string]*entity.Category) bool {
	seen := map[string]bool{c.ID: true}
	cur := c
	for cur.ParentID != nil {
		next, ok := byID[*cur.ParentID]
		if !ok {
			return false
		}
		if seen[next.ID] {
			return true
		}
		seen[next.ID] = true
		cur = next
	}
	return false
}
