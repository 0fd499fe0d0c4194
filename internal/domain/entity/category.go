package entity

import "time"

// CategoryStatus estado de una categoría.
type CategoryStatus string

const (
	CategoryActive   CategoryStatus = "active"
	CategoryInactive CategoryStatus = "inactive"
)

// Valid indica si el estado pertenece al enum.
func (s CategoryStatus) Valid() bool {
	return s == CategoryActive || s == CategoryInactive
}

// Category representa un nodo del árbol de categorías guardado como registro plano.
// Path es la cadena de ancestros (raíz → padre inmediato) separada por comas; vacía en raíces.
type Category struct {
	ID        string
	Name      string
	ParentID  *string // nil si es raíz
	Status    CategoryStatus
	Path      string
	Level     int // 1 para raíces
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot indica si la categoría no tiene padre.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// ParentIDValue devuelve el id del padre o "" si es raíz.
func (c *Category) ParentIDValue() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

// Clone copia el registro (incluido el puntero del padre).
func (c *Category) Clone() *Category {
	out := *c
	if c.ParentID != nil {
		p := *c.ParentID
		out.ParentID = &p
	}
	return &out
}

// CategoryNode vista anidada para lecturas. Children nunca es nil.
type CategoryNode struct {
	Category *Category
	Children []*CategoryNode
}
