package tree

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// NameOrder ordena categorías por nombre con collation Unicode y desempata por id.
// Un collator no es seguro para uso concurrente: crear uno por operación.
type NameOrder struct {
	col *collate.Collator
}

// NewNameOrder construye el comparador.
func NewNameOrder() *NameOrder {
	return &NameOrder{col: collate.New(language.Spanish)}
}

// Compare compara por nombre y luego por id.
func (o *NameOrder) Compare(a, b *entity.Category) int {
	if c := o.col.CompareString(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Sort ordena la lista en el lugar.
func (o *NameOrder) Sort(list []*entity.Category) {
	slices.SortStableFunc(list, o.Compare)
}

// SortByName atajo para ordenar una lista suelta.
func SortByName(list []*entity.Category) {
	NewNameOrder().Sort(list)
}
