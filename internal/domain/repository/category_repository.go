package repository

import (
	"context"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// Las lecturas por id devuelven (nil, nil) cuando el registro no existe.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// ListRoots devuelve las categorías sin padre ordenadas por nombre.
	ListRoots(ctx context.Context) ([]*entity.Category, error)
	// ListByParent devuelve los hijos directos ordenados por nombre.
	ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error)
	// ListAll carga todo el árbol en una sola consulta.
	ListAll(ctx context.Context) ([]*entity.Category, error)
	// ListByPathPrefix devuelve todos los descendientes cuyo path empieza con prefix
	// (coincidencia exacta o prefix seguido del separador). Una sola consulta.
	ListByPathPrefix(ctx context.Context, prefix string) ([]*entity.Category, error)
	// UpdateName cambia solo el nombre; no toca path, level ni estado.
	UpdateName(ctx context.Context, id, name string, at time.Time) error
	// Update persiste name, parent, status, path, level y updated_at.
	Update(ctx context.Context, category *entity.Category) error
	// SetStatusByPathPrefix cambia en bloque el estado de todos los descendientes de prefix.
	SetStatusByPathPrefix(ctx context.Context, prefix string, status entity.CategoryStatus, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}
