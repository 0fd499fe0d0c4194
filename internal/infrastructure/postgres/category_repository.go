package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, name, parent_id, status, path, level, created_at, updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// Create persiste una nueva categoría. Si el padre desapareció entre el cálculo del path y el
// INSERT, la llave foránea lo rechaza y se reporta NotFoundError.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.ParentID, string(c.Status), c.Path, c.Level, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) && c.ParentID != nil {
			return domain.NewCategoryNotFound(*c.ParentID)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c, err := scanCategory(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListRoots lista las categorías sin padre.
func (r *CategoryRepo) ListRoots(ctx context.Context) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE parent_id IS NULL ORDER BY name, id`
	return r.list(ctx, "list roots", query)
}

// ListByParent lista los hijos directos de parentID.
func (r *CategoryRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE parent_id = $1 ORDER BY name, id`
	return r.list(ctx, "list children", query, parentID)
}

// ListAll carga todas las categorías en una consulta.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*entity.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY level, name, id`
	return r.list(ctx, "list all", query)
}

// ListByPathPrefix lista todos los descendientes del subárbol identificado por prefix.
// Usa el índice text_pattern_ops sobre path.
func (r *CategoryRepo) ListByPathPrefix(ctx context.Context, prefix string) ([]*entity.Category, error) {
	query := `
		SELECT ` + categoryColumns + ` FROM categories
		WHERE path = $1 OR path LIKE $2
		ORDER BY level, name, id`
	return r.list(ctx, "list by path", query, prefix, escapeLike(prefix+tree.PathSeparator)+"%")
}

// UpdateName cambia solo el nombre.
func (r *CategoryRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE categories SET name = $2, updated_at = $3 WHERE id = $1`, id, name, at)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

// Update persiste nombre, padre, estado, path, level y updated_at.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	query := `
		UPDATE categories
		SET name = $2, parent_id = $3, status = $4, path = $5, level = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.ParentID, string(c.Status), c.Path, c.Level, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewCategoryNotFound(c.ID)
	}
	return nil
}

// SetStatusByPathPrefix cambia en bloque el estado del subárbol. Solo toca filas con otro estado.
func (r *CategoryRepo) SetStatusByPathPrefix(ctx context.Context, prefix string, status entity.CategoryStatus, at time.Time) (int64, error) {
	query := `
		UPDATE categories SET status = $3, updated_at = $4
		WHERE (path = $1 OR path LIKE $2) AND status <> $3`
	cmd, err := r.q.Exec(ctx, query, prefix, escapeLike(prefix+tree.PathSeparator)+"%", string(status), at)
	if err != nil {
		return 0, fmt.Errorf("cascade status: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// Delete elimina una categoría. Falla por llave foránea si todavía tiene hijos.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category %s: aún tiene hijos: %w", id, err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

func (r *CategoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var (
		c      entity.Category
		status string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.ParentID, &status, &c.Path, &c.Level, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = entity.CategoryStatus(status)
	return &c, nil
}
