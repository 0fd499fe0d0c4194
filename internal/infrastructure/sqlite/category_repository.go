package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// querier común a *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const categoryColumns = `id, name, parent_id, status, path, level, created_at, updated_at`

// subtreeFilter selecciona el subárbol por rango sobre path (collation BINARY): todo path que
// empieza con "P," está en ["P,", "P-"), porque '-' es el byte siguiente a ','.
const subtreeFilter = `(path = ? OR (path >= ? AND path < ?))`

// CategoryRepo repositorio de categorías sobre SQLite.
type CategoryRepo struct {
	q querier
}

// Create persiste una nueva categoría.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullable(c.ParentID), string(c.Status), c.Path, c.Level,
		toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) && c.ParentID != nil {
			return domain.NewCategoryNotFound(*c.ParentID)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría; (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListRoots lista las raíces.
func (r *CategoryRepo) ListRoots(ctx context.Context) ([]*entity.Category, error) {
	return r.list(ctx, "list roots",
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id IS NULL ORDER BY name, id`)
}

// ListByParent lista los hijos directos.
func (r *CategoryRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error) {
	return r.list(ctx, "list children",
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = ? ORDER BY name, id`, parentID)
}

// ListAll carga todo el árbol.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*entity.Category, error) {
	return r.list(ctx, "list all",
		`SELECT `+categoryColumns+` FROM categories ORDER BY level, name, id`)
}

// ListByPathPrefix lista el subárbol de prefix.
func (r *CategoryRepo) ListByPathPrefix(ctx context.Context, prefix string) ([]*entity.Category, error) {
	lo, hi := subtreeBounds(prefix)
	return r.list(ctx, "list by path",
		`SELECT `+categoryColumns+` FROM categories WHERE `+subtreeFilter+` ORDER BY level, name, id`,
		prefix, lo, hi)
}

// UpdateName cambia solo el nombre.
func (r *CategoryRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`,
		name, toMillis(at), id)
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return requireRow(res, id)
}

// Update persiste todos los campos mutables.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, parent_id = ?, status = ?, path = ?, level = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, nullable(c.ParentID), string(c.Status), c.Path, c.Level, toMillis(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, c.ID)
}

// SetStatusByPathPrefix cambia en bloque el estado del subárbol.
func (r *CategoryRepo) SetStatusByPathPrefix(ctx context.Context, prefix string, status entity.CategoryStatus, at time.Time) (int64, error) {
	lo, hi := subtreeBounds(prefix)
	res, err := r.q.ExecContext(ctx,
		`UPDATE categories SET status = ?, updated_at = ? WHERE `+subtreeFilter+` AND status <> ?`,
		string(status), toMillis(at), prefix, lo, hi, string(status))
	if err != nil {
		return 0, fmt.Errorf("cascade status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cascade status: %w", err)
	}
	return n, nil
}

// Delete elimina una categoría.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("delete category %s: aún tiene hijos: %w", id, err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, id)
}

func (r *CategoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*entity.Category, error) {
	var (
		c                  entity.Category
		parentID           sql.NullString
		status             string
		createdAt, updated int64
	)
	if err := s.Scan(&c.ID, &c.Name, &parentID, &status, &c.Path, &c.Level, &createdAt, &updated); err != nil {
		return nil, err
	}
	if parentID.Valid {
		p := parentID.String
		c.ParentID = &p
	}
	c.Status = entity.CategoryStatus(status)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

func subtreeBounds(prefix string) (lo, hi string) {
	return prefix + tree.PathSeparator, prefix + "-"
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}
