// Package category implementa los casos de uso del árbol de categorías: creación con cálculo de
// ancestros, lectura del bosque, renombrado, cambio de estado con cascada y eliminación con re-enlace.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/categorias-api/internal/application/dto"
	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
	"github.com/jhoicas/categorias-api/pkg/logger"
)

// Operaciones reportadas al Observer.
const (
	OpCreate       = "create"
	OpRename       = "rename"
	OpUpdateStatus = "update_status"
	OpDelete       = "delete"
)

// UseCase casos de uso del árbol. No guarda estado del árbol entre llamadas: el almacenamiento
// es la única fuente de verdad.
type UseCase struct {
	repo  repository.CategoryRepository
	tx    TxRunner
	cache TreeCache
	obs   Observer
	log   *logger.Logger
	xml   XMLExporter
	pdf   PDFGenerator
	now   func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*UseCase)

// WithCache habilita la caché del bosque.
func WithCache(c TreeCache) Option { return func(uc *UseCase) { uc.cache = c } }

// WithObserver registra métricas.
func WithObserver(o Observer) Option { return func(uc *UseCase) { uc.obs = o } }

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option { return func(uc *UseCase) { uc.log = l } }

// WithExporters habilita las exportaciones XML y PDF.
func WithExporters(x XMLExporter, p PDFGenerator) Option {
	return func(uc *UseCase) {
		uc.xml = x
		uc.pdf = p
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option { return func(uc *UseCase) { uc.now = now } }

// NewUseCase construye el caso de uso. repo se usa para lecturas y escrituras de un solo registro;
// tx para las mutaciones de varios registros (cascada y eliminación).
func NewUseCase(repo repository.CategoryRepository, tx TxRunner, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:  repo,
		tx:    tx,
		cache: NopCache(),
		obs:   NopObserver(),
		log:   logger.Nop(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Create crea una categoría raíz o hija. Un padre inactivo fuerza el estado inactive.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (out *dto.CategoryResponse, err error) {
	defer func() { uc.obs.ObserveMutation(OpCreate, err) }()

	name, err := tree.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	status, err := tree.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}
	var parentID *string
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) != "" {
		p := strings.TrimSpace(*in.ParentID)
		parentID = &p
	}

	now := uc.now()
	c := &entity.Category{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// La lectura del padre y la inserción van en la misma transacción: un delete o una cascada
	// concurrente sobre los ancestros queda ordenado antes o después, nunca en medio.
	err = uc.tx.Run(ctx, func(ctx context.Context, repo repository.CategoryRepository) error {
		ancestry, _, err := tree.Compute(ctx, repo, parentID, status)
		if err != nil {
			return err
		}
		ancestry.Apply(c)
		return repo.Create(ctx, c)
	})
	if err = uc.txError(OpCreate, err); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return toCategoryResponse(c), nil
}

// GetByID obtiene una categoría.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewCategoryNotFound(id)
	}
	return toCategoryResponse(c), nil
}

// ListRoots lista las categorías raíz ordenadas por nombre.
func (uc *UseCase) ListRoots(ctx context.Context) (*dto.CategoryListResponse, error) {
	list, err := uc.repo.ListRoots(ctx)
	if err != nil {
		return nil, err
	}
	return toListResponse(list), nil
}

// ListChildren lista los hijos directos de id ordenados por nombre.
func (uc *UseCase) ListChildren(ctx context.Context, id string) (*dto.CategoryListResponse, error) {
	parent, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.NewCategoryNotFound(id)
	}
	list, err := uc.repo.ListByParent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toListResponse(list), nil
}

// ListTree devuelve el bosque completo. Una sola carga en bloque y ensamblado en memoria;
// si hay caché, se sirve la versión vigente.
func (uc *UseCase) ListTree(ctx context.Context) (*dto.CategoryTreeResponse, error) {
	version, cacheable := int64(0), true
	if v, err := uc.cache.Version(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("caché del árbol: leer versión")
		cacheable = false
	} else {
		version = v
		payload, ok, err := uc.cache.Get(ctx, version)
		if err != nil {
			uc.log.Warn().Err(err).Int64("version", version).Msg("caché del árbol: leer")
		} else if ok {
			var out dto.CategoryTreeResponse
			if err := json.Unmarshal(payload, &out); err == nil {
				return &out, nil
			}
			uc.log.Warn().Int64("version", version).Msg("caché del árbol: contenido inválido")
		}
	}

	forest, err := uc.loadForest(ctx)
	if err != nil {
		return nil, err
	}
	out := toTreeResponse(forest)

	if cacheable {
		if payload, err := json.Marshal(out); err == nil {
			if err := uc.cache.Set(ctx, version, payload); err != nil {
				uc.log.Warn().Err(err).Int64("version", version).Msg("caché del árbol: escribir")
			}
		}
	}
	return out, nil
}

// Update renombra y/o cambia el estado. Sin status es un cambio de nombre de un solo registro.
// Con status se actualiza el nodo y, si el nuevo estado es inactive, se propaga a todo el
// subárbol en la misma transacción. Activar nunca toca a los descendientes.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (out *dto.CategoryResponse, err error) {
	if in.Name == nil && in.Status == nil {
		return uc.GetByID(ctx, id)
	}
	op := OpRename
	if in.Status != nil {
		op = OpUpdateStatus
	}
	defer func() { uc.obs.ObserveMutation(op, err) }()

	var name *string
	if in.Name != nil {
		n, err := tree.NormalizeName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = &n
	}
	if in.Status == nil {
		return uc.rename(ctx, id, *name)
	}
	if strings.TrimSpace(*in.Status) == "" {
		return nil, &domain.ValidationError{Field: "status", Message: "el estado debe ser active o inactive"}
	}
	status, err := tree.ParseStatus(*in.Status)
	if err != nil {
		return nil, err
	}

	var (
		updated  *entity.Category
		affected int64
	)
	now := uc.now()
	err = uc.tx.Run(ctx, func(ctx context.Context, repo repository.CategoryRepository) error {
		c, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.NewCategoryNotFound(id)
		}
		if name != nil {
			c.Name = *name
		}
		c.Status = status
		c.UpdatedAt = now
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		if status == entity.CategoryInactive {
			n, err := CascadeInactive(ctx, repo, c, now)
			if err != nil {
				return err
			}
			affected = n
		}
		updated = c
		return nil
	})
	if err = uc.txError(OpUpdateStatus, err); err != nil {
		uc.log.Error().Err(err).Str("id", id).Str("status", string(status)).Msg("actualizar estado")
		return nil, err
	}
	if status == entity.CategoryInactive {
		uc.obs.ObserveCascade(affected)
		uc.log.Info().Str("id", id).Int64("descendientes", affected).Msg("cascada a inactive aplicada")
	}
	uc.invalidate(ctx)
	return toCategoryResponse(updated), nil
}

func (uc *UseCase) rename(ctx context.Context, id, name string) (*dto.CategoryResponse, error) {
	if err := uc.repo.UpdateName(ctx, id, name, uc.now()); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return uc.GetByID(ctx, id)
}

// Delete elimina la categoría re-enlazando sus hijos a su antiguo padre. Atómico: o se
// re-enlaza todo el subárbol y se borra el nodo, o no cambia nada (TransactionError).
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	var result *ReparentResult
	now := uc.now()
	err := uc.tx.Run(ctx, func(ctx context.Context, repo repository.CategoryRepository) error {
		r, err := ReparentChildrenAndDelete(ctx, repo, id, now)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	err = uc.txError(OpDelete, err)
	uc.obs.ObserveMutation(OpDelete, err)
	if err != nil {
		uc.log.Error().Err(err).Str("id", id).Msg("eliminar categoría")
		return err
	}
	uc.obs.ObserveRelink(result.Relinked)
	uc.log.Info().
		Str("id", id).
		Int("hijos_directos", result.DirectChildren).
		Int("re_enlazados", result.Relinked).
		Msg("categoría eliminada")
	uc.invalidate(ctx)
	return nil
}

// ExportXML exporta el bosque como XML junto con el digest del documento canónico.
func (uc *UseCase) ExportXML(ctx context.Context) ([]byte, string, error) {
	if uc.xml == nil {
		return nil, "", errors.New("exportación XML no configurada")
	}
	forest, err := uc.loadForest(ctx)
	if err != nil {
		return nil, "", err
	}
	return uc.xml.ExportTree(forest, uc.now())
}

// ExportPDF genera el reporte PDF del bosque.
func (uc *UseCase) ExportPDF(ctx context.Context) ([]byte, error) {
	if uc.pdf == nil {
		return nil, errors.New("exportación PDF no configurada")
	}
	forest, err := uc.loadForest(ctx)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateTreeReport(ctx, forest, uc.now())
}

func (uc *UseCase) loadForest(ctx context.Context) ([]*entity.CategoryNode, error) {
	all, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar árbol: %w", err)
	}
	return tree.BuildForest(all), nil
}

// txError conserva los errores de validación y de id inexistente; todo lo demás ocurrido
// dentro de una transacción se reporta como TransactionError.
func (uc *UseCase) txError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrTransaction) {
		return err
	}
	return &domain.TransactionError{Op: op, Err: err}
}

func (uc *UseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("caché del árbol: invalidar")
	}
}
