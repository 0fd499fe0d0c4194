package category

import (
	"context"
	"time"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción del almacenamiento, pasando un contexto y un
// repositorio atados a esa transacción. Commit si fn devuelve nil; rollback en cualquier otra salida.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repo repository.CategoryRepository) error) error
}

// TreeCache caché del bosque serializado. Las claves se versionan: Invalidate incrementa la versión,
// así un lector que calculó el bosque antes de una mutación escribe en una versión que ya nadie lee.
type TreeCache interface {
	Version(ctx context.Context) (int64, error)
	Get(ctx context.Context, version int64) ([]byte, bool, error)
	Set(ctx context.Context, version int64, payload []byte) error
	Invalidate(ctx context.Context) error
}

// Observer recibe métricas de las operaciones del árbol.
type Observer interface {
	ObserveMutation(op string, err error)
	ObserveCascade(affected int64)
	ObserveRelink(affected int)
}

// XMLExporter serializa el bosque a XML y devuelve además un digest del documento canónico.
type XMLExporter interface {
	ExportTree(forest []*entity.CategoryNode, generatedAt time.Time) (doc []byte, digest string, err error)
}

// PDFGenerator genera un reporte imprimible del bosque.
type PDFGenerator interface {
	GenerateTreeReport(ctx context.Context, forest []*entity.CategoryNode, generatedAt time.Time) ([]byte, error)
}

type nopCache struct{}

// NopCache caché deshabilitada.
func NopCache() TreeCache { return nopCache{} }

func (nopCache) Version(context.Context) (int64, error) { return 0, nil }
func (nopCache) Get(context.Context, int64) ([]byte, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, int64, []byte) error { return nil }
func (nopCache) Invalidate(context.Context) error { return nil }

type nopObserver struct{}

// NopObserver observer que descarta todo.
func NopObserver() Observer { return nopObserver{} }

func (nopObserver) ObserveMutation(string, error) {}
func (nopObserver) ObserveCascade(int64) {}
func (nopObserver) ObserveRelink(int) {}
