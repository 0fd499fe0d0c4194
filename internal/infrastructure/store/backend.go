// Package store abre el almacenamiento configurado (STORE_DRIVER) detrás de los puertos del caso de uso.
package store

import (
	"context"
	"fmt"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	infmongo "github.com/jhoicas/categorias-api/internal/infrastructure/mongo"
	"github.com/jhoicas/categorias-api/internal/infrastructure/postgres"
	"github.com/jhoicas/categorias-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/categorias-api/pkg/config"
)

// Backend repositorio y TxRunner de un mismo almacenamiento.
type Backend struct {
	Driver  string
	Repo    repository.CategoryRepository
	Tx      appcategory.TxRunner
	migrate func(ctx context.Context) ([]string, error)
	close   func() error
}

// Open conecta con el driver configurado. SQLite aplica sus migraciones al abrir.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &Backend{
			Driver:  cfg.Store.Driver,
			Repo:    postgres.NewCategoryRepository(pool),
			Tx:      postgres.NewTxRunner(pool),
			migrate: func(ctx context.Context) ([]string, error) { return postgres.Migrate(ctx, pool) },
			close:   func() error { pool.Close(); return nil },
		}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("abrir SQLite: %w", err)
		}
		return &Backend{
			Driver:  cfg.Store.Driver,
			Repo:    s.Category(),
			Tx:      s,
			migrate: func(context.Context) ([]string, error) { return nil, nil },
			close:   s.Close,
		}, nil

	case config.DriverMongo:
		client, coll, err := infmongo.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("conexión a MongoDB: %w", err)
		}
		return &Backend{
			Driver: cfg.Store.Driver,
			Repo:   infmongo.NewCategoryRepository(coll),
			Tx:     infmongo.NewTxRunner(client, coll),
			migrate: func(ctx context.Context) ([]string, error) {
				if err := infmongo.EnsureIndexes(ctx, coll); err != nil {
					return nil, err
				}
				return []string{"indexes:" + infmongo.CollectionName}, nil
			},
			close: func() error { return client.Disconnect(context.Background()) },
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Store.Driver)
}

// Migrate aplica el esquema pendiente y devuelve lo aplicado.
func (b *Backend) Migrate(ctx context.Context) ([]string, error) {
	return b.migrate(ctx)
}

// Close libera las conexiones.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}
