package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
)

var _ appcategory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción de sesión (snapshot + majority).
type TxRunner struct {
	client *mongo.Client
	repo   *CategoryRepo
}

// NewTxRunner construye el runner.
func NewTxRunner(client *mongo.Client, coll *mongo.Collection) *TxRunner {
	return &TxRunner{client: client, repo: NewCategoryRepository(coll)}
}

// Run abre una sesión, ejecuta fn con el contexto de sesión y confirma. WithTransaction aborta
// ante cualquier error de fn y reintenta fn completo ante errores transitorios, por eso fn
// siempre vuelve a leer lo que necesita dentro de la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repo repository.CategoryRepository) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("iniciar sesión: %w", err)
	}
	defer sess.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, r.repo)
	}, txOpts)
	return err
}
