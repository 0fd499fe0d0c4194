package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
	infmongo "github.com/jhoicas/categorias-api/internal/infrastructure/mongo"
	"github.com/jhoicas/categorias-api/pkg/config"
)

func TestSubtreeFilter_AncladoYEscapado(t *testing.T) {
	f := infmongo.SubtreeFilter("a.b,c")
	path, ok := f["path"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `^a\.b,c(,|$)`, path["$regex"])
}

// connectTest requiere un replica set (MONGO_TEST_URI), p. ej. mongodb://localhost:27017/?replicaSet=rs0
func connectTest(t *testing.T) (*mongo.Client, *mongo.Collection) {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI no definido")
	}
	client, coll, err := infmongo.Connect(context.Background(), config.MongoConfig{URI: uri, Database: "categorias_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = coll.Database().Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return client, coll
}

func TestCreate_EscribeAlPadreIntegracion(t *testing.T) {
	_, coll := connectTest(t)
	ctx := context.Background()
	repo := infmongo.NewCategoryRepository(coll)
	now := time.Now().UTC().Truncate(time.Millisecond)

	root := &entity.Category{ID: "r", Name: "Root", CreatedAt: now, UpdatedAt: now}
	tree.Derive(nil, entity.CategoryActive).Apply(root)
	require.NoError(t, repo.Create(ctx, root))

	child := &entity.Category{ID: "c", Name: "Child", ParentID: &root.ID, CreatedAt: now, UpdatedAt: now}
	tree.Derive(root, entity.CategoryActive).Apply(child)
	require.NoError(t, repo.Create(ctx, child))

	var raw bson.M
	require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "r"}).Decode(&raw))
	assert.EqualValues(t, 1, raw["children_rev"])
	got, err := repo.GetByID(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.Name)

	missing := "no-existe"
	orphan := &entity.Category{ID: "o", Name: "Orphan", ParentID: &missing, Path: missing, Level: 2, Status: entity.CategoryActive, CreatedAt: now, UpdatedAt: now}
	err = repo.Create(ctx, orphan)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	o, err := repo.GetByID(ctx, "o")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestTxRunner_RollbackIntegracion(t *testing.T) {
	client, coll := connectTest(t)
	ctx := context.Background()

	repo := infmongo.NewCategoryRepository(coll)
	now := time.Now().UTC().Truncate(time.Millisecond)
	root := &entity.Category{ID: "r", Name: "Root", CreatedAt: now, UpdatedAt: now}
	tree.Derive(nil, entity.CategoryActive).Apply(root)
	require.NoError(t, repo.Create(ctx, root))

	runner := infmongo.NewTxRunner(client, coll)
	err := runner.Run(ctx, func(ctx context.Context, r repository.CategoryRepository) error {
		require.NoError(t, r.UpdateName(ctx, "r", "Renamed", now))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetByID(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.Name)
}
