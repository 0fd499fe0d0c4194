// Package mongo implementa el almacenamiento del árbol de categorías sobre MongoDB.
// Las transacciones usan sesiones, por lo que el servidor debe ser un replica set.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/categorias-api/pkg/config"
)

// CollectionName colección de categorías.
const CollectionName = "categories"

// Connect abre el cliente, verifica la conexión y asegura los índices del árbol.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Collection, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("conectar MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(CollectionName)
	if err := EnsureIndexes(connectCtx, coll); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, coll, nil
}

// EnsureIndexes crea los índices para hijos por nombre, prefijo de path y estado.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "path", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("crear índices: %w", err)
	}
	return nil
}
