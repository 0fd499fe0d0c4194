package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

type categoryDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	ParentID  *string   `bson:"parent_id"`
	Status    string    `bson:"status"`
	Path      string    `bson:"path"`
	Level     int       `bson:"level"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// CategoryRepo repositorio sobre una colección MongoDB. Dentro de TxRunner.Run recibe el
// contexto de sesión, así que las mismas llamadas participan de la transacción.
type CategoryRepo struct {
	coll *mongo.Collection
}

// NewCategoryRepository construye el repositorio.
func NewCategoryRepository(coll *mongo.Collection) *CategoryRepo {
	return &CategoryRepo{coll: coll}
}

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

// Create inserta la categoría. Con padre, antes escribe el documento del padre (children_rev):
// dentro de una transacción eso choca con cualquier delete o cascada que haya tocado al padre
// y WithTransaction reintenta con la ancestría vigente. Sin padre existente devuelve NotFound.
func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	if c.ParentID != nil {
		res, err := r.coll.UpdateOne(ctx, bson.M{"_id": *c.ParentID}, bson.M{"$inc": bson.M{"children_rev": 1}})
		if err != nil {
			return fmt.Errorf("lock parent: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.NewCategoryNotFound(*c.ParentID)
		}
	}
	if _, err := r.coll.InsertOne(ctx, toDoc(c)); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría; (nil, nil) si no existe.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var d categoryDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return fromDoc(d), nil
}

// ListRoots lista las raíces.
func (r *CategoryRepo) ListRoots(ctx context.Context) ([]*entity.Category, error) {
	return r.find(ctx, "list roots", bson.M{"parent_id": nil}, byName)
}

// ListByParent lista los hijos directos.
func (r *CategoryRepo) ListByParent(ctx context.Context, parentID string) ([]*entity.Category, error) {
	return r.find(ctx, "list children", bson.M{"parent_id": parentID}, byName)
}

// ListAll carga todo el árbol.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]*entity.Category, error) {
	return r.find(ctx, "list all", bson.M{}, byName)
}

// ListByPathPrefix lista el subárbol con una regex anclada al inicio (usa el índice de path).
func (r *CategoryRepo) ListByPathPrefix(ctx context.Context, prefix string) ([]*entity.Category, error) {
	return r.find(ctx, "list by path", SubtreeFilter(prefix), byName)
}

// UpdateName cambia solo el nombre.
func (r *CategoryRepo) UpdateName(ctx context.Context, id, name string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updated_at": at}})
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

// Update persiste todos los campos mutables.
func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":       c.Name,
		"parent_id":  c.ParentID,
		"status":     string(c.Status),
		"path":       c.Path,
		"level":      c.Level,
		"updated_at": c.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewCategoryNotFound(c.ID)
	}
	return nil
}

// SetStatusByPathPrefix cambia en bloque el estado del subárbol.
func (r *CategoryRepo) SetStatusByPathPrefix(ctx context.Context, prefix string, status entity.CategoryStatus, at time.Time) (int64, error) {
	filter := SubtreeFilter(prefix)
	filter["status"] = bson.M{"$ne": string(status)}
	res, err := r.coll.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"status": string(status), "updated_at": at}})
	if err != nil {
		return 0, fmt.Errorf("cascade status: %w", err)
	}
	return res.ModifiedCount, nil
}

// Delete elimina una categoría.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewCategoryNotFound(id)
	}
	return nil
}

// SubtreeFilter filtro de descendientes: path igual a prefix o prefix seguido del separador.
func SubtreeFilter(prefix string) bson.M {
	pattern := "^" + regexp.QuoteMeta(prefix) + "(" + regexp.QuoteMeta(tree.PathSeparator) + "|$)"
	return bson.M{"path": bson.M{"$regex": pattern}}
}

func (r *CategoryRepo) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*entity.Category, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	out := make([]*entity.Category, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoc(d))
	}
	return out, nil
}

func toDoc(c *entity.Category) categoryDoc {
	return categoryDoc{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		Status:    string(c.Status),
		Path:      c.Path,
		Level:     c.Level,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromDoc(d categoryDoc) *entity.Category {
	return &entity.Category{
		ID:        d.ID,
		Name:      d.Name,
		ParentID:  d.ParentID,
		Status:    entity.CategoryStatus(d.Status),
		Path:      d.Path,
		Level:     d.Level,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
