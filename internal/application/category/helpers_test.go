package category_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/application/dto"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/infrastructure/sqlite"
)

type fixture struct {
	uc    *category.UseCase
	store *sqlite.Store
	cache *memCache
	obs   *recObserver
}

// newFixture arma el caso de uso sobre SQLite en un directorio temporal, con reloj fijo
// que avanza un segundo por llamada.
func newFixture(t *testing.T, opts ...category.Option) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "categories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{store: store, cache: newMemCache(), obs: &recObserver{}}
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var tick int
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	all := append([]category.Option{
		category.WithCache(f.cache),
		category.WithObserver(f.obs),
		category.WithClock(clock),
	}, opts...)
	f.uc = category.NewUseCase(store.Category(), store, all...)
	return f
}

func (f *fixture) create(t *testing.T, name string, parent *dto.CategoryResponse, status string) *dto.CategoryResponse {
	t.Helper()
	in := dto.CreateCategoryRequest{Name: name, Status: status}
	if parent != nil {
		pid := parent.ID
		in.ParentID = &pid
	}
	out, err := f.uc.Create(context.Background(), in)
	require.NoError(t, err)
	return out
}

func (f *fixture) get(t *testing.T, id string) *dto.CategoryResponse {
	t.Helper()
	out, err := f.uc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return out
}

func strPtr(s string) *string { return &s }

// memCache TreeCache en memoria con el mismo esquema de versiones que Redis.
type memCache struct {
	mu          sync.Mutex
	version     int64
	entries     map[int64][]byte
	hits        int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: map[int64][]byte{}}
}

func (c *memCache) Version(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *memCache) Get(_ context.Context, v int64) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[v]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, v int64, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[v] = payload
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.invalidated++
	return nil
}

type mutation struct {
	op  string
	err error
}

type recObserver struct {
	mu        sync.Mutex
	mutations []mutation
	cascades  []int64
	relinks   []int
}

func (o *recObserver) ObserveMutation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mutations = append(o.mutations, mutation{op, err})
}

func (o *recObserver) ObserveCascade(n int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cascades = append(o.cascades, n)
}

func (o *recObserver) ObserveRelink(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.relinks = append(o.relinks, n)
}

var errDiskFull = errors.New("disk full")

// failingRepo falla en Delete/SetStatusByPathPrefix después de que las escrituras previas
// de la transacción ya se ejecutaron.
type failingRepo struct {
	repository.CategoryRepository
}

func (failingRepo) Delete(context.Context, string) error { return errDiskFull }

func (failingRepo) SetStatusByPathPrefix(context.Context, string, entity.CategoryStatus, time.Time) (int64, error) {
	return 0, errDiskFull
}

// failingTx envuelve la transacción real de SQLite con failingRepo.
type failingTx struct {
	store *sqlite.Store
}

func (f failingTx) Run(ctx context.Context, fn func(ctx context.Context, repo repository.CategoryRepository) error) error {
	return f.store.Run(ctx, func(ctx context.Context, repo repository.CategoryRepository) error {
		return fn(ctx, failingRepo{repo})
	})
}

// hookRepo ejecuta afterGet justo después de cada GetByID.
type hookRepo struct {
	repository.CategoryRepository
	afterGet func(id string)
}

func (r hookRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	c, err := r.CategoryRepository.GetByID(ctx, id)
	r.afterGet(id)
	return c, err
}

type hookTx struct {
	store    *sqlite.Store
	afterGet func(id string)
}

func (h hookTx) Run(ctx context.Context, fn func(ctx context.Context, repo repository.CategoryRepository) error) error {
	return h.store.Run(ctx, func(ctx context.Context, repo repository.CategoryRepository) error {
		return fn(ctx, hookRepo{repo, h.afterGet})
	})
}

// raceOnParent arma un caso de uso que, la primera vez que lee parentID, lanza concurrent en otra
// goroutine y le da tiempo a avanzar antes de seguir. El canal entrega el resultado de concurrent.
func raceOnParent(f *fixture, parentID string, concurrent func(uc *category.UseCase) error) (*category.UseCase, <-chan error) {
	done := make(chan error, 1)
	var (
		once sync.Once
		uc   *category.UseCase
	)
	afterGet := func(id string) {
		if id != parentID {
			return
		}
		once.Do(func() {
			go func() { done <- concurrent(uc) }()
			time.Sleep(100 * time.Millisecond)
		})
	}
	uc = category.NewUseCase(hookRepo{f.store.Category(), afterGet}, hookTx{f.store, afterGet})
	return uc, done
}
