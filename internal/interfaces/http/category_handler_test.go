package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/application/dto"
	"github.com/jhoicas/categorias-api/internal/domain/repository"
	"github.com/jhoicas/categorias-api/internal/infrastructure/metrics"
	"github.com/jhoicas/categorias-api/internal/infrastructure/pdf"
	"github.com/jhoicas/categorias-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/categorias-api/internal/infrastructure/xmlexport"
	apphttp "github.com/jhoicas/categorias-api/internal/interfaces/http"
)

type apiFixture struct {
	app     *fiber.App
	metrics *metrics.TreeMetrics
}

func newAPI(t *testing.T, tx appcategory.TxRunner) *apiFixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "categories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	if tx == nil {
		tx = store
	}

	m := metrics.NewTreeMetrics()
	uc := appcategory.NewUseCase(store.Category(), tx,
		appcategory.WithObserver(m),
		appcategory.WithExporters(xmlexport.NewTreeExporter(), pdf.NewTreeReportGenerator("")),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CategoryUC: uc,
		Metrics:    m.Handler(),
		JWTSecret:  testJWTSecret,
	})
	return &apiFixture{app: app, metrics: m}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	auth := ""
	if role != "" {
		auth = tokenForRole(t, role)
	}
	return f.doAuth(t, method, path, auth, body)
}

// doAuth envía la petición con el header Authorization tal cual (vacío = sin header).
func (f *apiFixture) doAuth(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (f *apiFixture) create(t *testing.T, name string, parentID *string, status string) dto.CategoryResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/categories", "editor", dto.CreateCategoryRequest{Name: name, ParentID: parentID, Status: status})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.CategoryResponse](t, resp)
}

func TestCategories_CrearYListarArbol(t *testing.T) {
	f := newAPI(t, nil)
	clothing := f.create(t, "Clothing", nil, "")
	electronics := f.create(t, "Electronics", nil, "")
	f.create(t, "Phones", &electronics.ID, "")
	shirts := f.create(t, "T-Shirts", &clothing.ID, "")

	assert.Equal(t, clothing.ID, shirts.Path)
	assert.Equal(t, 2, shirts.Level)
	assert.Equal(t, "active", shirts.Status)

	resp := f.do(t, http.MethodGet, "/api/categories", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.CategoryTreeResponse](t, resp)

	require.Equal(t, 2, out.Count)
	assert.Equal(t, "Clothing", out.Items[0].Name)
	require.Len(t, out.Items[0].Children, 1)
	assert.Equal(t, "T-Shirts", out.Items[0].Children[0].Name)
	assert.Empty(t, out.Items[0].Children[0].Children)
	assert.Equal(t, "Electronics", out.Items[1].Name)
	assert.Equal(t, "Phones", out.Items[1].Children[0].Name)
}

func TestCategories_ChildrenArraySiempreSerializado(t *testing.T) {
	f := newAPI(t, nil)
	f.create(t, "Hoja", nil, "")

	resp := f.do(t, http.MethodGet, "/api/categories", "viewer", nil)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `"children":[]`)
	assert.Contains(t, string(body), `"parent_id":null`)
}

func TestCategories_ErroresDeCreacion(t *testing.T) {
	f := newAPI(t, nil)
	missing := "no-existe"

	resp := f.do(t, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "X", Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", errBody.Code)
	assert.Equal(t, "status", errBody.Field)

	resp = f.do(t, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "name", decode[dto.ErrorResponse](t, resp).Field)

	resp = f.do(t, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/categories", "admin", dto.CreateCategoryRequest{Name: "X", ParentID: &missing})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCategories_ConsultasPorID(t *testing.T) {
	f := newAPI(t, nil)
	root := f.create(t, "Hogar", nil, "")
	f.create(t, "Cocina", &root.ID, "")
	f.create(t, "Baño", &root.ID, "")

	resp := f.do(t, http.MethodGet, "/api/categories/"+root.ID, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hogar", decode[dto.CategoryResponse](t, resp).Name)

	resp = f.do(t, http.MethodGet, "/api/categories/"+root.ID+"/children", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	children := decode[dto.CategoryListResponse](t, resp)
	require.Len(t, children.Items, 2)
	assert.Equal(t, "Baño", children.Items[0].Name)

	resp = f.do(t, http.MethodGet, "/api/categories/roots", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.CategoryListResponse](t, resp).Items, 1)

	resp = f.do(t, http.MethodGet, "/api/categories/no-existe", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategories_DesactivarEnCascada(t *testing.T) {
	f := newAPI(t, nil)
	root := f.create(t, "Hogar", nil, "")
	child := f.create(t, "Cocina", &root.ID, "")
	inactive := "inactive"

	resp := f.do(t, http.MethodPut, "/api/categories/"+root.ID, "admin", dto.UpdateCategoryRequest{Status: &inactive})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "inactive", decode[dto.CategoryResponse](t, resp).Status)

	resp = f.do(t, http.MethodGet, "/api/categories/"+child.ID, "viewer", nil)
	assert.Equal(t, "inactive", decode[dto.CategoryResponse](t, resp).Status)

	grandchild := f.create(t, "Ollas", &child.ID, "active")
	assert.Equal(t, "inactive", grandchild.Status)
}

func TestCategories_RenombrarConPatch(t *testing.T) {
	f := newAPI(t, nil)
	root := f.create(t, "Hogar", nil, "")
	name := "Casa"

	resp := f.do(t, http.MethodPatch, "/api/categories/"+root.ID, "editor", dto.UpdateCategoryRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Casa", decode[dto.CategoryResponse](t, resp).Name)

	bad := "borrada"
	resp = f.do(t, http.MethodPatch, "/api/categories/"+root.ID, "editor", dto.UpdateCategoryRequest{Status: &bad})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, "/api/categories/no-existe", "editor", dto.UpdateCategoryRequest{Name: &name})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategories_EliminarReenlaza(t *testing.T) {
	f := newAPI(t, nil)
	root := f.create(t, "Hogar", nil, "")
	mid := f.create(t, "Cocina", &root.ID, "")
	leaf := f.create(t, "Ollas", &mid.ID, "")

	resp := f.do(t, http.MethodDelete, "/api/categories/"+mid.ID, "admin", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/categories/"+leaf.ID, "viewer", nil)
	got := decode[dto.CategoryResponse](t, resp)
	assert.Equal(t, root.ID, *got.ParentID)
	assert.Equal(t, root.ID, got.Path)
	assert.Equal(t, 2, got.Level)

	resp = f.do(t, http.MethodDelete, "/api/categories/"+mid.ID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type brokenTx struct{}

func (brokenTx) Run(context.Context, func(context.Context, repository.CategoryRepository) error) error {
	return errors.New("could not serialize access")
}

func TestCategories_FalloDeTransaccionEs409(t *testing.T) {
	f := newAPI(t, brokenTx{})

	resp := f.do(t, http.MethodPost, "/api/categories", "editor", dto.CreateCategoryRequest{Name: "Hogar"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TRANSACTION_FAILED", decode[dto.ErrorResponse](t, resp).Code)

	resp = f.do(t, http.MethodDelete, "/api/categories/cualquiera", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TRANSACTION_FAILED", decode[dto.ErrorResponse](t, resp).Code)
}

func TestCategories_ExportXMLConETag(t *testing.T) {
	f := newAPI(t, nil)
	f.create(t, "Hogar", nil, "")

	resp := f.do(t, http.MethodGet, "/api/categories/export.xml", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")

	req := httptest.NewRequest(http.MethodGet, "/api/categories/export.xml", nil)
	req.Header.Set("Authorization", tokenForRole(t, "viewer"))
	req.Header.Set("If-None-Match", etag)
	resp2, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
}

func TestCategories_ExportPDF(t *testing.T) {
	f := newAPI(t, nil)
	f.create(t, "Hogar", nil, "")

	resp := f.do(t, http.MethodGet, "/api/categories/export.pdf", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestMetrics_Expuestas(t *testing.T) {
	f := newAPI(t, nil)
	f.create(t, "Hogar", nil, "")

	resp := f.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `categorias_tree_mutations_total{op="create",result="ok"} 1`)
}
