package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/categorias-api/internal/application/dto"
	apphttp "github.com/jhoicas/categorias-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/categorias-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "categorias-api-test"
	testExpMin    = 60
)

// tokenForRole genera el header Authorization con un JWT del rol indicado ("" = sin rol).
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

type writeRoute struct {
	method string
	path   func(id string) string
	body   any
}

var writeRoutes = []writeRoute{
	{http.MethodPost, func(string) string { return "/api/categories" }, dto.CreateCategoryRequest{Name: "Jardín"}},
	{http.MethodPut, func(id string) string { return "/api/categories/" + id }, dto.UpdateCategoryRequest{Name: strPtr("Casa")}},
	{http.MethodPatch, func(id string) string { return "/api/categories/" + id }, dto.UpdateCategoryRequest{Status: strPtr("inactive")}},
	{http.MethodDelete, func(id string) string { return "/api/categories/" + id }, nil},
}

func strPtr(s string) *string { return &s }

func TestCategoryWrites_Autorizacion(t *testing.T) {
	tests := []struct {
		name     string
		auth     func(t *testing.T) string
		wantCode int
		wantErr  string
	}{
		{"sin header", func(*testing.T) string { return "" }, http.StatusUnauthorized, "MISSING_TOKEN"},
		{"esquema distinto de Bearer", func(*testing.T) string { return "Basic abc" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", func(*testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", func(t *testing.T) string { return tokenForRole(t, "") }, http.StatusUnauthorized, "MISSING_ROLE"},
		{"viewer", func(t *testing.T) string { return tokenForRole(t, apphttp.RoleViewer) }, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		for _, r := range writeRoutes {
			t.Run(tt.name+" "+r.method, func(t *testing.T) {
				f := newAPI(t, nil)
				root := f.create(t, "Hogar", nil, "")

				resp := f.doAuth(t, r.method, r.path(root.ID), tt.auth(t), r.body)

				assert.Equal(t, tt.wantCode, resp.StatusCode)
				assert.Equal(t, tt.wantErr, decode[dto.ErrorResponse](t, resp).Code)

				// La escritura rechazada no tocó el registro.
				got := f.do(t, http.MethodGet, "/api/categories/"+root.ID, apphttp.RoleViewer, nil)
				require.Equal(t, http.StatusOK, got.StatusCode)
				after := decode[dto.CategoryResponse](t, got)
				assert.Equal(t, root.Name, after.Name)
				assert.Equal(t, root.Status, after.Status)
				assert.True(t, root.UpdatedAt.Equal(after.UpdatedAt))
			})
		}
	}
}

func TestCategoryWrites_AdminYEditorPasan(t *testing.T) {
	want := map[string]int{
		http.MethodPost:   http.StatusCreated,
		http.MethodPut:    http.StatusOK,
		http.MethodPatch:  http.StatusOK,
		http.MethodDelete: http.StatusNoContent,
	}
	for _, role := range []string{apphttp.RoleAdmin, apphttp.RoleEditor, "EDITOR"} {
		for _, r := range writeRoutes {
			t.Run(role+" "+r.method, func(t *testing.T) {
				f := newAPI(t, nil)
				root := f.create(t, "Hogar", nil, "")

				resp := f.do(t, r.method, r.path(root.ID), role, r.body)

				assert.Equal(t, want[r.method], resp.StatusCode)
			})
		}
	}
}

func TestCategoryReads_CualquierTokenValido(t *testing.T) {
	f := newAPI(t, nil)
	root := f.create(t, "Hogar", nil, "")

	for _, path := range []string{
		"/api/categories",
		"/api/categories/roots",
		"/api/categories/" + root.ID,
		"/api/categories/" + root.ID + "/children",
	} {
		resp := f.do(t, http.MethodGet, path, apphttp.RoleViewer, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)

		resp = f.doAuth(t, http.MethodGet, path, tokenForRole(t, ""), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)

		resp = f.doAuth(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAuthMiddleware_CargaClaimsEnLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleEditor))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, apphttp.RoleEditor, body["role"])
}

func TestJWT_Parse(t *testing.T) {
	valid, err := pkgjwt.Generate(testJWTSecret, testUserID, apphttp.RoleEditor, testIssuer, testExpMin)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, apphttp.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(testJWTSecret, valid)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, apphttp.RoleEditor, role)

	_, _, err = pkgjwt.Parse(testJWTSecret, expired)
	assert.Error(t, err)

	_, _, err = pkgjwt.Parse("otro-secret", valid)
	assert.Error(t, err)
}
