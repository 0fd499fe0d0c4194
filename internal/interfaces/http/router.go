package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *appcategory.UseCase
	Logger     *logger.Logger
	Metrics    nethttp.Handler // nil deshabilita /metrics
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	canWrite := RequireRole(RoleAdmin, RoleEditor)

	categories := protected.Group("/categories")
	h := NewCategoryHandler(deps.CategoryUC, deps.Logger)
	categories.Get("/", h.ListTree)
	categories.Post("/", canWrite, h.Create)
	categories.Get("/roots", h.ListRoots)
	categories.Get("/export.xml", h.ExportXML)
	categories.Get("/export.pdf", h.ExportPDF)
	categories.Get("/:id", h.GetByID)
	categories.Get("/:id/children", h.ListChildren)
	categories.Put("/:id", canWrite, h.Update)
	categories.Patch("/:id", canWrite, h.Update)
	categories.Delete("/:id", canWrite, h.Delete)
}
