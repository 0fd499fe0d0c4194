// Package pdf genera el reporte imprimible del árbol de categorías.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                       │
//	│  RESUMEN: raíces / total / activas / inactivas              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Categoría (indentada por nivel) | Nivel | Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// indentación por nivel dentro de la columna de nombre (mm)
const indentPerLevel = 4.0

var _ appcategory.PDFGenerator = (*TreeReportGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// TreeReportGenerator implementa category.PDFGenerator usando Maroto v2.
type TreeReportGenerator struct {
	title string
}

// NewTreeReportGenerator construye el generador. title vacío usa un título por defecto.
func NewTreeReportGenerator(title string) *TreeReportGenerator {
	if title == "" {
		title = "Árbol de categorías"
	}
	return &TreeReportGenerator{title: title}
}

// GenerateTreeReport genera el PDF y devuelve sus bytes.
func (g *TreeReportGenerator) GenerateTreeReport(ctx context.Context, forest []*entity.CategoryNode, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, generatedAt))
	m.AddRows(summaryRow(summarize(forest)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	var walkErr error
	tree.Walk(forest, func(n *entity.CategoryNode, depth int) {
		if walkErr == nil {
			walkErr = ctx.Err()
		}
		if walkErr != nil {
			return
		}
		m.AddRows(nodeRow(n.Category, depth))
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(forest) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin categorías registradas.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

type summary struct {
	roots, total, active, inactive int
}

func summarize(forest []*entity.CategoryNode) summary {
	s := summary{roots: len(forest)}
	tree.Walk(forest, func(n *entity.CategoryNode, _ int) {
		s.total++
		if n.Category.Status == entity.CategoryInactive {
			s.inactive++
		} else {
			s.active++
		}
	})
	return s
}

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func summaryRow(s summary) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Raíces: %d   |   Total: %d   |   Activas: %d   |   Inactivas: %d",
				s.roots, s.total, s.active, s.inactive,
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Categoría", 8, align.Left),
		h("Nivel", 2, align.Center),
		h("Estado", 2, align.Center),
	)
}

func nodeRow(c *entity.Category, depth int) core.Row {
	nameStyle := props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1 + indentPerLevel*float64(depth)}
	statusStyle := props.Text{Size: 8, Align: align.Center, Top: 1}
	if c.Status == entity.CategoryInactive {
		nameStyle.Color = colorGray
		statusStyle.Color = colorGray
	}
	if depth == 0 {
		nameStyle.Style = fontstyle.Bold
	}
	return row.New(6).Add(
		col.New(8).Add(text.New(bullet(depth)+c.Name, nameStyle)),
		col.New(2).Add(text.New(fmt.Sprintf("%d", c.Level), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(statusLabel(c.Status), statusStyle)),
	)
}

func footerRow() core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Las categorías inactivas se muestran en gris. Una categoría bajo un padre inactivo "+
			"se creó o quedó inactiva por cascada.", props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func bullet(depth int) string {
	if depth == 0 {
		return ""
	}
	return "· "
}

func statusLabel(s entity.CategoryStatus) string {
	if s == entity.CategoryInactive {
		return "Inactiva"
	}
	return "Activa"
}
