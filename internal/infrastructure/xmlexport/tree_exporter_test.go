package xmlexport_test

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/infrastructure/xmlexport"
)

func sampleForest(rootName string) []*entity.CategoryNode {
	parent := "r"
	return []*entity.CategoryNode{{
		Category: &entity.Category{ID: "r", Name: rootName, Status: entity.CategoryActive, Level: 1},
		Children: []*entity.CategoryNode{{
			Category: &entity.Category{ID: "c", Name: "Tazas & Vasos", ParentID: &parent, Status: entity.CategoryInactive, Path: "r", Level: 2},
			Children: []*entity.CategoryNode{},
		}},
	}}
}

func TestTreeExporter_Estructura(t *testing.T) {
	out, digest, err := xmlexport.NewTreeExporter().ExportTree(sampleForest("Cocina"), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, digest, 64)
	assert.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "categoryTree", root.Tag)
	assert.Equal(t, "1", root.SelectAttrValue("count", ""))
	assert.Equal(t, "2026-01-02T03:04:05Z", root.SelectAttrValue("generatedAt", ""))

	cat := root.SelectElement("category")
	require.NotNil(t, cat)
	assert.Equal(t, "r", cat.SelectAttrValue("id", ""))
	assert.Equal(t, "Cocina", cat.SelectElement("name").Text())
	assert.Nil(t, cat.SelectElement("path"))

	child := cat.SelectElement("category")
	require.NotNil(t, child)
	assert.Equal(t, "inactive", child.SelectAttrValue("status", ""))
	assert.Equal(t, "2", child.SelectAttrValue("level", ""))
	assert.Equal(t, "Tazas & Vasos", child.SelectElement("name").Text())
	assert.Equal(t, "r", child.SelectElement("path").Text())
}

func TestTreeExporter_DigestIgnoraFechaDeGeneracion(t *testing.T) {
	exp := xmlexport.NewTreeExporter()
	_, d1, err := exp.ExportTree(sampleForest("Cocina"), time.Unix(0, 0))
	require.NoError(t, err)
	_, d2, err := exp.ExportTree(sampleForest("Cocina"), time.Unix(3600, 0))
	require.NoError(t, err)
	_, d3, err := exp.ExportTree(sampleForest("Baño"), time.Unix(0, 0))
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
}

func TestTreeExporter_BosqueVacio(t *testing.T) {
	out, digest, err := xmlexport.NewTreeExporter().ExportTree(nil, time.Unix(0, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.Contains(t, string(out), `count="0"`)
}
