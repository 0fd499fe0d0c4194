// Package xmlexport serializa el bosque de categorías a XML. El digest se calcula sobre la
// forma canónica (C14N) del árbol sin la marca de generación, así dos exportaciones del mismo
// árbol comparten digest y sirve como ETag.
package xmlexport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// Namespace del documento exportado.
const Namespace = "urn:categorias:tree:1"

const generatedAtAttr = "generatedAt"

var _ appcategory.XMLExporter = (*TreeExporter)(nil)

// TreeExporter implementa XMLExporter con etree.
type TreeExporter struct{}

// NewTreeExporter construye el exportador.
func NewTreeExporter() *TreeExporter {
	return &TreeExporter{}
}

// ExportTree devuelve el documento indentado y el digest SHA-256 (hex) de su forma canónica.
func (e *TreeExporter) ExportTree(forest []*entity.CategoryNode, generatedAt time.Time) ([]byte, string, error) {
	root := etree.NewElement("categoryTree")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("count", strconv.Itoa(len(forest)))
	for _, n := range forest {
		appendNode(root, n)
	}

	digest, err := canonicalDigest(root.Copy())
	if err != nil {
		return nil, "", err
	}

	root.CreateAttr(generatedAtAttr, generatedAt.UTC().Format(time.RFC3339))
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(root)
	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmlexport: serializar: %w", err)
	}
	return out, digest, nil
}

func appendNode(parent *etree.Element, n *entity.CategoryNode) {
	c := n.Category
	el := parent.CreateElement("category")
	el.CreateAttr("id", c.ID)
	el.CreateAttr("status", string(c.Status))
	el.CreateAttr("level", strconv.Itoa(c.Level))
	el.CreateElement("name").SetText(c.Name)
	if c.Path != "" {
		el.CreateElement("path").SetText(c.Path)
	}
	for _, child := range n.Children {
		appendNode(el, child)
	}
}

func canonicalDigest(root *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(root)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("xmlexport: serializar para digest: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xmlexport: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
