package category

import (
	"github.com/jhoicas/categorias-api/internal/application/dto"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
	"github.com/jhoicas/categorias-api/internal/domain/tree"
)

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	var parentID *string
	if c.ParentID != nil {
		p := *c.ParentID
		parentID = &p
	}
	return &dto.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  parentID,
		Status:    string(c.Status),
		Path:      c.Path,
		Level:     c.Level,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toListResponse(list []*entity.Category) *dto.CategoryListResponse {
	tree.SortByName(list)
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{Items: items}
}

func toTreeResponse(forest []*entity.CategoryNode) *dto.CategoryTreeResponse {
	return &dto.CategoryTreeResponse{
		Count: len(forest),
		Items: toTreeNodes(forest),
	}
}

func toTreeNodes(list []*entity.CategoryNode) []dto.CategoryTreeNode {
	out := make([]dto.CategoryTreeNode, 0, len(list))
	for _, n := range list {
		out = append(out, dto.CategoryTreeNode{
			CategoryResponse: *toCategoryResponse(n.Category),
			Children:         toTreeNodes(n.Children),
		})
	}
	return out
}
