package dto

import "time"

// CreateCategoryRequest entrada para crear una categoría (raíz si parent_id es nulo).
type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required"`
	ParentID *string `json:"parent_id" validate:"omitempty,max=64"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateCategoryRequest entrada para renombrar o cambiar el estado. No permite mover el nodo.
type UpdateCategoryRequest struct {
	Name   *string `json:"name"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id"`
	Status    string    `json:"status"`
	Path      string    `json:"path"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryTreeNode nodo del bosque; children siempre presente.
type CategoryTreeNode struct {
	CategoryResponse
	Children []CategoryTreeNode `json:"children"`
}

// CategoryTreeResponse bosque completo. Count es la cantidad de raíces.
type CategoryTreeResponse struct {
	Count int                `json:"count"`
	Items []CategoryTreeNode `json:"items"`
}

// CategoryListResponse lista plana (raíces o hijos directos).
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
}
