package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrTransaction  = errors.New("la transacción no pudo completarse")
)

// ValidationError rechaza una operación por forma o longitud de la entrada. No hay cambio de estado.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NotFoundError indica que el id referenciado no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado con id %s", e.Resource, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// TransactionError indica que una mutación de varios registros no se pudo confirmar.
// Garantiza que no quedaron escrituras parciales.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrTransaction.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrTransaction.Error(), e.Err)
}

// Is permite errors.Is(err, ErrTransaction).
func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

func (e *TransactionError) Unwrap() error { return e.Err }

// NewCategoryNotFound atajo para el único recurso del sistema.
func NewCategoryNotFound(id string) error {
	return &NotFoundError{Resource: "categoría", ID: id}
}
