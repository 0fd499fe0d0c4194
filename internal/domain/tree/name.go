package tree

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/internal/domain/entity"
)

// MaxNameLength longitud máxima del nombre, en caracteres.
const MaxNameLength = 50

// NormalizeName recorta espacios, normaliza a NFC y valida la longitud.
func NormalizeName(raw string) (string, error) {
	name := norm.NFC.String(strings.TrimSpace(raw))
	if name == "" {
		return "", &domain.ValidationError{Field: "name", Message: "el nombre es requerido"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", &domain.ValidationError{Field: "name", Message: "el nombre no puede superar 50 caracteres"}
	}
	return name, nil
}

// ParseStatus convierte el estado recibido. Vacío equivale a active.
func ParseStatus(raw string) (entity.CategoryStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return entity.CategoryActive, nil
	}
	status := entity.CategoryStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", &domain.ValidationError{Field: "status", Message: "el estado debe ser active o inactive"}
	}
	return status, nil
}
