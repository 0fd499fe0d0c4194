package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/categorias-api/internal/application/dto"
	"github.com/jhoicas/categorias-api/internal/domain"
	"github.com/jhoicas/categorias-api/pkg/logger"
)

// writeError traduce los errores de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		te *domain.TransactionError
	)
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: ve.Message, Field: ve.Field})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: nf.Error()})
	case errors.As(err, &te):
		log.Warn().Err(err).Str("path", c.Path()).Msg("transacción fallida")
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TRANSACTION_FAILED", Message: "no se pudo completar la operación; intente de nuevo"})
	default:
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

// validationResponse primer error de validator/v10 como ErrorResponse.
func validationResponse(err error) dto.ErrorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Field() == "ParentID" {
			field = "parent_id"
		}
		return dto.ErrorResponse{Code: "VALIDATION", Field: field, Message: ruleMessage(field, fe)}
	}
	return dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", field)
	case "max":
		return fmt.Sprintf("%s admite como máximo %s caracteres", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s admite como mínimo %s caracteres", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s no cumple la regla %s", field, fe.Tag())
	}
}
