package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
	"github.com/jhoicas/presupuesto-api/internal/domain"
)

// respondError traduce un error de aplicación a status HTTP y dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	var verr *voucher.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ValidationErrorResponse{
			Code:    "VALIDATION",
			Message: "el comprobante tiene errores",
			Fields:  verr.Errors,
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, voucher.ErrBudgetExceeded):
		status, code = fiber.StatusUnprocessableEntity, "BUDGET_EXCEEDED"
	case errors.Is(err, voucher.ErrPartidaNotLeaf):
		status, code = fiber.StatusUnprocessableEntity, "PARTIDA_NOT_LEAF"
	case errors.Is(err, voucher.ErrPartidaDuplicated):
		status, code = fiber.StatusUnprocessableEntity, "PARTIDA_DUPLICATED"
	case errors.Is(err, voucher.ErrNegativeReceiptTotal):
		status, code = fiber.StatusUnprocessableEntity, "NEGATIVE_TOTAL"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, code = fiber.StatusRequestTimeout, "TIMEOUT"
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
