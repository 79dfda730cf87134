package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
)

// TaxHandler cálculo de IGV y conversión de moneda para los formularios.
type TaxHandler struct {
	calc tax.Calculator
}

// NewTaxHandler construye el handler con la tasa configurada.
func NewTaxHandler(calc tax.Calculator) *TaxHandler {
	return &TaxHandler{calc: calc}
}

// Compute godoc
// @Summary      Calcular neto, impuesto y total
// @Description  Parte del neto o del total. Con manual_percent se usa ese porcentaje (recibo por honorarios).
// @Tags         tax
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TaxComputeRequest  true  "Montos"
// @Success      200   {object}  dto.TaxComputeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/tax/compute [post]
func (h *TaxHandler) Compute(c *fiber.Ctx) error {
	var in dto.TaxComputeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}

	calc := h.calc
	if in.ManualPercent != nil {
		if in.ManualPercent.IsNegative() || in.ManualPercent.GreaterThan(hundredPercent) {
			return invalidTax(c, "manual_percent debe estar entre 0 y 100")
		}
		calc = tax.WithPercent(*in.ManualPercent)
	}

	var amounts tax.Amounts
	switch {
	case in.Net != nil:
		if in.Net.IsNegative() {
			return invalidTax(c, "net no puede ser negativo")
		}
		amounts = calc.FromNet(*in.Net)
	case in.Total != nil:
		if in.Total.IsNegative() {
			return invalidTax(c, "total no puede ser negativo")
		}
		amounts = calc.FromTotal(*in.Total)
	default:
		return invalidTax(c, "indique net o total")
	}

	out := dto.TaxComputeResponse{Net: amounts.Net, Tax: amounts.Tax, Total: amounts.Total, Percent: calc.Percent()}
	if in.ExchangeRate != nil {
		if !in.ExchangeRate.IsPositive() {
			return invalidTax(c, "exchange_rate debe ser mayor que 0")
		}
		var conv tax.Conversion
		switch in.Direction {
		case "", dto.ConvertForeignToLocal:
			conv = calc.ForeignToLocal(amounts.Net, *in.ExchangeRate)
		case dto.ConvertLocalToForeign:
			conv = calc.LocalToForeign(amounts.Net, *in.ExchangeRate)
		default:
			return invalidTax(c, "direction debe ser foreign_to_local o local_to_foreign")
		}
		out.Conversion = &dto.ConversionResponse{
			NetLocal:     conv.NetLocal,
			TaxLocal:     conv.TaxLocal,
			TotalLocal:   conv.TotalLocal,
			NetForeign:   conv.NetForeign,
			TaxForeign:   conv.TaxForeign,
			TotalForeign: conv.TotalForeign,
		}
	}
	return c.JSON(out)
}

var hundredPercent = decimal.NewFromInt(100)

func invalidTax(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}
