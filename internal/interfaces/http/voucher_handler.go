package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
)

// VoucherHandler registro y consulta de comprobantes.
type VoucherHandler struct {
	uc *voucher.UseCase
}

// NewVoucherHandler construye el handler.
func NewVoucherHandler(uc *voucher.UseCase) *VoucherHandler {
	return &VoucherHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar comprobante
// @Description  Valida el comprobante; en egresos verifica el presupuesto de cada partida y devuelve las alertas.
// @Tags         vouchers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateVoucherRequest  true  "Comprobante"
// @Success      201   {object}  dto.VoucherResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/vouchers [post]
func (h *VoucherHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateVoucherRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Submit(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar comprobantes
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        project       query  string  false  "all o ID del proyecto"
// @Param        counterparty  query  string  false  "all o ID de la contraparte"
// @Success      200  {array}  dto.VoucherResponse
// @Router       /api/vouchers [get]
func (h *VoucherHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), c.Query("project", "all"), c.Query("counterparty", "all"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener comprobante
// @Tags         vouchers
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del comprobante"
// @Success      200  {object}  dto.VoucherResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id} [get]
func (h *VoucherHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular comprobante
// @Tags         vouchers
// @Security     Bearer
// @Param        id   path  string  true  "ID del comprobante"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/vouchers/{id}/void [post]
func (h *VoucherHandler) Void(c *fiber.Ctx) error {
	if err := h.uc.Void(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
