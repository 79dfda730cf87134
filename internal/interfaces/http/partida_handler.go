package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/application/partida"
)

// PartidaHandler maneja el catálogo de partidas presupuestales.
type PartidaHandler struct {
	uc *partida.UseCase
}

// NewPartidaHandler construye el handler.
func NewPartidaHandler(uc *partida.UseCase) *PartidaHandler {
	return &PartidaHandler{uc: uc}
}

// Hierarchy godoc
// @Summary      Catálogo de partidas en orden jerárquico
// @Tags         partidas
// @Security     Bearer
// @Produce      json
// @Param        flow    query  string  false  "I (ingreso) o E (egreso); vacío trae ambos"
// @Param        active  query  bool    false  "solo partidas activas"
// @Success      200     {array}   dto.PartidaResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/partidas/hierarchy [get]
func (h *PartidaHandler) Hierarchy(c *fiber.Ctx) error {
	out, err := h.uc.Hierarchy(c.UserContext(), GetCompanyID(c), c.Query("flow"), c.QueryBool("active", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear partida
// @Tags         partidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PartidaRequest  true  "Datos de la partida"
// @Success      201   {object}  dto.PartidaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/partidas [post]
func (h *PartidaHandler) Create(c *fiber.Ctx) error {
	var in dto.PartidaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar partida
// @Tags         partidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "ID de la partida"
// @Param        body  body      dto.PartidaRequest  true  "Datos de la partida"
// @Success      200   {object}  dto.PartidaResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/partidas/{id} [put]
func (h *PartidaHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.PartidaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ValidateCode godoc
// @Summary      Verificar unicidad de códigos sin guardar
// @Tags         partidas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ValidateCodeRequest  true  "Códigos a verificar"
// @Success      200   {object}  dto.ValidateCodeResponse
// @Router       /api/partidas/validate-code [post]
func (h *PartidaHandler) ValidateCode(c *fiber.Ctx) error {
	var in dto.ValidateCodeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.ValidateCode(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
