package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/dto"
)

// BudgetHandler verificación de gastos, ejecución por partida y reporte PDF.
type BudgetHandler struct {
	checker *budget.ExpenseChecker
	report  *budget.ReportUseCase
}

// NewBudgetHandler construye el handler.
func NewBudgetHandler(checker *budget.ExpenseChecker, report *budget.ReportUseCase) *BudgetHandler {
	return &BudgetHandler{checker: checker, report: report}
}

// Check godoc
// @Summary      Verificar presupuesto de un egreso
// @Tags         budget
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BudgetCheckRequest  true  "Líneas a verificar"
// @Success      200   {object}  dto.BudgetCheckResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/budget/check [post]
func (h *BudgetHandler) Check(c *fiber.Ctx) error {
	var in dto.BudgetCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.checker.CheckExpense(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Execution godoc
// @Summary      Ejecución de una partida en un proyecto
// @Tags         budget
// @Security     Bearer
// @Produce      json
// @Param        project  query     int  true  "ID del proyecto"
// @Param        code     query     int  true  "Código numérico de la partida"
// @Success      200      {object}  dto.BudgetExecutionResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/budget/execution [get]
func (h *BudgetHandler) Execution(c *fiber.Ctx) error {
	exec, err := h.report.Execution(c.UserContext(), GetCompanyID(c), c.QueryInt("project"), c.QueryInt("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(budget.ToExecutionResponse(exec))
}

// Report godoc
// @Summary      Reporte PDF de ejecución presupuestal
// @Tags         budget
// @Security     Bearer
// @Produce      application/pdf
// @Param        project  query  int  true  "ID del proyecto"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/budget/report [get]
func (h *BudgetHandler) Report(c *fiber.Ctx) error {
	pdf, filename, err := h.report.ExecutionReport(c.UserContext(), GetCompanyID(c), c.QueryInt("project"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
