package budget

import (
	"context"

	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// CheckExpense verifica las líneas del request (POST /api/budget/check).
func (c *ExpenseChecker) CheckExpense(ctx context.Context, companyID int, req dto.BudgetCheckRequest) (*dto.BudgetCheckResponse, error) {
	if companyID == 0 || req.ProjectID == 0 || len(req.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]CheckLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.PartidaCode == 0 || !l.NetAmount.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		lines = append(lines, CheckLine{PartidaCode: l.PartidaCode, PartidaName: l.PartidaName, NetAmount: l.NetAmount})
	}
	res, err := c.Check(ctx, companyID, req.ProjectID, lines)
	if err != nil {
		return nil, err
	}
	return &dto.BudgetCheckResponse{Alerts: ToAlertResponses(res.Alerts), ErrorMessage: res.ErrorMessage}, nil
}

// ToAlertResponses convierte alertas al formato de respuesta. Nunca devuelve nil.
func ToAlertResponses(alerts []entity.Alert) []dto.AlertResponse {
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertResponse{
			ID:               a.ID,
			PartidaCode:      a.PartidaCode,
			PartidaName:      a.PartidaName,
			Level:            string(a.Level),
			Kind:             string(a.Kind),
			Message:          a.Message,
			OriginalAmount:   a.OriginalAmount,
			ExecutedAmount:   a.ExecutedAmount,
			AvailableAmount:  a.AvailableAmount,
			ExecutionPercent: a.ExecutionPercent,
		})
	}
	return out
}

// ToExecutionResponse convierte una ejecución con su nivel de semáforo.
func ToExecutionResponse(e entity.BudgetExecution) dto.BudgetExecutionResponse {
	return dto.BudgetExecutionResponse{
		ProjectID:        e.ProjectID,
		PartidaCode:      e.PartidaCode,
		OriginalAmount:   e.OriginalAmount,
		ExecutedAmount:   e.ExecutedAmount,
		AvailableAmount:  e.AvailableAmount,
		ExecutionPercent: e.ExecutionPercent,
		Level:            string(domainbudget.ClassifyExecution(e.ExecutionPercent)),
	}
}
