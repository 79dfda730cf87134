package dto

import "github.com/shopspring/decimal"

// BudgetCheckLine gasto prospectivo a verificar.
type BudgetCheckLine struct {
	PartidaCode int             `json:"partida_code"`
	PartidaName string          `json:"partida_name,omitempty"`
	NetAmount   decimal.Decimal `json:"net_amount"`
}

// BudgetCheckRequest body para POST /api/budget/check.
type BudgetCheckRequest struct {
	ProjectID int               `json:"project_id"`
	Lines     []BudgetCheckLine `json:"lines"`
}

// AlertResponse alerta del semáforo presupuestal.
type AlertResponse struct {
	ID               string          `json:"id"`
	PartidaCode      int             `json:"partida_code"`
	PartidaName      string          `json:"partida_name"`
	Level            string          `json:"level"`
	Kind             string          `json:"kind"`
	Message          string          `json:"message"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	ExecutedAmount   decimal.Decimal `json:"executed_amount"`
	AvailableAmount  decimal.Decimal `json:"available_amount"`
	ExecutionPercent decimal.Decimal `json:"execution_percent"`
}

// BudgetCheckResponse resultado de la verificación de un egreso.
type BudgetCheckResponse struct {
	Alerts       []AlertResponse `json:"alerts"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// BudgetExecutionResponse ejecución de una partida en un proyecto.
type BudgetExecutionResponse struct {
	ProjectID        int             `json:"project_id"`
	PartidaCode      int             `json:"partida_code"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	ExecutedAmount   decimal.Decimal `json:"executed_amount"`
	AvailableAmount  decimal.Decimal `json:"available_amount"`
	ExecutionPercent decimal.Decimal `json:"execution_percent"`
	Level            string          `json:"level"`
}
