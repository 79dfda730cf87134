// Package budget clasifica la ejecución presupuestal de una partida en el
// semáforo de alertas (verde, amarillo, naranja, rojo).
package budget

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// Umbrales del semáforo, en porcentaje de ejecución.
var (
	ThresholdYellow = decimal.NewFromInt(76)
	ThresholdOrange = decimal.NewFromInt(91)
	ThresholdRed    = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

// ClassifyExecution asigna el nivel de alerta a un porcentaje de ejecución.
func ClassifyExecution(percent decimal.Decimal) entity.AlertLevel {
	switch {
	case percent.GreaterThanOrEqual(ThresholdRed):
		return entity.AlertRed
	case percent.GreaterThanOrEqual(ThresholdOrange):
		return entity.AlertOrange
	case percent.GreaterThanOrEqual(ThresholdYellow):
		return entity.AlertYellow
	default:
		return entity.AlertGreen
	}
}

// ComputeExecutionPercent ejecutado / original * 100 redondeado a 2 decimales.
// Con original = 0 devuelve 0.
func ComputeExecutionPercent(original, executed decimal.Decimal) decimal.Decimal {
	if original.IsZero() {
		return decimal.Zero
	}
	return executed.Div(original).Mul(hundred).Round(2)
}

// KindFor severidad de presentación de cada nivel.
func KindFor(level entity.AlertLevel) entity.AlertKind {
	switch level {
	case entity.AlertRed:
		return entity.AlertError
	case entity.AlertOrange, entity.AlertYellow:
		return entity.AlertWarning
	default:
		return entity.AlertInfo
	}
}

// FormatAlertMessage mensaje fijo por nivel con el nombre de la partida y el
// porcentaje a 1 decimal.
func FormatAlertMessage(level entity.AlertLevel, partidaName string, percent decimal.Decimal) string {
	pct := percent.StringFixed(1)
	switch level {
	case entity.AlertRed:
		return fmt.Sprintf("Presupuesto insuficiente: la partida %s alcanza el %s%% de ejecución", partidaName, pct)
	case entity.AlertOrange:
		return fmt.Sprintf("Urgente: la partida %s ha ejecutado el %s%% de su presupuesto", partidaName, pct)
	case entity.AlertYellow:
		return fmt.Sprintf("Atención: la partida %s ha ejecutado el %s%% de su presupuesto", partidaName, pct)
	default:
		return fmt.Sprintf("La partida %s está dentro del presupuesto (%s%% ejecutado)", partidaName, pct)
	}
}

// NewExecution arma un BudgetExecution con disponible y porcentaje derivados.
func NewExecution(companyID, projectID, partidaCode int, original, executed decimal.Decimal) entity.BudgetExecution {
	return entity.BudgetExecution{
		CompanyID:        companyID,
		ProjectID:        projectID,
		PartidaCode:      partidaCode,
		OriginalAmount:   original,
		ExecutedAmount:   executed,
		AvailableAmount:  original.Sub(executed),
		ExecutionPercent: ComputeExecutionPercent(original, executed),
	}
}

// Project suma un gasto prospectivo a lo ejecutado y recalcula disponible y porcentaje.
func Project(exec entity.BudgetExecution, amount decimal.Decimal) entity.BudgetExecution {
	return NewExecution(exec.CompanyID, exec.ProjectID, exec.PartidaCode, exec.OriginalAmount, exec.ExecutedAmount.Add(amount))
}

// NewAlert construye la alerta para la ejecución dada.
func NewAlert(exec entity.BudgetExecution, partidaName string) entity.Alert {
	level := ClassifyExecution(exec.ExecutionPercent)
	return entity.Alert{
		ID:               uuid.New().String(),
		PartidaCode:      exec.PartidaCode,
		PartidaName:      partidaName,
		Level:            level,
		Kind:             KindFor(level),
		Message:          FormatAlertMessage(level, partidaName, exec.ExecutionPercent),
		OriginalAmount:   exec.OriginalAmount,
		ExecutedAmount:   exec.ExecutedAmount,
		AvailableAmount:  exec.AvailableAmount,
		ExecutionPercent: exec.ExecutionPercent,
	}
}
