package entity

import "github.com/shopspring/decimal"

// BudgetExecution es la ejecución de una partida en un proyecto, tal como la
// devuelve la fuente de verdad de presupuestos. Nunca se modifica localmente.
type BudgetExecution struct {
	CompanyID        int
	ProjectID        int
	PartidaCode      int
	OriginalAmount   decimal.Decimal
	ExecutedAmount   decimal.Decimal
	AvailableAmount  decimal.Decimal // Original - Executed
	ExecutionPercent decimal.Decimal // Executed / Original * 100; 0 si Original = 0
}

// AlertLevel semáforo de ejecución presupuestal.
type AlertLevel string

const (
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertOrange AlertLevel = "orange"
	AlertRed    AlertLevel = "red"
)

// AlertKind severidad con la que se muestra la alerta.
type AlertKind string

const (
	AlertInfo    AlertKind = "info"
	AlertWarning AlertKind = "warning"
	AlertError   AlertKind = "error"
)

// Alert alerta transitoria generada al validar un egreso; no se persiste.
type Alert struct {
	ID               string
	PartidaCode      int
	PartidaName      string
	Level            AlertLevel
	Kind             AlertKind
	Message          string
	OriginalAmount   decimal.Decimal
	ExecutedAmount   decimal.Decimal
	AvailableAmount  decimal.Decimal
	ExecutionPercent decimal.Decimal
}
