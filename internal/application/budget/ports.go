package budget

import (
	"context"
	"time"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// BudgetService fuente de verdad de la ejecución presupuestal. El motor nunca
// calcula asignado ni ejecutado por su cuenta.
type BudgetService interface {
	GetAvailableBudget(ctx context.Context, companyID, projectID, partidaCode int) (entity.BudgetExecution, error)
}

// ReportRow partida del reporte con su ejecución, si la tiene.
type ReportRow struct {
	Partida      entity.EnrichedPartida
	Execution    entity.BudgetExecution
	HasExecution bool
	Level        entity.AlertLevel
}

// ExecutionReport datos del reporte de ejecución de un proyecto, ya ordenados jerárquicamente.
type ExecutionReport struct {
	CompanyID   int
	ProjectID   int
	GeneratedAt time.Time
	Rows        []ReportRow
}

// ExecutionReportGenerator genera la representación PDF del reporte.
type ExecutionReportGenerator interface {
	GenerateExecutionReport(ctx context.Context, report ExecutionReport) ([]byte, error)
}
