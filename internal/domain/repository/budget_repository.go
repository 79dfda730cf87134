package repository

import (
	"context"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// BudgetRepository lectura de la ejecución presupuestal por proyecto y partida.
// Lo asignado proviene de budget_allocations; lo ejecutado, de las líneas de
// comprobantes de egreso registrados.
type BudgetRepository interface {
	// GetAvailableBudget devuelve domain.ErrNotFound si la partida no tiene asignación en el proyecto.
	GetAvailableBudget(ctx context.Context, companyID, projectID, partidaCode int) (entity.BudgetExecution, error)
	ListByProject(ctx context.Context, companyID, projectID int) ([]entity.BudgetExecution, error)
}
