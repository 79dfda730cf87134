package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
)

var (
	_ repository.BudgetRepository = (*BudgetRepo)(nil)
	_ budget.BudgetService        = (*BudgetRepo)(nil)
)

// BudgetRepo lee lo asignado (budget_allocations) y lo ejecutado (líneas de
// egresos registrados, en moneda local) por proyecto y partida.
type BudgetRepo struct {
	q Querier
}

// NewBudgetRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBudgetRepository(q Querier) *BudgetRepo {
	return &BudgetRepo{q: q}
}

const executionQuery = `
	SELECT a.partida_code, a.amount,
		COALESCE((
			SELECT SUM(l.net_amount * COALESCE(NULLIF(v.exchange_rate, 0), 1))
			FROM voucher_lines l
			JOIN vouchers v ON v.id = l.voucher_id
			WHERE v.company_id = a.company_id AND v.project_id = a.project_id
				AND l.partida_code = a.partida_code
				AND v.kind <> 'income' AND v.status = 'registered'
		), 0) AS executed
	FROM budget_allocations a
	WHERE a.company_id = $1 AND a.project_id = $2`

// GetAvailableBudget devuelve la ejecución de la partida en el proyecto.
// Sin asignación devuelve domain.ErrNotFound.
func (r *BudgetRepo) GetAvailableBudget(ctx context.Context, companyID, projectID, partidaCode int) (entity.BudgetExecution, error) {
	var code int
	var original, executed decimal.Decimal
	err := r.q.QueryRow(ctx, executionQuery+` AND a.partida_code = $3`, companyID, projectID, partidaCode).
		Scan(&code, &original, &executed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BudgetExecution{}, domain.ErrNotFound
		}
		return entity.BudgetExecution{}, fmt.Errorf("get budget execution: %w", err)
	}
	return domainbudget.NewExecution(companyID, projectID, code, original, executed.Round(2)), nil
}

// ListByProject ejecución de todas las partidas con asignación en el proyecto.
func (r *BudgetRepo) ListByProject(ctx context.Context, companyID, projectID int) ([]entity.BudgetExecution, error) {
	rows, err := r.q.Query(ctx, executionQuery+` ORDER BY a.partida_code`, companyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list budget execution: %w", err)
	}
	defer rows.Close()
	var list []entity.BudgetExecution
	for rows.Next() {
		var code int
		var original, executed decimal.Decimal
		if err := rows.Scan(&code, &original, &executed); err != nil {
			return nil, fmt.Errorf("scan budget execution: %w", err)
		}
		list = append(list, domainbudget.NewExecution(companyID, projectID, code, original, executed.Round(2)))
	}
	return list, rows.Err()
}
