package voucher

import (
	"context"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con el repositorio de comprobantes atado a ella.
type TxRunner interface {
	RunVoucher(ctx context.Context, fn func(repo repository.VoucherRepository) error) error
}

// BudgetChecker verificación de egresos contra el presupuesto disponible.
type BudgetChecker interface {
	Check(ctx context.Context, companyID, projectID int, lines []budget.CheckLine) (*budget.CheckResult, error)
}
