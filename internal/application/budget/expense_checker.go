// Package budget consulta la ejecución presupuestal de las partidas de un
// egreso y arma las alertas del semáforo.
package budget

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

// DefaultLookupConcurrency consultas simultáneas al servicio de presupuesto.
const DefaultLookupConcurrency = 4

// CheckLine gasto prospectivo sobre una partida.
type CheckLine struct {
	PartidaCode int
	PartidaName string
	NetAmount   decimal.Decimal
}

// CheckResult alertas generadas; ErrorMessage no vacío si alguna partida excede su presupuesto.
type CheckResult struct {
	Alerts       []entity.Alert
	Executions   map[int]entity.BudgetExecution // ejecución proyectada por código
	ErrorMessage string
}

// Blocking indica si alguna alerta es roja.
func (r *CheckResult) Blocking() bool {
	return r != nil && r.ErrorMessage != ""
}

// ExpenseChecker valida un egreso contra el presupuesto disponible.
type ExpenseChecker struct {
	svc         BudgetService
	concurrency int
	log         *logger.Logger
}

// NewExpenseChecker construye el verificador. concurrency < 1 usa DefaultLookupConcurrency.
func NewExpenseChecker(svc BudgetService, concurrency int, log *logger.Logger) *ExpenseChecker {
	if concurrency < 1 {
		concurrency = DefaultLookupConcurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExpenseChecker{svc: svc, concurrency: concurrency, log: log.Component("expense_checker")}
}

type codeTotal struct {
	code int
	name string
	net  decimal.Decimal
}

// Check consulta la ejecución de cada partida distinta, le suma el neto del
// egreso y clasifica el resultado. Solo se generan alertas amarillas o peores.
//
// Si una consulta falla, esa partida queda sin alerta y se registra el error.
// Si ctx se cancela se devuelve ctx.Err() y ningún resultado. No hay reintentos.
func (c *ExpenseChecker) Check(ctx context.Context, companyID, projectID int, lines []CheckLine) (*CheckResult, error) {
	totals := groupByCode(lines)

	executions := make([]*entity.BudgetExecution, len(totals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, t := range totals {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			exec, err := c.svc.GetAvailableBudget(gctx, companyID, projectID, t.code)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				ev := c.log.Warn()
				if errors.Is(err, domain.ErrNotFound) {
					ev = c.log.Debug()
				}
				ev.Err(err).Int("company_id", companyID).Int("project_id", projectID).
					Int("partida", t.code).Msg("sin información de presupuesto para la partida")
				return nil
			}
			projected := domainbudget.Project(exec, t.net)
			executions[i] = &projected
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &CheckResult{Executions: make(map[int]entity.BudgetExecution, len(totals))}
	var exceeded []string
	for i, t := range totals {
		exec := executions[i]
		if exec == nil {
			continue
		}
		res.Executions[t.code] = *exec
		alert := domainbudget.NewAlert(*exec, t.name)
		if alert.Level == entity.AlertGreen {
			continue
		}
		res.Alerts = append(res.Alerts, alert)
		if alert.Level == entity.AlertRed {
			exceeded = append(exceeded, t.name)
		}
	}
	if len(exceeded) > 0 {
		res.ErrorMessage = exceededMessage(exceeded)
	}
	return res, nil
}

// groupByCode suma el neto por partida conservando el orden de primera aparición.
// Las líneas sin partida se ignoran.
func groupByCode(lines []CheckLine) []codeTotal {
	idx := make(map[int]int, len(lines))
	var out []codeTotal
	for _, l := range lines {
		if l.PartidaCode == 0 {
			continue
		}
		if i, ok := idx[l.PartidaCode]; ok {
			out[i].net = out[i].net.Add(l.NetAmount)
			if out[i].name == "" {
				out[i].name = l.PartidaName
			}
			continue
		}
		idx[l.PartidaCode] = len(out)
		out = append(out, codeTotal{code: l.PartidaCode, name: l.PartidaName, net: l.NetAmount})
	}
	return out
}

func exceededMessage(names []string) string {
	if len(names) == 1 {
		return "Presupuesto insuficiente en la partida " + names[0]
	}
	return "Presupuesto insuficiente en las partidas " + strings.Join(names, ", ")
}
