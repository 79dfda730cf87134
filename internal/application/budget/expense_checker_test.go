package budget_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

type fakeBudgetService struct {
	mu       sync.Mutex
	execs    map[int]entity.BudgetExecution
	failures map[int]error
	calls    map[int]int
	block    bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newFakeService() *fakeBudgetService {
	return &fakeBudgetService{
		execs:    map[int]entity.BudgetExecution{},
		failures: map[int]error{},
		calls:    map[int]int{},
	}
}

func (f *fakeBudgetService) GetAvailableBudget(ctx context.Context, companyID, projectID, code int) (entity.BudgetExecution, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[code]++
	err, failing := f.failures[code]
	exec, ok := f.execs[code]
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return entity.BudgetExecution{}, ctx.Err()
	}
	time.Sleep(time.Millisecond)
	if failing {
		return entity.BudgetExecution{}, err
	}
	if !ok {
		return entity.BudgetExecution{}, domain.ErrNotFound
	}
	return exec, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpenseChecker_ProyectaYClasifica(t *testing.T) {
	svc := newFakeService()
	svc.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("1000"), dec("700"))  // +100 -> 80% amarillo
	svc.execs[20] = domainbudget.NewExecution(1, 7, 20, dec("1000"), dec("100"))  // +50 -> 15% verde
	svc.execs[30] = domainbudget.NewExecution(1, 7, 30, dec("1000"), dec("950"))  // +60 -> 101% rojo
	checker := budget.NewExpenseChecker(svc, 2, logger.Nop())

	res, err := checker.Check(context.Background(), 1, 7, []budget.CheckLine{
		{PartidaCode: 10, PartidaName: "Cemento", NetAmount: dec("100")},
		{PartidaCode: 20, PartidaName: "Arena", NetAmount: dec("50")},
		{PartidaCode: 30, PartidaName: "Acero", NetAmount: dec("60")},
	})
	require.NoError(t, err)

	require.Len(t, res.Alerts, 2, "las partidas en verde no generan alerta")
	assert.Equal(t, 10, res.Alerts[0].PartidaCode)
	assert.Equal(t, entity.AlertYellow, res.Alerts[0].Level)
	assert.Equal(t, entity.AlertWarning, res.Alerts[0].Kind)
	assert.True(t, res.Alerts[0].ExecutionPercent.Equal(dec("80")))
	assert.Equal(t, 30, res.Alerts[1].PartidaCode)
	assert.Equal(t, entity.AlertRed, res.Alerts[1].Level)
	assert.Equal(t, entity.AlertError, res.Alerts[1].Kind)
	assert.True(t, res.Alerts[1].AvailableAmount.Equal(dec("-10")))

	assert.True(t, res.Blocking())
	assert.Contains(t, res.ErrorMessage, "Acero")
	assert.Len(t, res.Executions, 3)
	assert.True(t, res.Executions[20].ExecutedAmount.Equal(dec("150")))
}

func TestExpenseChecker_AgrupaPorPartida(t *testing.T) {
	svc := newFakeService()
	svc.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("100"), dec("0"))
	checker := budget.NewExpenseChecker(svc, 4, nil)

	res, err := checker.Check(context.Background(), 1, 7, []budget.CheckLine{
		{PartidaCode: 10, PartidaName: "Cemento", NetAmount: dec("40")},
		{PartidaCode: 10, NetAmount: dec("40")},
		{PartidaCode: 0, NetAmount: dec("999")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.calls[10], "una sola consulta por partida")
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, entity.AlertYellow, res.Alerts[0].Level)
	assert.Equal(t, "Cemento", res.Alerts[0].PartidaName)
	assert.False(t, res.Blocking())
}

func TestExpenseChecker_FalloDeConsultaNoGeneraAlerta(t *testing.T) {
	svc := newFakeService()
	svc.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("100"), dec("100"))
	svc.failures[20] = errors.New("connection refused")
	var buf bytes.Buffer
	checker := budget.NewExpenseChecker(svc, 1, logger.NewWithWriter(&buf, "debug"))

	res, err := checker.Check(context.Background(), 1, 7, []budget.CheckLine{
		{PartidaCode: 10, PartidaName: "Cemento", NetAmount: dec("1")},
		{PartidaCode: 20, PartidaName: "Arena", NetAmount: dec("1")},
		{PartidaCode: 99, PartidaName: "Sin asignación", NetAmount: dec("1")},
	})
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, 10, res.Alerts[0].PartidaCode)
	assert.Equal(t, 1, svc.calls[20], "sin reintentos")
	assert.Contains(t, buf.String(), "connection refused")
	assert.Contains(t, buf.String(), `"partida":20`)
}

func TestExpenseChecker_CancelacionDescartaResultado(t *testing.T) {
	svc := newFakeService()
	svc.block = true
	checker := budget.NewExpenseChecker(svc, 2, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res, err := checker.Check(ctx, 1, 7, []budget.CheckLine{
		{PartidaCode: 10, NetAmount: dec("1")},
		{PartidaCode: 20, NetAmount: dec("1")},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestExpenseChecker_RespetaLimiteDeConcurrencia(t *testing.T) {
	svc := newFakeService()
	var lines []budget.CheckLine
	for code := 1; code <= 12; code++ {
		svc.execs[code] = domainbudget.NewExecution(1, 7, code, dec("100"), dec("0"))
		lines = append(lines, budget.CheckLine{PartidaCode: code, NetAmount: dec("1")})
	}
	checker := budget.NewExpenseChecker(svc, 3, logger.Nop())

	res, err := checker.Check(context.Background(), 1, 7, lines)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	assert.Len(t, res.Executions, 12)
	assert.LessOrEqual(t, svc.maxSeen.Load(), int32(3))
}

func TestExpenseChecker_SinLineas(t *testing.T) {
	checker := budget.NewExpenseChecker(newFakeService(), 0, nil)
	res, err := checker.Check(context.Background(), 1, 7, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
	assert.Empty(t, res.ErrorMessage)
}

func TestCheckExpense_ValidaRequest(t *testing.T) {
	checker := budget.NewExpenseChecker(newFakeService(), 1, nil)
	_, err := checker.CheckExpense(context.Background(), 1, dto.BudgetCheckRequest{ProjectID: 7})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = checker.CheckExpense(context.Background(), 1, dto.BudgetCheckRequest{
		ProjectID: 7,
		Lines:     []dto.BudgetCheckLine{{PartidaCode: 10, NetAmount: dec("-1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckExpense_AlertasNuncaNil(t *testing.T) {
	svc := newFakeService()
	svc.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("100"), dec("0"))
	checker := budget.NewExpenseChecker(svc, 1, nil)

	res, err := checker.CheckExpense(context.Background(), 1, dto.BudgetCheckRequest{
		ProjectID: 7,
		Lines:     []dto.BudgetCheckLine{{PartidaCode: 10, NetAmount: dec("1")}},
	})
	require.NoError(t, err)
	assert.NotNil(t, res.Alerts)
	assert.Empty(t, res.Alerts)
}
