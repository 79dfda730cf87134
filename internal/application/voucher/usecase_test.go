package voucher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

type memVoucherRepo struct {
	items     []entity.Voucher
	createErr error
}

func (m *memVoucherRepo) Create(_ context.Context, v *entity.Voucher) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items = append(m.items, *v)
	return nil
}

func (m *memVoucherRepo) GetByID(_ context.Context, companyID int, id string) (*entity.Voucher, error) {
	for _, v := range m.items {
		if v.ID == id && v.CompanyID == companyID {
			cp := v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memVoucherRepo) ListByCompany(_ context.Context, companyID int) ([]entity.Voucher, error) {
	var out []entity.Voucher
	for _, v := range m.items {
		if v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVoucherRepo) UpdateStatus(_ context.Context, companyID int, id, status string, at time.Time) error {
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].CompanyID == companyID {
			m.items[i].Status = status
			m.items[i].UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}

type memTx struct {
	repo *memVoucherRepo
	runs int
}

func (m *memTx) RunVoucher(_ context.Context, fn func(repo repository.VoucherRepository) error) error {
	m.runs++
	return fn(m.repo)
}

type catalogRepo struct{ items []entity.Partida }

func (c *catalogRepo) Create(context.Context, *entity.Partida) error { return nil }
func (c *catalogRepo) Update(context.Context, *entity.Partida) error { return nil }
func (c *catalogRepo) GetByID(context.Context, int, string) (*entity.Partida, error) {
	return nil, nil
}
func (c *catalogRepo) ListByCompany(context.Context, int) ([]entity.Partida, error) {
	return c.items, nil
}

type execService map[int]entity.BudgetExecution

func (s execService) GetAvailableBudget(_ context.Context, _, _, code int) (entity.BudgetExecution, error) {
	if e, ok := s[code]; ok {
		return e, nil
	}
	return entity.BudgetExecution{}, domain.ErrNotFound
}

type failingChecker struct{ err error }

func (f failingChecker) Check(context.Context, int, int, []budget.CheckLine) (*budget.CheckResult, error) {
	return nil, f.err
}

func catalog() *catalogRepo {
	return &catalogRepo{items: []entity.Partida{
		{CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 1, Name: "Materiales", Level: 1, Active: true},
		{CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 10, Name: "Cemento", Level: 2, ParentNumericCode: 1, Active: true},
		{CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 11, Name: "Acero", Level: 2, ParentNumericCode: 1, Active: true},
		{CompanyID: 1, FlowType: entity.FlowExpense, NumericCode: 12, Name: "Madera", Level: 2, ParentNumericCode: 1, Active: false},
		{CompanyID: 1, FlowType: entity.FlowIncome, NumericCode: 1, Name: "Valorizaciones", Level: 1, Active: true},
	}}
}

type fixture struct {
	uc    *voucher.UseCase
	repo  *memVoucherRepo
	tx    *memTx
	execs execService
}

func newFixture(checker voucher.BudgetChecker) *fixture {
	repo := &memVoucherRepo{}
	tx := &memTx{repo: repo}
	execs := execService{}
	if checker == nil {
		checker = budget.NewExpenseChecker(execs, 2, logger.Nop())
	}
	v := voucher.NewValidator("PEN", voucher.DefaultMaxLineAmount)
	v.Now = fixedNow
	return &fixture{
		uc:    voucher.NewUseCase(tx, repo, catalog(), checker, tax.Default(), v, logger.Nop()),
		repo:  repo,
		tx:    tx,
		execs: execs,
	}
}

func expenseRequest() dto.CreateVoucherRequest {
	return dto.CreateVoucherRequest{
		Kind:           string(entity.KindExpenseProvider),
		DocumentNumber: "F001-77",
		ProjectID:      7,
		Date:           "2026-10-01",
		ProviderID:     3,
		Currency:       "PEN",
		Lines: []dto.VoucherLineRequest{
			{PartidaCode: 10, NetAmount: dec("1000")},
			{PartidaCode: 11, PartidaName: "Acero corrugado", NetAmount: dec("500")},
		},
	}
}

func TestSubmit_RegistraEgresoConAlertas(t *testing.T) {
	fx := newFixture(nil)
	fx.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("10000"), dec("7000")) // +1000 -> 80%
	fx.execs[11] = domainbudget.NewExecution(1, 7, 11, dec("10000"), dec("0"))

	got, err := fx.uc.Submit(context.Background(), 1, expenseRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, fx.tx.runs)
	require.Len(t, fx.repo.items, 1)
	saved := fx.repo.items[0]
	assert.Equal(t, entity.DocumentFactura, saved.DocumentType)
	assert.True(t, saved.ExchangeRate.Equal(dec("1")))
	assert.Equal(t, "1770.00", saved.GrandTotal.StringFixed(2))
	assert.Equal(t, "Cemento", saved.Lines[0].PartidaName, "el nombre se completa desde el catálogo")
	assert.Equal(t, "Acero corrugado", saved.Lines[1].PartidaName)
	assert.NotEmpty(t, saved.Lines[0].ID)
	assert.Equal(t, entity.AlertYellow, saved.Lines[0].AlertLevel)
	assert.Equal(t, entity.AlertGreen, saved.Lines[1].AlertLevel)

	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, 3, got.CounterpartyID)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "yellow", got.Alerts[0].Level)
}

func TestSubmit_PresupuestoExcedido(t *testing.T) {
	fx := newFixture(nil)
	fx.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("1000"), dec("500"))

	req := expenseRequest()
	req.EnforceBudget = true
	_, err := fx.uc.Submit(context.Background(), 1, req)
	assert.ErrorIs(t, err, voucher.ErrBudgetExceeded)
	assert.Contains(t, err.Error(), "Cemento")
	assert.Empty(t, fx.repo.items)

	req.EnforceBudget = false
	got, err := fx.uc.Submit(context.Background(), 1, req)
	require.NoError(t, err)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "error", got.Alerts[0].Kind)
}

func TestSubmit_EgresoEnDolaresSeProyectaEnMonedaLocal(t *testing.T) {
	fx := newFixture(nil)
	fx.execs[10] = domainbudget.NewExecution(1, 7, 10, dec("10000"), dec("5000"))

	req := expenseRequest()
	req.Currency = "USD"
	req.ExchangeRate = dec("3.75")
	req.Lines = []dto.VoucherLineRequest{{PartidaCode: 10, NetAmount: dec("2000")}} // 7500 PEN -> 125%
	req.EnforceBudget = true

	_, err := fx.uc.Submit(context.Background(), 1, req)
	assert.ErrorIs(t, err, voucher.ErrBudgetExceeded)
	assert.Empty(t, fx.repo.items)

	req.EnforceBudget = false
	got, err := fx.uc.Submit(context.Background(), 1, req)
	require.NoError(t, err)
	require.Len(t, fx.repo.items, 1)
	line := fx.repo.items[0].Lines[0]
	assert.Equal(t, entity.AlertRed, line.AlertLevel)
	require.True(t, line.ExecutionPercent.Valid)
	assert.Equal(t, "125.00", line.ExecutionPercent.Decimal.StringFixed(2))
	assert.Equal(t, "-2500.00", line.AvailableAmount.Decimal.StringFixed(2))
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "error", got.Alerts[0].Kind)
}

func TestSubmit_ErroresDeValidacion(t *testing.T) {
	fx := newFixture(nil)
	req := expenseRequest()
	req.ProviderID = 0
	req.Lines = append(req.Lines,
		dto.VoucherLineRequest{PartidaCode: 1, NetAmount: dec("5")},
		dto.VoucherLineRequest{PartidaCode: 12, NetAmount: dec("5")},
		dto.VoucherLineRequest{PartidaCode: 99, NetAmount: dec("5")},
	)

	_, err := fx.uc.Submit(context.Background(), 1, req)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *voucher.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Errors, voucher.ErrKeyCounterparty)
	assert.Contains(t, verr.Errors[voucher.LineErrKey(3, "partida")], voucher.ErrPartidaNotLeaf.Error())
	assert.Contains(t, verr.Errors[voucher.LineErrKey(4, "partida")], "inactiva")
	assert.Contains(t, verr.Errors[voucher.LineErrKey(5, "partida")], "no existe")
	assert.Zero(t, fx.tx.runs)
}

func TestSubmit_IngresoNoConsultaPresupuesto(t *testing.T) {
	fx := newFixture(failingChecker{err: errors.New("no debería llamarse")})
	got, err := fx.uc.Submit(context.Background(), 1, dto.CreateVoucherRequest{
		Kind:           string(entity.KindIncome),
		DocumentNumber: "E001-1",
		ProjectID:      7,
		Date:           "2026-10-15",
		ClientID:       8,
		Currency:       "USD",
		ExchangeRate:   dec("3.80"),
		Lines:          []dto.VoucherLineRequest{{PartidaCode: 1, NetAmount: dec("100")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, got.CounterpartyID)
	assert.Equal(t, "Valorizaciones", got.Lines[0].PartidaName)
	assert.Empty(t, got.Alerts)
}

func TestSubmit_ReciboConPorcentajeManual(t *testing.T) {
	fx := newFixture(nil)
	req := expenseRequest()
	req.DocumentType = entity.DocumentReciboHonorarios
	req.ManualTaxPercent = ptr(dec("8"))
	req.Lines = req.Lines[:1]

	got, err := fx.uc.Submit(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, "1080.00", got.GrandTotal.StringFixed(2))
	require.NotNil(t, got.ManualTaxPercent)
	assert.True(t, got.ManualTaxPercent.Equal(dec("8")))
}

func TestSubmit_CancelacionNoGuarda(t *testing.T) {
	fx := newFixture(failingChecker{err: context.Canceled})
	_, err := fx.uc.Submit(context.Background(), 1, expenseRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fx.tx.runs)
}

func TestSubmit_ReetiquetaErrorDeGuardado(t *testing.T) {
	fx := newFixture(nil)
	fx.repo.createErr = errors.New("ERROR: partida duplicada (SQLSTATE P0001)")
	_, err := fx.uc.Submit(context.Background(), 1, expenseRequest())
	assert.ErrorIs(t, err, voucher.ErrPartidaDuplicated)
}

func TestVoidYList(t *testing.T) {
	fx := newFixture(nil)
	first, err := fx.uc.Submit(context.Background(), 1, expenseRequest())
	require.NoError(t, err)

	req := expenseRequest()
	req.ProjectID = 8
	req.ProviderID = 0
	req.Kind = string(entity.KindExpenseEmployee)
	req.EmployeeID = 5
	_, err = fx.uc.Submit(context.Background(), 1, req)
	require.NoError(t, err)

	all, err := fx.uc.List(context.Background(), 1, "all", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byProject, err := fx.uc.List(context.Background(), 1, "8", "all")
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, 5, byProject[0].CounterpartyID)

	byEmployee, err := fx.uc.List(context.Background(), 1, "", "5")
	require.NoError(t, err)
	assert.Len(t, byEmployee, 1)

	require.NoError(t, fx.uc.Void(context.Background(), 1, first.ID))
	got, err := fx.uc.Get(context.Background(), 1, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VoucherStatusVoided, got.Status)

	assert.ErrorIs(t, fx.uc.Void(context.Background(), 1, first.ID), domain.ErrConflict)
	assert.ErrorIs(t, fx.uc.Void(context.Background(), 2, first.ID), domain.ErrNotFound)
	_, err = fx.uc.Get(context.Background(), 1, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
