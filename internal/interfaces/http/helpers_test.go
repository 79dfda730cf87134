package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/partida"
	"github.com/jhoicas/presupuesto-api/internal/application/voucher"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
	"github.com/jhoicas/presupuesto-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/presupuesto-api/internal/interfaces/http"
	"github.com/jhoicas/presupuesto-api/pkg/jwt"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = 1
	testIssuer    = "presupuesto-api-test"
	testExpMin    = 60
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// tokenForRole genera un header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memPartidas struct {
	mu    sync.Mutex
	items []entity.Partida
}

func (m *memPartidas) Create(_ context.Context, p *entity.Partida) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *p)
	return nil
}

func (m *memPartidas) Update(_ context.Context, p *entity.Partida) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i] = *p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memPartidas) GetByID(_ context.Context, companyID int, id string) (*entity.Partida, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID == id && p.CompanyID == companyID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memPartidas) ListByCompany(_ context.Context, companyID int) ([]entity.Partida, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Partida
	for _, p := range m.items {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memVouchers struct {
	mu    sync.Mutex
	items []entity.Voucher
}

func (m *memVouchers) Create(_ context.Context, v *entity.Voucher) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *v)
	return nil
}

func (m *memVouchers) GetByID(_ context.Context, companyID int, id string) (*entity.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.items {
		if v.ID == id && v.CompanyID == companyID {
			cp := v
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memVouchers) ListByCompany(_ context.Context, companyID int) ([]entity.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Voucher
	for _, v := range m.items {
		if v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memVouchers) UpdateStatus(_ context.Context, companyID int, id, status string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].CompanyID == companyID {
			m.items[i].Status = status
			m.items[i].UpdatedAt = at
			return nil
		}
	}
	return domain.ErrNotFound
}

type memTx struct{ repo *memVouchers }

func (m memTx) RunVoucher(_ context.Context, fn func(repo repository.VoucherRepository) error) error {
	return fn(m.repo)
}

// memBudget ejecución por código de partida de un único proyecto.
type memBudget map[int]entity.BudgetExecution

func (b memBudget) GetAvailableBudget(_ context.Context, _, _, code int) (entity.BudgetExecution, error) {
	if e, ok := b[code]; ok {
		return e, nil
	}
	return entity.BudgetExecution{}, domain.ErrNotFound
}

func (b memBudget) ListByProject(context.Context, int, int) ([]entity.BudgetExecution, error) {
	out := make([]entity.BudgetExecution, 0, len(b))
	for _, e := range b {
		out = append(out, e)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// App de prueba
// ──────────────────────────────────────────────────────────────────────────────

type testEnv struct {
	app      *fiber.App
	partidas *memPartidas
	vouchers *memVouchers
	budget   memBudget
}

func newTestEnv() *testEnv {
	partidas := &memPartidas{items: []entity.Partida{
		{ID: "p-1", CompanyID: testCompanyID, FlowType: entity.FlowExpense, NumericCode: 1, Name: "Materiales", Level: 1, Active: true},
		{ID: "p-10", CompanyID: testCompanyID, FlowType: entity.FlowExpense, NumericCode: 10, AlphaCode: "CEM", Name: "Cemento", Level: 2, ParentNumericCode: 1, Active: true},
		{ID: "p-i1", CompanyID: testCompanyID, FlowType: entity.FlowIncome, NumericCode: 1, Name: "Valorizaciones", Level: 1, Active: true},
	}}
	vouchers := &memVouchers{}
	execs := memBudget{}
	log := logger.Nop()

	checker := budget.NewExpenseChecker(execs, 2, log)
	calc := tax.Default()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		PartidaUC:      partida.NewUseCase(partidas, log),
		VoucherUC:      voucher.NewUseCase(memTx{repo: vouchers}, vouchers, partidas, checker, calc, voucher.NewValidator("PEN", decimal.Zero), log),
		ExpenseChecker: checker,
		ReportUC:       budget.NewReportUseCase(partidas, execs, pdf.NewMarotoReportGenerator()),
		TaxCalculator:  calc,
		JWTSecret:      testJWTSecret,
	})
	return &testEnv{app: app, partidas: partidas, vouchers: vouchers, budget: execs}
}

// do lanza la petición con el rol indicado ("" = sin Authorization) y body JSON opcional.
func (e *testEnv) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
