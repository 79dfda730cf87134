package voucher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/application/budget"
	"github.com/jhoicas/presupuesto-api/internal/application/dto"
	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/partida"
	"github.com/jhoicas/presupuesto-api/internal/domain/repository"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
	domainvoucher "github.com/jhoicas/presupuesto-api/internal/domain/voucher"
	"github.com/jhoicas/presupuesto-api/pkg/logger"
)

// ErrBudgetExceeded egreso rechazado porque alguna partida queda en rojo.
var ErrBudgetExceeded = errors.New("presupuesto insuficiente")

// ValidationError errores de validación del comprobante, por campo o regla.
type ValidationError struct {
	Errors Errors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "comprobante inválido: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// UseCase registro, anulación y consulta de comprobantes.
type UseCase struct {
	txRunner  TxRunner
	vouchers  repository.VoucherRepository
	partidas  repository.PartidaRepository
	checker   BudgetChecker
	calc      tax.Calculator
	validator Validator
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	vouchers repository.VoucherRepository,
	partidas repository.PartidaRepository,
	checker BudgetChecker,
	calc tax.Calculator,
	validator Validator,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:  txRunner,
		vouchers:  vouchers,
		partidas:  partidas,
		checker:   checker,
		calc:      calc,
		validator: validator,
		log:       log.Component("vouchers"),
		now:       time.Now,
	}
}

// Submit arma el comprobante, lo valida, verifica el presupuesto de los egresos
// y lo guarda. Con EnforceBudget, un egreso con alguna partida en rojo se
// rechaza con ErrBudgetExceeded; sin él, las alertas solo se informan.
func (uc *UseCase) Submit(ctx context.Context, companyID int, req dto.CreateVoucherRequest) (*dto.VoucherResponse, error) {
	form, err := uc.buildForm(companyID, req)
	if err != nil {
		return nil, err
	}

	errs := uc.validator.Validate(form.State())
	if err := uc.checkPartidas(ctx, form, errs); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	var alerts []entity.Alert
	state := form.State()
	if state.Kind.Flow() == entity.FlowExpense && uc.checker != nil {
		// El presupuesto se ejecuta en moneda local.
		calc := form.Calculator()
		lines := make([]budget.CheckLine, 0, len(state.Lines))
		for _, l := range state.Lines {
			net := calc.ForeignToLocal(l.NetAmount, state.ExchangeRate).NetLocal
			lines = append(lines, budget.CheckLine{PartidaCode: l.PartidaCode, PartidaName: l.PartidaName, NetAmount: net})
		}
		res, err := uc.checker.Check(ctx, companyID, state.ProjectID, lines)
		if err != nil {
			return nil, err
		}
		for _, l := range state.Lines {
			exec, ok := res.Executions[l.PartidaCode]
			if !ok {
				continue
			}
			if err := form.ApplyExecution(l.Sequence, exec); err != nil {
				return nil, err
			}
		}
		if req.EnforceBudget && res.Blocking() {
			return nil, fmt.Errorf("%w: %s", ErrBudgetExceeded, res.ErrorMessage)
		}
		alerts = res.Alerts
	}

	v, err := form.Voucher(uuid.New().String(), uc.now())
	if err != nil {
		return nil, err
	}
	for i := range v.Lines {
		v.Lines[i].ID = uuid.New().String()
	}

	err = uc.txRunner.RunVoucher(ctx, func(repo repository.VoucherRepository) error {
		return repo.Create(ctx, &v)
	})
	if err != nil {
		err = RelabelSaveError(err)
		uc.log.Error().Err(err).Int("company_id", companyID).Str("document", v.DocumentNumber).Msg("no se pudo registrar el comprobante")
		return nil, err
	}
	uc.log.Info().Int("company_id", companyID).Str("id", v.ID).Str("kind", string(v.Kind)).
		Str("total", v.GrandTotal.StringFixed(2)).Int("alerts", len(alerts)).Msg("comprobante registrado")

	resp := toResponse(v)
	if len(alerts) > 0 {
		resp.Alerts = budget.ToAlertResponses(alerts)
	}
	return &resp, nil
}

// buildForm vuelca el request en un formulario usando solo sus mutadores.
func (uc *UseCase) buildForm(companyID int, req dto.CreateVoucherRequest) (*Form, error) {
	form := NewForm(uc.calc)
	docType := req.DocumentType
	if docType == "" {
		docType = entity.DocumentFactura
	}
	rate := req.ExchangeRate
	if rate.IsZero() && strings.EqualFold(strings.TrimSpace(req.Currency), uc.validator.BaseCurrency) {
		rate = decimal.NewFromInt(1)
	}
	type fieldValue struct {
		field Field
		value any
	}
	fields := []fieldValue{
		{FieldCompany, companyID},
		{FieldKind, req.Kind},
		{FieldDocumentType, docType},
		{FieldDocumentNumber, req.DocumentNumber},
		{FieldProject, req.ProjectID},
		{FieldDate, req.Date},
		{FieldProvider, req.ProviderID},
		{FieldClient, req.ClientID},
		{FieldEmployee, req.EmployeeID},
		{FieldCurrency, req.Currency},
		{FieldExchangeRate, rate},
	}
	if req.ManualTaxPercent != nil {
		fields = append(fields, fieldValue{FieldManualTaxPercent, *req.ManualTaxPercent})
	}
	for _, f := range fields {
		if err := form.UpdateField(f.field, f.value); err != nil {
			return nil, err
		}
	}
	for _, l := range req.Lines {
		form.AddLine(entity.VoucherLine{PartidaCode: l.PartidaCode, PartidaName: strings.TrimSpace(l.PartidaName), NetAmount: l.NetAmount})
	}
	return form, nil
}

// checkPartidas exige que cada partida exista en el flujo del comprobante y sea
// del último nivel de su rama; completa el nombre de la partida si falta.
func (uc *UseCase) checkPartidas(ctx context.Context, form *Form, errs Errors) error {
	state := form.State()
	if state.CompanyID == 0 || len(state.Lines) == 0 {
		return nil
	}
	switch state.Kind {
	case entity.KindIncome, entity.KindExpenseProvider, entity.KindExpenseEmployee:
	default:
		return nil
	}
	catalog, err := uc.partidas.ListByCompany(ctx, state.CompanyID)
	if err != nil {
		return fmt.Errorf("listar partidas: %w", err)
	}
	flow := state.Kind.Flow()
	idx := partida.NewIndex(catalog)
	leaves := partida.LeafCodes(catalog, flow)
	for _, l := range state.Lines {
		if l.PartidaCode == 0 {
			continue
		}
		p, ok := idx.Lookup(flow, l.PartidaCode)
		switch {
		case !ok:
			errs[LineErrKey(l.Sequence, "partida")] = fmt.Sprintf("no existe la partida %d de %s", l.PartidaCode, flow.Label())
			continue
		case !leaves[l.PartidaCode]:
			errs[LineErrKey(l.Sequence, "partida")] = fmt.Sprintf("%s (%d - %s)", ErrPartidaNotLeaf.Error(), p.NumericCode, p.Name)
		case !p.Active:
			errs[LineErrKey(l.Sequence, "partida")] = fmt.Sprintf("la partida %d - %s está inactiva", p.NumericCode, p.Name)
		}
		if l.PartidaName == "" {
			name := p.Name
			if err := form.UpdateLine(l.Sequence, LinePatch{PartidaName: &name}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Get devuelve un comprobante de la empresa.
func (uc *UseCase) Get(ctx context.Context, companyID int, id string) (*dto.VoucherResponse, error) {
	v, err := uc.vouchers.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener comprobante: %w", err)
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(*v)
	return &resp, nil
}

// Void anula un comprobante registrado.
func (uc *UseCase) Void(ctx context.Context, companyID int, id string) error {
	v, err := uc.vouchers.GetByID(ctx, companyID, id)
	if err != nil {
		return fmt.Errorf("obtener comprobante: %w", err)
	}
	if v == nil {
		return domain.ErrNotFound
	}
	if v.Status == entity.VoucherStatusVoided {
		return fmt.Errorf("%w: el comprobante ya está anulado", domain.ErrConflict)
	}
	if err := uc.vouchers.UpdateStatus(ctx, companyID, id, entity.VoucherStatusVoided, uc.now()); err != nil {
		return fmt.Errorf("anular comprobante: %w", err)
	}
	uc.log.Info().Int("company_id", companyID).Str("id", id).Msg("comprobante anulado")
	return nil
}

// List comprobantes de la empresa filtrados por proyecto y contraparte
// ("all" o vacío no filtra).
func (uc *UseCase) List(ctx context.Context, companyID int, project, counterparty string) ([]dto.VoucherResponse, error) {
	list, err := uc.vouchers.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listar comprobantes: %w", err)
	}
	list = domainvoucher.FilterByCounterparty(domainvoucher.FilterByProject(list, project), counterparty)
	out := make([]dto.VoucherResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toResponse(v))
	}
	return out, nil
}

func toResponse(v entity.Voucher) dto.VoucherResponse {
	r := dto.VoucherResponse{
		ID:             v.ID,
		CompanyID:      v.CompanyID,
		Kind:           string(v.Kind),
		DocumentType:   v.DocumentType,
		DocumentNumber: v.DocumentNumber,
		ProjectID:      v.ProjectID,
		CounterpartyID: v.CounterpartyID(),
		ProviderID:     v.ProviderID,
		ClientID:       v.ClientID,
		EmployeeID:     v.EmployeeID,
		Date:           v.Date.Format(DateLayout),
		Currency:       v.Currency,
		ExchangeRate:   v.ExchangeRate,
		NetTotal:       v.NetTotal,
		TaxTotal:       v.TaxTotal,
		GrandTotal:     v.GrandTotal,
		Status:         v.Status,
		Lines:          make([]dto.VoucherLineResponse, 0, len(v.Lines)),
	}
	if v.ManualTaxPercent.Valid {
		p := v.ManualTaxPercent.Decimal
		r.ManualTaxPercent = &p
	}
	for _, l := range v.Lines {
		lr := dto.VoucherLineResponse{
			ID:          l.ID,
			Sequence:    l.Sequence,
			PartidaCode: l.PartidaCode,
			PartidaName: l.PartidaName,
			NetAmount:   l.NetAmount,
			TaxAmount:   l.TaxAmount,
			TotalAmount: l.TotalAmount,
			AlertLevel:  string(l.AlertLevel),
		}
		if l.AvailableAmount.Valid {
			a := l.AvailableAmount.Decimal
			lr.AvailableAmount = &a
		}
		if l.ExecutionPercent.Valid {
			p := l.ExecutionPercent.Decimal
			lr.ExecutionPercent = &p
		}
		r.Lines = append(r.Lines, lr)
	}
	return r
}
