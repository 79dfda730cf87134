// Package voucher contiene el estado del formulario de comprobantes, sus
// validaciones y el caso de uso de registro.
package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/domain"
	"github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
	"github.com/jhoicas/presupuesto-api/internal/domain/tax"
)

// DateLayout formato de fecha del documento.
const DateLayout = "2006-01-02"

// Field campo de cabecera modificable con UpdateField.
type Field string

const (
	FieldCompany          Field = "company"
	FieldKind             Field = "kind"
	FieldDocumentType     Field = "document_type"
	FieldDocumentNumber   Field = "document_number"
	FieldProject          Field = "project"
	FieldDate             Field = "date"
	FieldProvider         Field = "provider"
	FieldClient           Field = "client"
	FieldEmployee         Field = "employee"
	FieldCurrency         Field = "currency"
	FieldExchangeRate     Field = "exchange_rate"
	FieldManualTaxPercent Field = "manual_tax_percent"
)

// Header cabecera del comprobante en edición.
type Header struct {
	CompanyID        int
	Kind             entity.VoucherKind
	DocumentType     string
	DocumentNumber   string
	ProjectID        int
	Date             string // YYYY-MM-DD
	ProviderID       int
	ClientID         int
	EmployeeID       int
	Currency         string
	ExchangeRate     decimal.Decimal
	ManualTaxPercent decimal.NullDecimal
}

// State foto del formulario. Los totales siempre se derivan de las líneas
// salvo en un formulario recién hidratado, que conserva los persistidos.
type State struct {
	Header
	Lines      []entity.VoucherLine
	NetTotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	GrandTotal decimal.Decimal
}

// LinePatch cambios parciales a una línea; los campos nil no se tocan.
type LinePatch struct {
	PartidaCode *int
	PartidaName *string
	NetAmount   *decimal.Decimal
}

// Form sesión de edición de un comprobante. Todo cambio pasa por sus métodos
// para mantener consistentes los totales y el indicador dirty.
// No es segura para uso concurrente: cada mutador lee y escribe el estado.
type Form struct {
	state State
	calc  tax.Calculator
	dirty bool
}

// NewForm crea un formulario vacío. calc es la calculadora general (IGV).
func NewForm(calc tax.Calculator) *Form {
	return &Form{calc: calc}
}

// NewFormFromVoucher hidrata el formulario desde un comprobante persistido.
func NewFormFromVoucher(v entity.Voucher, calc tax.Calculator) *Form {
	f := &Form{calc: calc}
	f.state.Header = Header{
		CompanyID:        v.CompanyID,
		Kind:             v.Kind,
		DocumentType:     v.DocumentType,
		DocumentNumber:   v.DocumentNumber,
		ProjectID:        v.ProjectID,
		ProviderID:       v.ProviderID,
		ClientID:         v.ClientID,
		EmployeeID:       v.EmployeeID,
		Currency:         v.Currency,
		ExchangeRate:     v.ExchangeRate,
		ManualTaxPercent: v.ManualTaxPercent,
	}
	if !v.Date.IsZero() {
		f.state.Date = v.Date.Format(DateLayout)
	}
	f.state.Lines = append([]entity.VoucherLine(nil), v.Lines...)
	f.state.NetTotal = v.NetTotal
	f.state.TaxTotal = v.TaxTotal
	f.state.GrandTotal = v.GrandTotal
	return f
}

// State copia del estado actual.
func (f *Form) State() State {
	s := f.state
	s.Lines = append([]entity.VoucherLine(nil), f.state.Lines...)
	return s
}

// Dirty indica si hubo algún cambio desde la creación o hidratación.
func (f *Form) Dirty() bool { return f.dirty }

// Totals totales de cabecera.
func (f *Form) Totals() tax.Amounts {
	return tax.Amounts{Net: f.state.NetTotal, Tax: f.state.TaxTotal, Total: f.state.GrandTotal}
}

// LocalTotals totales convertidos a moneda local con el tipo de cambio de cabecera.
func (f *Form) LocalTotals() tax.Conversion {
	rate := f.state.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	return tax.Conversion{
		NetForeign:   f.state.NetTotal,
		TaxForeign:   f.state.TaxTotal,
		TotalForeign: f.state.GrandTotal,
		NetLocal:     f.state.NetTotal.Mul(rate).Round(2),
		TaxLocal:     f.state.TaxTotal.Mul(rate).Round(2),
		TotalLocal:   f.state.GrandTotal.Mul(rate).Round(2),
	}
}

// Calculator calculadora efectiva: en recibos con porcentaje manual se usa ese porcentaje.
func (f *Form) Calculator() tax.Calculator {
	if entity.IsReceipt(f.state.DocumentType) && f.state.ManualTaxPercent.Valid {
		return tax.WithPercent(f.state.ManualTaxPercent.Decimal)
	}
	return f.calc
}

// AddLine agrega una línea con la siguiente secuencia (máxima + 1, o 1) y
// deriva impuesto y total desde el neto. Devuelve la secuencia asignada.
func (f *Form) AddLine(line entity.VoucherLine) int {
	next := 1
	for _, l := range f.state.Lines {
		if l.Sequence >= next {
			next = l.Sequence + 1
		}
	}
	line.Sequence = next
	f.applyAmounts(&line)
	f.state.Lines = append(f.state.Lines, line)
	f.touch()
	return next
}

// UpdateLine aplica patch a la línea con esa secuencia.
func (f *Form) UpdateLine(sequence int, patch LinePatch) error {
	i := f.lineIndex(sequence)
	if i < 0 {
		return fmt.Errorf("línea %d: %w", sequence, domain.ErrNotFound)
	}
	line := &f.state.Lines[i]
	if patch.PartidaCode != nil && *patch.PartidaCode != line.PartidaCode {
		line.PartidaCode = *patch.PartidaCode
		// La foto de presupuesto pertenecía a la partida anterior.
		line.AvailableAmount = decimal.NullDecimal{}
		line.ExecutionPercent = decimal.NullDecimal{}
		line.AlertLevel = ""
	}
	if patch.PartidaName != nil {
		line.PartidaName = *patch.PartidaName
	}
	if patch.NetAmount != nil {
		line.NetAmount = *patch.NetAmount
	}
	f.applyAmounts(line)
	f.touch()
	return nil
}

// RemoveLine elimina la línea con esa secuencia. Las demás conservan la suya.
func (f *Form) RemoveLine(sequence int) error {
	i := f.lineIndex(sequence)
	if i < 0 {
		return fmt.Errorf("línea %d: %w", sequence, domain.ErrNotFound)
	}
	f.state.Lines = append(f.state.Lines[:i], f.state.Lines[i+1:]...)
	f.touch()
	return nil
}

// ApplyExecution guarda en la línea la foto del presupuesto de su partida.
func (f *Form) ApplyExecution(sequence int, exec entity.BudgetExecution) error {
	i := f.lineIndex(sequence)
	if i < 0 {
		return fmt.Errorf("línea %d: %w", sequence, domain.ErrNotFound)
	}
	line := &f.state.Lines[i]
	line.AvailableAmount = decimal.NewNullDecimal(exec.AvailableAmount)
	line.ExecutionPercent = decimal.NewNullDecimal(exec.ExecutionPercent)
	line.AlertLevel = budget.ClassifyExecution(exec.ExecutionPercent)
	f.dirty = true
	return nil
}

// UpdateField asigna un campo de cabecera. value debe tener el tipo del campo:
// int para ids, string para textos y fecha, decimal.Decimal para tipo de cambio,
// decimal.Decimal o nil para el porcentaje manual, entity.VoucherKind o string para kind.
func (f *Form) UpdateField(field Field, value any) error {
	h := &f.state.Header
	var err error
	switch field {
	case FieldCompany:
		err = setInt(&h.CompanyID, value)
	case FieldProject:
		err = setInt(&h.ProjectID, value)
	case FieldProvider:
		err = setInt(&h.ProviderID, value)
	case FieldClient:
		err = setInt(&h.ClientID, value)
	case FieldEmployee:
		err = setInt(&h.EmployeeID, value)
	case FieldDocumentNumber:
		err = setString(&h.DocumentNumber, value)
	case FieldDate:
		err = setString(&h.Date, value)
	case FieldCurrency:
		err = setString(&h.Currency, value)
		h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	case FieldDocumentType:
		err = setString(&h.DocumentType, value)
	case FieldKind:
		switch v := value.(type) {
		case entity.VoucherKind:
			h.Kind = v
		case string:
			h.Kind = entity.VoucherKind(v)
		default:
			err = wrongType(field, value)
		}
	case FieldExchangeRate:
		v, ok := value.(decimal.Decimal)
		if !ok {
			err = wrongType(field, value)
			break
		}
		h.ExchangeRate = v
	case FieldManualTaxPercent:
		switch v := value.(type) {
		case nil:
			h.ManualTaxPercent = decimal.NullDecimal{}
		case decimal.Decimal:
			h.ManualTaxPercent = decimal.NewNullDecimal(v)
		case decimal.NullDecimal:
			h.ManualTaxPercent = v
		default:
			err = wrongType(field, value)
		}
	default:
		return fmt.Errorf("campo %q desconocido: %w", field, domain.ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	if field == FieldDocumentType || field == FieldManualTaxPercent {
		for i := range f.state.Lines {
			f.applyAmounts(&f.state.Lines[i])
		}
	}
	f.touch()
	return nil
}

func (f *Form) applyAmounts(line *entity.VoucherLine) {
	a := f.Calculator().FromNet(line.NetAmount)
	line.NetAmount, line.TaxAmount, line.TotalAmount = a.Net, a.Tax, a.Total
}

// touch recalcula los totales de cabecera y marca el formulario como modificado.
func (f *Form) touch() {
	amounts := make([]tax.Amounts, len(f.state.Lines))
	for i, l := range f.state.Lines {
		amounts[i] = tax.Amounts{Net: l.NetAmount, Tax: l.TaxAmount, Total: l.TotalAmount}
	}
	sum := tax.Aggregate(amounts)
	f.state.NetTotal, f.state.TaxTotal, f.state.GrandTotal = sum.Net, sum.Tax, sum.Total
	f.dirty = true
}

func (f *Form) lineIndex(sequence int) int {
	for i, l := range f.state.Lines {
		if l.Sequence == sequence {
			return i
		}
	}
	return -1
}

// Voucher arma la entidad a persistir a partir del estado actual.
func (f *Form) Voucher(id string, now time.Time) (entity.Voucher, error) {
	date, err := time.Parse(DateLayout, f.state.Date)
	if err != nil {
		return entity.Voucher{}, fmt.Errorf("fecha %q: %w", f.state.Date, domain.ErrInvalidInput)
	}
	s := f.State()
	lines := s.Lines
	for i := range lines {
		lines[i].VoucherID = id
	}
	return entity.Voucher{
		ID:               id,
		CompanyID:        s.CompanyID,
		Kind:             s.Kind,
		DocumentType:     s.DocumentType,
		DocumentNumber:   strings.TrimSpace(s.DocumentNumber),
		ProjectID:        s.ProjectID,
		ProviderID:       s.ProviderID,
		ClientID:         s.ClientID,
		EmployeeID:       s.EmployeeID,
		Date:             date,
		Currency:         s.Currency,
		ExchangeRate:     s.ExchangeRate,
		ManualTaxPercent: s.ManualTaxPercent,
		NetTotal:         s.NetTotal,
		TaxTotal:         s.TaxTotal,
		GrandTotal:       s.GrandTotal,
		Status:           entity.VoucherStatusRegistered,
		Lines:            lines,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func setInt(dst *int, value any) error {
	v, ok := value.(int)
	if !ok {
		return fmt.Errorf("se esperaba un entero, llegó %T: %w", value, domain.ErrInvalidInput)
	}
	*dst = v
	return nil
}

func setString(dst *string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("se esperaba texto, llegó %T: %w", value, domain.ErrInvalidInput)
	}
	*dst = v
	return nil
}

func wrongType(field Field, value any) error {
	return fmt.Errorf("campo %q: tipo %T no admitido: %w", field, value, domain.ErrInvalidInput)
}
