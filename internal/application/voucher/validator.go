package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

// Claves del mapa de errores.
const (
	ErrKeyCompany          = "company"
	ErrKeyKind             = "kind"
	ErrKeyDocumentNumber   = "document_number"
	ErrKeyProject          = "project"
	ErrKeyDate             = "date"
	ErrKeyCounterparty     = "counterparty"
	ErrKeyCurrency         = "currency"
	ErrKeyExchangeRate     = "exchange_rate"
	ErrKeyManualTaxPercent = "manual_tax_percent"
	ErrKeyLines            = "lines"
	ErrKeyDuplicateLines   = "lines.duplicate"
	ErrKeyTotals           = "totals"
)

// Valores por defecto del validador.
const (
	DefaultBaseCurrency     = "PEN"
	MaxDocumentNumberLength = 20
)

var (
	// DefaultMaxLineAmount tope del neto por línea.
	DefaultMaxLineAmount = decimal.RequireFromString("999999999.99")
	// TotalsTolerance diferencia admitida entre el total de cabecera y la suma de líneas.
	TotalsTolerance = decimal.RequireFromString("0.01")
	maxPercent      = decimal.NewFromInt(100)
)

// LineErrKey clave de error de un campo de la línea con esa secuencia.
func LineErrKey(sequence int, field string) string {
	return fmt.Sprintf("lines[%d].%s", sequence, field)
}

// Errors mensajes de validación por campo o regla. Vacío = comprobante válido.
type Errors map[string]string

// Validator reglas de validación de un comprobante.
type Validator struct {
	BaseCurrency  string
	MaxLineAmount decimal.Decimal
	Now           func() time.Time
}

// NewValidator validador con moneda base y tope de línea; valores vacíos toman los por defecto.
func NewValidator(baseCurrency string, maxLineAmount decimal.Decimal) Validator {
	if baseCurrency == "" {
		baseCurrency = DefaultBaseCurrency
	}
	if !maxLineAmount.IsPositive() {
		maxLineAmount = DefaultMaxLineAmount
	}
	return Validator{BaseCurrency: baseCurrency, MaxLineAmount: maxLineAmount, Now: time.Now}
}

// IsValid indica si el estado no tiene errores.
func (v Validator) IsValid(s State) bool {
	return len(v.Validate(s)) == 0
}

// Validate ejecuta todas las reglas, sin cortar en la primera, y devuelve los errores.
func (v Validator) Validate(s State) Errors {
	errs := Errors{}

	if s.CompanyID == 0 {
		errs[ErrKeyCompany] = "la empresa es obligatoria"
	}
	number := strings.TrimSpace(s.DocumentNumber)
	switch {
	case number == "":
		errs[ErrKeyDocumentNumber] = "el número de documento es obligatorio"
	case len([]rune(number)) > MaxDocumentNumberLength:
		errs[ErrKeyDocumentNumber] = fmt.Sprintf("el número de documento admite hasta %d caracteres", MaxDocumentNumberLength)
	}
	if s.ProjectID == 0 {
		errs[ErrKeyProject] = "el proyecto es obligatorio"
	}
	v.validateDate(s, errs)
	validateCounterparty(s, errs)
	v.validateCurrency(s, errs)
	validateManualTax(s, errs)
	v.validateLines(s, errs)

	return errs
}

// validateDate compara fechas como texto YYYY-MM-DD para no depender de la zona horaria.
func (v Validator) validateDate(s State, errs Errors) {
	date := strings.TrimSpace(s.Date)
	if date == "" {
		errs[ErrKeyDate] = "la fecha es obligatoria"
		return
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		errs[ErrKeyDate] = "la fecha debe tener el formato AAAA-MM-DD"
		return
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if date > now().Format(DateLayout) {
		errs[ErrKeyDate] = "la fecha no puede ser posterior a hoy"
	}
}

func validateCounterparty(s State, errs Errors) {
	switch s.Kind {
	case entity.KindIncome:
		if s.ClientID == 0 {
			errs[ErrKeyCounterparty] = "el cliente es obligatorio en comprobantes de ingreso"
		}
	case entity.KindExpenseProvider, entity.KindExpenseEmployee:
		switch {
		case s.ProviderID == 0 && s.EmployeeID == 0:
			errs[ErrKeyCounterparty] = "indique el proveedor o el empleado"
		case s.ProviderID != 0 && s.EmployeeID != 0:
			errs[ErrKeyCounterparty] = "indique solo el proveedor o solo el empleado"
		case s.Kind == entity.KindExpenseEmployee && s.EmployeeID == 0:
			errs[ErrKeyCounterparty] = "el empleado es obligatorio en egresos a empleados"
		case s.Kind == entity.KindExpenseProvider && s.ProviderID == 0:
			errs[ErrKeyCounterparty] = "el proveedor es obligatorio en egresos a proveedores"
		}
	default:
		errs[ErrKeyKind] = "el tipo de comprobante es obligatorio"
	}
}

func (v Validator) validateCurrency(s State, errs Errors) {
	if strings.TrimSpace(s.Currency) == "" {
		errs[ErrKeyCurrency] = "la moneda es obligatoria"
		return
	}
	if !strings.EqualFold(s.Currency, v.BaseCurrency) && !s.ExchangeRate.IsPositive() {
		errs[ErrKeyExchangeRate] = "el tipo de cambio es obligatorio y debe ser mayor que 0"
	}
}

func validateManualTax(s State, errs Errors) {
	if !s.ManualTaxPercent.Valid {
		return
	}
	if !entity.IsReceipt(s.DocumentType) {
		errs[ErrKeyManualTaxPercent] = "el porcentaje de impuesto manual solo aplica a recibos por honorarios"
		return
	}
	p := s.ManualTaxPercent.Decimal
	if p.IsNegative() || p.GreaterThan(maxPercent) {
		errs[ErrKeyManualTaxPercent] = "el porcentaje de impuesto debe estar entre 0 y 100"
	}
}

func (v Validator) validateLines(s State, errs Errors) {
	if len(s.Lines) == 0 {
		errs[ErrKeyLines] = "agregue al menos una partida"
		return
	}

	maxAmount := v.MaxLineAmount
	if !maxAmount.IsPositive() {
		maxAmount = DefaultMaxLineAmount
	}
	seen := make(map[int]bool, len(s.Lines))
	var duplicated []string
	sum := decimal.Zero
	for _, l := range s.Lines {
		sum = sum.Add(l.TotalAmount)
		if l.PartidaCode == 0 {
			errs[LineErrKey(l.Sequence, "partida")] = "seleccione la partida"
		} else {
			if seen[l.PartidaCode] {
				duplicated = append(duplicated, fmt.Sprint(l.PartidaCode))
			}
			seen[l.PartidaCode] = true
		}
		switch {
		case !l.NetAmount.IsPositive():
			errs[LineErrKey(l.Sequence, "net_amount")] = "el monto debe ser mayor que 0"
		case l.NetAmount.GreaterThan(maxAmount):
			errs[LineErrKey(l.Sequence, "net_amount")] = "el monto excede el máximo permitido de " + maxAmount.StringFixed(2)
		}
	}
	if len(duplicated) > 0 {
		errs[ErrKeyDuplicateLines] = "partidas repetidas en el comprobante: " + strings.Join(duplicated, ", ")
	}
	if s.GrandTotal.Sub(sum).Abs().GreaterThanOrEqual(TotalsTolerance) {
		errs[ErrKeyTotals] = fmt.Sprintf("los totales no cuadran: cabecera %s, suma de líneas %s",
			s.GrandTotal.StringFixed(2), sum.StringFixed(2))
	}
}
