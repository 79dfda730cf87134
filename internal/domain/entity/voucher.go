package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherKind indica la dirección del comprobante y a quién se paga.
type VoucherKind string

const (
	KindIncome          VoucherKind = "income"
	KindExpenseProvider VoucherKind = "expense-provider"
	KindExpenseEmployee VoucherKind = "expense-employee"
)

// Flow devuelve el tipo de flujo de partidas que admite el comprobante.
func (k VoucherKind) Flow() FlowType {
	if k == KindIncome {
		return FlowIncome
	}
	return FlowExpense
}

// Tipos de documento (códigos SUNAT).
const (
	DocumentFactura          = "01"
	DocumentReciboHonorarios = "02" // admite porcentaje de impuesto manual
	DocumentBoleta           = "03"
	DocumentNotaCredito      = "07"
	DocumentTicket           = "12"
)

// IsReceipt indica si el tipo de documento permite fijar el impuesto a mano.
func IsReceipt(documentType string) bool {
	return documentType == DocumentReciboHonorarios
}

// Estados del comprobante.
const (
	VoucherStatusRegistered = "registered"
	VoucherStatusVoided     = "voided"
)

// Voucher representa la cabecera de un comprobante de ingreso o egreso.
type Voucher struct {
	ID               string
	CompanyID        int
	Kind             VoucherKind
	DocumentType     string
	DocumentNumber   string
	ProjectID        int
	ProviderID       int // egreso a proveedor
	ClientID         int // ingreso
	EmployeeID       int // egreso a empleado
	Date             time.Time
	Currency         string
	ExchangeRate     decimal.Decimal
	ManualTaxPercent decimal.NullDecimal
	NetTotal         decimal.Decimal
	TaxTotal         decimal.Decimal
	GrandTotal       decimal.Decimal
	Status           string
	Lines            []VoucherLine
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CounterpartyID devuelve el id de la contraparte según el tipo de comprobante.
func (v Voucher) CounterpartyID() int {
	switch v.Kind {
	case KindExpenseEmployee:
		return v.EmployeeID
	case KindIncome:
		if v.ClientID != 0 {
			return v.ClientID
		}
	}
	return v.ProviderID
}

// VoucherLine es una línea de detalle imputada a una partida.
// AvailableAmount, ExecutionPercent y AlertLevel son la foto del presupuesto
// al momento de registrar la línea.
type VoucherLine struct {
	ID               string
	VoucherID        string
	Sequence         int // 1..n, único dentro del comprobante
	PartidaCode      int
	PartidaName      string
	NetAmount        decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	AvailableAmount  decimal.NullDecimal
	ExecutionPercent decimal.NullDecimal
	AlertLevel       AlertLevel
}
