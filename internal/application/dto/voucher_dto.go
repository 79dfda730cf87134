package dto

import "github.com/shopspring/decimal"

// VoucherLineRequest línea de detalle; impuesto y total se derivan del neto.
type VoucherLineRequest struct {
	PartidaCode int             `json:"partida_code"`
	PartidaName string          `json:"partida_name,omitempty"`
	NetAmount   decimal.Decimal `json:"net_amount"`
}

// CreateVoucherRequest body para POST /api/vouchers.
// Kind: income | expense-provider | expense-employee.
// EnforceBudget: si es true, un egreso con alguna partida en rojo no se registra.
type CreateVoucherRequest struct {
	Kind             string               `json:"kind"`
	DocumentType     string               `json:"document_type"`
	DocumentNumber   string               `json:"document_number"`
	ProjectID        int                  `json:"project_id"`
	Date             string               `json:"date"` // YYYY-MM-DD
	ProviderID       int                  `json:"provider_id,omitempty"`
	ClientID         int                  `json:"client_id,omitempty"`
	EmployeeID       int                  `json:"employee_id,omitempty"`
	Currency         string               `json:"currency"`
	ExchangeRate     decimal.Decimal      `json:"exchange_rate"`
	ManualTaxPercent *decimal.Decimal     `json:"manual_tax_percent,omitempty"`
	EnforceBudget    bool                 `json:"enforce_budget"`
	Lines            []VoucherLineRequest `json:"lines"`
}

// VoucherLineResponse línea con la foto del presupuesto al registrarla.
type VoucherLineResponse struct {
	ID               string           `json:"id"`
	Sequence         int              `json:"sequence"`
	PartidaCode      int              `json:"partida_code"`
	PartidaName      string           `json:"partida_name,omitempty"`
	NetAmount        decimal.Decimal  `json:"net_amount"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	AvailableAmount  *decimal.Decimal `json:"available_amount,omitempty"`
	ExecutionPercent *decimal.Decimal `json:"execution_percent,omitempty"`
	AlertLevel       string           `json:"alert_level,omitempty"`
}

// VoucherResponse comprobante en respuestas. Alerts solo viene al registrar un egreso.
type VoucherResponse struct {
	ID               string                `json:"id"`
	CompanyID        int                   `json:"company_id"`
	Kind             string                `json:"kind"`
	DocumentType     string                `json:"document_type"`
	DocumentNumber   string                `json:"document_number"`
	ProjectID        int                   `json:"project_id"`
	CounterpartyID   int                   `json:"counterparty_id"`
	ProviderID       int                   `json:"provider_id,omitempty"`
	ClientID         int                   `json:"client_id,omitempty"`
	EmployeeID       int                   `json:"employee_id,omitempty"`
	Date             string                `json:"date"`
	Currency         string                `json:"currency"`
	ExchangeRate     decimal.Decimal       `json:"exchange_rate"`
	ManualTaxPercent *decimal.Decimal      `json:"manual_tax_percent,omitempty"`
	NetTotal         decimal.Decimal       `json:"net_total"`
	TaxTotal         decimal.Decimal       `json:"tax_total"`
	GrandTotal       decimal.Decimal       `json:"grand_total"`
	Status           string                `json:"status"`
	Lines            []VoucherLineResponse `json:"lines"`
	Alerts           []AlertResponse       `json:"alerts,omitempty"`
}
