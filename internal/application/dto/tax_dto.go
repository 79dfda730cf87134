package dto

import "github.com/shopspring/decimal"

// Direcciones de conversión de moneda.
const (
	ConvertForeignToLocal = "foreign_to_local"
	ConvertLocalToForeign = "local_to_foreign"
)

// TaxComputeRequest body para POST /api/tax/compute. Se indica Net o Total.
// Con ExchangeRate se calcula además la conversión en la dirección indicada
// (por defecto foreign_to_local, partiendo de Net).
type TaxComputeRequest struct {
	Net           *decimal.Decimal `json:"net,omitempty"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	ManualPercent *decimal.Decimal `json:"manual_percent,omitempty"`
	ExchangeRate  *decimal.Decimal `json:"exchange_rate,omitempty"`
	Direction     string           `json:"direction,omitempty"`
}

// ConversionResponse montos en ambas monedas.
type ConversionResponse struct {
	NetLocal     decimal.Decimal `json:"net_local"`
	TaxLocal     decimal.Decimal `json:"tax_local"`
	TotalLocal   decimal.Decimal `json:"total_local"`
	NetForeign   decimal.Decimal `json:"net_foreign"`
	TaxForeign   decimal.Decimal `json:"tax_foreign"`
	TotalForeign decimal.Decimal `json:"total_foreign"`
}

// TaxComputeResponse neto, impuesto y total con la tasa aplicada (en porcentaje).
type TaxComputeResponse struct {
	Net        decimal.Decimal     `json:"net"`
	Tax        decimal.Decimal     `json:"tax"`
	Total      decimal.Decimal     `json:"total"`
	Percent    decimal.Decimal     `json:"percent"`
	Conversion *ConversionResponse `json:"conversion,omitempty"`
}
