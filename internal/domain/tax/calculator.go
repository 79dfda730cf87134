// Package tax implementa la aritmética del IGV usada para derivar los totales
// de un comprobante: neto → impuesto → total (y a la inversa), agregación de
// líneas y conversión de moneda. Todo redondeo es a 2 decimales.
package tax

import "github.com/shopspring/decimal"

// DefaultIGVRate tasa general del IGV (18%).
var DefaultIGVRate = decimal.NewFromFloat(0.18)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Amounts neto, impuesto y total de una línea o documento.
type Amounts struct {
	Net   decimal.Decimal `json:"net"`
	Tax   decimal.Decimal `json:"tax"`
	Total decimal.Decimal `json:"total"`
}

// Conversion importes en moneda local y extranjera.
type Conversion struct {
	NetLocal     decimal.Decimal `json:"net_local"`
	TaxLocal     decimal.Decimal `json:"tax_local"`
	TotalLocal   decimal.Decimal `json:"total_local"`
	NetForeign   decimal.Decimal `json:"net_foreign"`
	TaxForeign   decimal.Decimal `json:"tax_foreign"`
	TotalForeign decimal.Decimal `json:"total_foreign"`
}

// Calculator aplica una tasa de impuesto fija. La tasa por defecto es el IGV;
// el recibo por honorarios usa otra calculadora con el porcentaje manual.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator construye la calculadora. Acepta la tasa como fracción (0.18)
// o como porcentaje (18); valores mayores que 1 se dividen entre 100.
func NewCalculator(rate decimal.Decimal) Calculator {
	return Calculator{rate: normalizeRate(rate)}
}

// Default calculadora con el IGV general.
func Default() Calculator {
	return Calculator{rate: DefaultIGVRate}
}

// WithPercent devuelve una calculadora con el porcentaje indicado (10 = 10%).
func WithPercent(percent decimal.Decimal) Calculator {
	return Calculator{rate: percent.Div(hundred)}
}

// Rate tasa como fracción.
func (c Calculator) Rate() decimal.Decimal { return c.rate }

// Percent tasa como porcentaje.
func (c Calculator) Percent() decimal.Decimal { return c.rate.Mul(hundred) }

// FromNet impuesto = neto * tasa; total = neto + impuesto.
func (c Calculator) FromNet(net decimal.Decimal) Amounts {
	n := net.Round(2)
	t := n.Mul(c.rate).Round(2)
	return Amounts{Net: n, Tax: t, Total: n.Add(t).Round(2)}
}

// FromTotal neto = total / (1 + tasa); impuesto = total - neto.
func (c Calculator) FromTotal(total decimal.Decimal) Amounts {
	tot := total.Round(2)
	n := tot.Div(one.Add(c.rate)).Round(2)
	return Amounts{Net: n, Tax: tot.Sub(n).Round(2), Total: tot}
}

// ForeignToLocal calcula impuesto y total en moneda extranjera y luego
// multiplica los tres importes por el tipo de cambio.
func (c Calculator) ForeignToLocal(netForeign, exchangeRate decimal.Decimal) Conversion {
	f := c.FromNet(netForeign)
	return Conversion{
		NetForeign:   f.Net,
		TaxForeign:   f.Tax,
		TotalForeign: f.Total,
		NetLocal:     f.Net.Mul(exchangeRate).Round(2),
		TaxLocal:     f.Tax.Mul(exchangeRate).Round(2),
		TotalLocal:   f.Total.Mul(exchangeRate).Round(2),
	}
}

// LocalToForeign inversa de ForeignToLocal. Con tipo de cambio 0 los importes
// en moneda extranjera quedan en 0.
func (c Calculator) LocalToForeign(netLocal, exchangeRate decimal.Decimal) Conversion {
	l := c.FromNet(netLocal)
	conv := Conversion{NetLocal: l.Net, TaxLocal: l.Tax, TotalLocal: l.Total}
	if exchangeRate.IsZero() {
		return conv
	}
	conv.NetForeign = l.Net.Div(exchangeRate).Round(2)
	conv.TaxForeign = l.Tax.Div(exchangeRate).Round(2)
	conv.TotalForeign = l.Total.Div(exchangeRate).Round(2)
	return conv
}

// Aggregate suma campo a campo, redondeando cada suma a 2 decimales.
func Aggregate(lines []Amounts) Amounts {
	var sum Amounts
	for _, l := range lines {
		sum.Net = sum.Net.Add(l.Net)
		sum.Tax = sum.Tax.Add(l.Tax)
		sum.Total = sum.Total.Add(l.Total)
	}
	return Amounts{Net: sum.Net.Round(2), Tax: sum.Tax.Round(2), Total: sum.Total.Round(2)}
}

func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(one) {
		return rate.Div(hundred)
	}
	return rate
}
