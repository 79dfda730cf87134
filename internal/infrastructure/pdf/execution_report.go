// Package pdf genera el reporte de ejecución presupuestal de un proyecto.
//
// Layout de la página A4 (horizontal):
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  REPORTE DE EJECUCIÓN PRESUPUESTAL        Proyecto N° / Fecha     │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Partida (sangrada por nivel) | Asignado | Ejecutado |     │
//	│         Disponible | % | Semáforo                                 │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TOTALES de las partidas con asignación                          │
//	└──────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbudget "github.com/jhoicas/presupuesto-api/internal/application/budget"
	domainbudget "github.com/jhoicas/presupuesto-api/internal/domain/budget"
	"github.com/jhoicas/presupuesto-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}

	levelColors = map[entity.AlertLevel]*props.Color{
		entity.AlertGreen:  {Red: 46, Green: 139, Blue: 87},
		entity.AlertYellow: {Red: 204, Green: 163, Blue: 0},
		entity.AlertOrange: {Red: 230, Green: 110, Blue: 0},
		entity.AlertRed:    {Red: 192, Green: 0, Blue: 0},
	}
	levelLabels = map[entity.AlertLevel]string{
		entity.AlertGreen:  "Normal",
		entity.AlertYellow: "Atención",
		entity.AlertOrange: "Urgente",
		entity.AlertRed:    "Excedido",
	}
)

var _ appbudget.ExecutionReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa budget.ExecutionReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateExecutionReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateExecutionReport(ctx context.Context, report appbudget.ExecutionReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Ejecución presupuestal", true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(report.Rows)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(report.Rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(report appbudget.ExecutionReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("REPORTE DE EJECUCIÓN PRESUPUESTAL", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Partidas de egreso en orden jerárquico", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Proyecto N° %d", report.ProjectID), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Partida", 4, align.Left),
		h("Asignado", 2, align.Right),
		h("Ejecutado", 2, align.Right),
		h("Disponible", 2, align.Right),
		h("%", 1, align.Right),
		h("Semáforo", 1, align.Center),
	)
}

func tableRows(rows []appbudget.ReportRow) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		style := props.Text{Size: 8, Top: 1, Left: 1 + float64(r.Partida.Level-1)*4}
		if r.Partida.Level == 1 {
			style.Style = fontstyle.Bold
		}
		name := fmt.Sprintf("%d - %s", r.Partida.NumericCode, r.Partida.Name)
		if !r.HasExecution {
			out = append(out, row.New(6).Add(
				col.New(4).Add(text.New(name, style)),
				col.New(8).Add(text.New("sin asignación", props.Text{Size: 7, Top: 1, Color: colorGray, Align: align.Center})),
			))
			continue
		}
		e := r.Execution
		num := func(s string) core.Component {
			return text.New(s, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})
		}
		out = append(out, row.New(6).Add(
			col.New(4).Add(text.New(name, style)),
			col.New(2).Add(num(formatAmount(e.OriginalAmount))),
			col.New(2).Add(num(formatAmount(e.ExecutedAmount))),
			col.New(2).Add(num(formatAmount(e.AvailableAmount))),
			col.New(1).Add(num(e.ExecutionPercent.StringFixed(1))),
			col.New(1).Add(text.New(levelLabels[r.Level], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1, Color: levelColors[r.Level],
			})),
		))
	}
	return out
}

func totalsRow(rows []appbudget.ReportRow) core.Row {
	var original, executed decimal.Decimal
	for _, r := range rows {
		if r.HasExecution {
			original = original.Add(r.Execution.OriginalAmount)
			executed = executed.Add(r.Execution.ExecutedAmount)
		}
	}
	total := domainbudget.NewExecution(0, 0, 0, original, executed)
	level := domainbudget.ClassifyExecution(total.ExecutionPercent)
	bold := func(s string, a align.Type) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: a, Top: 1, Right: 1, Color: colorPrimary})
	}
	return row.New(8).Add(
		col.New(4).Add(bold("TOTAL", align.Left)),
		col.New(2).Add(bold(formatAmount(total.OriginalAmount), align.Right)),
		col.New(2).Add(bold(formatAmount(total.ExecutedAmount), align.Right)),
		col.New(2).Add(bold(formatAmount(total.AvailableAmount), align.Right)),
		col.New(1).Add(bold(total.ExecutionPercent.StringFixed(1), align.Right)),
		col.New(1).Add(text.New(levelLabels[level], props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1, Color: levelColors[level],
		})),
	)
}

// formatAmount monto con 2 decimales y comas de miles. Ej: -1234567.5 → "-1,234,567.50".
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}
