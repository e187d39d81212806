// Package cli renders debt reports for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aristath/debtfolio/internal/modules/debt"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6B50FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#858392"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DFDBDD"))

	kpiStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4D4C57")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00CED1")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numericStyle = cellStyle.Align(lipgloss.Right)

	totalStyle = numericStyle.Bold(true).Foreground(lipgloss.Color("#00FFB2"))

	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD300"))
)

// reportColumns lists the table columns in display order. numeric columns
// are right-aligned.
var reportColumns = []struct {
	header  string
	numeric bool
	value   func(debt.Row) string
}{
	{"Instrumento", false, func(r debt.Row) string { return r.Instrument }},
	{"Tipo papel", false, func(r debt.Row) string { return r.PaperType }},
	{"Vencimiento", false, func(r debt.Row) string { return r.MaturityDate }},
	{"Días", true, func(r debt.Row) string { return r.DaysToMaturity }},
	{"Duración", true, func(r debt.Row) string { return r.DurationDays }},
	{"Tasa", true, func(r debt.Row) string { return r.ValuationRate }},
	{"Carry", true, func(r debt.Row) string { return r.CarryRate }},
	{"Valor mercado", true, func(r debt.Row) string { return r.MarketValue }},
	{"Peso", true, func(r debt.Row) string { return r.Weight }},
	{"Calificación", false, func(r debt.Row) string { return r.Rating }},
}

// RenderKPIs writes the headline figures of a report.
func RenderKPIs(w io.Writer, report *debt.Report) error {
	cutoff := debt.Undefined
	if report.CutoffDate != nil {
		cutoff = report.CutoffDate.Format("2006-01-02")
	}

	duration := debt.FormatDays(report.KPIs.WeightedDurationDays)
	if duration == "" {
		duration = debt.Undefined
	}

	boxes := []string{
		kpi("Instrumentos", fmt.Sprintf("%d", report.KPIs.InstrumentCount)),
		kpi("Valor mercado", debt.FormatMoney2(report.KPIs.MarketValue.InexactFloat64())),
		kpi("Carry ponderado", debt.FormatWeight(report.KPIs.ExpectedReturnPct/100)),
		kpi("Días ponderados", debt.FormatDays(&report.KPIs.WeightedDaysToMaturity)),
		kpi("Duración", duration),
	}

	out := titleStyle.Render(fmt.Sprintf("%s · corte %s", report.Alias, cutoff)) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, boxes...) + "\n"
	_, err := io.WriteString(w, out)
	return err
}

func kpi(label, value string) string {
	return kpiStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

// RenderRows writes the report table. The TOTAL row, when present, is
// highlighted.
func RenderRows(w io.Writer, rows []debt.Row) error {
	headers := make([]string, len(reportColumns))
	for i, c := range reportColumns {
		headers[i] = c.header
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(reportColumns))
		for j, c := range reportColumns {
			cells[j] = c.value(row)
		}
		data[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#4D4C57"))).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(rows) && rows[row].IsTotal():
				return totalStyle
			case reportColumns[col].numeric:
				return numericStyle
			default:
				return cellStyle
			}
		})

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// RenderReport writes the KPIs, the table and a warning line when some
// positions carry no usable yield.
func RenderReport(w io.Writer, report *debt.Report, rows []debt.Row) error {
	if err := RenderKPIs(w, report); err != nil {
		return err
	}
	if err := RenderRows(w, rows); err != nil {
		return err
	}
	if n := report.Summary.UndefinedCarryCount; n > 0 {
		msg := fmt.Sprintf("%d posición(es) sin rendimiento utilizable; cuentan como carry 0", n)
		if _, err := io.WriteString(w, warnStyle.Render(msg)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory writes one line per month with the portfolio aggregates.
func RenderHistory(w io.Writer, points []debt.HistoryPoint) error {
	if len(points) == 0 {
		_, err := io.WriteString(w, labelStyle.Render("Sin datos para el periodo")+"\n")
		return err
	}

	data := make([][]string, len(points))
	for i, p := range points {
		cutoff := ""
		if p.CutoffDate != nil {
			cutoff = p.CutoffDate.Format("2006-01-02")
		}
		data[i] = []string{
			fmt.Sprintf("%04d-%02d", p.Year, p.Month),
			cutoff,
			debt.FormatWeight(p.WeightedCarryPct / 100),
			debt.FormatDays(&p.WeightedDaysToMaturity),
			debt.FormatDays(p.WeightedDurationDays),
			debt.FormatMoney2(p.MarketValue),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Mes", "Corte", "Carry", "Días", "Duración", "Valor mercado").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col >= 2 {
				return numericStyle
			}
			return cellStyle
		})

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// RenderCompositions writes one "label  weight" list per composition.
func RenderCompositions(w io.Writer, title string, slices []debt.Slice) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	for _, s := range slices {
		fmt.Fprintf(&b, "  %-28s %8s\n", s.Label, debt.FormatWeight(s.WeightPct/100))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
