package debt

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/carry"
	"github.com/aristath/debtfolio/internal/modules/rates"
	"github.com/aristath/debtfolio/internal/modules/ratings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// paperTypeOrder is the display precedence of paper types after repos.
var paperTypeOrder = map[string]int{
	"Gubernamental":   2,
	"CuasiGuber":      3,
	"Banca Comercial": 4,
	"Privado":         5,
}

const (
	reportoOrder = 1
	unknownOrder = 98
)

// Build derives the report for a snapshot. It performs no I/O and never
// mutates the snapshot. An empty snapshot yields ErrNoData.
func Build(snap *domain.Snapshot, opts Options) (*Report, error) {
	if snap.IsEmpty() {
		return nil, ErrNoData
	}

	positions := snap.Positions
	n := len(positions)

	rawYields := make([]interface{}, n)
	rawRefs := make([]interface{}, n)
	linked := make([]bool, n)
	for i, p := range positions {
		rawYields[i] = p.RawYield
		rawRefs[i] = p.ReferenceRateValue
		linked[i] = p.HasReferenceRate()
	}
	yields := rates.NormalizeYields(rawYields, linked)
	refs := rates.ParseColumn(rawRefs)

	calc := carry.NewCalculator(opts.InflationAnnual)

	lines := make([]Line, n)
	values := make([]float64, n)
	for i, p := range positions {
		values[i] = p.MarketValueOrZero()
		lines[i] = Line{
			Position:      p,
			Reporto:       p.IsReporto(),
			Rating:        ratings.Resolve(p),
			Carry:         calc.Compute(p, carry.Inputs{Yield: yields[i], ReferenceRate: refs[i]}),
			ReferenceRate: refs[i],
			MarketValue:   values[i],
		}
	}

	weights := Weights(values)
	for i := range lines {
		lines[i].Weight = weights[i]
	}

	summary := summarize(lines, weights, snap.HasDurationData())
	orderLines(lines)

	rows := make([]Row, 0, n+1)
	for _, l := range lines {
		rows = append(rows, projectRow(l))
	}
	rows = append(rows, totalRow(summary))

	return &Report{
		ID:              uuid.New(),
		Alias:           snap.Alias,
		CutoffDate:      snap.CutoffDate,
		GeneratedAt:     time.Now(),
		InflationAnnual: calc.Inflation(),
		Lines:           lines,
		Rows:            rows,
		Summary:         summary,
		KPIs: KPIs{
			InstrumentCount:        n,
			MarketValue:            summary.TotalMarketValue,
			WeightedDurationDays:   summary.WeightedDurationDays,
			WeightedDaysToMaturity: summary.WeightedDaysToMaturity,
			ExpectedReturnPct:      summary.WeightedCarryPct,
		},
	}, nil
}

// Weights returns value_i / Σvalue. When the total is not positive every
// weight is zero.
func Weights(values []float64) []float64 {
	weights := make([]float64, len(values))
	total := floats.Sum(values)
	if total <= 0 || math.IsNaN(total) {
		return weights
	}
	floats.ScaleTo(weights, 1/total, values)
	return weights
}

// summarize computes the weighted aggregates. Undefined carries and days count
// as zero in the numerator while their weight stays in the denominator.
func summarize(lines []Line, weights []float64, hasDuration bool) Summary {
	n := len(lines)
	carries := make([]float64, n)
	days := make([]float64, n)
	durations := make([]float64, n)

	total := decimal.Zero
	undefined := 0
	for i, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.MarketValue))
		if c := l.Carry.AnnualizedCarryRate; c != nil {
			carries[i] = *c
		} else {
			undefined++
		}
		if d := l.Carry.DaysToMaturityDisplayed; d != nil && !math.IsNaN(*d) {
			days[i] = *d
		}
		if d := l.Position.DurationDays; d != nil && !math.IsNaN(*d) {
			durations[i] = *d
		}
	}

	s := Summary{
		TotalMarketValue:       total,
		WeightedCarryPct:       floats.Dot(carries, weights) * 100,
		WeightedDaysToMaturity: floats.Dot(days, weights),
		UndefinedCarryCount:    undefined,
	}
	if hasDuration {
		d := floats.Dot(durations, weights)
		s.WeightedDurationDays = &d
	}
	return s
}

// orderLines sorts repos first, then by paper-type precedence, then by
// descending market value. The sort is stable so ties keep snapshot order.
func orderLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		oi, oj := displayOrder(lines[i]), displayOrder(lines[j])
		if oi != oj {
			return oi < oj
		}
		return lines[i].MarketValue > lines[j].MarketValue
	})
}

func displayOrder(l Line) int {
	if l.Reporto {
		return reportoOrder
	}
	if o, ok := paperTypeOrder[strings.TrimSpace(l.Position.PaperType)]; ok {
		return o
	}
	return unknownOrder
}

// projectRow renders a line for display. Repo rows show one day to maturity,
// the best rating and no nominal value.
func projectRow(l Line) Row {
	p := l.Position

	nominal := 0.0
	if p.NominalValue != nil && !math.IsNaN(*p.NominalValue) && !l.Reporto {
		nominal = *p.NominalValue * 100
	}

	maturity := ""
	if p.MaturityDate != nil {
		maturity = p.MaturityDate.Format("2006-01-02")
	}

	product := p.ProductName
	if product == "" {
		product = strconv.FormatInt(p.ProductID, 10)
	}

	return Row{
		Product:            product,
		Instrument:         p.DisplayName(),
		PaperType:          p.PaperType,
		InstrumentType:     p.InstrumentType,
		MaturityDate:       maturity,
		DaysToMaturity:     FormatDays(l.Carry.DaysToMaturityDisplayed),
		DurationDays:       FormatDays(p.DurationDays),
		ValuationRate:      FormatPct(l.Carry.AnnualizedNominalRate),
		CarryRate:          FormatPct(l.Carry.AnnualizedCarryRate),
		NominalValue:       FormatMoney0(nominal),
		MarketValue:        FormatMoney2(l.MarketValue),
		Weight:             FormatWeight(l.Weight),
		ReferenceRateName:  p.ReferenceRateName,
		ReferenceRateValue: FormatPct(l.ReferenceRate),
		Rating:             l.DisplayRating(),
	}
}

func totalRow(s Summary) Row {
	return Row{
		Instrument:     TotalLabel,
		DaysToMaturity: FormatDays(&s.WeightedDaysToMaturity),
		DurationDays:   FormatDays(s.WeightedDurationDays),
		CarryRate:      FormatWeight(s.WeightedCarryPct / 100),
		MarketValue:    FormatMoney2(s.TotalMarketValue.InexactFloat64()),
		Weight:         "100.00%",
	}
}
