// Package carry converts quoted position yields into 365-day equivalent
// carry rates.
package carry

import (
	"math"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/daycount"
)

// K re-expresses a 360-day annual rate on a 365-day basis.
const K = daycount.MarketYearDays / daycount.CalendarYearDays

// Classification selects the carry formula of a position.
type Classification string

const (
	ClassNominal   Classification = "nominal"
	ClassRevisable Classification = "revisable"
	ClassReal      Classification = "real"
)

// Classify returns the formula family of a position. Real takes precedence
// over revisable; everything else is nominal.
func Classify(p domain.Position) Classification {
	switch {
	case p.IsRealRate():
		return ClassReal
	case p.IsRevisable():
		return ClassRevisable
	default:
		return ClassNominal
	}
}

// Eq365 converts a rate compounded capFactor times per 360-day year into its
// 365-day equivalent. A zero or undefined factor yields zero growth.
func Eq365(rate, capFactor float64) float64 {
	base := 1.0
	if capFactor != 0 && !math.IsNaN(capFactor) && !math.IsInf(capFactor, 0) {
		base = 1 + rate/capFactor
	}
	return (math.Pow(base, capFactor/K) - 1) * K
}

// RealToNominal compounds a real 365-day equivalent rate with annual inflation.
func RealToNominal(realEq, inflation float64) float64 {
	return ((1+realEq/K)*(1+inflation/K) - 1) * K
}

// Inputs are the normalized rates of one position. Both are decimal fractions
// already passed through column scale detection.
type Inputs struct {
	Yield         *float64
	ReferenceRate *float64
}

// Result is the carry of one position.
type Result struct {
	Classification          Classification `json:"classification"`
	AnnualizedNominalRate   *float64       `json:"annualized_nominal_rate"`
	AnnualizedCarryRate     *float64       `json:"annualized_carry_rate"`
	CompoundingPeriodDays   float64        `json:"compounding_period_days"`
	DaysToMaturityDisplayed *float64       `json:"days_to_maturity_displayed"`
}

// Calculator applies the carry formulas with a fixed annual inflation rate.
type Calculator struct {
	inflation float64
}

// NewCalculator creates a calculator. A nil inflation rate is treated as 0.
func NewCalculator(inflation *float64) *Calculator {
	c := &Calculator{}
	if inflation != nil && !math.IsNaN(*inflation) {
		c.inflation = *inflation
	}
	return c
}

// Inflation returns the annual inflation rate applied to real positions.
func (c *Calculator) Inflation() float64 {
	return c.inflation
}

// Compute derives the carry of a position.
//
// Nominal and real positions need a defined yield; without one the carry is
// undefined. Revisable positions add the reference rate to the quoted spread,
// treating either as 0 when missing.
func (c *Calculator) Compute(p domain.Position, in Inputs) Result {
	terms := daycount.Compute(p)
	capFactor := terms.CapitalizationFactor()

	res := Result{
		Classification:          Classify(p),
		AnnualizedNominalRate:   copyFloat(in.Yield),
		CompoundingPeriodDays:   terms.PeriodDays,
		DaysToMaturityDisplayed: terms.DaysToMaturity,
	}

	switch res.Classification {
	case ClassRevisable:
		rate := valueOrZero(in.ReferenceRate) + valueOrZero(in.Yield)
		v := Eq365(rate, capFactor)
		res.AnnualizedCarryRate = &v
	case ClassReal:
		if in.Yield != nil {
			v := RealToNominal(Eq365(*in.Yield, capFactor), c.inflation)
			res.AnnualizedCarryRate = &v
		}
	default:
		if in.Yield != nil {
			v := Eq365(*in.Yield, capFactor)
			res.AnnualizedCarryRate = &v
		}
	}

	if res.AnnualizedCarryRate != nil && math.IsNaN(*res.AnnualizedCarryRate) {
		res.AnnualizedCarryRate = nil
	}
	return res
}

func valueOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
