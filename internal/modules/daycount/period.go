// Package daycount derives compounding periods and days-to-maturity for
// fixed-income positions under the 360-day market convention.
package daycount

import (
	"math"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
)

const (
	// MarketYearDays is the day-count basis rates are quoted on.
	MarketYearDays = 360.0
	// CalendarYearDays is the basis carry is reported on.
	CalendarYearDays = 365.0
	// DefaultPeriodDays is the short-term market convention used when a
	// position has no usable period.
	DefaultPeriodDays = 28.0
	// MinPeriodDays keeps the capitalization factor finite.
	MinPeriodDays = 1.0
	// ReportoDays is the displayed term and period of repo positions.
	ReportoDays = 1.0
)

// Terms are the day-count figures of one position.
type Terms struct {
	// PeriodDays is the compounding period used to annualize the rate.
	PeriodDays float64 `json:"period_days"`
	// DaysToMaturity is the figure shown in the report; nil when unknown.
	// It may be negative for matured instruments.
	DaysToMaturity *float64 `json:"days_to_maturity"`
}

// CapitalizationFactor is the number of periods per 360-day year.
func (t Terms) CapitalizationFactor() float64 {
	return CapitalizationFactor(t.PeriodDays)
}

// CapitalizationFactor returns 360 / periodDays, or 0 for non-positive periods.
func CapitalizationFactor(periodDays float64) float64 {
	if periodDays <= 0 || math.IsNaN(periodDays) {
		return 0
	}
	return MarketYearDays / periodDays
}

// Compute derives the day-count terms of a position.
//
// Repo positions always show one day and compound daily. Other positions
// show the warehouse's precomputed days-to-maturity when present, otherwise
// maturity minus snapshot date, without clamping. Zero-coupon instruments
// with a positive known term compound over that term; everything else uses
// the coupon period, defaulting to 28 days and floored at one day.
func Compute(p domain.Position) Terms {
	if p.IsReporto() {
		d := ReportoDays
		return Terms{PeriodDays: ReportoDays, DaysToMaturity: &d}
	}

	actual := ActualDaysToMaturity(p)

	period := DefaultPeriodDays
	switch {
	case p.IsZeroCoupon() && actual != nil && *actual > 0:
		period = *actual
	case p.CouponPeriodDays != nil && !math.IsNaN(*p.CouponPeriodDays):
		period = *p.CouponPeriodDays
	}
	if period < MinPeriodDays {
		period = MinPeriodDays
	}

	return Terms{PeriodDays: period, DaysToMaturity: actual}
}

// ActualDaysToMaturity prefers the precomputed warehouse figure and falls back
// to the calendar difference between maturity and snapshot date.
func ActualDaysToMaturity(p domain.Position) *float64 {
	if p.DaysToMaturity != nil && !math.IsNaN(*p.DaysToMaturity) {
		d := *p.DaysToMaturity
		return &d
	}
	if p.MaturityDate == nil || p.SnapshotDate == nil {
		return nil
	}
	d := float64(DaysBetween(*p.SnapshotDate, *p.MaturityDate))
	return &d
}

// DaysBetween returns the number of calendar days from start to end, ignoring
// time of day. The result is negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(e.Sub(s).Hours() / 24))
}
