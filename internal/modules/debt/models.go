// Package debt builds the debt-portfolio report: per-position carry and rating,
// value weights, portfolio aggregates and the ordered display table.
package debt

import (
	"errors"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/carry"
	"github.com/aristath/debtfolio/internal/modules/ratings"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TotalLabel is the instrument name of the synthetic summary row. Rows carrying
// it must be dropped before any statistic is recomputed from a table.
const TotalLabel = "TOTAL"

// ErrNoData is returned when a snapshot holds no positions.
var ErrNoData = errors.New("no debt positions for the selected period and filter")

// Options are per-report settings.
type Options struct {
	// InflationAnnual applies to real-rate positions. Nil is treated as 0.
	InflationAnnual *float64 `json:"inflation_annual"`
}

// Line is the computed, immutable result for one position.
type Line struct {
	Position      domain.Position  `json:"position"`
	Reporto       bool             `json:"reporto"`
	Rating        ratings.Resolved `json:"rating"`
	Carry         carry.Result     `json:"carry"`
	ReferenceRate *float64         `json:"reference_rate"`
	MarketValue   float64          `json:"market_value"`
	Weight        float64          `json:"weight"`
}

// DisplayRating is the rating label shown for the line. Repo positions always
// show the best bucket.
func (l Line) DisplayRating() string {
	if l.Reporto {
		return ratings.BucketBest.Label()
	}
	return l.Rating.Label()
}

// Row is one display row of the report table. Every field is preformatted.
type Row struct {
	Product            string `json:"product"`
	Instrument         string `json:"instrument"`
	PaperType          string `json:"paper_type"`
	InstrumentType     string `json:"instrument_type"`
	MaturityDate       string `json:"maturity_date"`
	DaysToMaturity     string `json:"days_to_maturity"`
	DurationDays       string `json:"duration_days"`
	ValuationRate      string `json:"valuation_rate"`
	CarryRate          string `json:"carry_rate"`
	NominalValue       string `json:"nominal_value"`
	MarketValue        string `json:"market_value"`
	Weight             string `json:"weight"`
	ReferenceRateName  string `json:"reference_rate_name"`
	ReferenceRateValue string `json:"reference_rate_value"`
	Rating             string `json:"rating"`
}

// IsTotal reports whether the row is the synthetic summary row.
func (r Row) IsTotal() bool {
	return r.Instrument == TotalLabel
}

// Summary holds the portfolio aggregates.
type Summary struct {
	TotalMarketValue       decimal.Decimal `json:"total_market_value"`
	WeightedCarryPct       float64         `json:"weighted_carry_pct"`
	WeightedDaysToMaturity float64         `json:"weighted_days_to_maturity"`
	WeightedDurationDays   *float64        `json:"weighted_duration_days"`
	UndefinedCarryCount    int             `json:"undefined_carry_count"`
}

// KPIs are the headline figures shown above the table.
type KPIs struct {
	InstrumentCount        int             `json:"instrument_count"`
	MarketValue            decimal.Decimal `json:"market_value"`
	WeightedDurationDays   *float64        `json:"weighted_duration_days"`
	WeightedDaysToMaturity float64         `json:"weighted_days_to_maturity"`
	ExpectedReturnPct      float64         `json:"expected_return_pct"`
}

// Report is the output of one report-generation pass.
type Report struct {
	ID              uuid.UUID  `json:"id"`
	Alias           string     `json:"alias"`
	CutoffDate      *time.Time `json:"cutoff_date"`
	GeneratedAt     time.Time  `json:"generated_at"`
	InflationAnnual float64    `json:"inflation_annual"`
	Lines           []Line     `json:"-"`
	Rows            []Row      `json:"rows"`
	Summary         Summary    `json:"summary"`
	KPIs            KPIs       `json:"kpis"`
}

// DetailRows returns the table without the TOTAL row.
func (r *Report) DetailRows() []Row {
	out := make([]Row, 0, len(r.Rows))
	for _, row := range r.Rows {
		if !row.IsTotal() {
			out = append(out, row)
		}
	}
	return out
}

// Slice is one segment of a composition breakdown.
type Slice struct {
	Label       string  `json:"label"`
	MarketValue float64 `json:"market_value"`
	WeightPct   float64 `json:"weight_pct"`
}

// HistoryPoint is the portfolio aggregate for one month.
type HistoryPoint struct {
	Year                   int        `json:"year"`
	Month                  int        `json:"month"`
	CutoffDate             *time.Time `json:"cutoff_date"`
	WeightedCarryPct       float64    `json:"weighted_carry_pct"`
	WeightedDaysToMaturity float64    `json:"weighted_days_to_maturity"`
	WeightedDurationDays   *float64   `json:"weighted_duration_days"`
	MarketValue            float64    `json:"market_value"`
}
