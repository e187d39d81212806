// Package domain provides core domain models and types.
package domain

import (
	"math"
	"strings"
	"time"
)

// CurrencyUDI is the settlement-currency id of the inflation-indexed unit (UDI).
// Real-rate instruments are only treated as inflation-linked when they settle in it.
const CurrencyUDI = 8

// Position is one aggregated fixed-income holding (product × issuer) taken
// from a point-in-time snapshot. Nullable warehouse columns are pointers.
//
// RawYield and ReferenceRateValue keep whatever the warehouse returned
// (float, int or localized text) because their scale is unknown until the
// whole column has been seen.
type Position struct {
	ProductID            int64       `json:"product_id" yaml:"product_id" msgpack:"product_id"`
	ProductName          string      `json:"product_name,omitempty" yaml:"product_name" msgpack:"product_name"`
	IssuerID             int64       `json:"issuer_id" yaml:"issuer_id" msgpack:"issuer_id"`
	IssuerName           string      `json:"issuer_name" yaml:"issuer_name" msgpack:"issuer_name"`
	Series               string      `json:"series,omitempty" yaml:"series" msgpack:"series"`
	PaperType            string      `json:"paper_type" yaml:"paper_type" msgpack:"paper_type"`
	InstrumentType       string      `json:"instrument_type" yaml:"instrument_type" msgpack:"instrument_type"`
	CouponPeriodDays     *float64    `json:"coupon_period_days" yaml:"coupon_period_days" msgpack:"coupon_period_days"`
	MaturityDate         *time.Time  `json:"maturity_date" yaml:"maturity_date" msgpack:"maturity_date"`
	ReferenceRateID      *int64      `json:"reference_rate_id" yaml:"reference_rate_id" msgpack:"reference_rate_id"`
	SettlementCurrencyID *int64      `json:"settlement_currency_id" yaml:"settlement_currency_id" msgpack:"settlement_currency_id"`
	RawYield             interface{} `json:"raw_yield" yaml:"raw_yield" msgpack:"raw_yield"`
	NominalValue         *float64    `json:"nominal_value" yaml:"nominal_value" msgpack:"nominal_value"`
	MarketValue          *float64    `json:"market_value" yaml:"market_value" msgpack:"market_value"`
	ReportoTermDays      float64     `json:"reporto_term_days" yaml:"reporto_term_days" msgpack:"reporto_term_days"`
	SnapshotDate         *time.Time  `json:"snapshot_date" yaml:"snapshot_date" msgpack:"snapshot_date"`
	DaysToMaturity       *float64    `json:"days_to_maturity" yaml:"days_to_maturity" msgpack:"days_to_maturity"`
	DurationDays         *float64    `json:"duration_days" yaml:"duration_days" msgpack:"duration_days"`
	ReferenceRateValue   interface{} `json:"reference_rate_value" yaml:"reference_rate_value" msgpack:"reference_rate_value"`
	ReferenceRateName    string      `json:"reference_rate_name" yaml:"reference_rate_name" msgpack:"reference_rate_name"`
	RatingSP             string      `json:"rating_sp" yaml:"rating_sp" msgpack:"rating_sp"`
	RatingMoodys         string      `json:"rating_moodys" yaml:"rating_moodys" msgpack:"rating_moodys"`
	RatingHR             string      `json:"rating_hr" yaml:"rating_hr" msgpack:"rating_hr"`
	RatingFitch          string      `json:"rating_fitch" yaml:"rating_fitch" msgpack:"rating_fitch"`
	RatingHomologated    string      `json:"rating_homologated" yaml:"rating_homologated" msgpack:"rating_homologated"`
}

// IsReporto reports whether the position is a repurchase agreement.
// Either the paper type or the instrument type may carry the marker.
func (p Position) IsReporto() bool {
	return containsFold(p.PaperType, "reporto") || containsFold(p.InstrumentType, "reporto")
}

// IsZeroCoupon reports whether the instrument pays no coupon ("Cupón Cero").
func (p Position) IsZeroCoupon() bool {
	return containsFold(p.InstrumentType, "cero")
}

// IsRealRate reports whether the position is an inflation-linked real-rate
// instrument settled in UDIs.
func (p Position) IsRealRate() bool {
	if !containsFold(p.InstrumentType, "tasa real") {
		return false
	}
	return p.SettlementCurrencyID != nil && *p.SettlementCurrencyID == CurrencyUDI
}

// IsRevisable reports whether the instrument pays a floating (revisable) coupon.
func (p Position) IsRevisable() bool {
	return containsFold(p.InstrumentType, "revis")
}

// HasReferenceRate reports whether the position is linked to a reference rate.
func (p Position) HasReferenceRate() bool {
	return p.ReferenceRateID != nil
}

// MarketValueOrZero returns the market value, treating null and NaN as zero.
func (p Position) MarketValueOrZero() float64 {
	if p.MarketValue == nil || math.IsNaN(*p.MarketValue) || math.IsInf(*p.MarketValue, 0) {
		return 0
	}
	return *p.MarketValue
}

// DisplayName is the instrument label: issuer name followed by the series when known.
func (p Position) DisplayName() string {
	if p.Series == "" {
		return p.IssuerName
	}
	return p.IssuerName + " " + p.Series
}

// Snapshot is the set of positions for one alias and cut-off date.
type Snapshot struct {
	Alias      string     `json:"alias" yaml:"alias" msgpack:"alias"`
	CutoffDate *time.Time `json:"cutoff_date" yaml:"cutoff_date" msgpack:"cutoff_date"`
	Positions  []Position `json:"positions" yaml:"positions" msgpack:"positions"`
}

// IsEmpty reports whether the snapshot holds no positions.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Positions) == 0
}

// HasDurationData reports whether any position carries a duration figure.
// Portfolio duration is only reported when the warehouse supplied one.
func (s *Snapshot) HasDurationData() bool {
	if s == nil {
		return false
	}
	for _, p := range s.Positions {
		if p.DurationDays != nil {
			return true
		}
	}
	return false
}

// InUTC moves the cut-off, snapshot and maturity dates to UTC in place and
// returns s. Dates decoded from the cache come back in the local zone.
func (s *Snapshot) InUTC() *Snapshot {
	if s == nil {
		return nil
	}
	s.CutoffDate = utc(s.CutoffDate)
	for i := range s.Positions {
		s.Positions[i].SnapshotDate = utc(s.Positions[i].SnapshotDate)
		s.Positions[i].MaturityDate = utc(s.Positions[i].MaturityDate)
	}
	return s
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
