// Package allocation breaks the whole portfolio of an alias down by asset
// class and by product from month-end client statistics.
package allocation

import (
	"time"

	"github.com/shopspring/decimal"
)

// OthersLabel names the slice that collects everything past the top N.
const OthersLabel = "Otros"

// Holding is the month-end amount of one product in one asset class.
type Holding struct {
	ProductID    int64
	Description  string
	AssetClassID *int64
	Amount       decimal.Decimal
}

// Slice is one segment of a breakdown.
type Slice struct {
	Label  string          `json:"label" msgpack:"label"`
	Amount decimal.Decimal `json:"amount" msgpack:"amount"`
	Pct    float64         `json:"pct" msgpack:"pct"`
}

// Breakdown is the allocation of an alias on a statistic date.
type Breakdown struct {
	Alias         string          `json:"alias" msgpack:"alias"`
	StatisticDate time.Time       `json:"statistic_date" msgpack:"statistic_date"`
	Total         decimal.Decimal `json:"total" msgpack:"total"`
	ByAssetClass  []Slice         `json:"by_asset_class" msgpack:"by_asset_class"`
	ByProduct     []Slice         `json:"by_product" msgpack:"by_product"`
}

// IsEmpty reports whether the breakdown has no holdings.
func (b *Breakdown) IsEmpty() bool {
	return b == nil || len(b.ByProduct) == 0
}

// TopN keeps the n largest slices and folds the rest into an OthersLabel
// slice. Slices must already be sorted by descending amount.
func TopN(slices []Slice, n int) []Slice {
	if n <= 0 || len(slices) <= n {
		return append([]Slice(nil), slices...)
	}
	out := append([]Slice(nil), slices[:n]...)
	others := Slice{Label: OthersLabel}
	for _, s := range slices[n:] {
		others.Amount = others.Amount.Add(s.Amount)
		others.Pct += s.Pct
	}
	others.Pct = decimal.NewFromFloat(others.Pct).Round(2).InexactFloat64()
	return append(out, others)
}
