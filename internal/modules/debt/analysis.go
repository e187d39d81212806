package debt

import (
	"sort"
	"strings"

	"github.com/aristath/debtfolio/internal/modules/ratings"
)

const (
	reportoLabel    = "Reporto"
	governmentLabel = "Gubernamental"
	unlabeled       = "Sin clasificar"
)

// Filter returns the detail rows whose instrument, paper type or rating
// contains query (case-insensitive), followed by the TOTAL row. An empty
// query returns every row.
func (r *Report) Filter(query string) []Row {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Row(nil), r.Rows...)
	}

	out := make([]Row, 0, len(r.Rows))
	var total *Row
	for i, row := range r.Rows {
		if row.IsTotal() {
			total = &r.Rows[i]
			continue
		}
		if strings.Contains(strings.ToLower(row.Instrument), q) ||
			strings.Contains(strings.ToLower(row.PaperType), q) ||
			strings.Contains(strings.ToLower(row.Rating), q) {
			out = append(out, row)
		}
	}
	if total != nil {
		out = append(out, *total)
	}
	return out
}

// CompositionByPaperType groups weights by paper type. Repos are counted as
// government paper.
func (r *Report) CompositionByPaperType() []Slice {
	return r.compose(func(l Line) string {
		if l.Reporto {
			return governmentLabel
		}
		return l.Position.PaperType
	})
}

// CompositionByInstrumentType groups weights by instrument type, with repos
// under their own label.
func (r *Report) CompositionByInstrumentType() []Slice {
	return r.compose(func(l Line) string {
		if l.Reporto {
			return reportoLabel
		}
		return l.Position.InstrumentType
	})
}

// RiskByRating groups weights by displayed rating, ordered along the rating
// scale with unrated positions last.
func (r *Report) RiskByRating() []Slice {
	slices := groupLines(r.Lines, Line.DisplayRating)
	sort.SliceStable(slices, func(i, j int) bool {
		return ratings.LabelOrder(slices[i].Label) < ratings.LabelOrder(slices[j].Label)
	})
	return slices
}

// compose groups lines and sorts the slices by descending weight.
func (r *Report) compose(key func(Line) string) []Slice {
	slices := groupLines(r.Lines, key)
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].WeightPct > slices[j].WeightPct
	})
	return slices
}

func groupLines(lines []Line, key func(Line) string) []Slice {
	index := make(map[string]int)
	var slices []Slice
	for _, l := range lines {
		label := strings.TrimSpace(key(l))
		if label == "" {
			label = unlabeled
		}
		i, ok := index[label]
		if !ok {
			i = len(slices)
			index[label] = i
			slices = append(slices, Slice{Label: label})
		}
		slices[i].MarketValue += l.MarketValue
		slices[i].WeightPct += l.Weight * 100
	}
	return slices
}
