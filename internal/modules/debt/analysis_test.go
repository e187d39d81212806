package debt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureReport(t *testing.T) *Report {
	t.Helper()
	report, err := Build(fixtureSnapshot(), Options{})
	require.NoError(t, err)
	return report
}

func labels(slices []Slice) []string {
	out := make([]string, len(slices))
	for i, s := range slices {
		out[i] = s.Label
	}
	return out
}

func TestFilter(t *testing.T) {
	report := fixtureReport(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty keeps everything", "  ", []string{"BONDESF REPO", "MBONO 261203", "UDIBONO 351115", "BIMBO 23", TotalLabel}},
		{"paper type", "GUBERN", []string{"MBONO 261203", "UDIBONO 351115", TotalLabel}},
		{"rating", "aa+", []string{"BIMBO 23", TotalLabel}},
		{"instrument", "bimbo", []string{"BIMBO 23", TotalLabel}},
		{"no match keeps total", "zzz", []string{TotalLabel}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := report.Filter(tt.query)
			got := make([]string, len(rows))
			for i, r := range rows {
				got[i] = r.Instrument
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompositionByPaperType(t *testing.T) {
	slices := fixtureReport(t).CompositionByPaperType()

	require.Len(t, slices, 2)
	assert.Equal(t, "Gubernamental", slices[0].Label)
	assert.InDelta(t, 88, slices[0].WeightPct, 1e-9)
	assert.InDelta(t, 880000, slices[0].MarketValue, 1e-9)
	assert.Equal(t, "Privado", slices[1].Label)
	assert.InDelta(t, 12, slices[1].WeightPct, 1e-9)
}

func TestCompositionByInstrumentType(t *testing.T) {
	slices := fixtureReport(t).CompositionByInstrumentType()

	assert.Equal(t, []string{"Tasa Fija", "Reporto", "Tasa Revisable", "Tasa Real"}, labels(slices))
	total := 0.0
	for _, s := range slices {
		total += s.WeightPct
	}
	assert.InDelta(t, 100, total, 1e-9)
}

func TestRiskByRating(t *testing.T) {
	slices := fixtureReport(t).RiskByRating()

	assert.Equal(t, []string{"AAA", "AA+"}, labels(slices))
	assert.InDelta(t, 88, slices[0].WeightPct, 1e-9)
}

func TestGroupLines_Unlabeled(t *testing.T) {
	lines := []Line{
		{MarketValue: 10, Weight: 0.5},
		{MarketValue: 10, Weight: 0.5},
	}
	slices := groupLines(lines, func(l Line) string { return l.Position.PaperType })
	require.Len(t, slices, 1)
	assert.Equal(t, unlabeled, slices[0].Label)
	assert.InDelta(t, 100, slices[0].WeightPct, 1e-9)
	assert.InDelta(t, 20, slices[0].MarketValue, 1e-9)
}

func TestRiskByRating_NotRatedLast(t *testing.T) {
	report := &Report{Lines: []Line{
		{MarketValue: 5, Weight: 0.5},
		{MarketValue: 5, Weight: 0.5, Reporto: true},
	}}
	assert.Equal(t, []string{"AAA", "NR"}, labels(report.RiskByRating()))
}
