// Package rates normalizes rate values of unknown scale into decimal fractions.
//
// Upstream sources encode the same rate as 12.5, "12.5%", "12,5" or 0.125
// with no type tag, so a single value cannot always be scaled on its own.
// Parsing is therefore split in two passes: Parse reads each value, and
// AutoScale decides the scale for a whole column from its median.
package rates

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// overrideMin and overrideMax bound raw yields that are forced to
	// percentage scale when a position has no reference rate.
	overrideMin = 2.0
	overrideMax = 40.0

	// maxDecimalRate discards decimal rates above 200% as data-quality noise.
	maxDecimalRate = 2.0
)

// thousandsSep matches a comma used as a thousands separator: a digit, a
// comma and exactly three digits followed by a word boundary.
var thousandsSep = regexp.MustCompile(`(\d),(\d{3})\b`)

// reading is a single parsed value. percent is set when the source text
// carried an explicit '%' sign, which fixes the scale regardless of the column.
type reading struct {
	value   float64
	ok      bool
	percent bool
}

// Parse reads a numeric or textual rate and returns its numeric value with the
// scale left untouched ("12.5%" → 12.5, "12,5" → 12.5, 0.125 → 0.125).
// Unparseable input, nil and NaN return nil; Parse never fails.
func Parse(v interface{}) *float64 {
	r := read(v)
	if !r.ok {
		return nil
	}
	return &r.value
}

// ParseRate converts a single value into a decimal fraction. Values written
// with '%' are always percentages; bare numbers follow the column rule applied
// to a one-element column (0 < v < 1 is already decimal, anything else is /100).
func ParseRate(v interface{}) *float64 {
	return ParseColumn([]interface{}{v})[0]
}

// ParseColumn parses every value and applies AutoScale to the values whose
// scale is not fixed by a '%' sign. The result has the same length as values.
func ParseColumn(values []interface{}) []*float64 {
	readings := make([]reading, len(values))
	untagged := make([]*float64, 0, len(values))
	for i, v := range values {
		readings[i] = read(v)
		if readings[i].ok && !readings[i].percent {
			val := readings[i].value
			untagged = append(untagged, &val)
		}
	}

	factor := scaleFactor(untagged)

	out := make([]*float64, len(values))
	for i, r := range readings {
		if !r.ok {
			continue
		}
		var d float64
		if r.percent {
			d = r.value / 100
		} else {
			d = r.value * factor
		}
		out[i] = &d
	}
	return out
}

// AutoScale returns the column unchanged when its median lies strictly between
// 0 and 1 (already decimal), otherwise every value divided by 100.
// Nil entries stay nil. The input slice is not modified.
func AutoScale(values []*float64) []*float64 {
	factor := scaleFactor(values)
	out := make([]*float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		d := *v * factor
		out[i] = &d
	}
	return out
}

// NormalizeYields turns the raw quoted yields of a snapshot into decimal
// fractions. linked[i] tells whether position i has a reference rate.
//
// On top of ParseColumn, a yield of a position without a reference rate whose
// parsed magnitude lies in (2, 40] is always read as a percentage, so a single
// outlier cannot be left unscaled by the median. Any resulting decimal above
// 200% in magnitude is dropped.
func NormalizeYields(raw []interface{}, linked []bool) []*float64 {
	scaled := ParseColumn(raw)
	for i, v := range raw {
		isLinked := i < len(linked) && linked[i]
		if !isLinked {
			if r := read(v); r.ok {
				abs := math.Abs(r.value)
				if abs > overrideMin && abs <= overrideMax {
					d := r.value / 100
					scaled[i] = &d
				}
			}
		}
		if scaled[i] != nil && math.Abs(*scaled[i]) > maxDecimalRate {
			scaled[i] = nil
		}
	}
	return scaled
}

// Median returns the median of the non-nil values, or nil when there are none.
// Even-sized inputs average the two middle values.
func Median(values []*float64) *float64 {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			nums = append(nums, *v)
		}
	}
	if len(nums) == 0 {
		return nil
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	m := nums[mid]
	if len(nums)%2 == 0 {
		m = (nums[mid-1] + nums[mid]) / 2
	}
	return &m
}

func scaleFactor(values []*float64) float64 {
	if med := Median(values); med != nil && *med > 0 && *med < 1 {
		return 1
	}
	return 0.01
}

func read(v interface{}) reading {
	switch x := v.(type) {
	case nil:
		return reading{}
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return fromFloat(float64(x))
	case int8:
		return fromFloat(float64(x))
	case int16:
		return fromFloat(float64(x))
	case int32:
		return fromFloat(float64(x))
	case int64:
		return fromFloat(float64(x))
	case uint:
		return fromFloat(float64(x))
	case uint8:
		return fromFloat(float64(x))
	case uint16:
		return fromFloat(float64(x))
	case uint32:
		return fromFloat(float64(x))
	case uint64:
		return fromFloat(float64(x))
	case *float64:
		if x == nil {
			return reading{}
		}
		return fromFloat(*x)
	case json.Number:
		return readString(string(x))
	case string:
		return readString(x)
	case *string:
		if x == nil {
			return reading{}
		}
		return readString(*x)
	case []byte:
		return readString(string(x))
	default:
		return reading{}
	}
}

func fromFloat(f float64) reading {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return reading{}
	}
	return reading{value: f, ok: true}
}

func readString(s string) reading {
	s = strings.TrimSpace(s)
	percent := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" || strings.EqualFold(s, "nan") {
		return reading{}
	}

	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		// decimal comma: "12,5"
		s = strings.Replace(s, ",", ".", 1)
	}
	for {
		next := thousandsSep.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return reading{}
	}
	r := fromFloat(f)
	r.percent = r.ok && percent
	return r
}
