package ratings

import "regexp"

// Dialect identifies a family of rating notations.
type Dialect int

const (
	// DialectGlobal covers S&P/Fitch/HR long-term letters (AAA, AA+, ..., D),
	// including national-scale prefixes and suffixes (mxAAA, AAA.mx, HR AA).
	DialectGlobal Dialect = iota
	// DialectMoodys covers Moody's long-term notation (Aaa, Aa1, ..., C).
	DialectMoodys
	// DialectShortTerm covers short-term scales (A-1+, F1+, HR+1, P-1, MX-1),
	// each mapped to an equivalent long-term bucket.
	DialectShortTerm
)

func (d Dialect) String() string {
	switch d {
	case DialectGlobal:
		return "global"
	case DialectMoodys:
		return "moodys"
	case DialectShortTerm:
		return "short_term"
	default:
		return "unknown"
	}
}

// Rule maps every rating string matching Pattern to Bucket.
type Rule struct {
	Pattern *regexp.Regexp
	Bucket  Bucket
}

// Table is the ordered rule list of one dialect. Rules are tried in order and
// the first match wins.
type Table struct {
	Dialect Dialect
	Rules   []Rule
}

// rule compiles an anchored, case-insensitive pattern.
func rule(pattern string, bucket Bucket) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)^` + pattern + `$`), Bucket: bucket}
}

// national wraps a long-term core with the optional national-scale markers
// seen after normalization: "MXAAA", "HRAA+", "AAAMX", "AA-MEX".
func national(core string, bucket Bucket) Rule {
	return rule(`(?:MX|HR)?`+core+`(?:MX|MEX)?`, bucket)
}

// GlobalTable is the long-term letter scale shared by S&P, Fitch and HR Ratings.
var GlobalTable = Table{
	Dialect: DialectGlobal,
	Rules: []Rule{
		national(`AAA`, 1),
		national(`AA\+`, 2),
		national(`AA`, 3),
		national(`AA-`, 4),
		national(`A\+`, 5),
		national(`A`, 6),
		national(`A-`, 7),
		national(`BBB\+`, 8),
		national(`BBB`, 9),
		national(`BBB-`, 10),
		national(`BB\+`, 11),
		national(`BB`, 12),
		national(`BB-`, 13),
		national(`B\+`, 14),
		national(`B`, 15),
		national(`B-`, 16),
		national(`CCC\+`, 17),
		national(`CCC`, 18),
		national(`CCC-`, 19),
		national(`CC\+`, 20),
		national(`CC`, 21),
		national(`CC-`, 22),
		national(`C\+`, 23),
		national(`C`, 24),
		national(`C-`, 25),
		national(`(?:SD|RD|DDD|DD|D)`, 26),
	},
}

// MoodysTable is Moody's long-term scale. National ratings carry an "MX"
// suffix once periods are stripped ("Aa1.mx" → "AA1MX").
var MoodysTable = Table{
	Dialect: DialectMoodys,
	Rules: []Rule{
		rule(`AAA(?:MX)?`, 1),
		rule(`AA1(?:MX)?`, 2),
		rule(`AA2(?:MX)?`, 3),
		rule(`AA3(?:MX)?`, 4),
		rule(`A1(?:MX)?`, 5),
		rule(`A2(?:MX)?`, 6),
		rule(`A3(?:MX)?`, 7),
		rule(`BAA1(?:MX)?`, 8),
		rule(`BAA2(?:MX)?`, 9),
		rule(`BAA3(?:MX)?`, 10),
		rule(`BA1(?:MX)?`, 11),
		rule(`BA2(?:MX)?`, 12),
		rule(`BA3(?:MX)?`, 13),
		rule(`B1(?:MX)?`, 14),
		rule(`B2(?:MX)?`, 15),
		rule(`B3(?:MX)?`, 16),
		rule(`CAA1(?:MX)?`, 17),
		rule(`CAA2(?:MX)?`, 18),
		rule(`CAA3(?:MX)?`, 19),
		rule(`CA(?:MX)?`, 21),
		rule(`C(?:MX)?`, 24),
	},
}

// ShortTermTable maps short-term notations onto long-term buckets:
// top tier → AAA, tier 1 → AA-, tier 2 → BBB+, tier 3 → BBB-, speculative
// → BB, HR5 → CCC, default → D.
var ShortTermTable = Table{
	Dialect: DialectShortTerm,
	Rules: []Rule{
		rule(`HR\+1`, 1),
		rule(`(?:MX)?A-1\+`, 1),
		rule(`F1\+(?:MX|MEX)?`, 1),
		rule(`MX-1\+`, 1),
		rule(`HR1`, 4),
		rule(`(?:MX)?A-1`, 4),
		rule(`F1(?:MX|MEX)?`, 4),
		rule(`P-1(?:MX)?`, 4),
		rule(`MX-1`, 4),
		rule(`HR2`, 8),
		rule(`(?:MX)?A-2`, 8),
		rule(`F2(?:MX|MEX)?`, 8),
		rule(`P-2(?:MX)?`, 8),
		rule(`MX-2`, 8),
		rule(`HR3`, 10),
		rule(`(?:MX)?A-3`, 10),
		rule(`F3(?:MX|MEX)?`, 10),
		rule(`P-3(?:MX)?`, 10),
		rule(`MX-3`, 10),
		rule(`HR4`, 12),
		rule(`NP`, 12),
		rule(`MX-4`, 12),
		rule(`HR5`, 18),
		rule(`HRD`, 26),
	},
}

// DefaultTables lists the built-in dialect tables in cross-dialect fallback order.
func DefaultTables() []Table {
	return []Table{GlobalTable, MoodysTable, ShortTermTable}
}
