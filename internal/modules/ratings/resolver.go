package ratings

import (
	"regexp"
	"strings"

	"github.com/aristath/debtfolio/internal/domain"
)

// Agency is the source of a rating string.
type Agency string

const (
	AgencySP          Agency = "S&P"
	AgencyMoodys      Agency = "Moody's"
	AgencyHR          Agency = "HR"
	AgencyFitch       Agency = "Fitch"
	AgencyHomologated Agency = "Homologated"
)

// Precedence is the order agencies are considered in. On equal buckets the
// earlier agency is reported as the source.
var Precedence = []Agency{AgencySP, AgencyMoodys, AgencyHR, AgencyFitch, AgencyHomologated}

// bracketed strips country qualifiers such as "(mex)" or "[MX]".
var bracketed = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// Trailing fund-rating markers of a normalized rating: a volatility class
// ("/S1"), then Fitch's "vra" or the "f" suffix ("AAA(mex)vra", "mxAAAf/S1").
var (
	volatilityClass = regexp.MustCompile(`/[A-Z0-9+\-]+$`)
	fundQualifier   = regexp.MustCompile(`([A-Z0-9+\-])(?:VRA|F)$`)
)

// Sources holds the raw rating strings of one position, keyed by agency.
type Sources map[Agency]string

// SourcesFor collects the rating strings of a position.
func SourcesFor(p domain.Position) Sources {
	return Sources{
		AgencySP:          p.RatingSP,
		AgencyMoodys:      p.RatingMoodys,
		AgencyHR:          p.RatingHR,
		AgencyFitch:       p.RatingFitch,
		AgencyHomologated: p.RatingHomologated,
	}
}

// Resolved is the outcome of reconciling a position's ratings.
// A zero Bucket means no source matched.
type Resolved struct {
	Bucket Bucket `json:"bucket,omitempty"`
	Raw    string `json:"raw,omitempty"`
	Agency Agency `json:"agency,omitempty"`
}

// Rated reports whether any agency rating matched.
func (r Resolved) Rated() bool {
	return r.Bucket.Valid()
}

// Label returns the canonical label, or NotRated.
func (r Resolved) Label() string {
	return r.Bucket.Label()
}

// Resolver matches rating strings against dialect tables.
type Resolver struct {
	tables    []Table
	preferred map[Agency]Dialect
}

// NewResolver creates a resolver over the given tables. The order of tables is
// the cross-dialect fallback order; each agency first tries its own dialect.
func NewResolver(tables ...Table) *Resolver {
	if len(tables) == 0 {
		tables = DefaultTables()
	}
	return &Resolver{
		tables: tables,
		preferred: map[Agency]Dialect{
			AgencySP:          DialectGlobal,
			AgencyMoodys:      DialectMoodys,
			AgencyHR:          DialectGlobal,
			AgencyFitch:       DialectGlobal,
			AgencyHomologated: DialectGlobal,
		},
	}
}

var defaultResolver = NewResolver()

// Resolve reconciles the ratings of a position with the default tables.
func Resolve(p domain.Position) Resolved {
	return defaultResolver.Resolve(SourcesFor(p))
}

// Resolve picks, among the sources that match a rule, the lowest bucket.
// Sources are visited in Precedence order and only a strictly lower bucket
// replaces the current pick.
func (r *Resolver) Resolve(sources Sources) Resolved {
	var best Resolved
	for _, agency := range Precedence {
		raw := sources[agency]
		bucket, ok := r.Match(agency, raw)
		if !ok {
			continue
		}
		if !best.Rated() || bucket < best.Bucket {
			best = Resolved{Bucket: bucket, Raw: strings.TrimSpace(raw), Agency: agency}
		}
	}
	return best
}

// Match maps one agency's rating string to a bucket. The normalized form is
// tried before the original text; within each form the agency's own dialect
// is searched before the remaining tables.
func (r *Resolver) Match(agency Agency, raw string) (Bucket, bool) {
	if isMissing(raw) {
		return 0, false
	}
	forms := []string{Normalize(raw), strings.TrimSpace(raw)}
	order := r.tableOrder(agency)
	for _, form := range forms {
		if form == "" {
			continue
		}
		for _, t := range order {
			for _, rl := range t.Rules {
				if rl.Pattern.MatchString(form) {
					return rl.Bucket, true
				}
			}
		}
	}
	return 0, false
}

func (r *Resolver) tableOrder(agency Agency) []Table {
	dialect, ok := r.preferred[agency]
	if !ok {
		return r.tables
	}
	order := make([]Table, 0, len(r.tables))
	for _, t := range r.tables {
		if t.Dialect == dialect {
			order = append(order, t)
		}
	}
	for _, t := range r.tables {
		if t.Dialect != dialect {
			order = append(order, t)
		}
	}
	return order
}

// Normalize upper-cases a rating and strips bracketed qualifiers, periods,
// whitespace and fund-rating markers: "Aa1.mx" → "AA1MX", "AA+(mex)" → "AA+",
// "HR AA-" → "HRAA-", "AAA(mex)vra" → "AAA".
func Normalize(raw string) string {
	s := bracketed.ReplaceAllString(raw, "")
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Join(strings.Fields(s), "")
	s = volatilityClass.ReplaceAllString(s, "")
	return fundQualifier.ReplaceAllString(s, "$1")
}

func isMissing(raw string) bool {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null", "<na>":
		return true
	}
	return false
}
