// Package snapshots loads point-in-time debt position snapshots from the
// warehouse, a YAML file or a TTL cache in front of either.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidPeriod is returned for a year or month outside the supported range.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrMissingAlias is returned when a query names no portfolio alias.
	ErrMissingAlias = errors.New("missing alias")
)

// Source produces the snapshot for a query. Implementations may block on I/O.
type Source interface {
	Snapshot(ctx context.Context, q Query) (*domain.Snapshot, error)
}

// Query selects the positions of one alias for one calendar month.
// Empty ClientIDs or ProductIDs mean no filter.
type Query struct {
	Alias      string  `json:"alias" msgpack:"alias" validate:"required"`
	Year       int     `json:"year" msgpack:"year" validate:"gte=2000,lte=2100"`
	Month      int     `json:"month" msgpack:"month" validate:"gte=1,lte=12"`
	ClientIDs  []int64 `json:"client_ids,omitempty" msgpack:"client_ids"`
	ProductIDs []int64 `json:"product_ids,omitempty" msgpack:"product_ids"`
}

var validate = validator.New()

// Validate checks the alias and period of the query.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Alias":
			return ErrMissingAlias
		case "Year", "Month":
			return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, q.Year, q.Month)
		}
	}
	return err
}

// PeriodStart is the first day of the queried month.
func (q Query) PeriodStart() time.Time {
	return time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
}

// PeriodEnd is the first day of the following month (exclusive bound).
func (q Query) PeriodEnd() time.Time {
	return q.PeriodStart().AddDate(0, 1, 0)
}

// MonthEnd is the last calendar day of the queried month.
func (q Query) MonthEnd() time.Time {
	return q.PeriodEnd().AddDate(0, 0, -1)
}

// ShiftMonths returns the same query moved n months (negative moves back).
func (q Query) ShiftMonths(n int) Query {
	t := q.PeriodStart().AddDate(0, n, 0)
	shifted := q
	shifted.Year = t.Year()
	shifted.Month = int(t.Month())
	return shifted
}

// Key is a stable identifier for the query, independent of filter order.
func (q Query) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%04d-%02d", strings.ToUpper(q.Alias), q.Year, q.Month)
	b.WriteString("|c=")
	b.WriteString(joinIDs(q.ClientIDs))
	b.WriteString("|p=")
	b.WriteString(joinIDs(q.ProductIDs))
	return b.String()
}

func joinIDs(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// CurrentMonth returns a query for the month containing now.
func CurrentMonth(alias string, now time.Time) Query {
	return Query{Alias: alias, Year: now.Year(), Month: int(now.Month())}
}
