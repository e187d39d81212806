package snapshots

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidParam is returned when a request parameter cannot be parsed.
var ErrInvalidParam = errors.New("invalid parameter")

// ParseQueryParams builds a Query from request parameters:
// alias, year, month, clients and products (comma-separated ids).
// Missing alias or period fall back to defaultAlias and the month of now.
func ParseQueryParams(values url.Values, defaultAlias string, now time.Time) (Query, error) {
	alias := strings.TrimSpace(values.Get("alias"))
	if alias == "" {
		alias = defaultAlias
	}
	q := CurrentMonth(alias, now)

	var err error
	if v := values.Get("year"); v != "" {
		if q.Year, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return Query{}, fmt.Errorf("%w: year %q", ErrInvalidParam, v)
		}
	}
	if v := values.Get("month"); v != "" {
		if q.Month, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return Query{}, fmt.Errorf("%w: month %q", ErrInvalidParam, v)
		}
	}
	if q.ClientIDs, err = ParseIDs(values.Get("clients")); err != nil {
		return Query{}, err
	}
	if q.ProductIDs, err = ParseIDs(values.Get("products")); err != nil {
		return Query{}, err
	}

	return q, q.Validate()
}

// ParseIDs reads a comma-separated id list. Blank entries are skipped.
func ParseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q", ErrInvalidParam, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
