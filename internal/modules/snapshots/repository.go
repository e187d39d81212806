package snapshots

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/rs/zerolog"
)

// FallbackReferenceRateIDs are the reference rates (37 = TIIE Fondeo,
// 3 = CETES 182) looked up on or before the cut-off date when no value
// exists on the cut-off date itself.
var FallbackReferenceRateIDs = []int64{37, 3}

const dateLayout = "2006-01-02"

// Repository reads debt snapshots from the warehouse database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a warehouse snapshot repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// snapshotSQL aggregates the alias's position history on the cut-off date
// (the latest record date within the month) per product and issuer.
// The format verbs take the optional client/product filter and the fallback
// rate-id placeholders, in that order.
const snapshotSQL = `
WITH cutoff AS (
  SELECT MAX(date(h1.recorded_at)) AS cutoff_date
  FROM position_history h1
  WHERE date(h1.recorded_at) >= ?
    AND date(h1.recorded_at) < ?
    AND EXISTS (
      SELECT 1 FROM contracts c1
      WHERE UPPER(c1.alias) = UPPER(?) AND c1.client_id = h1.client_id
    )
),
h_cut AS (
  SELECT h.*
  FROM position_history h
  JOIN cutoff fc ON date(h.recorded_at) = fc.cutoff_date
  WHERE EXISTS (
    SELECT 1 FROM contracts c
    WHERE UPPER(c.alias) = UPPER(?) AND c.client_id = h.client_id
  )%s
),
rate_exact AS (
  SELECT r.reference_rate_id, r.rate, r.name
  FROM reference_rates r
  CROSS JOIN cutoff fc
  WHERE date(r.rate_date) = fc.cutoff_date
),
rate_fallback AS (
  SELECT x.reference_rate_id, x.rate, x.name
  FROM (
    SELECT r.reference_rate_id, r.rate, r.name,
           ROW_NUMBER() OVER (PARTITION BY r.reference_rate_id ORDER BY date(r.rate_date) DESC) AS rn
    FROM reference_rates r
    CROSS JOIN cutoff fc
    WHERE r.reference_rate_id IN (%s)
      AND r.rate_date IS NOT NULL
      AND date(r.rate_date) <= fc.cutoff_date
  ) x
  WHERE x.rn = 1
),
rate_ref AS (
  SELECT e.reference_rate_id, e.rate, e.name FROM rate_exact e
  UNION ALL
  SELECT f.reference_rate_id, f.rate, f.name FROM rate_fallback f
  WHERE NOT EXISTS (SELECT 1 FROM rate_exact e WHERE e.reference_rate_id = f.reference_rate_id)
)
SELECT
  h.product_id,
  MAX(p.description)                AS product_name,
  h.issuer_id,
  MAX(e.issuer_name)                AS issuer_name,
  MAX(e.series)                     AS series,
  MAX(e.paper_type)                 AS paper_type,
  MAX(e.instrument_type)            AS instrument_type,
  MAX(e.coupon_period_days)         AS coupon_period_days,
  MAX(e.maturity_date)              AS maturity_date,
  MAX(e.reference_rate_id)          AS reference_rate_id,
  MAX(e.settlement_currency_id)     AS settlement_currency_id,
  MAX(e.rating_sp)                  AS rating_sp,
  MAX(e.rating_moodys)              AS rating_moodys,
  MAX(e.rating_hr)                  AS rating_hr,
  MAX(e.rating_fitch)               AS rating_fitch,
  MAX(h.rating_homologated)         AS rating_homologated,
  MAX(h.raw_yield)                  AS raw_yield,
  SUM(h.nominal_value)              AS nominal_value,
  SUM(h.market_value)               AS market_value,
  MAX(COALESCE(h.reporto_term_days, 0)) AS reporto_term_days,
  CASE WHEN SUM(h.market_value) IS NULL OR SUM(h.market_value) = 0 THEN NULL
       ELSE SUM(COALESCE(h.reporto_term_days, 0) * h.market_value) / SUM(h.market_value)
  END                               AS duration_days,
  julianday(date(MAX(e.maturity_date))) - julianday(MAX(date(h.recorded_at))) AS days_to_maturity,
  MAX(date(h.recorded_at))          AS cutoff_date,
  MAX(vtr.rate)                     AS reference_rate_value,
  MAX(vtr.name)                     AS reference_rate_name
FROM h_cut h
LEFT JOIN issuers e ON e.issuer_id = h.issuer_id
LEFT JOIN products p ON p.product_id = h.product_id
LEFT JOIN rate_ref vtr ON vtr.reference_rate_id = e.reference_rate_id
GROUP BY h.product_id, h.issuer_id
ORDER BY SUM(h.market_value) DESC, MAX(e.issuer_name)
`

// Snapshot returns the aggregated debt positions of the query's alias on the
// month's cut-off date. A month without history yields an empty snapshot.
func (r *Repository) Snapshot(ctx context.Context, q Query) (*domain.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	args := []interface{}{
		q.PeriodStart().Format(dateLayout),
		q.PeriodEnd().Format(dateLayout),
		q.Alias,
		q.Alias,
	}

	var filter strings.Builder
	if len(q.ClientIDs) > 0 {
		filter.WriteString("\n  AND h.client_id IN (" + placeholders(len(q.ClientIDs)) + ")")
		for _, id := range q.ClientIDs {
			args = append(args, id)
		}
	}
	if len(q.ProductIDs) > 0 {
		filter.WriteString("\n  AND h.product_id IN (" + placeholders(len(q.ProductIDs)) + ")")
		for _, id := range q.ProductIDs {
			args = append(args, id)
		}
	}
	for _, id := range FallbackReferenceRateIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(snapshotSQL, filter.String(), placeholders(len(FallbackReferenceRateIDs)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	snap := &domain.Snapshot{Alias: q.Alias}
	for rows.Next() {
		p, cutoff, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		if snap.CutoffDate == nil && cutoff != nil {
			snap.CutoffDate = cutoff
		}
		snap.Positions = append(snap.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}

	r.log.Debug().
		Str("query", q.Key()).
		Int("positions", len(snap.Positions)).
		Msg("Loaded warehouse snapshot")

	return snap, nil
}

func scanPosition(rows *sql.Rows) (domain.Position, *time.Time, error) {
	var (
		p                  domain.Position
		productName        sql.NullString
		issuerName         sql.NullString
		series             sql.NullString
		paperType          sql.NullString
		instrumentType     sql.NullString
		couponPeriod       sql.NullFloat64
		maturity           sql.NullString
		referenceRateID    sql.NullInt64
		currencyID         sql.NullInt64
		ratingSP           sql.NullString
		ratingMoodys       sql.NullString
		ratingHR           sql.NullString
		ratingFitch        sql.NullString
		ratingHomologated  sql.NullString
		nominal            sql.NullFloat64
		market             sql.NullFloat64
		reportoTerm        sql.NullFloat64
		duration           sql.NullFloat64
		daysToMaturity     sql.NullFloat64
		cutoff             sql.NullString
		referenceRateName  sql.NullString
		rawYield           interface{}
		referenceRateValue interface{}
	)

	err := rows.Scan(
		&p.ProductID, &productName, &p.IssuerID, &issuerName, &series,
		&paperType, &instrumentType, &couponPeriod, &maturity,
		&referenceRateID, &currencyID,
		&ratingSP, &ratingMoodys, &ratingHR, &ratingFitch, &ratingHomologated,
		&rawYield, &nominal, &market, &reportoTerm, &duration, &daysToMaturity,
		&cutoff, &referenceRateValue, &referenceRateName,
	)
	if err != nil {
		return p, nil, fmt.Errorf("failed to scan snapshot row: %w", err)
	}

	p.ProductName = productName.String
	p.IssuerName = issuerName.String
	p.Series = series.String
	p.PaperType = paperType.String
	p.InstrumentType = instrumentType.String
	p.CouponPeriodDays = floatPtr(couponPeriod)
	p.MaturityDate = parseDate(maturity)
	p.ReferenceRateID = intPtr(referenceRateID)
	p.SettlementCurrencyID = intPtr(currencyID)
	p.RatingSP = ratingSP.String
	p.RatingMoodys = ratingMoodys.String
	p.RatingHR = ratingHR.String
	p.RatingFitch = ratingFitch.String
	p.RatingHomologated = ratingHomologated.String
	p.RawYield = normalizeScanned(rawYield)
	p.NominalValue = floatPtr(nominal)
	p.MarketValue = floatPtr(market)
	p.ReportoTermDays = reportoTerm.Float64
	p.DurationDays = floatPtr(duration)
	p.DaysToMaturity = floatPtr(daysToMaturity)
	p.ReferenceRateValue = normalizeScanned(referenceRateValue)
	p.ReferenceRateName = referenceRateName.String

	cut := parseDate(cutoff)
	p.SnapshotDate = cut
	return p, cut, nil
}

// normalizeScanned turns driver byte slices into strings so cached and
// serialized snapshots keep text values as text.
func normalizeScanned(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	i := v.Int64
	return &i
}

// parseDate reads the leading YYYY-MM-DD of a stored date or timestamp.
func parseDate(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	s := strings.TrimSpace(v.String)
	if len(s) < len(dateLayout) {
		return nil
	}
	t, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return nil
	}
	return &t
}
