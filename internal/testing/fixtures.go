package testing

import (
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
)

// IssuerRow is one row of the issuers table. Nil pointers insert NULL.
type IssuerRow struct {
	IssuerID             int64
	IssuerName           string
	Series               string
	PaperType            string
	InstrumentType       string
	CouponPeriodDays     *float64
	MaturityDate         string
	ReferenceRateID      *int64
	SettlementCurrencyID *int64
	RatingSP             string
	RatingMoodys         string
	RatingHR             string
	RatingFitch          string
}

// PositionRow is one row of the position_history table.
type PositionRow struct {
	ClientID          int64
	ProductID         int64
	IssuerID          int64
	RecordedAt        string
	RawYield          interface{}
	NominalValue      *float64
	MarketValue       *float64
	ReportoTermDays   *float64
	RatingHomologated string
}

// StatisticRow is one row of the client_statistics table.
type StatisticRow struct {
	ClientID      int64
	Alias         string
	ProductID     int64
	AssetClassID  *int64
	StatisticDate string
	TotalPosition float64
}

// Warehouse inserts warehouse rows, failing the test on error.
type Warehouse struct {
	t  *testing.T
	db *sql.DB
}

// NewWarehouse wraps a migrated warehouse database.
func NewWarehouse(t *testing.T, db *sql.DB) *Warehouse {
	return &Warehouse{t: t, db: db}
}

func (w *Warehouse) exec(query string, args ...interface{}) {
	w.t.Helper()
	if _, err := w.db.Exec(query, args...); err != nil {
		w.t.Fatalf("fixture insert failed: %v\n%s", err, query)
	}
}

// Contract links a client to an alias.
func (w *Warehouse) Contract(clientID int64, alias string) *Warehouse {
	w.exec("INSERT INTO contracts (client_id, alias) VALUES (?, ?)", clientID, alias)
	return w
}

// Product inserts a product description.
func (w *Warehouse) Product(productID int64, description string) *Warehouse {
	w.exec("INSERT INTO products (product_id, description) VALUES (?, ?)", productID, description)
	return w
}

// Issuer inserts an issuer.
func (w *Warehouse) Issuer(r IssuerRow) *Warehouse {
	w.exec(`INSERT INTO issuers (
		issuer_id, issuer_name, series, paper_type, instrument_type, coupon_period_days,
		maturity_date, reference_rate_id, settlement_currency_id,
		rating_sp, rating_moodys, rating_hr, rating_fitch
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.IssuerID, r.IssuerName, r.Series, r.PaperType, r.InstrumentType, r.CouponPeriodDays,
		nullString(r.MaturityDate), r.ReferenceRateID, r.SettlementCurrencyID,
		r.RatingSP, r.RatingMoodys, r.RatingHR, r.RatingFitch,
	)
	return w
}

// Position inserts a position-history record.
func (w *Warehouse) Position(r PositionRow) *Warehouse {
	w.exec(`INSERT INTO position_history (
		client_id, product_id, issuer_id, recorded_at, raw_yield,
		nominal_value, market_value, reporto_term_days, rating_homologated
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ClientID, r.ProductID, r.IssuerID, r.RecordedAt, r.RawYield,
		r.NominalValue, r.MarketValue, r.ReportoTermDays, r.RatingHomologated,
	)
	return w
}

// ReferenceRate inserts a reference-rate observation.
func (w *Warehouse) ReferenceRate(id int64, name string, rate interface{}, date string) *Warehouse {
	w.exec("INSERT INTO reference_rates (reference_rate_id, name, rate, rate_date) VALUES (?, ?, ?, ?)",
		id, name, rate, date)
	return w
}

// Statistic inserts a client-statistics row.
func (w *Warehouse) Statistic(r StatisticRow) *Warehouse {
	w.exec(`INSERT INTO client_statistics (
		client_id, alias, product_id, asset_class_id, statistic_date, total_position
	) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ClientID, r.Alias, r.ProductID, r.AssetClassID, r.StatisticDate, r.TotalPosition,
	)
	return w
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }

// Date returns a pointer to the UTC midnight of the given day.
func Date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// NewPositionFixtures returns a small mixed debt snapshot: a government
// fixed-rate bond, a repo, a revisable corporate note and a UDI real-rate bond.
func NewPositionFixtures() []domain.Position {
	cutoff := Date(2025, time.January, 31)
	return []domain.Position{
		{
			ProductID:        10,
			ProductName:      "Deuda Gubernamental",
			IssuerID:         100,
			IssuerName:       "MBONO",
			Series:           "261203",
			PaperType:        "Gubernamental",
			InstrumentType:   "Tasa Fija",
			CouponPeriodDays: Float(182),
			MaturityDate:     Date(2026, time.December, 3),
			RawYield:         "9.85%",
			NominalValue:     Float(5000),
			MarketValue:      Float(600000),
			SnapshotDate:     cutoff,
			RatingSP:         "mxAAA",
			RatingFitch:      "AAA(mex)",
		},
		{
			ProductID:      10,
			ProductName:    "Deuda Gubernamental",
			IssuerID:       101,
			IssuerName:     "BONDESF",
			Series:         "REPO",
			PaperType:      "Reporto",
			InstrumentType: "Reporto",
			RawYield:       "10.00%",
			MarketValue:    Float(250000),
			SnapshotDate:   cutoff,
			DurationDays:   Float(1),
		},
		{
			ProductID:            11,
			ProductName:          "Deuda Corporativa",
			IssuerID:             102,
			IssuerName:           "BIMBO",
			Series:               "23",
			PaperType:            "Privado",
			InstrumentType:       "Tasa Revisable",
			CouponPeriodDays:     Float(28),
			MaturityDate:         Date(2028, time.June, 15),
			ReferenceRateID:      Int(37),
			RawYield:             "0.45%",
			ReferenceRateValue:   "10.25%",
			ReferenceRateName:    "TIIE Fondeo",
			NominalValue:         Float(1200),
			MarketValue:          Float(120000),
			SnapshotDate:         cutoff,
			RatingSP:             "mxAA",
			RatingHR:             "HR AA+",
			SettlementCurrencyID: Int(1),
		},
		{
			ProductID:            10,
			ProductName:          "Deuda Gubernamental",
			IssuerID:             103,
			IssuerName:           "UDIBONO",
			Series:               "351115",
			PaperType:            "Gubernamental",
			InstrumentType:       "Tasa Real",
			CouponPeriodDays:     Float(182),
			MaturityDate:         Date(2035, time.November, 15),
			SettlementCurrencyID: Int(domain.CurrencyUDI),
			RawYield:             "4.60%",
			NominalValue:         Float(300),
			MarketValue:          Float(30000),
			SnapshotDate:         cutoff,
			RatingMoodys:         "Aaa.mx",
		},
	}
}
