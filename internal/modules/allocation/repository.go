package allocation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/rs/zerolog"
)

// Repository reads month-end client statistics from the warehouse.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new allocation repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "allocation").Logger(),
	}
}

// Holdings returns the amounts per product and asset class for alias on date.
func (r *Repository) Holdings(ctx context.Context, alias string, date time.Time) ([]Holding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			s.product_id,
			COALESCE(MAX(p.description), 'SIN_DESCRIPCION') AS description,
			s.asset_class_id,
			SUM(COALESCE(s.total_position, 0)) AS amount
		FROM client_statistics s
		LEFT JOIN products p ON p.product_id = s.product_id
		WHERE UPPER(s.alias) = UPPER(?)
		  AND date(s.statistic_date) = ?
		GROUP BY s.product_id, s.asset_class_id
		ORDER BY amount DESC
	`, alias, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query client statistics: %w", err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var (
			h          Holding
			assetClass sql.NullInt64
			amount     float64
		)
		if err := rows.Scan(&h.ProductID, &h.Description, &assetClass, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan client statistic: %w", err)
		}
		if assetClass.Valid {
			id := assetClass.Int64
			h.AssetClassID = &id
		}
		h.Amount = decimal.NewFromFloat(amount)
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating client statistics: %w", err)
	}

	r.log.Debug().
		Str("alias", alias).
		Time("date", date).
		Int("holdings", len(holdings)).
		Msg("Loaded client statistics")

	return holdings, nil
}
