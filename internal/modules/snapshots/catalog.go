package snapshots

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aristath/debtfolio/internal/domain"
)

// Client is a client contract under an alias.
type Client struct {
	ID    int64  `json:"id" msgpack:"id"`
	Label string `json:"label" msgpack:"label"`
}

// Product is a product with position history in a month.
type Product struct {
	ID          int64  `json:"id" msgpack:"id"`
	Description string `json:"description" msgpack:"description"`
	AssetClass  string `json:"asset_class" msgpack:"asset_class"`
}

// Clients lists the distinct client ids contracted under alias.
func (r *Repository) Clients(ctx context.Context, alias string) ([]Client, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, ErrMissingAlias
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT client_id
		FROM contracts
		WHERE UPPER(alias) = UPPER(?)
		ORDER BY client_id
	`, alias)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, Client{ID: id, Label: fmt.Sprintf("Cliente %d", id)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	return clients, nil
}

// productsSQL finds products with history in the month and labels each with
// the asset class holding its largest month-end position.
// The format verbs take the history client filter and the statistics client filter.
const productsSQL = `
WITH prod_his AS (
  SELECT DISTINCT h.product_id
  FROM position_history h
  WHERE date(h.recorded_at) >= ?
    AND date(h.recorded_at) < ?
    AND EXISTS (
      SELECT 1 FROM contracts c
      WHERE UPPER(c.alias) = UPPER(?) AND c.client_id = h.client_id
    )%s
),
pred AS (
  SELECT
    s.product_id,
    s.asset_class_id,
    SUM(s.total_position) AS amount,
    ROW_NUMBER() OVER (PARTITION BY s.product_id ORDER BY SUM(s.total_position) DESC) AS rn
  FROM client_statistics s
  JOIN contracts c ON c.client_id = s.client_id
  WHERE UPPER(c.alias) = UPPER(?)
    AND date(s.statistic_date) = ?%s
  GROUP BY s.product_id, s.asset_class_id
)
SELECT
  ph.product_id,
  COALESCE(p.description, 'SIN_DESCRIPCION') AS description,
  pred.asset_class_id
FROM prod_his ph
LEFT JOIN products p ON p.product_id = ph.product_id
LEFT JOIN pred ON pred.product_id = ph.product_id AND pred.rn = 1
ORDER BY 2, 1
`

// Products lists the products the query's clients held during its month.
// The query's product filter is ignored.
func (r *Repository) Products(ctx context.Context, q Query) ([]Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	historyFilter, statsFilter := "", ""
	clientArgs := make([]interface{}, 0, len(q.ClientIDs))
	if len(q.ClientIDs) > 0 {
		ph := placeholders(len(q.ClientIDs))
		historyFilter = "\n    AND h.client_id IN (" + ph + ")"
		statsFilter = "\n    AND s.client_id IN (" + ph + ")"
		for _, id := range q.ClientIDs {
			clientArgs = append(clientArgs, id)
		}
	}

	args := []interface{}{
		q.PeriodStart().Format(dateLayout),
		q.PeriodEnd().Format(dateLayout),
		q.Alias,
	}
	args = append(args, clientArgs...)
	args = append(args, q.Alias, q.MonthEnd().Format(dateLayout))
	args = append(args, clientArgs...)

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(productsSQL, historyFilter, statsFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	seen := make(map[int64]bool)
	products := make([]Product, 0)
	for rows.Next() {
		var (
			p          Product
			assetClass sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Description, &assetClass); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		p.AssetClass = domain.AssetClassLabel(intPtr(assetClass))
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
