// Package querycache stores query-layer results as msgpack blobs with
// expiration timestamps for cache-first reads.
package querycache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache tables.
const (
	TableSnapshots   = "snapshots"
	TableClients     = "catalog_clients"
	TableProducts    = "catalog_products"
	TableAllocations = "allocations"
)

// AllTables lists every table in the cache database for cleanup.
var AllTables = []string{
	TableSnapshots,
	TableClients,
	TableProducts,
	TableAllocations,
}

var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations over the cache database.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// validateTable rejects table names outside AllTables, which are
// interpolated into SQL.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves data with expiration = now + ttl, replacing any existing entry.
func (r *Repository) Store(table, key string, data interface{}, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (cache_key, data, expires_at) VALUES (?, ?, ?)",
		table,
	)
	if _, err := r.db.Exec(query, key, blob, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}
	return nil
}

// GetIfFresh decodes the entry into out when it has not expired.
// It reports false when the key is missing or stale.
func (r *Repository) GetIfFresh(table, key string, out interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ? AND expires_at > ?", table)
	return r.load(table, out, query, key, time.Now().Unix())
}

// Get decodes the entry into out regardless of expiration. Stale data is
// used as a fallback when the warehouse is unavailable.
func (r *Repository) Get(table, key string, out interface{}) (bool, error) {
	if err := validateTable(table); err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE cache_key = ?", table)
	return r.load(table, out, query, key)
}

func (r *Repository) load(table string, out interface{}, query string, args ...interface{}) (bool, error) {
	var blob []byte
	err := r.db.QueryRow(query, args...).Scan(&blob)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get data from %s: %w", table, err)
	}
	if err := msgpack.Unmarshal(blob, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal data from %s: %w", table, err)
	}
	return true, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = ?", table)
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

// DeleteExpired removes all rows where expires_at < now and returns the
// number of rows deleted.
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)
	result, err := r.db.Exec(query, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}
	return deleted, nil
}

// DeleteAllExpired removes expired entries from every table.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}

	return results, nil
}
