package snapshots

import (
	"context"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/querycache"
	"github.com/rs/zerolog"
)

// Catalog lists the clients and products selectable for an alias.
type Catalog interface {
	Clients(ctx context.Context, alias string) ([]Client, error)
	Products(ctx context.Context, q Query) ([]Product, error)
}

// CachedSource serves snapshots from the cache database first and falls
// back to stale entries when the underlying source fails.
type CachedSource struct {
	source Source
	cache  *querycache.Repository
	ttl    time.Duration
	log    zerolog.Logger
}

// NewCachedSource wraps source with a TTL cache. A non-positive ttl uses
// querycache.TTLSnapshot.
func NewCachedSource(source Source, cache *querycache.Repository, ttl time.Duration, log zerolog.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = querycache.TTLSnapshot
	}
	return &CachedSource{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// Snapshot implements Source.
func (c *CachedSource) Snapshot(ctx context.Context, q Query) (*domain.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	key := q.Key()

	var cached domain.Snapshot
	ok, err := c.cache.GetIfFresh(querycache.TableSnapshots, key, &cached)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read snapshot cache")
	} else if ok {
		return cached.InUTC(), nil
	}

	return c.fetch(ctx, q, key)
}

// Refresh reloads the snapshot from the underlying source and stores it,
// ignoring any fresh cache entry.
func (c *CachedSource) Refresh(ctx context.Context, q Query) (*domain.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.fetch(ctx, q, q.Key())
}

func (c *CachedSource) fetch(ctx context.Context, q Query, key string) (*domain.Snapshot, error) {
	snap, err := c.source.Snapshot(ctx, q)
	if err != nil {
		var stale domain.Snapshot
		if ok, cerr := c.cache.Get(querycache.TableSnapshots, key, &stale); cerr == nil && ok {
			c.log.Warn().Err(err).Str("key", key).Msg("Snapshot source failed, serving stale cache entry")
			return stale.InUTC(), nil
		}
		return nil, err
	}

	if err := c.cache.Store(querycache.TableSnapshots, key, snap, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to store snapshot in cache")
	}
	return snap, nil
}

// CachedCatalog caches client and product listings.
type CachedCatalog struct {
	catalog Catalog
	cache   *querycache.Repository
	log     zerolog.Logger
}

// NewCachedCatalog wraps catalog with the catalog TTL.
func NewCachedCatalog(catalog Catalog, cache *querycache.Repository, log zerolog.Logger) *CachedCatalog {
	return &CachedCatalog{
		catalog: catalog,
		cache:   cache,
		log:     log.With().Str("component", "catalog_cache").Logger(),
	}
}

// Clients implements Catalog.
func (c *CachedCatalog) Clients(ctx context.Context, alias string) ([]Client, error) {
	var clients []Client
	err := c.load(querycache.TableClients, "clients|"+alias, &clients, func() (interface{}, error) {
		fresh, err := c.catalog.Clients(ctx, alias)
		clients = fresh
		return fresh, err
	})
	if clients == nil && err == nil {
		clients = []Client{}
	}
	return clients, err
}

// Products implements Catalog.
func (c *CachedCatalog) Products(ctx context.Context, q Query) ([]Product, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var products []Product
	err := c.load(querycache.TableProducts, "products|"+q.Key(), &products, func() (interface{}, error) {
		fresh, err := c.catalog.Products(ctx, q)
		products = fresh
		return fresh, err
	})
	if products == nil && err == nil {
		products = []Product{}
	}
	return products, err
}

// load decodes a fresh entry into out, or runs fetch and stores its result.
// fetch must also assign its result to out.
func (c *CachedCatalog) load(table, key string, out interface{}, fetch func() (interface{}, error)) error {
	ok, err := c.cache.GetIfFresh(table, key, out)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read catalog cache")
	} else if ok {
		return nil
	}

	data, err := fetch()
	if err != nil {
		if ok, cerr := c.cache.Get(table, key, out); cerr == nil && ok {
			c.log.Warn().Err(err).Str("key", key).Msg("Catalog query failed, serving stale cache entry")
			return nil
		}
		return err
	}

	if err := c.cache.Store(table, key, data, querycache.TTLCatalog); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to store catalog in cache")
	}
	return nil
}
