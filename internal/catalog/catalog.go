// Package catalog keeps an in-memory copy of the reference data an order
// entry session needs: products, promotions, agents and agent groups. The
// backend stays the system of record; the cache only avoids re-fetching on
// every keystroke of a product code.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sellkit/orderdesk/internal/pricing"
	"github.com/sellkit/orderdesk/internal/salesapi"
)

// bloomFalsePositiveRate tunes the product-code prefilter. Misses cost one
// map lookup, so the rate can be generous.
const bloomFalsePositiveRate = 0.01

// Source is the part of the backend client the cache loads from.
type Source interface {
	FetchProducts(ctx context.Context, page, perPage int, filter salesapi.ProductFilter) ([]salesapi.Product, error)
	FetchPromotions(ctx context.Context) ([]pricing.Promotion, error)
	FetchAgents(ctx context.Context, page, perPage int) ([]salesapi.Agent, error)
	FetchAgentGroups(ctx context.Context) ([]salesapi.AgentGroup, error)
}

// Cache holds the primed reference data. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	byID       map[string]salesapi.Product
	byCode     map[string]salesapi.Product
	codes      *bloom.BloomFilter
	promotions []pricing.Promotion
	agents     []salesapi.Agent
	groups     []salesapi.AgentGroup
}

// New returns an empty cache. Prime or Restore fills it.
func New() *Cache {
	return &Cache{
		byID:   make(map[string]salesapi.Product),
		byCode: make(map[string]salesapi.Product),
	}
}

// Prime loads everything from the backend, paging through products and
// agents perPage at a time. The four collections load concurrently; the
// first failure cancels the rest.
func (c *Cache) Prime(ctx context.Context, src Source, perPage int) error {
	var (
		products   []salesapi.Product
		promotions []pricing.Promotion
		agents     []salesapi.Agent
		groups     []salesapi.AgentGroup
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = fetchAllProducts(ctx, src, perPage)
		return errors.Wrap(err, "products")
	})
	g.Go(func() error {
		var err error
		promotions, err = src.FetchPromotions(ctx)
		return errors.Wrap(err, "promotions")
	})
	g.Go(func() error {
		var err error
		agents, err = fetchAllAgents(ctx, src, perPage)
		return errors.Wrap(err, "agents")
	})
	g.Go(func() error {
		var err error
		groups, err = src.FetchAgentGroups(ctx)
		return errors.Wrap(err, "agent groups")
	})
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "prime catalog")
	}

	c.replace(products, promotions, agents, groups)
	return nil
}

func fetchAllProducts(ctx context.Context, src Source, perPage int) ([]salesapi.Product, error) {
	var all []salesapi.Product
	for page := 1; ; page++ {
		batch, err := src.FetchProducts(ctx, page, perPage, salesapi.ProductFilter{})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

func fetchAllAgents(ctx context.Context, src Source, perPage int) ([]salesapi.Agent, error) {
	var all []salesapi.Agent
	for page := 1; ; page++ {
		batch, err := src.FetchAgents(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < perPage {
			return all, nil
		}
	}
}

// replace swaps in a fresh data set and rebuilds the indexes.
func (c *Cache) replace(products []salesapi.Product, promotions []pricing.Promotion, agents []salesapi.Agent, groups []salesapi.AgentGroup) {
	byID := make(map[string]salesapi.Product, len(products))
	byCode := make(map[string]salesapi.Product, len(products))
	n := uint(len(products))
	if n == 0 {
		n = 1
	}
	codes := bloom.NewWithEstimates(n, bloomFalsePositiveRate)
	for _, p := range products {
		if p.ID != "" {
			byID[p.ID] = p
		}
		if code := normalizeCode(p.Code); code != "" {
			byCode[code] = p
			codes.AddString(code)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = byID
	c.byCode = byCode
	c.codes = codes
	c.promotions = promotions
	c.agents = agents
	c.groups = groups
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasCode reports whether a product code might exist. False is definite;
// true still needs LookupCode to confirm.
func (c *Cache) HasCode(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.codes == nil {
		return false
	}
	return c.codes.TestString(normalizeCode(code))
}

// LookupCode finds a product by its code, case-insensitively.
func (c *Cache) LookupCode(code string) (salesapi.Product, bool) {
	key := normalizeCode(code)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.codes != nil && !c.codes.TestString(key) {
		return salesapi.Product{}, false
	}
	p, ok := c.byCode[key]
	return p, ok
}

// LookupID finds a product by id.
func (c *Cache) LookupID(id string) (salesapi.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Promotions returns the cached promotion list.
func (c *Cache) Promotions() []pricing.Promotion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]pricing.Promotion, len(c.promotions))
	copy(out, c.promotions)
	return out
}

// Agents returns the cached agent list.
func (c *Cache) Agents() []salesapi.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]salesapi.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// AgentGroups returns the cached agent group list.
func (c *Cache) AgentGroups() []salesapi.AgentGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]salesapi.AgentGroup, len(c.groups))
	copy(out, c.groups)
	return out
}

// Products returns the cached product list in unspecified order.
func (c *Cache) Products() []salesapi.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]salesapi.Product, 0, len(c.byID))
	for _, p := range c.byID {
		out = append(out, p)
	}
	return out
}

// Len reports how many products are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
