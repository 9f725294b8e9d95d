package geocode

import (
	"context"

	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/address"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
	"github.com/foodwatch-nsw/offences-cli/pkg/nominatim"
)

// Outcome classifies what Resolve did with a notice.
type Outcome int

const (
	// OutcomeNoAddress means the notice has no full address and was skipped.
	OutcomeNoAddress Outcome = iota
	// OutcomeAlreadyGeocoded means the notice already carried coordinates.
	OutcomeAlreadyGeocoded
	// OutcomeCacheHit means coordinates were copied from the address cache.
	OutcomeCacheHit
	// OutcomeResolved means the provider matched one of the address variants.
	OutcomeResolved
	// OutcomeFailed means every variant was tried and none matched.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoAddress:
		return "no_address"
	case OutcomeAlreadyGeocoded:
		return "already_geocoded"
	case OutcomeCacheHit:
		return "cache_hit"
	case OutcomeResolved:
		return "resolved"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Searcher is the provider lookup the resolver needs.
type Searcher interface {
	Search(ctx context.Context, query string) (nominatim.Result, error)
}

// CacheStore persists resolved addresses across runs.
type CacheStore interface {
	PutCache(ctx context.Context, key string, lat, lon float64) error
}

// Resolution reports the outcome for one notice. Variants holds the variant
// list whenever the provider loop ran, for the failed-geocoding report;
// VariantUsed is the variant the provider matched on OutcomeResolved.
type Resolution struct {
	Outcome     Outcome
	Variants    []string
	VariantUsed string
}

// Resolver geocodes notices one at a time: cache first, then each address
// variant against the provider until one matches.
type Resolver struct {
	client  Searcher
	cache   *Cache
	store   CacheStore
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCacheStore adds write-through persistence for resolved addresses.
func WithCacheStore(cs CacheStore) ResolverOption {
	return func(r *Resolver) {
		r.store = cs
	}
}

// WithRetry overrides the provider retry policy.
func WithRetry(cfg resilience.RetryConfig) ResolverOption {
	return func(r *Resolver) {
		r.retry = cfg
	}
}

// WithBreaker adds a circuit breaker around provider lookups. When the
// provider keeps failing the remaining variants short-circuit instead of
// burning a rate-limited request each.
func WithBreaker(cb *resilience.CircuitBreaker) ResolverOption {
	return func(r *Resolver) {
		r.breaker = cb
	}
}

// NewResolver creates a Resolver over the given provider and cache.
func NewResolver(client Searcher, cache *Cache, opts ...ResolverOption) *Resolver {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("nominatim", "search")

	r := &Resolver{
		client: client,
		cache:  cache,
		retry:  retry,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fills in coordinates for n. Provider errors on one variant are
// logged and the next variant is tried; only context cancellation aborts.
// A notice no variant matches comes back OutcomeFailed, not an error.
func (r *Resolver) Resolve(ctx context.Context, n *model.Notice) (Resolution, error) {
	full := n.Address.Full
	if full == "" {
		return Resolution{Outcome: OutcomeNoAddress}, nil
	}
	if n.Geocoded() {
		return Resolution{Outcome: OutcomeAlreadyGeocoded}, nil
	}

	if coord, ok := r.cache.Get(full); ok {
		n.SetCoordinates(coord.Lat, coord.Lon)
		return Resolution{Outcome: OutcomeCacheHit}, nil
	}

	variants := address.Variants(full)
	for _, variant := range variants {
		result, err := r.search(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return Resolution{}, err
			}
			zap.L().Warn("variant lookup failed",
				zap.String("address", variant),
				zap.Error(err))
			continue
		}
		if !result.Matched {
			continue
		}

		n.SetCoordinates(result.Lat, result.Lon)
		r.fanOut(ctx, variants, result.Lat, result.Lon)
		zap.L().Info("resolved",
			zap.String("notice", n.PenaltyNoticeNumber),
			zap.String("variant", variant))
		return Resolution{Outcome: OutcomeResolved, Variants: variants, VariantUsed: variant}, nil
	}

	return Resolution{Outcome: OutcomeFailed, Variants: variants}, nil
}

// search runs one variant lookup with retries, through the circuit breaker
// when one is configured.
func (r *Resolver) search(ctx context.Context, variant string) (nominatim.Result, error) {
	lookup := func(ctx context.Context) (nominatim.Result, error) {
		return resilience.DoVal(ctx, r.retry, func(ctx context.Context) (nominatim.Result, error) {
			return r.client.Search(ctx, variant)
		})
	}
	if r.breaker == nil {
		return lookup(ctx)
	}
	return resilience.ExecuteVal(ctx, r.breaker, lookup)
}

// fanOut caches the resolved coordinates under every variant of the address,
// so later notices at the same premises hit the cache whichever form their
// address takes. Variants another address already resolved keep their first
// coordinates.
func (r *Resolver) fanOut(ctx context.Context, variants []string, lat, lon float64) {
	for _, v := range variants {
		if _, ok := r.cache.Get(v); ok {
			continue
		}
		r.cache.Put(v, Coord{Lat: lat, Lon: lon})
		if r.store == nil {
			continue
		}
		if err := r.store.PutCache(ctx, address.Normalize(v), lat, lon); err != nil {
			zap.L().Warn("cache write-through failed",
				zap.String("address", v),
				zap.Error(err))
		}
	}
}
