package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
	"github.com/foodwatch-nsw/offences-cli/internal/resilience"
	"github.com/foodwatch-nsw/offences-cli/pkg/nominatim"
)

// fakeSearcher returns canned results keyed by the exact query string.
// Unknown queries come back unmatched.
type fakeSearcher struct {
	results map[string]nominatim.Result
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) (nominatim.Result, error) {
	f.calls = append(f.calls, query)
	if err, ok := f.errs[query]; ok {
		return nominatim.Result{}, err
	}
	return f.results[query], nil
}

// fakeCacheStore records write-through puts.
type fakeCacheStore struct {
	puts map[string]Coord
}

func (f *fakeCacheStore) PutCache(_ context.Context, key string, lat, lon float64) error {
	if f.puts == nil {
		f.puts = make(map[string]Coord)
	}
	f.puts[key] = Coord{Lat: lat, Lon: lon}
	return nil
}

func noRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 1}
}

func noticeAt(full string) *model.Notice {
	return &model.Notice{
		Type:                model.TypePenaltyNotice,
		PenaltyNoticeNumber: "3000000001",
		Name:                "GOLDEN WOK",
		Address:             model.Address{Full: full},
	}
}

func TestCache_PutGetNormalizes(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.Put("  14  Main st, Cambridge Gardens ", Coord{Lat: -33.7, Lon: 150.7})

	got, ok := c.Get("14 MAIN ST, CAMBRIDGE GARDENS")
	require.True(t, ok)
	assert.Equal(t, Coord{Lat: -33.7, Lon: 150.7}, got)

	_, ok = c.Get("15 Main St, Cambridge Gardens")
	assert.False(t, ok)
}

func TestCache_WarmFromNotices(t *testing.T) {
	t.Parallel()

	geocoded := noticeAt("14 Main Street, Cambridge Gardens, 2747")
	geocoded.SetCoordinates(-33.7, 150.7)

	ungeocoded := noticeAt("1 George Street, Sydney, 2000")

	noAddress := noticeAt("")
	noAddress.SetCoordinates(-33.8, 151.2)

	c := NewCache()
	n := c.WarmFromNotices(map[string]*model.Notice{
		"3000000001": geocoded,
		"3000000002": ungeocoded,
		"3000000003": noAddress,
	})

	assert.Equal(t, 1, n)
	got, ok := c.Get("14 Main Street, Cambridge Gardens, 2747")
	require.True(t, ok)
	assert.Equal(t, Coord{Lat: -33.7, Lon: 150.7}, got)
}

func TestCache_WarmFromNoticesIDOrder(t *testing.T) {
	t.Parallel()

	// Same address with diverging coordinates: the highest id wins,
	// regardless of map iteration order.
	a := noticeAt("14 Main Street, Cambridge Gardens, 2747")
	a.SetCoordinates(-33.1, 150.1)
	b := noticeAt("14 Main Street, Cambridge Gardens, 2747")
	b.SetCoordinates(-33.2, 150.2)

	c := NewCache()
	c.WarmFromNotices(map[string]*model.Notice{
		"3000000002": b,
		"3000000001": a,
	})

	got, _ := c.Get("14 Main Street, Cambridge Gardens, 2747")
	assert.Equal(t, Coord{Lat: -33.2, Lon: 150.2}, got)
}

func TestResolve_NoAddress(t *testing.T) {
	t.Parallel()

	f := &fakeSearcher{}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	res, err := r.Resolve(context.Background(), noticeAt(""))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoAddress, res.Outcome)
	assert.Empty(t, f.calls)
}

func TestResolve_AlreadyGeocoded(t *testing.T) {
	t.Parallel()

	n := noticeAt("1/5 George Street, Sydney, 2000")
	n.SetCoordinates(-33.8, 151.2)

	f := &fakeSearcher{}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyGeocoded, res.Outcome)
	assert.Empty(t, f.calls)
}

func TestResolve_CacheHit(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	cache.Put("1/5 George Street, Sydney, 2000", Coord{Lat: -33.8688, Lon: 151.2093})

	f := &fakeSearcher{}
	r := NewResolver(f, cache, WithRetry(noRetry()))

	n := noticeAt("1/5 George Street, Sydney, 2000")
	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCacheHit, res.Outcome)
	assert.True(t, n.Geocoded())
	lat, lon := n.Coordinates()
	assert.Equal(t, -33.8688, lat)
	assert.Equal(t, 151.2093, lon)
	assert.Empty(t, f.calls)
}

func TestResolve_MatchOnFirstVariant(t *testing.T) {
	t.Parallel()

	f := &fakeSearcher{results: map[string]nominatim.Result{
		"1/5 George Street, Sydney, 2000": {Lat: -33.8688, Lon: 151.2093, Matched: true},
	}}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	n := noticeAt("1/5 George Street, Sydney, 2000")
	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, "1/5 George Street, Sydney, 2000", res.VariantUsed)
	assert.True(t, n.Geocoded())
	assert.Equal(t, []string{"1/5 George Street, Sydney, 2000"}, f.calls)
}

func TestResolve_FallsThroughVariants(t *testing.T) {
	t.Parallel()

	// Unit prefix fails, stripped form matches.
	f := &fakeSearcher{results: map[string]nominatim.Result{
		"5 George Street, Sydney, 2000": {Lat: -33.8688, Lon: 151.2093, Matched: true},
	}}
	cache := NewCache()
	store := &fakeCacheStore{}
	r := NewResolver(f, cache, WithRetry(noRetry()), WithCacheStore(store))

	n := noticeAt("1/5 George Street, Sydney, 2000")
	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.Equal(t, "5 George Street, Sydney, 2000", res.VariantUsed)
	assert.Equal(t, []string{
		"1/5 George Street, Sydney, 2000",
		"5 George Street, Sydney, 2000",
	}, f.calls)

	// Every variant is cached, including ones never tried.
	for _, v := range []string{
		"1/5 George Street, Sydney, 2000",
		"5 George Street, Sydney, 2000",
		"George Street, Sydney, 2000",
	} {
		got, ok := cache.Get(v)
		require.True(t, ok, "variant %q not cached", v)
		assert.Equal(t, Coord{Lat: -33.8688, Lon: 151.2093}, got)
	}
	assert.Len(t, store.puts, 3)
	assert.Contains(t, store.puts, "GEORGE STREET, SYDNEY, 2000")
}

func TestResolve_AllVariantsFail(t *testing.T) {
	t.Parallel()

	f := &fakeSearcher{}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	n := noticeAt("1/5 George Street, Sydney, 2000")
	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.False(t, n.Geocoded())
	assert.Equal(t, []string{
		"1/5 George Street, Sydney, 2000",
		"5 George Street, Sydney, 2000",
		"George Street, Sydney, 2000",
	}, res.Variants)
}

func TestResolve_ProviderErrorSkipsToNextVariant(t *testing.T) {
	t.Parallel()

	f := &fakeSearcher{
		errs: map[string]error{
			"1/5 George Street, Sydney, 2000": errors.New("malformed query"),
		},
		results: map[string]nominatim.Result{
			"5 George Street, Sydney, 2000": {Lat: -33.8688, Lon: 151.2093, Matched: true},
		},
	}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	n := noticeAt("1/5 George Street, Sydney, 2000")
	res, err := r.Resolve(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, res.Outcome)
	assert.True(t, n.Geocoded())
}

func TestResolve_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeSearcher{errs: map[string]error{
		"1/5 George Street, Sydney, 2000": context.Canceled,
	}}
	r := NewResolver(f, NewCache(), WithRetry(noRetry()))

	cancel()
	_, err := r.Resolve(ctx, noticeAt("1/5 George Street, Sydney, 2000"))
	assert.Error(t, err)
}

func TestResolve_OpenBreakerShortCircuitsVariants(t *testing.T) {
	t.Parallel()

	f := &fakeSearcher{
		errs: map[string]error{
			"1/5 George Street, Sydney, 2000": errors.New("provider down"),
		},
	}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 1,
	})
	r := NewResolver(f, NewCache(), WithRetry(noRetry()), WithBreaker(breaker))

	res, err := r.Resolve(context.Background(), noticeAt("1/5 George Street, Sydney, 2000"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	// The first variant tripped the breaker; later variants never reached
	// the provider.
	assert.Equal(t, []string{"1/5 George Street, Sydney, 2000"}, f.calls)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no_address", OutcomeNoAddress.String())
	assert.Equal(t, "already_geocoded", OutcomeAlreadyGeocoded.String())
	assert.Equal(t, "cache_hit", OutcomeCacheHit.String())
	assert.Equal(t, "resolved", OutcomeResolved.String())
	assert.Equal(t, "failed", OutcomeFailed.String())
}
