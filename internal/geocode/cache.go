// Package geocode resolves notice addresses to coordinates through a
// shared address cache and a variant-by-variant provider lookup.
package geocode

import (
	"sort"

	"github.com/foodwatch-nsw/offences-cli/internal/address"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// Coord is a resolved coordinate pair.
type Coord struct {
	Lat float64
	Lon float64
}

// Cache maps normalized addresses to coordinates so duplicate premises are
// geocoded once per run. Keys are normalized on the way in; callers pass raw
// addresses. Not safe for concurrent use.
type Cache struct {
	entries map[string]Coord
}

// NewCache returns an empty address cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Coord)}
}

// Get looks up the coordinates cached for addr.
func (c *Cache) Get(addr string) (Coord, bool) {
	coord, ok := c.entries[address.Normalize(addr)]
	return coord, ok
}

// Put records coordinates for addr, replacing any previous entry.
func (c *Cache) Put(addr string, coord Coord) {
	c.entries[address.Normalize(addr)] = coord
}

// Len reports the number of cached addresses.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Warm seeds the cache from already-normalized keys, as loaded from the
// persistent cache store.
func (c *Cache) Warm(entries map[string]Coord) {
	for key, coord := range entries {
		c.entries[key] = coord
	}
}

// WarmFromNotices seeds the cache from every already-geocoded notice, keyed
// by its full address. Notices are visited in id order so repeated addresses
// resolve the same way on every run. Returns the number of cached addresses.
func (c *Cache) WarmFromNotices(notices map[string]*model.Notice) int {
	ids := make([]string, 0, len(notices))
	for id := range notices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := notices[id]
		if !n.Geocoded() || n.Address.Full == "" {
			continue
		}
		lat, lon := n.Coordinates()
		c.Put(n.Address.Full, Coord{Lat: lat, Lon: lon})
	}
	return c.Len()
}
