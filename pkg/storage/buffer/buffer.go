package buffer

import (
	"math"
	"strconv"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/block"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Loader reads and decodes one block. It is only called on a cache miss.
type Loader func(id datastructure.BlockID) (*block.Block, error)

type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Entries   int
	UsedBytes int64
	Budget    int64
}

// BlockCache is an LRU of decoded blocks bounded by the sum of their footprints.
// Blocks are immutable, so an evicted block stays valid for callers still holding it.
// The most recently loaded block is always kept, even when it alone exceeds the budget.
type BlockCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[datastructure.BlockID, *block.Block]
	budget int64
	used   int64

	hits, misses, evictions uint64

	loader  Loader
	group   singleflight.Group
	metrics *Metrics
	log     logrus.FieldLogger
}

type Option func(*BlockCache)

func WithMetrics(m *Metrics) Option {
	return func(c *BlockCache) { c.metrics = m }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *BlockCache) { c.log = log }
}

func NewBlockCache(budget int64, loader Loader, opts ...Option) *BlockCache {
	c := &BlockCache{
		budget: budget,
		loader: loader,
		log:    logrus.StandardLogger(),
	}
	// entry count is unbounded, eviction is driven by the byte budget.
	c.lru, _ = simplelru.NewLRU[datastructure.BlockID, *block.Block](math.MaxInt32, c.onEvict)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// onEvict runs with c.mu held.
func (c *BlockCache) onEvict(id datastructure.BlockID, blk *block.Block) {
	c.used -= blk.Footprint()
	c.evictions++
	if c.metrics != nil {
		c.metrics.evictions.Inc()
		c.metrics.usedBytes.Set(float64(c.used))
	}
	c.log.WithFields(logrus.Fields{"block_id": id, "bytes": blk.Footprint()}).Debug("evicted block")
}

// Get returns the decoded block, loading it on a miss. Concurrent misses for the same id share one load;
// only the caller that loads counts a miss, the others count a hit.
func (c *BlockCache) Get(id datastructure.BlockID) (*block.Block, error) {
	c.mu.Lock()
	if blk, ok := c.lru.Get(id); ok {
		c.hitLocked()
		c.mu.Unlock()
		return blk, nil
	}
	c.mu.Unlock()

	// Do runs fn on the calling goroutine, so loaded needs no lock.
	loaded := false
	v, err, _ := c.group.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		c.mu.Lock()
		if blk, ok := c.lru.Get(id); ok {
			// another caller finished loading between the two lookups
			c.hitLocked()
			c.mu.Unlock()
			loaded = true
			return blk, nil
		}
		c.mu.Unlock()

		loaded = true
		blk, err := c.loader(id)
		if err != nil {
			return nil, err
		}
		c.insert(id, blk)
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	if !loaded {
		// joined a load already in flight
		c.mu.Lock()
		c.hitLocked()
		c.mu.Unlock()
	}
	return v.(*block.Block), nil
}

func (c *BlockCache) hitLocked() {
	c.hits++
	if c.metrics != nil {
		c.metrics.hits.Inc()
	}
}

func (c *BlockCache) insert(id datastructure.BlockID, blk *block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.misses++
	c.lru.Add(id, blk)
	c.used += blk.Footprint()
	for c.used > c.budget && c.lru.Len() > 1 {
		c.lru.RemoveOldest()
	}

	if c.metrics != nil {
		c.metrics.misses.Inc()
		c.metrics.usedBytes.Set(float64(c.used))
	}
}

// Contains reports whether id is cached without touching its recency.
func (c *BlockCache) Contains(id datastructure.BlockID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(id)
}

func (c *BlockCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Entries:   c.lru.Len(),
		UsedBytes: c.used,
		Budget:    c.budget,
	}
}

func (c *BlockCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
