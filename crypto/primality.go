package crypto

import (
	"math/big"
	"strconv"
	"sync"
	"time"

	log "github.com/Lafeng/weakdh/glog"
	"github.com/cloudflare/golibs/lrucache"
	"github.com/dchest/siphash"
)

const DEFAULT_MR_ROUNDS = 20

var ZERO_TIME = time.Time{}

// Primality answers whether n is (probably) prime.
type Primality interface {
	IsProbablePrime(n *big.Int) bool
}

// MillerRabin delegates to big.Int.ProbablyPrime, which adds a
// Baillie-PSW test to the requested Miller-Rabin rounds.
type MillerRabin struct {
	Rounds int
}

func (m MillerRabin) IsProbablePrime(n *big.Int) bool {
	rounds := m.Rounds
	if rounds <= 0 {
		rounds = DEFAULT_MR_ROUNDS
	}
	return n.ProbablyPrime(rounds)
}

type cachedVerdict struct {
	n     *big.Int
	prime bool
}

// CachedPrimality memoizes another Primality. Transcripts of one server
// usually repeat the same group, and a 4096-bit test is not cheap.
type CachedPrimality struct {
	inner  Primality
	cache  *lrucache.LRUCache
	k0, k1 uint64
	mu     sync.Mutex
	hits   uint64
	misses uint64
}

func NewCachedPrimality(inner Primality, capacity uint) *CachedPrimality {
	if capacity == 0 {
		capacity = 1
	}
	return &CachedPrimality{
		inner: inner,
		cache: lrucache.NewLRUCache(capacity),
		// fixed keys: the hash only spreads cache slots, collisions are
		// resolved by comparing the stored integer
		k0: 0x0706050403020100,
		k1: 0x0f0e0d0c0b0a0908,
	}
}

func (c *CachedPrimality) cacheKey(n *big.Int) string {
	b := n.Bytes()
	return strconv.FormatUint(siphash.Hash(c.k0, c.k1, b), 36) + ":" + strconv.Itoa(len(b))
}

func (c *CachedPrimality) IsProbablePrime(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	k := c.cacheKey(n)
	if v, y := c.cache.Get(k); y {
		if cv := v.(*cachedVerdict); cv.n.Cmp(n) == 0 {
			c.count(true)
			if log.V(log.LV_PRIME_CACHE) {
				log.Infof("primality cache hit key=%s", k)
			}
			return cv.prime
		}
	}
	c.count(false)
	prime := c.inner.IsProbablePrime(n)
	c.cache.Set(k, &cachedVerdict{n: new(big.Int).Set(n), prime: prime}, ZERO_TIME)
	if log.V(log.LV_PRIME_CACHE) {
		log.Infof("primality cache miss key=%s prime=%v", k, prime)
	}
	return prime
}

func (c *CachedPrimality) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

// Stats returns the cache hit and miss counters.
func (c *CachedPrimality) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
