package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMillerRabin(t *testing.T) {
	mr := MillerRabin{Rounds: 5}
	for _, n := range []int64{2, 3, 5, 7, 11, 23, 7919} {
		assert.True(t, mr.IsProbablePrime(big.NewInt(n)), "%d", n)
	}
	for _, n := range []int64{-7, 0, 1, 4, 9, 561, 7917} {
		assert.False(t, mr.IsProbablePrime(big.NewInt(n)), "%d", n)
	}
	// zero rounds falls back to the default
	assert.True(t, MillerRabin{}.IsProbablePrime(mustHex(t, group5Hex)))
}

func TestCachedPrimality(t *testing.T) {
	stub := newStub(23, 11)
	c := NewCachedPrimality(stub, 8)

	assert.True(t, c.IsProbablePrime(big.NewInt(23)))
	assert.True(t, c.IsProbablePrime(big.NewInt(23)))
	assert.False(t, c.IsProbablePrime(big.NewInt(21)))
	assert.False(t, c.IsProbablePrime(big.NewInt(21)))
	assert.Equal(t, 2, stub.calls)

	hits, misses := c.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestCachedPrimalityEviction(t *testing.T) {
	stub := newStub(2, 3, 5)
	c := NewCachedPrimality(stub, 2)
	for _, n := range []int64{2, 3, 5} {
		c.IsProbablePrime(big.NewInt(n))
	}
	// only two verdicts fit, one of them is tested again
	for _, n := range []int64{2, 3, 5} {
		assert.True(t, c.IsProbablePrime(big.NewInt(n)))
	}
	assert.Greater(t, stub.calls, 3)
}

func TestCachedPrimalityNonPositive(t *testing.T) {
	stub := newStub()
	c := NewCachedPrimality(stub, 0)
	assert.False(t, c.IsProbablePrime(big.NewInt(0)))
	assert.False(t, c.IsProbablePrime(big.NewInt(-5)))
	assert.Equal(t, 0, stub.calls)
}

func TestCachedPrimalityStoresCopy(t *testing.T) {
	stub := newStub(23)
	c := NewCachedPrimality(stub, 4)
	n := big.NewInt(23)
	c.IsProbablePrime(n)
	n.SetInt64(24)
	// the cached integer is not the caller's
	assert.False(t, c.IsProbablePrime(n))
	assert.True(t, c.IsProbablePrime(big.NewInt(23)))
	assert.Equal(t, 2, stub.calls)
}
