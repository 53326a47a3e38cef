package crypto

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Lafeng/weakdh/groups"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 3526 1536-bit MODP group
const group5Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA237327FFFFFFFFFFFFFFFF"

// RFC 2409 Oakley Group 2
const group2Hex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE65381" +
	"FFFFFFFFFFFFFFFF"

// stubPrimality treats exactly the listed integers as prime.
type stubPrimality struct {
	primes map[string]bool
	calls  int
}

func newStub(primes ...int64) *stubPrimality {
	s := &stubPrimality{primes: make(map[string]bool)}
	for _, p := range primes {
		s.primes[big.NewInt(p).String()] = true
	}
	return s
}

func (s *stubPrimality) IsProbablePrime(n *big.Int) bool {
	s.calls++
	return s.primes[n.String()]
}

func mustHex(t *testing.T, s string) *big.Int {
	t.Helper()
	n, err := DecodeHex(s)
	require.NoError(t, err)
	return n
}

func newTestValidator(t *testing.T, p Primality, lookup GroupLookup) *Validator {
	return NewValidator(p, defaultClassifier(t), lookup)
}

func TestCheckGroupSafePrime(t *testing.T) {
	v := newTestValidator(t, MillerRabin{}, nil)
	verdict, err := v.CheckGroup(group5Hex)
	require.NoError(t, err)
	assert.False(t, verdict.Broken)
	assert.Equal(t, uint(1536), verdict.NumBits)
	assert.Equal(t, STRONG, verdict.Level)
	assert.Equal(t, group5Hex, verdict.PrimeHex)
	assert.Empty(t, verdict.Name)
}

func TestCheckGroupFlippedLowBit(t *testing.T) {
	v := newTestValidator(t, MillerRabin{}, nil)
	for _, flip := range []int64{1, 2, 4} {
		p := mustHex(t, group5Hex)
		p.Xor(p, big.NewInt(flip))
		verdict, err := v.CheckGroup(strings.ToUpper(p.Text(16)))
		require.NoError(t, err)
		assert.True(t, verdict.Broken, "flip %d", flip)
		assert.Equal(t, REASON_NOT_SAFE_PRIME, verdict.Reason)
	}
}

func TestCheckGroupPrimeButNotSafe(t *testing.T) {
	// 29 is prime, 14 is not
	v := newTestValidator(t, MillerRabin{}, nil)
	verdict, err := v.CheckGroup("1d")
	require.NoError(t, err)
	assert.True(t, verdict.Broken)
}

func TestCheckGroupBitsFromHexLength(t *testing.T) {
	// 23 = 2*11+1; four digits encode two bytes
	v := newTestValidator(t, newStub(23, 11), nil)
	verdict, err := v.CheckGroup("0017")
	require.NoError(t, err)
	require.False(t, verdict.Broken)
	assert.Equal(t, uint(16), verdict.NumBits)
	assert.Equal(t, WEAK, verdict.Level)

	verdict, err = v.CheckGroup("017")
	require.NoError(t, err)
	assert.Equal(t, uint(16), verdict.NumBits)

	verdict, err = v.CheckGroup("17")
	require.NoError(t, err)
	assert.Equal(t, uint(8), verdict.NumBits)
}

func TestCheckGroupSkipsCofactorWhenPrimeFails(t *testing.T) {
	stub := newStub()
	v := newTestValidator(t, stub, nil)
	verdict, err := v.CheckGroup("21")
	require.NoError(t, err)
	assert.True(t, verdict.Broken)
	assert.Equal(t, 1, stub.calls)
}

func TestCheckGroupCommonName(t *testing.T) {
	reg := groups.New([]groups.Entry{{
		Prime:       mustHex(t, group2Hex),
		Generator:   big.NewInt(2),
		IsPrime:     true,
		IsSafePrime: true,
		Name:        "Oakley Group 2",
		NumBits:     1024,
	}})
	v := newTestValidator(t, MillerRabin{Rounds: 10}, reg)

	verdict, err := v.CheckGroup(strings.ToLower(group2Hex))
	require.NoError(t, err)
	assert.False(t, verdict.Broken)
	assert.Equal(t, INTERMEDIATE, verdict.Level)
	assert.Equal(t, "Oakley Group 2", verdict.Name)

	verdict, err = v.CheckGroup(group5Hex)
	require.NoError(t, err)
	assert.Empty(t, verdict.Name)
}

func TestCheckGroupInvalidHex(t *testing.T) {
	v := newTestValidator(t, MillerRabin{}, nil)
	for _, s := range []string{"", "xyz", "-17", "0x17", "+17", "1_7"} {
		_, err := v.CheckGroup(s)
		require.Error(t, err, "%q", s)
		assert.True(t, errors.Is(err, INVALID_HEX))
	}
}

func TestCheckGenerator(t *testing.T) {
	v := newTestValidator(t, MillerRabin{}, nil)
	pm1 := mustHex(t, group5Hex)
	pm1.Sub(pm1, big.NewInt(1))
	pm2 := new(big.Int).Sub(pm1, big.NewInt(1))

	tests := []struct {
		g      string
		broken bool
	}{
		{"02", false},
		{"05", false},
		{pm2.Text(16), false},
		{"00", true},
		{"01", true},
		{pm1.Text(16), true},
		{group5Hex, true},
		{group5Hex + "00", true},
	}
	for _, tt := range tests {
		verdict, err := v.CheckGenerator(tt.g, group5Hex)
		require.NoError(t, err)
		assert.Equal(t, tt.broken, verdict.Broken, "g=%s", tt.g)
		if tt.broken {
			assert.Equal(t, REASON_UNSUITABLE_GENERATOR, verdict.Reason)
		}
	}
}

func TestCheckGeneratorInvalidHex(t *testing.T) {
	v := newTestValidator(t, MillerRabin{}, nil)
	_, err := v.CheckGenerator("zz", group5Hex)
	assert.True(t, errors.Is(err, INVALID_HEX))
	_, err = v.CheckGenerator("02", "")
	assert.True(t, errors.Is(err, INVALID_HEX))
}

func TestHexBits(t *testing.T) {
	assert.Equal(t, uint(0), HexBits(""))
	assert.Equal(t, uint(8), HexBits("f"))
	assert.Equal(t, uint(8), HexBits("ff"))
	assert.Equal(t, uint(16), HexBits("fff"))
	assert.Equal(t, uint(1536), HexBits(group5Hex))
}
