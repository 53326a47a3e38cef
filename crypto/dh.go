package crypto

import (
	"math/big"
	"strings"

	"github.com/Lafeng/weakdh/exception"
	"github.com/Lafeng/weakdh/groups"
)

var INVALID_HEX = exception.New("Invalid hex integer:")

const (
	REASON_NOT_SAFE_PRIME       = "not a safe prime"
	REASON_UNSUITABLE_GENERATOR = "unsuitable generator"
)

var one = big.NewInt(1)

// GroupLookup resolves a prime to a well-known group.
type GroupLookup interface {
	Lookup(p *big.Int) (groups.Entry, bool)
}

// GroupVerdict is the outcome of checking an explicit DH modulus.
type GroupVerdict struct {
	Broken   bool
	Reason   string
	Level    SecurityLevel
	PrimeHex string
	NumBits  uint
	Name     string // common group name, may be empty
}

// GeneratorVerdict is the outcome of checking g against its modulus.
type GeneratorVerdict struct {
	Broken       bool
	Reason       string
	GeneratorHex string
	PrimeHex     string
}

// Validator checks explicit group parameters found in transcripts.
type Validator struct {
	prime      Primality
	classifier *Classifier
	groups     GroupLookup
}

func NewValidator(prime Primality, classifier *Classifier, lookup GroupLookup) *Validator {
	return &Validator{
		prime:      prime,
		classifier: classifier,
		groups:     lookup,
	}
}

// DecodeHex parses an unsigned hexadecimal integer without prefix.
func DecodeHex(s string) (*big.Int, error) {
	if s == "" || strings.IndexAny(s, "+-_xX") >= 0 {
		return nil, INVALID_HEX.Apply(quote(s))
	}
	n, y := new(big.Int).SetString(s, 16)
	if !y {
		return nil, INVALID_HEX.Apply(quote(s))
	}
	return n, nil
}

func quote(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return "\"" + s + "\""
}

// HexBits is the group size implied by the byte length of the encoding:
// ceil(digits/2)*8. Leading zero bytes count.
func HexBits(hex string) uint {
	return uint((len(hex)+1)/2) * 8
}

// CheckGroup reports whether primeHex is a safe prime p, i.e. p and
// (p-1)/2 are both prime, and classifies its size.
func (v *Validator) CheckGroup(primeHex string) (GroupVerdict, error) {
	p, err := DecodeHex(primeHex)
	if err != nil {
		return GroupVerdict{}, err
	}
	verdict := GroupVerdict{PrimeHex: primeHex}

	q := new(big.Int).Sub(p, one)
	q.Rsh(q, 1)
	if !v.prime.IsProbablePrime(p) || !v.prime.IsProbablePrime(q) {
		verdict.Broken = true
		verdict.Reason = REASON_NOT_SAFE_PRIME
		return verdict, nil
	}

	verdict.NumBits = HexBits(primeHex)
	verdict.Level = v.classifier.Classify(verdict.NumBits)
	if v.groups != nil {
		if e, y := v.groups.Lookup(p); y {
			verdict.Name = e.Name
		}
	}
	return verdict, nil
}

// CheckGenerator requires 1 < g < p-1.
func (v *Validator) CheckGenerator(generatorHex, primeHex string) (GeneratorVerdict, error) {
	g, err := DecodeHex(generatorHex)
	if err != nil {
		return GeneratorVerdict{}, err
	}
	p, err := DecodeHex(primeHex)
	if err != nil {
		return GeneratorVerdict{}, err
	}
	verdict := GeneratorVerdict{GeneratorHex: generatorHex, PrimeHex: primeHex}
	pm1 := new(big.Int).Sub(p, one)
	if g.Cmp(one) <= 0 || g.Cmp(pm1) >= 0 {
		verdict.Broken = true
		verdict.Reason = REASON_UNSUITABLE_GENERATOR
	}
	return verdict, nil
}
