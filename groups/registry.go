// Package groups holds the read-only table of well-known Diffie-Hellman
// groups used to put a name on a prime seen in a transcript.
package groups

import (
	"math/big"
	"sort"

	"github.com/Lafeng/weakdh/exception"
)

var (
	MISSING_REFERENCE_DATA = exception.New("Common groups file not found:")
	INVALID_REFERENCE_DATA = exception.New("Invalid common groups data:")
)

// Entry describes one common group. Prime is the lookup key.
type Entry struct {
	Prime       *big.Int
	Generator   *big.Int
	IsPrime     bool
	IsSafePrime bool
	Name        string
	NumBits     uint
}

// Registry maps primes to entries. It is never modified after New returns,
// so one instance may be shared by every transcript.
type Registry struct {
	byPrime map[string]*Entry
	entries []*Entry
}

// New builds a registry. When two entries carry the same prime the first
// one wins.
func New(entries ...[]Entry) *Registry {
	r := &Registry{byPrime: make(map[string]*Entry)}
	for _, set := range entries {
		for i := range set {
			e := set[i]
			if e.Prime == nil {
				continue
			}
			k := key(e.Prime)
			if _, dup := r.byPrime[k]; dup {
				continue
			}
			r.byPrime[k] = &e
			r.entries = append(r.entries, &e)
		}
	}
	return r
}

func key(p *big.Int) string {
	return string(p.Bytes())
}

// Lookup finds the entry registered for p.
func (r *Registry) Lookup(p *big.Int) (Entry, bool) {
	if r == nil || p == nil || p.Sign() < 0 {
		return Entry{}, false
	}
	if e, y := r.byPrime[key(p)]; y {
		return *e, true
	}
	return Entry{}, false
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Entries returns a copy of all entries ordered by size, then name.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	list := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		list[i] = *e
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].NumBits != list[j].NumBits {
			return list[i].NumBits < list[j].NumBits
		}
		return list[i].Name < list[j].Name
	})
	return list
}
