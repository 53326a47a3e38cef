package kex

import (
	"fmt"
	"strings"

	"github.com/Lafeng/weakdh/crypto"
)

// FindingKind tells which of the Finding fields are set.
type FindingKind int

const (
	NegotiatedGroup FindingKind = iota
	PrimeCheck
	GeneratorCheck
	Diagnostic
)

const SYMBOL_BROKEN = "!"

// diagnostic texts
const (
	MSG_GROUP_EXCHANGE          = "Cannot parse client parameters or server group size!"
	MSG_GENERATOR_WITHOUT_PRIME = "Generator without preceding prime!"
	MSG_PRIME                   = "Cannot parse prime!"
	MSG_GENERATOR               = "Cannot parse generator!"
)

// Finding is one report line.
type Finding struct {
	Kind      FindingKind
	Line      int // 1-based line that completed the finding
	Record    KeyExchangeRecord
	Params    GroupParameters // PrimeCheck, GeneratorCheck
	Level     crypto.SecurityLevel
	Group     crypto.GroupVerdict
	Generator crypto.GeneratorVerdict
	Message   string // Diagnostic
	Err       error  // Diagnostic cause
}

// Symbol is the character shown in brackets, empty for diagnostics.
func (f Finding) Symbol() string {
	switch f.Kind {
	case NegotiatedGroup:
		return f.Level.Symbol()
	case PrimeCheck:
		if f.Group.Broken {
			return SYMBOL_BROKEN
		}
		return f.Group.Level.Symbol()
	case GeneratorCheck:
		return SYMBOL_BROKEN
	}
	return ""
}

// Body is the text following the bracketed symbol.
func (f Finding) Body() string {
	var b strings.Builder
	switch f.Kind {
	case NegotiatedGroup:
		r := f.Record
		fmt.Fprintf(&b, "%s. Algorithm: %s. Negotiated group size in bits: %d. Group size proposed by client in bits: %s.",
			f.Level.Label(), r.Algorithm, r.ServerBits, r.Client)
	case PrimeCheck:
		g := f.Group
		if g.Broken {
			fmt.Fprintf(&b, "BROKEN (%s). Prime in hex: %s.", g.Reason, g.PrimeHex)
			break
		}
		fmt.Fprintf(&b, "%s. Safe prime in hex: %s. Group size in bits: %d.", g.Level.Label(), g.PrimeHex, g.NumBits)
		if g.Name != "" {
			fmt.Fprintf(&b, " Common group: %s.", g.Name)
		}
	case GeneratorCheck:
		g := f.Generator
		fmt.Fprintf(&b, "BROKEN (%s). Generator in hex: %s. Prime in hex: %s.", g.Reason, g.GeneratorHex, g.PrimeHex)
	case Diagnostic:
		b.WriteString("Error: ")
		b.WriteString(f.Message)
	}
	return b.String()
}

func (f Finding) String() string {
	if sym := f.Symbol(); sym != "" {
		return "[" + sym + "] " + f.Body()
	}
	return f.Body()
}

// Sink receives findings in transcript order.
type Sink interface {
	Report(f Finding)
}

type SinkFunc func(f Finding)

func (fn SinkFunc) Report(f Finding) {
	fn(f)
}
