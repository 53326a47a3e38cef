// Package kex turns the lines of an instrumented SSH client transcript into
// key exchange findings.
package kex

import "fmt"

// Kind tags the variant held by an Event.
type Kind int

const (
	Unrecognized Kind = iota
	AlgorithmChosen
	ClientGroupRange
	ServerGroupBits
	PrimeHex
	GeneratorHex
)

var kindNames = [...]string{
	Unrecognized:     "Unrecognized",
	AlgorithmChosen:  "AlgorithmChosen",
	ClientGroupRange: "ClientGroupRange",
	ServerGroupBits:  "ServerGroupBits",
	PrimeHex:         "PrimeHex",
	GeneratorHex:     "GeneratorHex",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// GroupRange is the (min, nbits, max) proposal sent by the client.
type GroupRange struct {
	Min, NBits, Max uint
}

func (r GroupRange) String() string {
	return fmt.Sprintf("min=%d, nbits=%d, max=%d", r.Min, r.NBits, r.Max)
}

// Event is what one transcript line says. Only the fields of its Kind are
// set. Err is non-nil when the line carried a client or server marker but
// its numbers could not be parsed.
type Event struct {
	Kind  Kind
	Name  string     // AlgorithmChosen
	Range GroupRange // ClientGroupRange
	Bits  uint       // ServerGroupBits
	Hex   string     // PrimeHex, GeneratorHex
	Err   error
}

func (e Event) String() string {
	switch e.Kind {
	case AlgorithmChosen:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Name)
	case ClientGroupRange:
		if e.Err != nil {
			return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s(%s)", e.Kind, e.Range)
	case ServerGroupBits:
		if e.Err != nil {
			return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s(%d)", e.Kind, e.Bits)
	case PrimeHex, GeneratorHex:
		return fmt.Sprintf("%s(%d digits)", e.Kind, len(e.Hex))
	}
	return e.Kind.String()
}

// KeyExchangeRecord is one negotiated group from the GEX grammar.
type KeyExchangeRecord struct {
	Algorithm  string
	Client     GroupRange
	ServerBits uint
}

// GroupParameters is an explicit prime and the generator that followed it,
// if any.
type GroupParameters struct {
	PrimeHex     string
	GeneratorHex string
	HasGenerator bool
}
