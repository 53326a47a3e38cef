package kex

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Lafeng/weakdh/exception"
)

var MALFORMED_NUMERIC_FIELD = exception.New("Malformed numeric field:")

const FIXED_GROUP_BITS = 1024

// Markers are the literal texts the instrumented client prints.
type Markers struct {
	Algorithm           string // line prefix
	ClientSizes         string // line prefix
	ServerBits          string // line prefix
	Prime               string // anywhere in the line
	Generator           string // anywhere in the line
	FixedGroupAlgorithm string // algorithm with a hard-coded 1024-bit group
}

var DefaultMarkers = Markers{
	Algorithm:           "KEX algorithm chosen: ",
	ClientSizes:         "KEX client group sizes: ",
	ServerBits:          "KEX server-chosen group size in bits: ",
	Prime:               " prime in hex: ",
	Generator:           " generator in hex: ",
	FixedGroupAlgorithm: "diffie-hellman-group1-sha1",
}

// Scanner classifies single lines. It keeps no state between lines.
type Scanner struct {
	m Markers
}

// NewScanner fills empty markers from DefaultMarkers.
func NewScanner(m Markers) *Scanner {
	d := DefaultMarkers
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&m.Algorithm, d.Algorithm)
	fill(&m.ClientSizes, d.ClientSizes)
	fill(&m.ServerBits, d.ServerBits)
	fill(&m.Prime, d.Prime)
	fill(&m.Generator, d.Generator)
	fill(&m.FixedGroupAlgorithm, d.FixedGroupAlgorithm)
	return &Scanner{m: m}
}

func (s *Scanner) Markers() Markers {
	return s.m
}

// Classify checks the mid-line prime and generator markers before the
// prefix markers.
func (s *Scanner) Classify(line string) Event {
	if i := strings.Index(line, s.m.Prime); i >= 0 {
		return Event{Kind: PrimeHex, Hex: strings.TrimSpace(line[i+len(s.m.Prime):])}
	}
	if i := strings.Index(line, s.m.Generator); i >= 0 {
		return Event{Kind: GeneratorHex, Hex: strings.TrimSpace(line[i+len(s.m.Generator):])}
	}
	if strings.HasPrefix(line, s.m.Algorithm) {
		return Event{Kind: AlgorithmChosen, Name: strings.TrimSpace(line[len(s.m.Algorithm):])}
	}
	if strings.HasPrefix(line, s.m.ClientSizes) {
		ev := Event{Kind: ClientGroupRange}
		ints, err := digitTokens(line, isSpaceOrComma, 3)
		if err != nil {
			ev.Err = err
		} else {
			ev.Range = GroupRange{Min: ints[0], NBits: ints[1], Max: ints[2]}
		}
		return ev
	}
	if strings.HasPrefix(line, s.m.ServerBits) {
		ev := Event{Kind: ServerGroupBits}
		ints, err := digitTokens(line, unicode.IsSpace, 1)
		if err != nil {
			ev.Err = err
		} else {
			ev.Bits = ints[0]
		}
		return ev
	}
	return Event{Kind: Unrecognized}
}

func isSpaceOrComma(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// digitTokens splits line with sep and keeps the tokens made only of
// decimal digits. Exactly want of them must exist.
func digitTokens(line string, sep func(rune) bool, want int) ([]uint, error) {
	var ints []uint
	for _, tok := range strings.FieldsFunc(line, sep) {
		if !allDigits(tok) {
			continue
		}
		v, err := strconv.ParseUint(tok, 10, 0)
		if err != nil {
			return nil, MALFORMED_NUMERIC_FIELD.Apply(tok)
		}
		ints = append(ints, uint(v))
	}
	if len(ints) != want {
		return nil, MALFORMED_NUMERIC_FIELD.Apply(strconv.Itoa(len(ints)) + " numbers, want " + strconv.Itoa(want))
	}
	return ints, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
