package crypto

import (
	"github.com/Lafeng/weakdh/exception"
)

var INVALID_THRESHOLDS = exception.New("Thresholds must be strictly ascending:")

// SecurityLevel orders negotiated group sizes from WEAK to STRONG.
type SecurityLevel int

const (
	WEAK SecurityLevel = iota
	WEAK_INTERMEDIATE
	INTERMEDIATE
	STRONG
)

var levelLabels = [...]string{
	WEAK:              "WEAK",
	WEAK_INTERMEDIATE: "WEAK-INTERMEDIATE (might be feasible to break for academic teams)",
	INTERMEDIATE:      "INTERMEDIATE (might be feasible to break for nation-states)",
	STRONG:            "STRONG",
}

var levelSymbols = [...]string{
	WEAK:              "!",
	WEAK_INTERMEDIATE: "-",
	INTERMEDIATE:      "*",
	STRONG:            "+",
}

var levelNames = [...]string{
	WEAK:              "WEAK",
	WEAK_INTERMEDIATE: "WEAK_INTERMEDIATE",
	INTERMEDIATE:      "INTERMEDIATE",
	STRONG:            "STRONG",
}

func (l SecurityLevel) valid() bool {
	return l >= WEAK && l <= STRONG
}

// Label is the text printed after the symbol of a finding.
func (l SecurityLevel) Label() string {
	if l.valid() {
		return levelLabels[l]
	}
	return "UNKNOWN"
}

func (l SecurityLevel) Symbol() string {
	if l.valid() {
		return levelSymbols[l]
	}
	return "?"
}

func (l SecurityLevel) String() string {
	if l.valid() {
		return levelNames[l]
	}
	return "SecurityLevel(?)"
}

// Thresholds are the lowest bit counts of the upper three levels.
type Thresholds struct {
	Weak     uint // below: WEAK
	Academic uint // below: WEAK_INTERMEDIATE
	Nation   uint // below: INTERMEDIATE, otherwise STRONG
}

var DefaultThresholds = Thresholds{Weak: 768, Academic: 1024, Nation: 1536}

func (t Thresholds) Validate() error {
	if t.Weak < t.Academic && t.Academic < t.Nation {
		return nil
	}
	return INVALID_THRESHOLDS.Apply([]uint{t.Weak, t.Academic, t.Nation})
}

// Classifier maps a group size to its security level.
type Classifier struct {
	t Thresholds
}

func NewClassifier(t Thresholds) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{t: t}, nil
}

func (c *Classifier) Thresholds() Thresholds {
	return c.t
}

func (c *Classifier) Classify(bits uint) SecurityLevel {
	switch {
	case bits < c.t.Weak:
		return WEAK
	case bits < c.t.Academic:
		return WEAK_INTERMEDIATE
	case bits < c.t.Nation:
		return INTERMEDIATE
	default:
		return STRONG
	}
}
