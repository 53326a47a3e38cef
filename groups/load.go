package groups

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	log "github.com/Lafeng/weakdh/glog"
	"gopkg.in/yaml.v3"
)

// record is one item of the common groups dataset. JSON is accepted as
// well since it parses as YAML.
type record struct {
	P         number `yaml:"p"`
	G         number `yaml:"g"`
	Prime     bool   `yaml:"prime"`
	SafePrime bool   `yaml:"safe_prime"`
	Name      string `yaml:"name"`
	Length    uint   `yaml:"length"`
}

// number decodes a scalar holding an integer written as 0x-prefixed hex,
// plain decimal, or bare hex.
type number struct {
	*big.Int
}

func (n *number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	v, err := ParseNumber(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %v", node.Line, err)
	}
	n.Int = v
	return nil
}

// ParseNumber parses s as decimal when it only has decimal digits and as
// hexadecimal otherwise. A 0x prefix forces hexadecimal.
func ParseNumber(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0:
		base = 16
	}
	if s == "" || strings.IndexAny(s, "+-_") >= 0 {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	v, y := new(big.Int).SetString(s, base)
	if !y {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// Load reads the common groups dataset at path. The document is either a
// sequence of records or a mapping whose values are records.
func Load(path string) (entries []Entry, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, MISSING_REFERENCE_DATA.Apply(path)
		}
		return nil, err
	}
	entries, err = Parse(data)
	if err != nil {
		return nil, INVALID_REFERENCE_DATA.Apply(fmt.Sprintf("%s: %v", path, err))
	}
	if log.V(log.LV_REGISTRY) {
		log.Infof("Loaded %d common groups from %s", len(entries), path)
	}
	return entries, nil
}

// Parse decodes a dataset held in memory.
func Parse(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]

	var records []record
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var byKey map[string]record
		if err := root.Decode(&byKey); err != nil {
			return nil, err
		}
		// keep document order
		for i := 0; i+1 < len(root.Content); i += 2 {
			records = append(records, byKey[root.Content[i].Value])
		}
	default:
		return nil, fmt.Errorf("line %d: expected a sequence or mapping of groups", root.Line)
	}

	entries := make([]Entry, 0, len(records))
	for i, r := range records {
		if r.P.Int == nil {
			return nil, fmt.Errorf("group #%d (%s) has no prime", i+1, r.Name)
		}
		entries = append(entries, Entry{
			Prime:       r.P.Int,
			Generator:   r.G.Int,
			IsPrime:     r.Prime,
			IsSafePrime: r.SafePrime,
			Name:        r.Name,
			NumBits:     r.Length,
		})
	}
	return entries, nil
}
