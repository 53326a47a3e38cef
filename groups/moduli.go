package groups

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/Lafeng/weakdh/exception"
)

const (
	// moduli(5) type field
	MODULI_TYPE_SAFE = 2
	// moduli(5) tests bitmask: Miller-Rabin primality
	MODULI_TEST_MR = 0x04
)

// LoadModuli imports the groups listed in an OpenSSH moduli(5) file.
func LoadModuli(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, MISSING_REFERENCE_DATA.Apply(path)
		}
		return nil, exception.Spawn(&err, "moduli: open %s", path)
	}
	defer f.Close()
	entries, err := ParseModuli(f)
	if err != nil {
		return nil, INVALID_REFERENCE_DATA.Apply(fmt.Sprintf("%s: %v", path, err))
	}
	return entries, nil
}

// ParseModuli reads lines of
//
//	time type tests tries size generator modulus
//
// skipping blanks and # comments. size is the bit count minus one.
func ParseModuli(r io.Reader) ([]Entry, error) {
	var entries []Entry
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1<<20)
	for lineno := 1; s.Scan(); lineno++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 7 {
			return nil, fmt.Errorf("line %d: want 7 fields, got %d", lineno, len(fields))
		}
		typ, e1 := strconv.Atoi(fields[1])
		tests, e2 := strconv.Atoi(fields[2])
		size, e3 := strconv.ParseUint(fields[4], 10, 32)
		if e1 != nil || e2 != nil || e3 != nil {
			return nil, fmt.Errorf("line %d: malformed numeric field", lineno)
		}
		g, y1 := new(big.Int).SetString(fields[5], 16)
		p, y2 := new(big.Int).SetString(fields[6], 16)
		if !y1 || !y2 || p.Sign() <= 0 {
			return nil, fmt.Errorf("line %d: malformed generator or modulus", lineno)
		}
		bits := uint(size) + 1
		entries = append(entries, Entry{
			Prime:       p,
			Generator:   g,
			IsPrime:     tests&MODULI_TEST_MR != 0,
			IsSafePrime: typ == MODULI_TYPE_SAFE && tests&MODULI_TEST_MR != 0,
			Name:        fmt.Sprintf("moduli %d-bit %s", bits, fields[0]),
			NumBits:     bits,
		})
	}
	return entries, s.Err()
}
