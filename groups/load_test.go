package groups

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonGroups = `[
  {"p": "0x17", "g": 5, "prime": true, "safe_prime": true, "name": "tiny", "length": 8},
  {"p": "2F", "g": "2", "prime": true, "safe_prime": true, "name": "small", "length": 8}
]`

const yamlGroups = `
second:
  p: 47
  g: 2
  prime: true
  safe_prime: true
  name: small
  length: 8
first:
  p: 0x17
  g: 5
  name: tiny
  length: 8
`

func TestParseJSONSequence(t *testing.T) {
	entries, err := Parse([]byte(jsonGroups))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(23), entries[0].Prime.Int64())
	assert.Equal(t, int64(5), entries[0].Generator.Int64())
	assert.Equal(t, "tiny", entries[0].Name)
	assert.True(t, entries[0].IsSafePrime)
	assert.Equal(t, int64(47), entries[1].Prime.Int64())
	assert.Equal(t, int64(2), entries[1].Generator.Int64())
}

func TestParseYAMLMappingKeepsOrder(t *testing.T) {
	entries, err := Parse([]byte(yamlGroups))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "small", entries[0].Name)
	assert.Equal(t, "tiny", entries[1].Name)
	assert.False(t, entries[1].IsPrime)
	assert.Equal(t, int64(23), entries[1].Prime.Int64())
}

func TestParseRejects(t *testing.T) {
	for _, doc := range []string{
		`[{"name": "no prime"}]`,
		`[{"p": "zz"}]`,
		`[{"p": "-17"}]`,
		`[{"p": [1, 2]}]`,
		`"just a string"`,
		`[unclosed`,
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, doc)
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"23", 23},
		{"0x17", 23},
		{"0X17", 23},
		{"17a", 0x17a},
		{"ff", 255},
		{" 10 ", 10},
	}
	for _, tt := range tests {
		n, err := ParseNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, n.Int64(), tt.in)
	}
	for _, in := range []string{"", "0x", "-1", "1_000", "xyz"} {
		_, err := ParseNumber(in)
		assert.Error(t, err, in)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonGroups), 0644))

	entries, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, MISSING_REFERENCE_DATA))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("[{name: x}]"), 0644))
	_, err = Load(bad)
	assert.True(t, errors.Is(err, INVALID_REFERENCE_DATA))
}

func TestLoadBundledDataset(t *testing.T) {
	entries, err := Load(filepath.Join("..", "common-groups.json"))
	require.NoError(t, err)
	r := New(entries)
	assert.Equal(t, 4, r.Len())
	for _, e := range r.Entries() {
		assert.Equal(t, uint(e.Prime.BitLen()), e.NumBits, e.Name)
		assert.True(t, e.IsSafePrime, e.Name)
	}
}
