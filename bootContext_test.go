package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestContext(t *testing.T) (*bootContext, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, "weakdh.ini")
	require.NoError(t, os.WriteFile(conf, []byte("[Scan]\nColor = never\n"), 0644))
	groupsFile, err := filepath.Abs("common-groups.json")
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	return &bootContext{
		configFile:   conf,
		commonGroups: groupsFile,
		workers:      -1,
		out:          buf,
	}, buf
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	ec, y := err.(cli.ExitCoder)
	require.True(t, y, "%v", err)
	return ec.ExitCode()
}

func TestRunScan(t *testing.T) {
	ctx, buf := newTestContext(t)
	require.NoError(t, ctx.initConfig())
	require.NoError(t, ctx.initRegistry())
	oakley1 := ctx.registry.Entries()[0]
	require.Equal(t, uint(768), oakley1.NumBits)

	dir := t.TempDir()
	transcript := strings.Join([]string{
		"debug1: Local version string SSH-2.0-OpenSSH_7.4",
		"KEX algorithm chosen: diffie-hellman-group-exchange-sha1",
		"KEX client group sizes: 1024, 2048, 8192",
		"KEX server-chosen group size in bits: 1024",
		"debug1: KEX prime in hex: " + strings.ToUpper(oakley1.Prime.Text(16)),
		"debug1: KEX generator in hex: 02",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "example.org.log"), []byte(transcript), 0644))

	require.NoError(t, ctx.runScan(dir))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "[*] INTERMEDIATE (might be feasible to break for nation-states). "+
		"Algorithm: diffie-hellman-group-exchange-sha1. Negotiated group size in bits: 1024. "+
		"Group size proposed by client in bits: min=1024, nbits=2048, max=8192.", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[-] WEAK-INTERMEDIATE"), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "Group size in bits: 768. Common group: "+oakley1.Name+"."), lines[1])
	assert.Equal(t, "", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "WARNING:"))
}

func TestRunScanNotADirectory(t *testing.T) {
	ctx, buf := newTestContext(t)
	err := ctx.runScan(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, err.Error(), "not a directory")
	assert.Empty(t, buf.String())
}

func TestRunScanMissingReferenceData(t *testing.T) {
	ctx, buf := newTestContext(t)
	ctx.commonGroups = filepath.Join(t.TempDir(), "none.json")
	err := ctx.runScan(t.TempDir())
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, err.Error(), "none.json")
	assert.Empty(t, buf.String())
}

func TestListGroups(t *testing.T) {
	ctx, buf := newTestContext(t)
	require.NoError(t, ctx.initConfig())
	require.NoError(t, ctx.initRegistry())
	ctx.listGroups(buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "  768  safe      RFC 2409 Oakley Group 1 (768-bit MODP)", lines[0])
	assert.Equal(t, " 2048  safe      RFC 3526 Group 14 (2048-bit MODP)", lines[3])
	assert.Equal(t, "4 groups", lines[4])
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "weakdh version: v2.1.3012", versionString())
	assert.Contains(t, buildString(), project_url)
}
