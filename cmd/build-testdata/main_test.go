package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNotation(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newCommand(&out, &errOut)
	cmd.SetArgs([]string{"--notation", "--seed", "3"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 10_000)
	assert.True(t, strings.HasPrefix(lines[0], "[<http://example.org/s/"))
}

func TestBuildSnapshot(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newCommand(&out, &errOut)
	cmd.SetArgs([]string{"-o", filepath.Join(t.TempDir(), "db"), "-s", "bench", "-v"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Saved 10000 quads.")
	assert.Contains(t, errOut.String(), `"bench"`)
}

func TestUnknownConfig(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newCommand(&out, &errOut)
	cmd.SetArgs([]string{"--config", "huge"})
	assert.Error(t, cmd.Execute())
}
