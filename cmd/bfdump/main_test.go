package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bf2py/pkg/compiler"
)

func TestDumpStages(t *testing.T) {
	cfg := compiler.DefaultConfig()

	var buf bytes.Buffer
	require.NoError(t, dump(&buf, "tokens", "+ x >", cfg))
	assert.Equal(t, "Tokens (2)\n", strings.SplitAfter(buf.String(), "\n")[0])
	assert.Contains(t, buf.String(), "1:5")

	buf.Reset()
	require.NoError(t, dump(&buf, "ops", testSource, cfg))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "Ops (9, 3 collapsed)", lines[0])
	assert.Len(t, lines, 10)

	buf.Reset()
	require.NoError(t, dump(&buf, "python", testSource, cfg))
	assert.Contains(t, buf.String(), "while D[p]!=0:")

	assert.Error(t, dump(&buf, "asm", testSource, cfg))
	assert.Error(t, dump(&buf, "ops", "]", cfg))
}

func TestApp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newApp(&buf).Run([]string{"bfdump", "-emit", "python", "-d", "0"}))
	assert.Contains(t, buf.String(), "D=defaultdict(int)")
}
