package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	require.NoError(t, root.Execute())
	return out.String()
}

func TestParamsCommand(t *testing.T) {
	out := run(t, "params")
	assert.Contains(t, out, "p              467")
	assert.Contains(t, out, "q              233")
	assert.Contains(t, out, "g              3 (order q)")
	assert.Contains(t, out, "primitive root 2")
	assert.Contains(t, out, "mode           subgroup")
	assert.Contains(t, out, "suite          xor-sha256")
}

func TestDemoCommand(t *testing.T) {
	out := run(t, "demo", "--message", "psst", "--message", "ok")
	assert.Contains(t, out, "substitution detected by peers: false")
	assert.Contains(t, out, `intercepted down->up "psst"`)
	assert.Contains(t, out, `intercepted up->down "ok"`)
	assert.Equal(t, 2, strings.Count(out, "intercepted "))
}

func TestUnknownSuiteFails(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"params", "--suite", "rot13"})
	assert.Error(t, root.Execute())
}
