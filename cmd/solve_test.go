package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const halfScenario = `
overloads:
  - name: half
    parameters: [float]
    return: float
functions:
  - name: answer
    body:
      - rtrn :> int
  - name: f
    parameters: [$i]
    body:
      - $i :> int
      - rtrn = half($i)
`

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func solve(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	SolveCmd.SetOut(out)
	SolveCmd.SetErr(io.Discard)
	SolveCmd.SetArgs(args)
	err := SolveCmd.Execute()
	return out.String(), err
}

func TestSolveYAML(t *testing.T) {
	p := writeScenario(t, halfScenario)
	out, err := solve(t, p, "--format", "yaml", "--no-default-conversions=false")
	require.NoError(t, err)

	var r report
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, p, r.File)
	require.Len(t, r.Functions, 2)
	assert.Equal(t, "answer", r.Functions[0].Name)
	assert.Equal(t, "() -> int", r.Functions[0].Signature)
	assert.Equal(t, "float -> float", r.Functions[1].Signature)
}

func TestSolveText(t *testing.T) {
	p := writeScenario(t, halfScenario)
	out, err := solve(t, p, "--format", "text", "--no-default-conversions")
	require.NoError(t, err)
	assert.Contains(t, out, "  answer: () -> int\n")
	assert.Contains(t, out, "  f: (E005) no applicable overload of 'half'")
}

func TestSolveUnmetExpectation(t *testing.T) {
	p := writeScenario(t, `
functions:
  - name: answer
    body:
      - rtrn :> int
    expect:
      signature: () -> string
`)
	out, err := solve(t, p, "--format", "text", "--no-default-conversions=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 function(s) did not meet their expectations")
	assert.Contains(t, out, "mismatch: signature: expected () -> string, got () -> int")
}

func TestSolveErrors(t *testing.T) {
	p := writeScenario(t, halfScenario)
	_, err := solve(t, p, "--format", "json")
	assert.ErrorContains(t, err, `unknown output format "json"`)

	_, err = solve(t, filepath.Join(t.TempDir(), "missing.yaml"), "--format", "yaml")
	assert.ErrorContains(t, err, "could not load scenario")

	malformed := writeScenario(t, "functions:\n  - name: f\n    body: [\"int <: num\"]\n")
	_, err = solve(t, malformed, "--format", "yaml")
	assert.ErrorContains(t, err, "does not mention a variable")
}

func TestDefaultFormat(t *testing.T) {
	assert.Equal(t, formatYAML, defaultFormat(&bytes.Buffer{}))
}
