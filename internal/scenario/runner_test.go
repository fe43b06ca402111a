package scenario

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overloadsScenario = `
overloads:
  - name: f
    parameters: [array]
    return: array
  - name: f
    parameters: [num]
    return: float
  - name: id
    typeParameters:
      - name: A
    parameters: [A]
    return: A

functions:
  - name: g
    parameters: [$a]
    body:
      - $a :> int
      - rtrn = f($a)
    expect:
      signature: num -> float
  - name: twice
    parameters: [$a]
    body:
      - $b = g($a)
      - rtrn = g($b)
  - name: h
    parameters: [$a]
    body:
      - $a :> string
      - rtrn = f($a)
    expect:
      error: no applicable overload of 'f'
  - name: same
    parameters: [$a]
    body:
      - rtrn = id($a)
    expect:
      signature: T1 -> T1
      typeParameters: [T1]
  - name: clash
    parameters: [$x]
    body:
      - "$x <: int"
      - $x :> string
    expect:
      error: (E001)
  - name: wrong
    body:
      - rtrn :> int
    expect:
      signature: () -> string
`

func run(t *testing.T, scenario string, opts Options) []Result {
	t.Helper()
	f, err := Parse(strings.NewReader(scenario))
	require.NoError(t, err)
	results, err := Run(f, opts)
	require.NoError(t, err)
	return results
}

func TestRunOverloads(t *testing.T) {
	results := run(t, overloadsScenario, Options{})
	require.Len(t, results, 6)

	g := results[0]
	assert.Equal(t, "num -> float", g.Signature)
	assert.Empty(t, g.TypeParameters)
	assert.Equal(t, "[$a:T1<num,num>#, rtrn:T2<float,float>#]", g.Bindings)
	assert.False(t, g.Failed())

	twice := results[1]
	assert.Equal(t, "num -> float", twice.Signature)
	assert.Equal(t, "[$a:T1<num,num>#, $b:T2<float,float>#, rtrn:T5<float,float>#]", twice.Bindings)

	h := results[2]
	assert.Empty(t, h.Signature)
	assert.True(t, strings.HasPrefix(h.Error, "(E005) no applicable overload of 'f'"), h.Error)
	assert.False(t, h.Failed())

	same := results[3]
	assert.Equal(t, "T1 -> T1", same.Signature)
	assert.Equal(t, []string{"T1"}, same.TypeParameters)
	assert.Equal(t, "[$a:T1<,>, rtrn:T1<,>]", same.Bindings)

	clash := results[4]
	assert.Contains(t, clash.Error, "(E001)")
	assert.False(t, clash.Failed())

	wrong := results[5]
	assert.Equal(t, "() -> int", wrong.Signature)
	require.True(t, wrong.Failed())
	assert.Equal(t, []string{"signature: expected () -> string, got () -> int"}, wrong.Mismatches)
}

func TestRunFunctionsAreOnlyVisibleAfterTheirDefinition(t *testing.T) {
	results := run(t, `
functions:
  - name: early
    body:
      - rtrn = late()
  - name: late
    body:
      - rtrn :> int
`, Options{})
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "no overload of 'late' is defined")
	assert.Equal(t, "() -> int", results[1].Signature)
}

func TestRunDefaultConversions(t *testing.T) {
	scenario := `
overloads:
  - name: half
    parameters: [float]
    return: float
functions:
  - name: f
    parameters: [$i]
    body:
      - $i :> int
      - rtrn = half($i)
`
	withoutConversions := run(t, scenario, Options{})
	assert.Contains(t, withoutConversions[0].Error, "no applicable overload of 'half'")

	withConversions := run(t, scenario, Options{DefaultConversions: true})
	assert.Empty(t, withConversions[0].Error)
	assert.Equal(t, "float -> float", withConversions[0].Signature)
}

func TestLoad(t *testing.T) {
	f, err := Load(os.DirFS("testdata"), "scenario.yaml")
	require.NoError(t, err)
	require.Len(t, f.Functions, 2)

	results, err := Run(f, Options{})
	require.NoError(t, err)
	for _, res := range results {
		assert.Empty(t, res.Error, res.Name)
		assert.False(t, res.Failed(), "%s: %v", res.Name, res.Mismatches)
	}
	assert.Equal(t, "{as num} -> num", results[0].Signature)
	assert.Equal(t, []string{"T1 <: number"}, results[1].TypeParameters)

	_, err = Load(os.DirFS("testdata"), "missing.yaml")
	assert.Error(t, err)
}

func TestMalformedScenarios(t *testing.T) {
	testCases := []struct {
		name     string
		scenario string
		message  string
	}{
		{
			name:     "unknown field",
			scenario: "functions:\n  - name: f\n    returns: int\n",
			message:  "field returns not found",
		},
		{
			name:     "unknown type in a bound",
			scenario: "functions:\n  - name: f\n    body: [\"$x <: integer\"]\n",
			message:  `unknown type "integer"`,
		},
		{
			name:     "bound without variable",
			scenario: "functions:\n  - name: f\n    body: [\"int <: num\"]\n",
			message:  "does not mention a variable",
		},
		{
			name:     "duplicate parameter",
			scenario: "functions:\n  - name: f\n    parameters: [$x, $x]\n",
			message:  "declared twice",
		},
		{
			name:     "unknown conversion type",
			scenario: "conversions:\n  - from: bool\n    to: integer\n",
			message:  `unknown type "integer"`,
		},
		{
			name:     "redefined alias",
			scenario: "aliases:\n  - name: int\n    type: float\n",
			message:  "already defined",
		},
		{
			name:     "non-variable argument",
			scenario: "functions:\n  - name: f\n    body: [\"rtrn = g(1)\"]\n",
			message:  "is not a variable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tc.scenario))
			if err == nil {
				_, err = Run(f, Options{})
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}
