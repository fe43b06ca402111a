package scenario

import (
	"testing"

	"github.com/TinsPHP/tins-symbols-sub001/inference/bindings"
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv() *typeEnv {
	return &typeEnv{
		factory: symbols.NewFactory(symbols.NewTypeHelper()),
		named:   symbols.Builtins(),
	}
}

func TestParseType(t *testing.T) {
	testCases := []struct {
		expr     string
		expected string
	}{
		{expr: "int", expected: "int"},
		{expr: "int|float", expected: "(float | int)"},
		{expr: " int | num ", expected: "num"},
		{expr: "num & scalar", expected: "num"},
		{expr: "mixed", expected: "mixed"},
		{expr: "nothing", expected: "nothing"},
		{expr: "(int|float)|string", expected: "(float | int | string)"},
		{expr: "{as num}", expected: "{as num}"},
	}

	env := newTestEnv()
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			parsed, err := env.parseType(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, parsed.AbsoluteName())
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	testCases := []struct {
		expr    string
		message string
	}{
		{expr: "", message: "empty type"},
		{expr: "int|", message: "unexpected end"},
		{expr: "foo", message: `unknown type "foo"`},
		{expr: "(int", message: `expected ")"`},
		{expr: "{num}", message: `expected "as"`},
		{expr: "int)", message: `unexpected ")"`},
		{expr: "int,float", message: "unexpected character"},
		{expr: "{as $x}", message: `unknown type "$x"`},
	}

	env := newTestEnv()
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := env.parseType(tc.expr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestParseConvertibleOfVariable(t *testing.T) {
	env := newTestEnv()
	b := bindings.New(env.factory)
	b.AddVariable("$x", bindings.NewTypeVariableReference(b.NextTypeVariable()))
	scoped := env.with(b, func(name string) (string, bool) {
		if !b.ContainsVariable(name) {
			return "", false
		}
		return b.TypeVariable(name), true
	})

	parsed, err := scoped.parseType("{as $x}")
	require.NoError(t, err)
	assert.Equal(t, "{as T1}", parsed.AbsoluteName())
	conv := parsed.(*symbols.ConvertibleTypeSymbol)
	assert.True(t, conv.IsBoundTo(b, "T1"))

	// a name which is not a variable is parsed as the target type
	parsed, err = scoped.parseType("{as int}")
	require.NoError(t, err)
	assert.Equal(t, "{as int}", parsed.AbsoluteName())
}

func TestParseStatement(t *testing.T) {
	testCases := []struct {
		line     string
		expected statement
	}{
		{
			line:     "$x <: num",
			expected: statement{kind: upperBoundStatement, lower: "$x", upper: "num"},
		},
		{
			line:     "$x :> int | float",
			expected: statement{kind: upperBoundStatement, lower: "int | float", upper: "$x"},
		},
		{
			line:     "$x<:rtrn",
			expected: statement{kind: upperBoundStatement, lower: "$x", upper: "rtrn"},
		},
		{
			line:     "rtrn = plus($x, $y)",
			expected: statement{kind: callStatement, lhs: "rtrn", callee: "plus", arguments: []string{"$x", "$y"}},
		},
		{
			line:     "$r = now()",
			expected: statement{kind: callStatement, lhs: "$r", callee: "now"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			st, err := parseStatement(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, st)
		})
	}

	for _, line := range []string{"$x", "$x = f", "$x = (1)", "x = f($y)", "$x = f($y) + 1"} {
		t.Run(line, func(t *testing.T) {
			_, err := parseStatement(line)
			assert.Error(t, err)
		})
	}
}
