package bindings

import (
	"testing"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyIsIndependent(t *testing.T) {
	c := newTestCollection()
	declare(c, "$x", "$y")
	_, err := c.AddLowerTypeBound("T1", symbols.Int)
	require.NoError(t, err)
	_, err = c.AddLowerRefBound("T2", "T1")
	require.NoError(t, err)
	before := c.String()

	cp := c.Copy()
	assert.Equal(t, before, cp.String())

	_, err = cp.AddLowerTypeBound("T1", symbols.Float)
	require.NoError(t, err)
	_, err = cp.AddUpperTypeBound("T2", symbols.Num)
	require.NoError(t, err)
	cp.AddVariable("$z", NewTypeVariableReference(cp.CreateTypeVariable()))
	cp.FixType("$y")

	assert.Equal(t, before, c.String())
	assert.Equal(t, "int", c.LowerTypeBounds("T2").AbsoluteName())
	assert.False(t, c.HasUpperTypeBounds("T1"))
	assert.Equal(t, []string{"T1"}, c.LowerRefBounds("T2"))
	assert.False(t, c.IsFixedTypeVariable("T2"))
	assert.False(t, c.ContainsVariable("$z"))

	assert.Equal(t, "[$x:T1<float | int,num>, $y:T2<float | int,(float | int)>#, $z:T3<,>]", cp.String())
}

func TestCopyKeepsCounter(t *testing.T) {
	c := newTestCollection()
	declare(c, "$x")
	cp := c.Copy()
	assert.Equal(t, "T2", cp.CreateTypeVariable())
	assert.Equal(t, "T2", c.CreateTypeVariable())
}

func TestCopyRebindsConvertibles(t *testing.T) {
	c := newTestCollection(symbols.DefaultConversions()...)
	declare(c, "$x")
	target := c.CreateTypeVariable()
	conv := c.Factory().CreateConvertibleType()
	conv.Bind(c, target)
	_, err := c.AddLowerTypeBound("T1", symbols.Int)
	require.NoError(t, err)
	_, err = c.AddUpperTypeBound("T1", conv)
	require.NoError(t, err)

	cp := c.Copy()
	copied := cp.BoundTypes(target)
	require.Len(t, copied, 1)
	assert.NotSame(t, conv, copied[0])
	assert.True(t, copied[0].IsBoundTo(cp, target))
	assert.True(t, conv.IsBoundTo(c, target))

	_, err = cp.AddUpperTypeBound(target, symbols.Num)
	require.NoError(t, err)
	cp.FixTypeParameter(target)

	assert.Equal(t, "[$x:T1<int,{as num}>]", cp.String())
	assert.Equal(t, "[$x:T1<int,{as T2}>]", c.String())
	assert.False(t, conv.IsFixed())
	assert.False(t, c.UpperTypeBounds("T1").IsFixed())
}
