package doodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDistinguishesOnFirstByte(t *testing.T) {
	module := NewFormatModule()
	tree, ok := Build(module, []Format{ByteIn(0x00), ByteIn(0xFF)}, NextEmpty)
	require.True(t, ok)

	idx, ok := tree.Matches(NewCursor([]byte{0x00}))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = tree.Matches(NewCursor([]byte{0xFF}))
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = tree.Matches(NewCursor([]byte{0x11}))
	assert.False(t, ok)
}

func TestBuildLooksPastNullablePrefixToDistinguish(t *testing.T) {
	// Both branches start with the same fixed byte: one is just that
	// byte, so after it nothing remains to parse, while the other
	// continues with a second fixed byte. Build must look two bytes deep.
	module := NewFormatModule()
	a := ByteIn(0x01)
	b := FormatTuple{Fields: []Format{ByteIn(0x01), ByteIn(0x02)}}
	tree, ok := Build(module, []Format{a, b}, NextEmpty)
	require.True(t, ok)

	idx, ok := tree.Matches(NewCursor([]byte{0x01, 0x02}))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestBuildRejectsAmbiguousOverlappingBranches(t *testing.T) {
	// Both branches accept the same byte and neither has any further
	// distinguishing structure: no bounded lookahead can disambiguate.
	module := NewFormatModule()
	_, ok := Build(module, []Format{ByteIn(0x05), ByteIn(0x05)}, NextEmpty)
	assert.False(t, ok)
}

func TestBuildDisambiguatesThroughContinuation(t *testing.T) {
	// Branch B (the empty tuple) has no byte signature of its own; what
	// follows it in the continuation does, and that's enough to split
	// it from branch A.
	module := NewFormatModule()
	a := FormatTuple{Fields: []Format{ByteIn(0x01)}}
	b := FormatTuple{}
	next := NextTuple([]Format{ByteIn(0x02)}, NextEmpty)

	tree, ok := Build(module, []Format{a, b}, next)
	require.True(t, ok)

	idx, ok := tree.Matches(NewCursor([]byte{0x01}))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = tree.Matches(NewCursor([]byte{0x02}))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestBuildRespectsMaxDepthBound(t *testing.T) {
	// Two branches that only diverge after maxMatchDepth+1 identical
	// bytes cannot be distinguished within the bounded lookahead.
	module := NewFormatModule()
	mkRun := func(n int, tail byte) Format {
		fields := make([]Format, 0, n+1)
		for i := 0; i < n; i++ {
			fields = append(fields, ByteIn(0x00))
		}
		fields = append(fields, ByteIn(tail))
		return FormatTuple{Fields: fields}
	}
	a := mkRun(maxMatchDepth+2, 0x01)
	b := mkRun(maxMatchDepth+2, 0x02)
	_, ok := Build(module, []Format{a, b}, NextEmpty)
	assert.False(t, ok)
}
