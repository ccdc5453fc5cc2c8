package doodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesBindingCapturesValue(t *testing.T) {
	scope := NewScope()
	child, ok := Matches(U8(7), scope, PatternBinding{Name: "n"})
	require.True(t, ok)
	assert.Equal(t, U8(7), child.Get("n"))
}

func TestMatchesWildcardAlwaysMatches(t *testing.T) {
	scope := NewScope()
	_, ok := Matches(Tuple{}, scope, PatternWildcard{})
	assert.True(t, ok)
}

func TestMatchesLiteralsRequireExactEquality(t *testing.T) {
	scope := NewScope()
	_, ok := Matches(U8(5), scope, PatternU8{Value: 5})
	assert.True(t, ok)

	_, ok = Matches(U8(6), scope, PatternU8{Value: 5})
	assert.False(t, ok)
}

func TestMatchesTupleArityAndElements(t *testing.T) {
	scope := NewScope()
	v := Tuple{Items: []Value{U8(1), Bool(true)}}
	pat := PatternTuple{Items: []Pattern{PatternU8{Value: 1}, PatternBool{Value: true}}}
	_, ok := Matches(v, scope, pat)
	assert.True(t, ok)

	wrongArity := PatternTuple{Items: []Pattern{PatternU8{Value: 1}}}
	_, ok = Matches(v, scope, wrongArity)
	assert.False(t, ok)
}

func TestMatchesVariantLabelAndPayload(t *testing.T) {
	scope := NewScope()
	v := Variant{Label: "literal", Inner: U8(9)}
	pat := PatternVariant{Label: "literal", Inner: PatternBinding{Name: "b"}}
	child, ok := Matches(v, scope, pat)
	require.True(t, ok)
	assert.Equal(t, U8(9), child.Get("b"))

	wrongLabel := PatternVariant{Label: "reference", Inner: PatternWildcard{}}
	_, ok = Matches(v, scope, wrongLabel)
	assert.False(t, ok)
}

func TestMatchesCoercesMappedAndBranchBeforeStructuralCompare(t *testing.T) {
	scope := NewScope()
	v := Mapped{Original: U8(0), Result: Branch{Index: 0, Inner: U16(100)}}
	_, ok := Matches(v, scope, PatternU16{Value: 100})
	assert.True(t, ok)
}

func TestMatchesSeqArityAndElements(t *testing.T) {
	scope := NewScope()
	v := Seq{Items: []Value{U8(1), U8(2), U8(3)}}
	pat := PatternSeq{Items: []Pattern{PatternWildcard{}, PatternWildcard{}, PatternU8{Value: 3}}}
	_, ok := Matches(v, scope, pat)
	assert.True(t, ok)

	pat2 := PatternSeq{Items: []Pattern{PatternWildcard{}}}
	_, ok = Matches(v, scope, pat2)
	assert.False(t, ok)
}
