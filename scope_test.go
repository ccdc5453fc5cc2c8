package doodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeLookupShadowsByMostRecentPush(t *testing.T) {
	s := NewScope()
	s.Push("x", U8(1))
	s.Push("x", U8(2))
	assert.Equal(t, U8(2), s.Get("x"))
}

func TestScopeLookupWalksParentChain(t *testing.T) {
	parent := NewScope()
	parent.Push("y", U8(9))
	child := ChildScope(parent)
	assert.Equal(t, U8(9), child.Get("y"))
}

func TestScopeGetPanicsOnMissingBinding(t *testing.T) {
	s := NewScope()
	assert.Panics(t, func() { s.Get("nope") })
}

func TestScopeDumpIsYoungestFirstAcrossFrames(t *testing.T) {
	parent := NewScope()
	parent.Push("a", U8(1))
	child := ChildScope(parent)
	child.Push("b", U8(2))

	dump := child.Dump()
	require.Len(t, dump, 2)
	assert.Equal(t, "b", dump[0].Name)
	assert.Equal(t, "a", dump[1].Name)
}

func TestCallDecoderByNameCachesAndDispatchesAgainstCallingScope(t *testing.T) {
	// Apply target: a format bound under "target" that references a
	// sibling binding "limit" which only exists in the calling scope.
	target := FormatCompute{Value: ExprVar{Name: "limit"}}

	s := NewScope()
	s.Push("limit", U8(42))
	s.Push("target", FormatValue{Inner: target})

	program := &Program{}
	v, _, err := s.CallDecoderByName("target", program, NewCursor(nil))
	require.NoError(t, err)
	assert.Equal(t, U8(42), v)

	// second call reuses the cached decoder
	v2, _, err := s.CallDecoderByName("target", program, NewCursor(nil))
	require.NoError(t, err)
	assert.Equal(t, U8(42), v2)
}
