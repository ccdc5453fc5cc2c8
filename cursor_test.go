package doodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReadByte(t *testing.T) {
	c := NewCursor([]byte{0xAA, 0xBB})
	b, c2, ok := c.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte(0xAA), b)
	assert.Equal(t, 1, c2.Offset)

	_, _, ok = NewCursor(nil).ReadByte()
	assert.False(t, ok)
}

func TestCursorSplitAtTruncatesUpperBound(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4, 5})
	prefix, rest, ok := c.SplitAt(3)
	require.True(t, ok)
	assert.Equal(t, 3, prefix.Len())
	assert.Equal(t, 3, rest.Offset)

	// the prefix cannot read past its truncated window
	_, _, ok = prefix.SeekTo(4)
	assert.False(t, ok)
}

func TestCursorSplitAtOutOfRange(t *testing.T) {
	c := NewCursor([]byte{1, 2})
	_, _, ok := c.SplitAt(5)
	assert.False(t, ok)
}

func TestCursorSeekToAndSkipRemainder(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	moved, ok := c.SeekTo(2)
	require.True(t, ok)
	assert.Equal(t, 2, moved.Offset)

	end := c.SkipRemainder()
	assert.Equal(t, 3, end.Offset)
}

func TestCursorReadU16BEAndU32BE(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04})
	v16, c2, ok := c.ReadU16BE()
	require.True(t, ok)
	assert.Equal(t, uint16(0x0102), v16)

	v32, _, ok := c2.ReadU32BE()
	assert.False(t, ok) // only 2 bytes remain

	v32full, _, ok := NewCursor([]byte{0x01, 0x02, 0x03, 0x04}).ReadU32BE()
	require.True(t, ok)
	assert.Equal(t, uint32(0x01020304), v32full)
	_ = v32
}

func TestCursorReadU64BE(t *testing.T) {
	c := NewCursor([]byte{0, 0, 0, 0, 0, 0, 1, 0})
	v, _, ok := c.ReadU64BE()
	require.True(t, ok)
	assert.Equal(t, uint64(256), v)
}
