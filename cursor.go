package doodle

// Cursor is an immutable (bytes, offset) position into an input
// buffer, grounded on original_source/src/read.rs's ReadCtxt. All
// operations are O(1) and return a new Cursor rather than mutating the
// receiver; the decoder interpreter pushes and pops these by value
// instead of threading a separate stack pointer.
type Cursor struct {
	bytes  []byte
	Offset int
}

// NewCursor wraps a byte slice as a Cursor positioned at offset 0.
func NewCursor(bytes []byte) Cursor {
	return Cursor{bytes: bytes, Offset: 0}
}

// Remaining returns the suffix of the input starting at the cursor.
func (c Cursor) Remaining() []byte {
	return c.bytes[c.Offset:]
}

// Len returns the total length of the underlying buffer, irrespective
// of the cursor's current offset.
func (c Cursor) Len() int {
	return len(c.bytes)
}

// ReadByte reads one byte and returns the advanced cursor, or false if
// the cursor is already at the end of input.
func (c Cursor) ReadByte() (byte, Cursor, bool) {
	if c.Offset >= len(c.bytes) {
		return 0, c, false
	}
	b := c.bytes[c.Offset]
	return b, Cursor{bytes: c.bytes, Offset: c.Offset + 1}, true
}

// SplitAt splits the cursor at n bytes past the current offset,
// returning a prefix cursor whose own upper bound is offset+n (so
// that an inner parse driven from the prefix cannot read past the
// window) and the cursor advanced past the window. Returns false if
// the window runs past the end of input.
func (c Cursor) SplitAt(n int) (Cursor, Cursor, bool) {
	if c.Offset+n > len(c.bytes) {
		return Cursor{}, Cursor{}, false
	}
	prefix := Cursor{bytes: c.bytes[:c.Offset+n], Offset: c.Offset}
	rest := Cursor{bytes: c.bytes, Offset: c.Offset + n}
	return prefix, rest, true
}

// SeekTo returns a cursor over the same buffer repositioned at an
// absolute offset. Returns false if the offset is out of range.
func (c Cursor) SeekTo(offset int) (Cursor, bool) {
	if offset > len(c.bytes) {
		return Cursor{}, false
	}
	return Cursor{bytes: c.bytes, Offset: offset}, true
}

// SkipRemainder returns a cursor positioned at the end of input.
func (c Cursor) SkipRemainder() Cursor {
	return Cursor{bytes: c.bytes, Offset: len(c.bytes)}
}

// ReadU16BE reads a big-endian uint16, per original_source/src/read.rs's
// read_u16be fast path. The U16Be expression helper does not use it: it
// decodes a tuple of already-parsed byte values instead.
func (c Cursor) ReadU16BE() (uint16, Cursor, bool) {
	const sz = 2
	if c.Offset+sz > len(c.bytes) {
		return 0, c, false
	}
	raw := c.bytes[c.Offset : c.Offset+sz]
	v := uint16(raw[0])<<8 | uint16(raw[1])
	return v, Cursor{bytes: c.bytes, Offset: c.Offset + sz}, true
}

// ReadU32BE reads a big-endian uint32, mirroring ReadU16BE.
func (c Cursor) ReadU32BE() (uint32, Cursor, bool) {
	const sz = 4
	if c.Offset+sz > len(c.bytes) {
		return 0, c, false
	}
	raw := c.bytes[c.Offset : c.Offset+sz]
	v := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])
	return v, Cursor{bytes: c.bytes, Offset: c.Offset + sz}, true
}

// ReadU64BE reads a big-endian uint64, mirroring ReadU16BE.
func (c Cursor) ReadU64BE() (uint64, Cursor, bool) {
	const sz = 8
	if c.Offset+sz > len(c.bytes) {
		return 0, c, false
	}
	raw := c.bytes[c.Offset : c.Offset+sz]
	var v uint64
	for i := 0; i < sz; i++ {
		v = v<<8 | uint64(raw[i])
	}
	return v, Cursor{bytes: c.bytes, Offset: c.Offset + sz}, true
}
