package doodle

// Bounds is a static lower/upper bound on the number of bytes a format
// can consume. Max is nil when the format's width is unbounded (e.g.
// Repeat, or any format whose extent depends on a runtime expression).
type Bounds struct {
	Min int
	Max *int
}

func fixed(n int) Bounds { return Bounds{Min: n, Max: &n} }

func unboundedFrom(min int) Bounds { return Bounds{Min: min, Max: nil} }

func addBounds(a, b Bounds) Bounds {
	out := Bounds{Min: a.Min + b.Min}
	if a.Max != nil && b.Max != nil {
		m := *a.Max + *b.Max
		out.Max = &m
	}
	return out
}

func unionBounds(bs []Bounds) Bounds {
	if len(bs) == 0 {
		return fixed(0)
	}
	out := bs[0]
	for _, b := range bs[1:] {
		if b.Min < out.Min {
			out.Min = b.Min
		}
		if out.Max == nil || b.Max == nil {
			out.Max = nil
		} else if *b.Max > *out.Max {
			m := *b.Max
			out.Max = &m
		}
	}
	return out
}

// IsNullable reports whether f can successfully parse while consuming
// zero bytes, the property the compiler uses to reject nullable
// Repeat/Repeat1 bodies (an infinite loop otherwise). Reconstructed
// by reading each variant's parse semantics in
// original_source/src/decoder.rs (see DESIGN.md): anything that
// doesn't touch the outer cursor (Peek, PeekNot, WithRelativeOffset,
// Compute, Dynamic) is nullable by construction; Apply and
// RepeatCount/Slice depend on runtime values the static analysis
// cannot see, so they are conservatively treated as nullable.
func IsNullable(module *FormatModule, f Format) bool {
	return isNullable(module, f, map[int]bool{})
}

func isNullable(module *FormatModule, f Format, visiting map[int]bool) bool {
	switch ff := f.(type) {
	case FormatFail:
		return false
	case FormatEndOfInput:
		return true
	case FormatAlign:
		return true
	case FormatByte:
		return false
	case FormatTuple:
		for _, sub := range ff.Fields {
			if !isNullable(module, sub, visiting) {
				return false
			}
		}
		return true
	case FormatRecord:
		for _, sub := range ff.Fields {
			if !isNullable(module, sub.Format, visiting) {
				return false
			}
		}
		return true
	case FormatUnion:
		for _, sub := range ff.Branches {
			if isNullable(module, sub, visiting) {
				return true
			}
		}
		return false
	case FormatUnionVariant:
		for _, sub := range ff.Branches {
			if isNullable(module, sub.Format, visiting) {
				return true
			}
		}
		return false
	case FormatUnionNondet:
		for _, sub := range ff.Branches {
			if isNullable(module, sub.Format, visiting) {
				return true
			}
		}
		return false
	case FormatVariant:
		return isNullable(module, ff.Inner, visiting)
	case FormatRepeat:
		return true
	case FormatRepeat1:
		return isNullable(module, ff.Inner, visiting)
	case FormatRepeatCount:
		return true
	case FormatRepeatUntilLast:
		return isNullable(module, ff.Inner, visiting)
	case FormatRepeatUntilSeq:
		return isNullable(module, ff.Inner, visiting)
	case FormatPeek:
		return true
	case FormatPeekNot:
		return true
	case FormatSlice:
		return true
	case FormatBits:
		return true
	case FormatWithRelativeOffset:
		return true
	case FormatMap:
		return isNullable(module, ff.Inner, visiting)
	case FormatCompute:
		return true
	case FormatMatch:
		for _, br := range ff.Branches {
			if isNullable(module, br.Format, visiting) {
				return true
			}
		}
		return false
	case FormatMatchVariant:
		for _, br := range ff.Branches {
			if isNullable(module, br.Format, visiting) {
				return true
			}
		}
		return false
	case FormatDynamic:
		return true
	case FormatApply:
		return true
	case FormatItemVar:
		if visiting[ff.Level] {
			return false
		}
		visiting[ff.Level] = true
		return isNullable(module, module.getFormat(ff.Level), visiting)
	default:
		return false
	}
}

// MatchBounds computes a static [min, max] byte-width bound for f,
// used by the compiler to enforce PeekNot's bounded-lookahead
// requirement and available to the match-tree builder for depth
// planning.
func MatchBounds(module *FormatModule, f Format) Bounds {
	return matchBounds(module, f, map[int]bool{})
}

func matchBounds(module *FormatModule, f Format, visiting map[int]bool) Bounds {
	switch ff := f.(type) {
	case FormatFail:
		return fixed(0)
	case FormatEndOfInput:
		return fixed(0)
	case FormatAlign:
		n := ff.N
		if n <= 1 {
			return fixed(0)
		}
		return Bounds{Min: 0, Max: intPtr(n - 1)}
	case FormatByte:
		return fixed(1)
	case FormatTuple:
		out := fixed(0)
		for _, sub := range ff.Fields {
			out = addBounds(out, matchBounds(module, sub, visiting))
		}
		return out
	case FormatRecord:
		out := fixed(0)
		for _, sub := range ff.Fields {
			out = addBounds(out, matchBounds(module, sub.Format, visiting))
		}
		return out
	case FormatUnion:
		var bs []Bounds
		for _, sub := range ff.Branches {
			bs = append(bs, matchBounds(module, sub, visiting))
		}
		return unionBounds(bs)
	case FormatUnionVariant:
		var bs []Bounds
		for _, sub := range ff.Branches {
			bs = append(bs, matchBounds(module, sub.Format, visiting))
		}
		return unionBounds(bs)
	case FormatUnionNondet:
		var bs []Bounds
		for _, sub := range ff.Branches {
			bs = append(bs, matchBounds(module, sub.Format, visiting))
		}
		return unionBounds(bs)
	case FormatVariant:
		return matchBounds(module, ff.Inner, visiting)
	case FormatRepeat:
		return unboundedFrom(0)
	case FormatRepeat1:
		inner := matchBounds(module, ff.Inner, visiting)
		return unboundedFrom(inner.Min)
	case FormatRepeatCount:
		return unboundedFrom(0)
	case FormatRepeatUntilLast, FormatRepeatUntilSeq:
		return unboundedFrom(0)
	case FormatPeek:
		return fixed(0)
	case FormatPeekNot:
		return fixed(0)
	case FormatSlice:
		return unboundedFrom(0)
	case FormatBits:
		inner := matchBounds(module, ff.Inner, visiting)
		min := (inner.Min + 7) / 8
		var max *int
		if inner.Max != nil {
			max = intPtr((*inner.Max + 7) / 8)
		}
		return Bounds{Min: min, Max: max}
	case FormatWithRelativeOffset:
		return fixed(0)
	case FormatMap:
		return matchBounds(module, ff.Inner, visiting)
	case FormatCompute:
		return fixed(0)
	case FormatMatch:
		var bs []Bounds
		for _, br := range ff.Branches {
			bs = append(bs, matchBounds(module, br.Format, visiting))
		}
		return unionBounds(bs)
	case FormatMatchVariant:
		var bs []Bounds
		for _, br := range ff.Branches {
			bs = append(bs, matchBounds(module, br.Format, visiting))
		}
		return unionBounds(bs)
	case FormatDynamic:
		return fixed(0)
	case FormatApply:
		return unboundedFrom(0)
	case FormatItemVar:
		if visiting[ff.Level] {
			return unboundedFrom(0)
		}
		visiting[ff.Level] = true
		return matchBounds(module, module.getFormat(ff.Level), visiting)
	default:
		return unboundedFrom(0)
	}
}

func intPtr(n int) *int { return &n }

// DependsOnNext reports whether compiling f needs to see what follows
// it lexically (i.e. whether memoizing its compiled Decoder must key
// on the full Next rather than normalizing to Empty). True is always
// a safe answer, at the cost of extra decoder instantiation; only
// "flat" combinations of formats whose own compile_next calls already
// isolate their sub-formats behind Next::Empty (Slice, Bits,
// WithRelativeOffset, Peek, PeekNot, Dynamic, Apply, and the atoms)
// can safely answer false. Grounded on the single call site in
// original_source/src/decoder.rs's ItemVar arm.
//
// Union/UnionVariant/UnionNondet recurse into their branches rather
// than answering true outright, using the same visiting guard as
// IsNullable/MatchBounds: a branch that is itself a tail occurrence of
// the item currently being analyzed is guarded to false, so a
// self-recursive format's own continuation normalizes to Empty
// instead of growing by one Next frame on every recursive occurrence.
func DependsOnNext(module *FormatModule, f Format) bool {
	return dependsOnNext(module, f, map[int]bool{})
}

func dependsOnNext(module *FormatModule, f Format, visiting map[int]bool) bool {
	switch ff := f.(type) {
	case FormatFail, FormatEndOfInput, FormatAlign, FormatByte, FormatCompute:
		return false
	case FormatTuple:
		for _, sub := range ff.Fields {
			if dependsOnNext(module, sub, visiting) {
				return true
			}
		}
		return false
	case FormatRecord:
		for _, sub := range ff.Fields {
			if dependsOnNext(module, sub.Format, visiting) {
				return true
			}
		}
		return false
	case FormatUnion:
		for _, sub := range ff.Branches {
			if dependsOnNext(module, sub, visiting) {
				return true
			}
		}
		return false
	case FormatUnionVariant:
		for _, sub := range ff.Branches {
			if dependsOnNext(module, sub.Format, visiting) {
				return true
			}
		}
		return false
	case FormatUnionNondet:
		for _, sub := range ff.Branches {
			if dependsOnNext(module, sub.Format, visiting) {
				return true
			}
		}
		return false
	case FormatVariant:
		return dependsOnNext(module, ff.Inner, visiting)
	case FormatRepeat, FormatRepeat1:
		return true
	case FormatRepeatCount:
		return dependsOnNext(module, ff.Inner, visiting)
	case FormatRepeatUntilLast:
		return dependsOnNext(module, ff.Inner, visiting)
	case FormatRepeatUntilSeq:
		return dependsOnNext(module, ff.Inner, visiting)
	case FormatPeek:
		return false
	case FormatPeekNot:
		return false
	case FormatSlice:
		return false
	case FormatBits:
		return false
	case FormatWithRelativeOffset:
		return false
	case FormatMap:
		return dependsOnNext(module, ff.Inner, visiting)
	case FormatMatch:
		for _, br := range ff.Branches {
			if dependsOnNext(module, br.Format, visiting) {
				return true
			}
		}
		return false
	case FormatMatchVariant:
		for _, br := range ff.Branches {
			if dependsOnNext(module, br.Format, visiting) {
				return true
			}
		}
		return false
	case FormatDynamic:
		return false
	case FormatApply:
		return false
	case FormatItemVar:
		if visiting[ff.Level] {
			return false
		}
		visiting[ff.Level] = true
		return dependsOnNext(module, module.getFormat(ff.Level), visiting)
	default:
		return true
	}
}
