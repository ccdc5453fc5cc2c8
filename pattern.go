package doodle

// Pattern is the pattern language used by Format.Match/MatchVariant and
// by Decoder.Match/MatchVariant at run time, grounded on
// original_source/src/decoder.rs's Pattern usage inside
// Value::matches_inner.
type Pattern interface {
	isPattern()
}

type patternBase struct{}

func (patternBase) isPattern() {}

// PatternBinding binds the matched value to Name in the resulting
// child scope.
type PatternBinding struct {
	patternBase
	Name string
}

// PatternWildcard matches any value without binding anything.
type PatternWildcard struct{ patternBase }

type PatternBool struct {
	patternBase
	Value bool
}

type PatternU8 struct {
	patternBase
	Value uint8
}

type PatternU16 struct {
	patternBase
	Value uint16
}

type PatternU32 struct {
	patternBase
	Value uint32
}

type PatternChar struct {
	patternBase
	Value rune
}

// PatternTuple matches a Tuple value of exactly the same arity,
// matching each element pattern-wise.
type PatternTuple struct {
	patternBase
	Items []Pattern
}

// PatternSeq matches a Seq value of exactly the same length.
type PatternSeq struct {
	patternBase
	Items []Pattern
}

// PatternVariant matches a Variant value whose label equals Label,
// then matches the inner pattern against the variant's payload.
type PatternVariant struct {
	patternBase
	Label string
	Inner Pattern
}

// Matches attempts to match p against v in the lexical context of
// scope, returning a child scope populated with any bindings on
// success. It mirrors decoder.rs's Value::matches/matches_inner: v is
// coerced (Mapped/Branch peeled) before structural comparison.
func Matches(v Value, scope *Scope, p Pattern) (*Scope, bool) {
	child := ChildScope(scope)
	if matchesInner(Coerce(v), child, p) {
		return child, true
	}
	return nil, false
}

func matchesInner(v Value, scope *Scope, p Pattern) bool {
	switch pp := p.(type) {
	case PatternBinding:
		scope.Push(pp.Name, v)
		return true
	case PatternWildcard:
		return true
	case PatternBool:
		b, ok := v.(Bool)
		return ok && bool(b) == pp.Value
	case PatternU8:
		n, ok := v.(U8)
		return ok && uint8(n) == pp.Value
	case PatternU16:
		n, ok := v.(U16)
		return ok && uint16(n) == pp.Value
	case PatternU32:
		n, ok := v.(U32)
		return ok && uint32(n) == pp.Value
	case PatternChar:
		c, ok := v.(Char)
		return ok && rune(c) == pp.Value
	case PatternTuple:
		t, ok := v.(Tuple)
		if !ok || len(t.Items) != len(pp.Items) {
			return false
		}
		for i, sub := range pp.Items {
			if !matchesInner(Coerce(t.Items[i]), scope, sub) {
				return false
			}
		}
		return true
	case PatternSeq:
		s, ok := v.(Seq)
		if !ok || len(s.Items) != len(pp.Items) {
			return false
		}
		for i, sub := range pp.Items {
			if !matchesInner(Coerce(s.Items[i]), scope, sub) {
				return false
			}
		}
		return true
	case PatternVariant:
		vv, ok := v.(Variant)
		if !ok || vv.Label != pp.Label {
			return false
		}
		return matchesInner(Coerce(vv.Inner), scope, pp.Inner)
	default:
		return false
	}
}
