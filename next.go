package doodle

// Next is the compiler's persistent continuation: what will be parsed
// immediately after the current sub-format in its lexical context.
// Reconstructed from how decoder.rs's compile_next threads it
// (Next::Tuple/Record carry a remaining slice of sibling formats,
// Next::Repeat carries the loop body) and used to let the match-tree
// builder see past the current format into what follows it.
type Next struct {
	kind  nextKind
	rest  []Format           // Tuple
	field []FormatRecordField // Record
	body  Format             // Repeat
	outer *Next
}

type nextKind int

const (
	nextEmpty nextKind = iota
	nextTuple
	nextRecord
	nextRepeat
)

// NextEmpty is the continuation at the end of any context: nothing
// follows.
var NextEmpty = &Next{kind: nextEmpty}

// NextTuple builds a continuation meaning "parse the remaining tuple
// fields, then outer".
func NextTuple(rest []Format, outer *Next) *Next {
	return &Next{kind: nextTuple, rest: rest, outer: outer}
}

// NextRecord builds a continuation meaning "parse the remaining record
// fields, then outer".
func NextRecord(rest []FormatRecordField, outer *Next) *Next {
	return &Next{kind: nextRecord, field: rest, outer: outer}
}

// NextRepeat builds a continuation meaning "parse body again (as many
// times as the loop permits), then outer" — the follow-set of a
// Repeat/Repeat1 loop body is itself plus whatever follows the loop.
func NextRepeat(body Format, outer *Next) *Next {
	return &Next{kind: nextRepeat, body: body, outer: outer}
}

// isEmpty reports whether n carries no continuation obligation,
// equivalent to Rc::new(Next::Empty) in the reference compiler.
func (n *Next) isEmpty() bool {
	return n == nil || n.kind == nextEmpty
}
