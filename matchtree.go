package doodle

// MatchTree is a compile-time decision tree over upcoming byte values
// that maps any input prefix to exactly one of k candidate formats, or
// determines that no such mapping exists. It backs
// Union/UnionVariant alternation and the Repeat/Repeat1 continue-vs-
// stop decision, replacing runtime backtracking with a single
// deterministic lookup.
type MatchTree struct {
	root matchNode
}

// matchNode is either a decided leaf (exactly one candidate remains)
// or an internal node keyed by the next byte, built depth-first.
type matchNode struct {
	leaf     int // candidate index, valid when isLeaf
	isLeaf   bool
	accepted bool          // an empty/end-of-input candidate matched at this depth
	byEnd    int           // candidate index accepted at end-of-input, valid when accepted
	children map[byte]*matchNode
}

// candidate pairs a format with the continuation that follows it,
// used to re-derive what bytes it can accept at a given depth.
type candidate struct {
	format Format
	next   *Next
}

const maxMatchDepth = 32

// Build attempts to construct a MatchTree distinguishing each of
// formats (paired uniformly with next, the continuation after
// whichever one matches) from the others. Returns false if no such
// tree exists within maxMatchDepth bytes of lookahead — the compiler
// treats this as "cannot build match tree" and rejects the format.
func Build(module *FormatModule, formats []Format, next *Next) (*MatchTree, bool) {
	cands := make([]candidate, len(formats))
	for i, f := range formats {
		cands[i] = candidate{format: f, next: next}
	}
	indices := make([]int, len(cands))
	for i := range indices {
		indices[i] = i
	}
	root, ok := buildNode(module, cands, indices, 0)
	if !ok {
		return nil, false
	}
	return &MatchTree{root: *root}, true
}

func buildNode(module *FormatModule, cands []candidate, live []int, depth int) (*matchNode, bool) {
	if len(live) == 1 {
		return &matchNode{leaf: live[0], isLeaf: true}, true
	}
	if depth > maxMatchDepth {
		return nil, false
	}

	node := &matchNode{children: map[byte]*matchNode{}, byEnd: -1}
	byByte := map[byte][]int{}
	var atEnd []int

	for _, idx := range live {
		sets, endOk := acceptedAt(module, cands[idx], depth)
		if endOk {
			atEnd = append(atEnd, idx)
		}
		for _, b := range sets.Bytes() {
			byByte[b] = append(byByte[b], idx)
		}
	}

	if len(atEnd) > 1 {
		return nil, false
	}
	if len(atEnd) == 1 {
		node.accepted = true
		node.byEnd = atEnd[0]
	}

	if len(byByte) == 0 {
		if node.accepted {
			return node, true
		}
		return nil, false
	}

	for b, idxs := range byByte {
		uniq := dedup(idxs)
		child, ok := buildNode(module, cands, uniq, depth+1)
		if !ok {
			return nil, false
		}
		node.children[b] = child
	}
	return node, true
}

func dedup(xs []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// acceptedAt computes, for a single candidate, the set of bytes it can
// accept at lookahead position depth, plus whether it can also
// terminate (accept end-of-input / an empty continuation) at that
// depth. A Union/UnionVariant candidate contributes the union of its
// branches' sets; a Tuple/Record contributes its first field's set (or
// falls through to its continuation if every field up to depth is
// itself nullable); Repeat contributes its own body's set union the
// follow set, descending into Next whenever a candidate is fully
// nullable up to this depth.
func acceptedAt(module *FormatModule, c candidate, depth int) (ByteSet, bool) {
	f, n := c.format, c.next
	for step := 0; step < depth; step++ {
		set, endOk, advanced, nf, nn := stepOnce(module, f, n)
		if !advanced {
			if endOk {
				return ByteSet{}, true
			}
			return set, false
		}
		f, n = nf, nn
	}
	set, endOk, _, _, _ := stepOnce(module, f, n)
	return set, endOk
}

// stepOnce looks one byte position ahead from (f, n), returning the
// set of admissible bytes, whether the position can also be "end"
// (f and its continuation are both exhausted/nullable here), and, if
// there is only one way to proceed past this position (it is a single
// Byte, possibly reached through a nullable prefix or the
// continuation), the advanced (format, next) pair describing what
// remains after it, to continue descending from.
func stepOnce(module *FormatModule, f Format, n *Next) (ByteSet, bool, bool, Format, *Next) {
	switch ff := f.(type) {
	case FormatByte:
		return ff.Set, false, true, EMPTY, n
	case FormatFail:
		return ByteSet{}, false, false, nil, nil
	case FormatEndOfInput:
		return ByteSet{}, true, false, nil, nil
	case FormatVariant:
		return stepOnce(module, ff.Inner, n)
	case FormatMap:
		return stepOnce(module, ff.Inner, n)
	case FormatTuple:
		if len(ff.Fields) == 0 {
			return continuationAccept(module, n)
		}
		head, rest := ff.Fields[0], ff.Fields[1:]
		if !IsNullable(module, head) {
			return stepOnce(module, head, NextTuple(rest, n))
		}
		set, endOk, _, _, _ := stepOnce(module, head, NextTuple(rest, n))
		set2, endOk2, adv2, nf2, nn2 := stepOnce(module, FormatTuple{Fields: rest}, n)
		if adv2 {
			return set.Union(set2), endOk || endOk2, true, nf2, nn2
		}
		return set.Union(set2), endOk || endOk2, false, nil, nil
	case FormatRecord:
		fields := make([]Format, len(ff.Fields))
		for i, fld := range ff.Fields {
			fields[i] = fld.Format
		}
		return stepOnce(module, FormatTuple{Fields: fields}, n)
	case FormatUnion:
		return unionStep(module, ff.Branches, n)
	case FormatUnionVariant:
		fs := make([]Format, len(ff.Branches))
		for i, b := range ff.Branches {
			fs[i] = b.Format
		}
		return unionStep(module, fs, n)
	case FormatUnionNondet:
		fs := make([]Format, len(ff.Branches))
		for i, b := range ff.Branches {
			fs[i] = b.Format
		}
		return unionStep(module, fs, n)
	case FormatRepeat:
		tailSet, tailEnd, _, _, _ := continuationAccept(module, n)
		bodySet, _, _, _, _ := stepOnce(module, ff.Inner, NextRepeat(ff.Inner, n))
		return bodySet.Union(tailSet), tailEnd, false, nil, nil
	case FormatRepeat1:
		return stepOnce(module, ff.Inner, NextRepeat(ff.Inner, n))
	case FormatItemVar:
		return stepOnce(module, module.getFormat(ff.Level), n)
	case FormatPeek, FormatPeekNot, FormatCompute, FormatDynamic, FormatWithRelativeOffset, FormatSlice, FormatBits, FormatApply, FormatAlign:
		return continuationAccept(module, n)
	case FormatRepeatCount, FormatRepeatUntilLast, FormatRepeatUntilSeq:
		return ByteSet{}, false, false, nil, nil
	case FormatMatch:
		var fs []Format
		for _, br := range ff.Branches {
			fs = append(fs, br.Format)
		}
		return unionStep(module, fs, n)
	case FormatMatchVariant:
		var fs []Format
		for _, br := range ff.Branches {
			fs = append(fs, br.Format)
		}
		return unionStep(module, fs, n)
	default:
		return ByteSet{}, false, false, nil, nil
	}
}

func unionStep(module *FormatModule, branches []Format, n *Next) (ByteSet, bool, bool, Format, *Next) {
	var out ByteSet
	endOk := false
	for _, b := range branches {
		set, e, _, _, _ := stepOnce(module, b, n)
		out = out.Union(set)
		endOk = endOk || e
	}
	return out, endOk, false, nil, nil
}

// continuationAccept steps into the Next continuation itself, used
// once a zero-width (or fully nullable) format has been exhausted.
func continuationAccept(module *FormatModule, n *Next) (ByteSet, bool, bool, Format, *Next) {
	if n.isEmpty() {
		return ByteSet{}, true, false, nil, nil
	}
	switch n.kind {
	case nextTuple:
		return stepOnce(module, FormatTuple{Fields: n.rest}, n.outer)
	case nextRecord:
		return stepOnce(module, FormatRecord{Fields: n.field}, n.outer)
	case nextRepeat:
		return stepOnce(module, FormatRepeat{Inner: n.body}, n.outer)
	default:
		return ByteSet{}, true, false, nil, nil
	}
}

// Matches walks the built tree against cursor without consuming it,
// returning the winning candidate index or false if none match (the
// compiled decoder then yields a NoValidBranch error).
func (t *MatchTree) Matches(cursor Cursor) (int, bool) {
	node := &t.root
	for {
		if node.isLeaf {
			return node.leaf, true
		}
		b, advanced, ok := cursor.ReadByte()
		if !ok {
			if node.accepted {
				return node.byEnd, true
			}
			return 0, false
		}
		child, ok := node.children[b]
		if !ok {
			if node.accepted {
				return node.byEnd, true
			}
			return 0, false
		}
		cursor = advanced
		node = child
	}
}
