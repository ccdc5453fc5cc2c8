package doodle

import (
	"fmt"
	"reflect"
)

// Decoder is the compiled form of a Format, one-to-one with format
// variants except ItemVar becomes Call(index, args) and
// Union/UnionVariant become IsoBranch/Branch over a built MatchTree.
// Grounded arm-for-arm on
// original_source/src/decoder.rs's Decoder enum and its
// compile_next/parse methods.
type Decoder interface {
	isDecoder()
	// Parse consumes from input, dispatching through program for
	// Call/Apply, and returns the advanced cursor on success.
	Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error)
}

type decoderBase struct{}

func (decoderBase) isDecoder() {}

type decoderCallArg struct {
	Name string
	Expr Expr
}

type DecoderCall struct {
	decoderBase
	Index int
	Args  []decoderCallArg
}

func (d DecoderCall) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	callScope := NewScope()
	for _, a := range d.Args {
		callScope.Push(a.Name, EvalValue(a.Expr, scope))
	}
	return program.Decoders[d.Index].Parse(program, callScope, input)
}

type DecoderFail struct{ decoderBase }

func (DecoderFail) Parse(_ *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	return nil, input, errFail(scope, input.Offset)
}

type DecoderEndOfInput struct{ decoderBase }

func (DecoderEndOfInput) Parse(_ *Program, _ *Scope, input Cursor) (Value, Cursor, error) {
	b, _, ok := input.ReadByte()
	if !ok {
		return Unit(), input, nil
	}
	return nil, input, errTrailing(b, input.Offset)
}

type DecoderAlign struct {
	decoderBase
	N int
}

func (d DecoderAlign) Parse(_ *Program, _ *Scope, input Cursor) (Value, Cursor, error) {
	skip := (d.N - (input.Offset % d.N)) % d.N
	_, rest, ok := input.SplitAt(skip)
	if !ok {
		return nil, input, errOverrun(skip, input.Offset)
	}
	return Unit(), rest, nil
}

type DecoderByte struct {
	decoderBase
	Set ByteSet
}

func (d DecoderByte) Parse(_ *Program, _ *Scope, input Cursor) (Value, Cursor, error) {
	b, rest, ok := input.ReadByte()
	if !ok {
		return nil, input, errOverbyte(input.Offset)
	}
	if !d.Set.Contains(b) {
		return nil, input, errUnexpected(b, d.Set, input.Offset)
	}
	return U8(b), rest, nil
}

type DecoderVariant struct {
	decoderBase
	Label string
	Inner Decoder
}

func (d DecoderVariant) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	v, rest, err := d.Inner.Parse(program, scope, input)
	if err != nil {
		return nil, input, err
	}
	return Variant{Label: d.Label, Inner: v}, rest, nil
}

// DecoderParallel is the compiled form of UnionNondet: ordered
// try-next-on-failure, the only source of backtracking in the engine.
type DecoderParallel struct {
	decoderBase
	Branches []FormatUnionBranch2
}

// FormatUnionBranch2 pairs a label with its compiled decoder.
type FormatUnionBranch2 struct {
	Label   string
	Decoder Decoder
}

func (d DecoderParallel) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	for i, br := range d.Branches {
		v, rest, err := br.Decoder.Parse(program, scope, input)
		if err == nil {
			return Branch{Index: i, Inner: Variant{Label: br.Label, Inner: v}}, rest, nil
		}
	}
	return nil, input, errFail(scope, input.Offset)
}

type DecoderBranch struct {
	decoderBase
	Tree     *MatchTree
	Branches []FormatUnionBranch2
}

func (d DecoderBranch) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	i, ok := d.Tree.Matches(input)
	if !ok {
		return nil, input, errNoValidBranch(input.Offset)
	}
	br := d.Branches[i]
	v, rest, err := br.Decoder.Parse(program, scope, input)
	if err != nil {
		return nil, input, err
	}
	return Branch{Index: i, Inner: Variant{Label: br.Label, Inner: v}}, rest, nil
}

type DecoderIsoBranch struct {
	decoderBase
	Tree     *MatchTree
	Branches []Decoder
}

func (d DecoderIsoBranch) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	i, ok := d.Tree.Matches(input)
	if !ok {
		return nil, input, errNoValidBranch(input.Offset)
	}
	v, rest, err := d.Branches[i].Parse(program, scope, input)
	if err != nil {
		return nil, input, err
	}
	return Branch{Index: i, Inner: v}, rest, nil
}

type DecoderTuple struct {
	decoderBase
	Fields []Decoder
}

func (d DecoderTuple) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	items := make([]Value, len(d.Fields))
	cur := input
	for i, f := range d.Fields {
		v, rest, err := f.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		items[i] = v
		cur = rest
	}
	return Tuple{Items: items}, cur, nil
}

type DecoderRecordField struct {
	Name    string
	Decoder Decoder
}

type DecoderRecord struct {
	decoderBase
	Fields []DecoderRecordField
}

func (d DecoderRecord) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	fields := make([]RecordField, len(d.Fields))
	cur := input
	recordScope := ChildScope(scope)
	for i, f := range d.Fields {
		v, rest, err := f.Decoder.Parse(program, recordScope, cur)
		if err != nil {
			return nil, input, err
		}
		fields[i] = RecordField{Name: f.Name, Value: v}
		recordScope.Push(f.Name, v)
		cur = rest
	}
	return Record{Fields: fields}, cur, nil
}

// DecoderWhile is the compiled form of Repeat: tree index 0 means
// "continue", any other outcome (the ε alternative) means "stop".
type DecoderWhile struct {
	decoderBase
	Tree *MatchTree
	Body Decoder
}

func (d DecoderWhile) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	var items []Value
	cur := input
	for {
		i, ok := d.Tree.Matches(cur)
		if !ok {
			return nil, input, errNoValidBranch(cur.Offset)
		}
		if i != 0 {
			break
		}
		v, rest, err := d.Body.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		items = append(items, v)
		cur = rest
	}
	return Seq{Items: items}, cur, nil
}

// DecoderUntil is the compiled form of Repeat1: parse the body at
// least once, then check the tree after each iteration.
type DecoderUntil struct {
	decoderBase
	Tree *MatchTree
	Body Decoder
}

func (d DecoderUntil) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	var items []Value
	cur := input
	for {
		v, rest, err := d.Body.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		items = append(items, v)
		cur = rest
		i, ok := d.Tree.Matches(cur)
		if !ok {
			return nil, input, errNoValidBranch(cur.Offset)
		}
		if i == 0 {
			break
		}
	}
	return Seq{Items: items}, cur, nil
}

type DecoderRepeatCount struct {
	decoderBase
	Count Expr
	Body  Decoder
}

func (d DecoderRepeatCount) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	count := AsUsize(EvalValue(d.Count, scope))
	items := make([]Value, 0, count)
	cur := input
	for i := 0; i < count; i++ {
		v, rest, err := d.Body.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		items = append(items, v)
		cur = rest
	}
	return Seq{Items: items}, cur, nil
}

type DecoderRepeatUntilLast struct {
	decoderBase
	Done Expr // ExprLambda
	Body Decoder
}

func (d DecoderRepeatUntilLast) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	var items []Value
	cur := input
	for {
		v, rest, err := d.Body.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		cur = rest
		done := asBool(evalLambda(d.Done, scope, v))
		items = append(items, v)
		if done {
			break
		}
	}
	return Seq{Items: items}, cur, nil
}

type DecoderRepeatUntilSeq struct {
	decoderBase
	Done Expr // ExprLambda
	Body Decoder
}

func (d DecoderRepeatUntilSeq) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	var items []Value
	cur := input
	for {
		v, rest, err := d.Body.Parse(program, scope, cur)
		if err != nil {
			return nil, input, err
		}
		cur = rest
		items = append(items, v)
		done := asBool(evalLambda(d.Done, scope, Seq{Items: append([]Value{}, items...)}))
		if done {
			break
		}
	}
	return Seq{Items: items}, cur, nil
}

type DecoderPeek struct {
	decoderBase
	Inner Decoder
}

func (d DecoderPeek) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	v, _, err := d.Inner.Parse(program, scope, input)
	if err != nil {
		return nil, input, err
	}
	return v, input, nil
}

type DecoderPeekNot struct {
	decoderBase
	Inner Decoder
}

func (d DecoderPeekNot) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	if _, _, err := d.Inner.Parse(program, scope, input); err == nil {
		return nil, input, errFail(scope, input.Offset)
	}
	return Unit(), input, nil
}

type DecoderSlice struct {
	decoderBase
	Size  Expr
	Inner Decoder
}

func (d DecoderSlice) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	size := AsUsize(EvalValue(d.Size, scope))
	window, rest, ok := input.SplitAt(size)
	if !ok {
		return nil, input, errOverrun(size, input.Offset)
	}
	v, _, err := d.Inner.Parse(program, scope, window)
	if err != nil {
		return nil, input, err
	}
	return v, rest, nil
}

type DecoderBits struct {
	decoderBase
	Inner Decoder
}

func (d DecoderBits) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	remaining := input.Remaining()
	bits := make([]byte, 0, len(remaining)*8)
	for _, b := range remaining {
		for i := 0; i < 8; i++ {
			bits = append(bits, (b>>i)&1)
		}
	}
	bitCursor := NewCursor(bits)
	v, bitRest, err := d.Inner.Parse(program, scope, bitCursor)
	if err != nil {
		return nil, input, err
	}
	bitsRemaining := len(bits) - bitRest.Offset
	bytesRemain := bitsRemaining >> 3
	bytesRead := len(remaining) - bytesRemain
	_, rest, ok := input.SplitAt(bytesRead)
	if !ok {
		return nil, input, errOverrun(bytesRead, input.Offset)
	}
	return v, rest, nil
}

type DecoderWithRelativeOffset struct {
	decoderBase
	Offset Expr
	Inner  Decoder
}

func (d DecoderWithRelativeOffset) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	offset := AsUsize(EvalValue(d.Offset, scope))
	_, window, ok := input.SplitAt(offset)
	if !ok {
		return nil, input, errOverrun(offset, input.Offset)
	}
	v, _, err := d.Inner.Parse(program, scope, window)
	if err != nil {
		return nil, input, err
	}
	return v, input, nil
}

type DecoderMap struct {
	decoderBase
	Inner  Decoder
	Lambda Expr // ExprLambda
}

func (d DecoderMap) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	orig, rest, err := d.Inner.Parse(program, scope, input)
	if err != nil {
		return nil, input, err
	}
	mapped := evalLambda(d.Lambda, scope, orig)
	return Mapped{Original: orig, Result: mapped}, rest, nil
}

type DecoderCompute struct {
	decoderBase
	Value Expr
}

func (d DecoderCompute) Parse(_ *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	return EvalValue(d.Value, scope), input, nil
}

type DecoderMatchBranch struct {
	Pattern Pattern
	Decoder Decoder
}

type DecoderMatch struct {
	decoderBase
	Head     Expr
	Branches []DecoderMatchBranch
}

func (d DecoderMatch) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	head := d.Head.Eval(scope)
	for i, br := range d.Branches {
		if patScope, ok := Matches(head, scope, br.Pattern); ok {
			v, rest, err := br.Decoder.Parse(program, patScope, input)
			if err != nil {
				return nil, input, err
			}
			return Branch{Index: i, Inner: v}, rest, nil
		}
	}
	panic("non-exhaustive patterns")
}

type DecoderMatchVariantBranch struct {
	Pattern Pattern
	Label   string
	Decoder Decoder
}

type DecoderMatchVariant struct {
	decoderBase
	Head     Expr
	Branches []DecoderMatchVariantBranch
}

func (d DecoderMatchVariant) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	head := d.Head.Eval(scope)
	for i, br := range d.Branches {
		if patScope, ok := Matches(head, scope, br.Pattern); ok {
			v, rest, err := br.Decoder.Parse(program, patScope, input)
			if err != nil {
				return nil, input, err
			}
			return Branch{Index: i, Inner: Variant{Label: br.Label, Inner: v}}, rest, nil
		}
	}
	panic("non-exhaustive patterns")
}

type DecoderDynamic struct {
	decoderBase
	Dyn DynFormat
}

func (d DecoderDynamic) Parse(_ *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	switch dyn := d.Dyn.(type) {
	case DynHuffman:
		lengths := valueToVecUsize(dyn.Lengths.Eval(scope))
		if dyn.Values != nil {
			values := valueToVecUsize(dyn.Values.Eval(scope))
			newLengths := make([]int, len(values))
			for i := range lengths {
				newLengths[values[i]] = lengths[i]
			}
			lengths = newLengths
		}
		f := MakeHuffmanCodes(lengths)
		return FormatValue{Inner: f}, input, nil
	default:
		panic("unknown dynamic format")
	}
}

type DecoderApply struct {
	decoderBase
	Name string
}

func (d DecoderApply) Parse(program *Program, scope *Scope, input Cursor) (Value, Cursor, error) {
	return scope.CallDecoderByName(d.Name, program, input)
}

// ---- compiler ----

// memoEntry pairs a continuation with the decoder-table index already
// compiled for it. Next carries Format/Expr fields containing slices,
// so it cannot be a Go map key by value; entries are kept in a
// per-level slice and matched with reflect.DeepEqual, which compares
// *Next pointers by walking the pointed-to structure rather than by
// identity. The table stays small (one entry per distinct
// continuation a given item actually compiles under), so a linear
// scan costs nothing compared to a hash.
type memoEntry struct {
	next  *Next
	index int
}

// Compiler lowers Format into Decoder with a continuation argument
// describing what immediately follows the current sub-format in its
// lexical context.
type Compiler struct {
	module  *FormatModule
	program *Program
	memo    map[int][]memoEntry
	opts    CompilerOptions
}

// NewCompiler creates a compiler over module using opts.
func NewCompiler(module *FormatModule, opts CompilerOptions) *Compiler {
	return &Compiler{module: module, program: &Program{}, memo: map[int][]memoEntry{}, opts: opts}
}

// lookupMemo finds the decoder index already compiled for (level,
// next), comparing continuations structurally rather than by pointer.
func (c *Compiler) lookupMemo(level int, next *Next) (int, bool) {
	for _, e := range c.memo[level] {
		if reflect.DeepEqual(e.next, next) {
			return e.index, true
		}
	}
	return 0, false
}

func (c *Compiler) storeMemo(level int, next *Next, index int) {
	c.memo[level] = append(c.memo[level], memoEntry{next: next, index: index})
}

// Compile lowers root into a complete Program whose decoder index 0 is
// the entry point, using default compiler options.
func Compile(module *FormatModule, root Format) (*Program, error) {
	return CompileWithOptions(module, root, DefaultCompilerOptions())
}

// CompileWithOptions is Compile with explicit CompilerOptions.
func CompileWithOptions(module *FormatModule, root Format, opts CompilerOptions) (*Program, error) {
	c := NewCompiler(module, opts)
	n := len(c.program.Decoders)
	c.program.Decoders = append(c.program.Decoders, DecoderFail{})
	d, err := c.compileNext(root, NextEmpty)
	if err != nil {
		return nil, err
	}
	c.program.Decoders[n] = d
	return c.program, nil
}

// CompileStandalone compiles f as the root of a fresh, otherwise empty
// module — used by Scope.CallDecoderByName to realize a scope-bound
// Apply target the first time it's used.
func CompileStandalone(f Format) (Decoder, error) {
	program, err := Compile(NewFormatModule(), f)
	if err != nil {
		return nil, err
	}
	return program.Decoders[0], nil
}

func (c *Compiler) compileNext(format Format, next *Next) (Decoder, error) {
	switch f := format.(type) {
	case FormatItemVar:
		effectiveNext := next
		if !DependsOnNext(c.module, c.module.getFormat(f.Level)) {
			effectiveNext = NextEmpty
		}
		n, ok := c.lookupMemo(f.Level, effectiveNext)
		if !ok {
			// Reserve the slot before compiling the body: a
			// self-referential occurrence of this same (level,
			// effectiveNext) reached while compiling the body below
			// must see this entry already memoized, or it recompiles
			// the body forever.
			n = len(c.program.Decoders)
			c.program.Decoders = append(c.program.Decoders, DecoderFail{})
			c.storeMemo(f.Level, effectiveNext, n)
			d, err := c.compileNext(c.module.getFormat(f.Level), effectiveNext)
			if err != nil {
				return nil, err
			}
			c.program.Decoders[n] = d
		}
		params := c.module.getArgs(f.Level)
		args := make([]decoderCallArg, len(params))
		for i, p := range params {
			args[i] = decoderCallArg{Name: p.Name, Expr: f.Args[i]}
		}
		return DecoderCall{Index: n, Args: args}, nil

	case FormatFail:
		return DecoderFail{}, nil
	case FormatEndOfInput:
		return DecoderEndOfInput{}, nil
	case FormatAlign:
		return DecoderAlign{N: f.N}, nil
	case FormatByte:
		return DecoderByte{Set: f.Set}, nil

	case FormatVariant:
		d, err := c.compileNext(f.Inner, next)
		if err != nil {
			return nil, err
		}
		return DecoderVariant{Label: f.Label, Inner: d}, nil

	case FormatUnionVariant:
		fs := make([]Format, len(f.Branches))
		branches := make([]FormatUnionBranch2, len(f.Branches))
		for i, b := range f.Branches {
			d, err := c.compileNext(b.Format, next)
			if err != nil {
				return nil, err
			}
			branches[i] = FormatUnionBranch2{Label: b.Label, Decoder: d}
			fs[i] = b.Format
		}
		tree, ok := Build(c.module, fs, next)
		if !ok {
			return nil, fmt.Errorf("cannot build match tree for %T", format)
		}
		return DecoderBranch{Tree: tree, Branches: branches}, nil

	case FormatUnionNondet:
		branches := make([]FormatUnionBranch2, len(f.Branches))
		for i, b := range f.Branches {
			d, err := c.compileNext(b.Format, next)
			if err != nil {
				return nil, err
			}
			branches[i] = FormatUnionBranch2{Label: b.Label, Decoder: d}
		}
		return DecoderParallel{Branches: branches}, nil

	case FormatUnion:
		fs := make([]Format, len(f.Branches))
		ds := make([]Decoder, len(f.Branches))
		for i, b := range f.Branches {
			d, err := c.compileNext(b, next)
			if err != nil {
				return nil, err
			}
			ds[i] = d
			fs[i] = b
		}
		tree, ok := Build(c.module, fs, next)
		if !ok {
			return nil, fmt.Errorf("cannot build match tree for %T", format)
		}
		return DecoderIsoBranch{Tree: tree, Branches: ds}, nil

	case FormatTuple:
		dfields := make([]Decoder, len(f.Fields))
		for i, field := range f.Fields {
			fieldNext := NextTuple(f.Fields[i+1:], next)
			d, err := c.compileNext(field, fieldNext)
			if err != nil {
				return nil, err
			}
			dfields[i] = d
		}
		return DecoderTuple{Fields: dfields}, nil

	case FormatRecord:
		dfields := make([]DecoderRecordField, len(f.Fields))
		for i, field := range f.Fields {
			fieldNext := NextRecord(f.Fields[i+1:], next)
			d, err := c.compileNext(field.Format, fieldNext)
			if err != nil {
				return nil, err
			}
			dfields[i] = DecoderRecordField{Name: field.Name, Decoder: d}
		}
		return DecoderRecord{Fields: dfields}, nil

	case FormatRepeat:
		if IsNullable(c.module, f.Inner) {
			return nil, fmt.Errorf("cannot repeat nullable format: %T", f.Inner)
		}
		da, err := c.compileNext(f.Inner, NextRepeat(f.Inner, next))
		if err != nil {
			return nil, err
		}
		fa := FormatTuple{Fields: []Format{f.Inner, FormatRepeat{Inner: f.Inner}}}
		fb := EMPTY
		tree, ok := Build(c.module, []Format{fa, fb}, next)
		if !ok {
			return nil, fmt.Errorf("cannot build match tree for %T", format)
		}
		return DecoderWhile{Tree: tree, Body: da}, nil

	case FormatRepeat1:
		if IsNullable(c.module, f.Inner) {
			return nil, fmt.Errorf("cannot repeat nullable format: %T", f.Inner)
		}
		da, err := c.compileNext(f.Inner, NextRepeat(f.Inner, next))
		if err != nil {
			return nil, err
		}
		fa := EMPTY
		fb := FormatTuple{Fields: []Format{f.Inner, FormatRepeat{Inner: f.Inner}}}
		tree, ok := Build(c.module, []Format{fa, fb}, next)
		if !ok {
			return nil, fmt.Errorf("cannot build match tree for %T", format)
		}
		return DecoderUntil{Tree: tree, Body: da}, nil

	case FormatRepeatCount:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderRepeatCount{Count: f.Count, Body: da}, nil

	case FormatRepeatUntilLast:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderRepeatUntilLast{Done: f.Done, Body: da}, nil

	case FormatRepeatUntilSeq:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderRepeatUntilSeq{Done: f.Done, Body: da}, nil

	case FormatPeek:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderPeek{Inner: da}, nil

	case FormatPeekNot:
		const maxLookahead = 1024
		bounds := MatchBounds(c.module, f.Inner)
		if bounds.Max == nil {
			return nil, fmt.Errorf("PeekNot cannot require unbounded lookahead")
		}
		if *bounds.Max > maxLookahead {
			return nil, fmt.Errorf("PeekNot cannot require > %d bytes lookahead", maxLookahead)
		}
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderPeekNot{Inner: da}, nil

	case FormatSlice:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderSlice{Size: f.Size, Inner: da}, nil

	case FormatBits:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderBits{Inner: da}, nil

	case FormatWithRelativeOffset:
		da, err := c.compileNext(f.Inner, NextEmpty)
		if err != nil {
			return nil, err
		}
		return DecoderWithRelativeOffset{Offset: f.Offset, Inner: da}, nil

	case FormatMap:
		da, err := c.compileNext(f.Inner, next)
		if err != nil {
			return nil, err
		}
		return DecoderMap{Inner: da, Lambda: f.Lambda}, nil

	case FormatCompute:
		return DecoderCompute{Value: f.Value}, nil

	case FormatMatch:
		branches := make([]DecoderMatchBranch, len(f.Branches))
		for i, br := range f.Branches {
			d, err := c.compileNext(br.Format, next)
			if err != nil {
				return nil, err
			}
			branches[i] = DecoderMatchBranch{Pattern: br.Pattern, Decoder: d}
		}
		return DecoderMatch{Head: f.Head, Branches: branches}, nil

	case FormatMatchVariant:
		branches := make([]DecoderMatchVariantBranch, len(f.Branches))
		for i, br := range f.Branches {
			d, err := c.compileNext(br.Format, next)
			if err != nil {
				return nil, err
			}
			branches[i] = DecoderMatchVariantBranch{Pattern: br.Pattern, Label: br.Label, Decoder: d}
		}
		return DecoderMatchVariant{Head: f.Head, Branches: branches}, nil

	case FormatDynamic:
		return DecoderDynamic{Dyn: f.Dyn}, nil

	case FormatApply:
		return DecoderApply{Name: f.Name}, nil

	default:
		return nil, fmt.Errorf("unknown format variant %T", format)
	}
}
