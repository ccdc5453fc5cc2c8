package doodle

// Format is the declarative format-description algebra compiled into a
// Decoder tree. format.rs itself was not part of the retrieved reference
// sources; the variant set and per-variant semantics below are
// reconstructed from how original_source/src/decoder.rs's
// Decoder::compile_next and Decoder::parse consume each one (see
// DESIGN.md).
type Format interface {
	isFormat()
}

type formatBase struct{}

func (formatBase) isFormat() {}

// FormatFail never parses successfully.
type FormatFail struct{ formatBase }

// FormatEndOfInput succeeds with unit iff no byte remains.
type FormatEndOfInput struct{ formatBase }

// FormatAlign advances to the next multiple of N bytes.
type FormatAlign struct {
	formatBase
	N int
}

// FormatByte consumes one byte constrained to Set.
type FormatByte struct {
	formatBase
	Set ByteSet
}

// FormatTuple sequences Fields positionally.
type FormatTuple struct {
	formatBase
	Fields []Format
}

type FormatRecordField struct {
	Name   string
	Format Format
}

// FormatRecord sequences Fields by name, each visible to later fields.
type FormatRecord struct {
	formatBase
	Fields []FormatRecordField
}

type FormatUnionBranch struct {
	Label  string
	Format Format
}

// FormatUnion is deterministic untagged alternation.
type FormatUnion struct {
	formatBase
	Branches []Format
}

// FormatUnionVariant is deterministic alternation tagging the chosen
// branch's value with its label.
type FormatUnionVariant struct {
	formatBase
	Branches []FormatUnionBranch
}

// FormatUnionNondet is ordered, first-match-wins alternation with no
// static lookahead analysis.
type FormatUnionNondet struct {
	formatBase
	Branches []FormatUnionBranch
}

// FormatVariant unconditionally tags Inner's value with Label.
type FormatVariant struct {
	formatBase
	Label string
	Inner Format
}

// FormatRepeat parses Inner zero or more times; Inner must not be
// nullable.
type FormatRepeat struct {
	formatBase
	Inner Format
}

// FormatRepeat1 parses Inner one or more times; Inner must not be
// nullable.
type FormatRepeat1 struct {
	formatBase
	Inner Format
}

// FormatRepeatCount parses Inner exactly Count.Eval times.
type FormatRepeatCount struct {
	formatBase
	Count Expr
	Inner Format
}

// FormatRepeatUntilLast parses Inner repeatedly, applying Done to the
// just-parsed element after each iteration, stopping when true.
type FormatRepeatUntilLast struct {
	formatBase
	Done  Expr // must be an ExprLambda
	Inner Format
}

// FormatRepeatUntilSeq parses Inner repeatedly, applying Done to the
// accumulated sequence after each iteration, stopping when true.
type FormatRepeatUntilSeq struct {
	formatBase
	Done  Expr // must be an ExprLambda
	Inner Format
}

// FormatPeek parses Inner then restores the pre-peek cursor.
type FormatPeek struct {
	formatBase
	Inner Format
}

// FormatPeekNot succeeds with unit iff Inner fails to parse; Inner's
// maximum byte width must be statically bounded (≤ 1024).
type FormatPeekNot struct {
	formatBase
	Inner Format
}

// FormatSlice restricts the cursor to exactly Size bytes, parses Inner
// inside it, then advances the outer cursor by Size regardless of how
// much Inner actually consumed.
type FormatSlice struct {
	formatBase
	Size  Expr
	Inner Format
}

// FormatBits reinterprets the remaining bytes as an LSB-first stream
// of one-byte-per-bit values, parses Inner against that stream, then
// advances the real cursor by every byte that had at least one bit
// consumed (ceil of bits consumed / 8).
type FormatBits struct {
	formatBase
	Inner Format
}

// FormatWithRelativeOffset parses Inner starting Offset bytes from the
// current cursor without advancing the outer cursor.
type FormatWithRelativeOffset struct {
	formatBase
	Offset Expr
	Inner  Format
}

// FormatMap parses Inner, then applies Lambda to its value; the
// decoded Value carries both the original and the mapped result.
type FormatMap struct {
	formatBase
	Inner  Format
	Lambda Expr // must be an ExprLambda
}

// FormatCompute produces Value.Eval without consuming input.
type FormatCompute struct {
	formatBase
	Value Expr
}

type FormatMatchBranch struct {
	Pattern Pattern
	Format  Format
}

// FormatMatch evaluates Head, selects the first matching pattern, and
// parses that branch.
type FormatMatch struct {
	formatBase
	Head     Expr
	Branches []FormatMatchBranch
}

type FormatMatchVariantBranch struct {
	Pattern Pattern
	Label   string
	Format  Format
}

// FormatMatchVariant is FormatMatch with each selected branch's value
// also tagged with a variant label.
type FormatMatchVariant struct {
	formatBase
	Head     Expr
	Branches []FormatMatchVariantBranch
}

// DynFormat is the closed set of formats-as-data constructors
// available to FormatDynamic.
type DynFormat interface {
	isDynFormat()
}

type dynFormatBase struct{}

func (dynFormatBase) isDynFormat() {}

// DynHuffman builds a canonical Huffman code table from Lengths
// (optionally permuted by Values) per RFC 1951 §3.2.2.
type DynHuffman struct {
	dynFormatBase
	Lengths Expr
	Values  Expr // nil if absent
}

// FormatDynamic builds a nested Format at parse time from decoded
// data, yielding a Value.Format for consumption via Apply.
type FormatDynamic struct {
	formatBase
	Dyn DynFormat
}

// FormatApply parses by invoking the format value bound to Name in
// scope.
type FormatApply struct {
	formatBase
	Name string
}

// FormatItemVar references a module-defined format by its stable
// index ("level"), binding ArgExprs to the format's declared
// parameters. This is how mutual recursion is expressed.
type FormatItemVar struct {
	formatBase
	Level int
	Args  []Expr
}

// EMPTY is the canonical nullary tuple, used by the compiler when
// building match-tree probes for Repeat/Repeat1 ("F, F* | ε").
var EMPTY Format = FormatTuple{}
