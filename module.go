package doodle

import "fmt"

// FormatParam is one declared parameter of a named, module-level
// format: a (name, type) pair. Type is advisory only; the compiler
// never checks it against the arguments a caller actually supplies.
type FormatParam struct {
	Name string
	Type string
}

// FormatModule owns a vector of named formats addressed by stable
// index ("level"), grounded on the call pattern in
// original_source/src/decoder.rs's compile_next (module.get_format,
// module.get_args). It is populated incrementally via DefineFormat and
// becomes logically frozen once Compiler.Compile has run against it.
type FormatModule struct {
	names   []string
	params  [][]FormatParam
	formats []Format
}

// NewFormatModule creates an empty module.
func NewFormatModule() *FormatModule {
	return &FormatModule{}
}

// FormatRef is a handle to a format defined in a module, returned by
// DefineFormat. Call binds argument expressions to produce a
// FormatItemVar referencing this definition.
type FormatRef struct {
	Level int
}

// DefineFormat registers name at the next free level with the given
// parameter list and body, returning a FormatRef for later calls. The
// body may reference its own level (via a FormatRef captured before
// this call returns, e.g. through a placeholder pattern) or any level,
// to express direct or mutual recursion.
func (m *FormatModule) DefineFormat(name string, params []FormatParam, body Format) FormatRef {
	level := len(m.formats)
	m.names = append(m.names, name)
	m.params = append(m.params, params)
	m.formats = append(m.formats, body)
	return FormatRef{Level: level}
}

// Reserve allocates a level for a format to be defined later via
// SetFormat, so that formats can reference each other's levels before
// either body is known (needed for mutual recursion).
func (m *FormatModule) Reserve(name string, params []FormatParam) FormatRef {
	level := len(m.formats)
	m.names = append(m.names, name)
	m.params = append(m.params, params)
	m.formats = append(m.formats, nil)
	return FormatRef{Level: level}
}

// SetFormat fills in the body for a level previously allocated by
// Reserve.
func (m *FormatModule) SetFormat(ref FormatRef, body Format) {
	m.formats[ref.Level] = body
}

// Call builds a FormatItemVar invoking ref with args bound
// positionally to its declared parameters.
func (ref FormatRef) Call(args ...Expr) Format {
	return FormatItemVar{Level: ref.Level, Args: args}
}

func (m *FormatModule) getFormat(level int) Format {
	f := m.formats[level]
	if f == nil {
		panic(fmt.Sprintf("format %q (level %d) used before its body was set", m.nameOf(level), level))
	}
	return f
}

func (m *FormatModule) getArgs(level int) []FormatParam {
	return m.params[level]
}

func (m *FormatModule) nameOf(level int) string {
	return m.names[level]
}

// ---- pure format-builder helpers, no I/O ----

// SeqFormat builds a FormatTuple from positional fields.
func SeqFormat(fields ...Format) Format {
	return FormatTuple{Fields: fields}
}

// RecordFormat builds a FormatRecord from named fields in order.
func RecordFormat(fields ...FormatRecordField) Format {
	return FormatRecord{Fields: fields}
}

// Field is a convenience constructor for a FormatRecordField.
func Field(name string, f Format) FormatRecordField {
	return FormatRecordField{Name: name, Format: f}
}

// UnionFormat builds an untagged deterministic alternation.
func UnionFormat(branches ...Format) Format {
	return FormatUnion{Branches: branches}
}

// UnionVariantFormat builds a tagged deterministic alternation.
func UnionVariantFormat(branches ...FormatUnionBranch) Format {
	return FormatUnionVariant{Branches: branches}
}

// Alt is a convenience constructor for a FormatUnionBranch.
func Alt(label string, f Format) FormatUnionBranch {
	return FormatUnionBranch{Label: label, Format: f}
}

// RepeatFormat builds a zero-or-more repetition.
func RepeatFormat(f Format) Format { return FormatRepeat{Inner: f} }

// Repeat1Format builds a one-or-more repetition.
func Repeat1Format(f Format) Format { return FormatRepeat1{Inner: f} }

// ByteIn builds a FormatByte over an explicit set of allowed bytes.
func ByteIn(bs ...byte) Format { return FormatByte{Set: NewByteSet(bs...)} }

// ByteInRange builds a FormatByte over an inclusive byte range.
func ByteInRange(lo, hi byte) Format { return FormatByte{Set: ByteRange(lo, hi)} }

// AnyByteFormat matches any single byte.
func AnyByteFormat() Format { return FormatByte{Set: FullByteSet()} }

// SliceFormat restricts parsing of f to exactly size bytes.
func SliceFormat(size Expr, f Format) Format { return FormatSlice{Size: size, Inner: f} }

// BitsFormat reinterprets the remainder as a bit stream for f.
func BitsFormat(f Format) Format { return FormatBits{Inner: f} }

// MapFormat parses f then applies lambda to its value.
func MapFormat(f Format, lambda Expr) Format { return FormatMap{Inner: f, Lambda: lambda} }

// ComputeFormat produces a value from expr without consuming input.
func ComputeFormat(expr Expr) Format { return FormatCompute{Value: expr} }

// MatchFormat evaluates head and dispatches on the first matching
// pattern.
func MatchFormat(head Expr, branches ...FormatMatchBranch) Format {
	return FormatMatch{Head: head, Branches: branches}
}

// DynamicFormat builds a format-at-parse-time decoder.
func DynamicFormat(d DynFormat) Format { return FormatDynamic{Dyn: d} }

// ApplyFormat parses by invoking the format bound to name in scope.
func ApplyFormat(name string) Format { return FormatApply{Name: name} }
