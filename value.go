package doodle

import (
	"encoding/json"
	"fmt"
)

// Value is the result tree produced by running a Program against a
// Cursor. The composite types below implement Value by embedding
// valueBase, the atoms by defining isValue directly; every concrete
// type has its own MarshalJSON producing a tagged-JSON shape for
// external consumers: {"tag": ..., "data": ...}.
type Value interface {
	isValue()
	// String returns a short debug rendering, used by error messages
	// and test failures.
	String() string
}

type valueBase struct{}

func (valueBase) isValue() {}

// Bool, U8, U16, U32, Char are the atomic value kinds.

type Bool bool

func (Bool) isValue()          {}
func (b Bool) String() string  { return fmt.Sprintf("%t", bool(b)) }
func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Bool", Data: bool(b)})
}

type U8 uint8

func (U8) isValue()         {}
func (n U8) String() string { return fmt.Sprintf("%d", uint8(n)) }
func (n U8) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "U8", Data: uint8(n)})
}

type U16 uint16

func (U16) isValue()         {}
func (n U16) String() string { return fmt.Sprintf("%d", uint16(n)) }
func (n U16) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "U16", Data: uint16(n)})
}

type U32 uint32

func (U32) isValue()         {}
func (n U32) String() string { return fmt.Sprintf("%d", uint32(n)) }
func (n U32) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "U32", Data: uint32(n)})
}

type Char rune

func (Char) isValue()         {}
func (c Char) String() string { return fmt.Sprintf("%q", rune(c)) }
func (c Char) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Char", Data: string(rune(c))})
}

// Tuple is an ordered, unnamed sequence of values produced by a
// Format.Tuple decoder.
type Tuple struct {
	valueBase
	Items []Value
}

func NewTuple(items []Value) Tuple { return Tuple{Items: items} }

func (t Tuple) String() string {
	s := "("
	for i, v := range t.Items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + ")"
}

func (t Tuple) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Tuple", Data: t.Items})
}

// RecordField is one named entry of a Record value. Order is
// significant: it mirrors the order fields were declared in the
// Format.Record that produced it.
type RecordField struct {
	Name  string
	Value Value
}

type Record struct {
	valueBase
	Fields []RecordField
}

func NewRecord(fields []RecordField) Record { return Record{Fields: fields} }

func (r Record) String() string {
	s := "{"
	for i, f := range r.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Value.String()
	}
	return s + "}"
}

func (r Record) Proj(name string) Value {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	panic(fmt.Sprintf("%s not found in record", name))
}

func (r Record) MarshalJSON() ([]byte, error) {
	data := make(map[string]Value, len(r.Fields))
	order := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		data[f.Name] = f.Value
		order = append(order, f.Name)
	}
	return json.Marshal(taggedValue{Tag: "Record", Data: struct {
		Fields map[string]Value `json:"fields"`
		Order  []string         `json:"order"`
	}{data, order}})
}

// Variant tags a value with a branch label, produced by Format.Variant
// and by union-like decoders.
type Variant struct {
	valueBase
	Label string
	Inner Value
}

func NewVariant(label string, inner Value) Variant { return Variant{Label: label, Inner: inner} }

func (v Variant) String() string { return v.Label + "(" + v.Inner.String() + ")" }

func (v Variant) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Variant", Data: struct {
		Label string `json:"label"`
		Value Value  `json:"value"`
	}{v.Label, v.Inner}})
}

// Seq is a homogeneous, variable-length sequence: the result of any
// Repeat family decoder.
type Seq struct {
	valueBase
	Items []Value
}

func NewSeq(items []Value) Seq { return Seq{Items: items} }

func (s Seq) String() string {
	str := "["
	for i, v := range s.Items {
		if i > 0 {
			str += ", "
		}
		str += v.String()
	}
	return str + "]"
}

func (s Seq) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Seq", Data: s.Items})
}

// Mapped preserves provenance for Format.Map: Original is what the
// wrapped sub-format actually parsed, Result is what the lambda
// produced from it.
type Mapped struct {
	valueBase
	Original Value
	Result   Value
}

func NewMapped(original, result Value) Mapped { return Mapped{Original: original, Result: result} }

func (m Mapped) String() string { return m.Result.String() }

func (m Mapped) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Mapped", Data: struct {
		Original Value `json:"original"`
		Result   Value `json:"result"`
	}{m.Original, m.Result}})
}

// Branch preserves which alternative of a Union/Parallel/Match decoder
// was taken, by index into the candidate list.
type Branch struct {
	valueBase
	Index int
	Inner Value
}

func NewBranch(index int, inner Value) Branch { return Branch{Index: index, Inner: inner} }

func (b Branch) String() string { return fmt.Sprintf("#%d:%s", b.Index, b.Inner.String()) }

func (b Branch) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Branch", Data: struct {
		Index int   `json:"index"`
		Value Value `json:"value"`
	}{b.Index, b.Inner}})
}

// FormatValue carries a Format as data, produced by Format.Dynamic and
// consumed by Format.Apply.
type FormatValue struct {
	valueBase
	Inner Format
}

func NewFormatValue(f Format) FormatValue { return FormatValue{Inner: f} }

func (f FormatValue) String() string { return "<format>" }

func (f FormatValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedValue{Tag: "Format", Data: "<format>"})
}

type taggedValue struct {
	Tag  string `json:"tag"`
	Data any    `json:"data"`
}

// Unit is the canonical empty tuple, returned by decoders that carry
// no payload (EndOfInput, Align, PeekNot, ...).
func Unit() Value { return Tuple{} }

// Coerce peels Mapped and Branch decorators to expose the underlying
// plain value. Every projection, pattern match, and numeric helper
// must look through these decorators transparently.
func Coerce(v Value) Value {
	switch vv := v.(type) {
	case Mapped:
		return Coerce(vv.Result)
	case Branch:
		return Coerce(vv.Inner)
	default:
		return v
	}
}

// AsUsize extracts an unsigned integer payload (U8/U16/U32) as an int,
// panicking (a programmer error, not a parse failure) if v isn't numeric.
func AsUsize(v Value) int {
	switch vv := Coerce(v).(type) {
	case U8:
		return int(vv)
	case U16:
		return int(vv)
	case U32:
		return int(vv)
	default:
		panic(fmt.Sprintf("value is not a number: %v", v))
	}
}

func asBool(v Value) bool {
	vv, ok := Coerce(v).(Bool)
	if !ok {
		panic(fmt.Sprintf("value is not a bool: %v", v))
	}
	return bool(vv)
}

func asTuple(v Value) []Value {
	vv, ok := Coerce(v).(Tuple)
	if !ok {
		panic(fmt.Sprintf("value is not a tuple: %v", v))
	}
	return vv.Items
}

func asSeq(v Value) []Value {
	vv, ok := Coerce(v).(Seq)
	if !ok {
		panic(fmt.Sprintf("value is not a sequence: %v", v))
	}
	return vv.Items
}
