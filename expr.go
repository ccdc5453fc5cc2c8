package doodle

import "fmt"

// Expr is the side-effect-free term language over Values, grounded
// arm-for-arm on original_source/src/decoder.rs's impl Expr { fn eval
// }. Arithmetic is checked and panics on overflow; casts panic when
// the source value is out of range; these are all programmer errors,
// not ParseErrors.
type Expr interface {
	isExpr()
	// Eval evaluates the expression in scope, looking through
	// Mapped/Branch decorators via Coerce wherever a concrete shape
	// (tuple, seq, number, bool) is required.
	Eval(scope *Scope) Value
}

type exprBase struct{}

func (exprBase) isExpr() {}

// ---- variables and literals ----

type ExprVar struct {
	exprBase
	Name string
}

func (e ExprVar) Eval(scope *Scope) Value { return scope.Get(e.Name) }

type ExprBool struct {
	exprBase
	Value bool
}

func (e ExprBool) Eval(*Scope) Value { return Bool(e.Value) }

type ExprU8 struct {
	exprBase
	Value uint8
}

func (e ExprU8) Eval(*Scope) Value { return U8(e.Value) }

type ExprU16 struct {
	exprBase
	Value uint16
}

func (e ExprU16) Eval(*Scope) Value { return U16(e.Value) }

type ExprU32 struct {
	exprBase
	Value uint32
}

func (e ExprU32) Eval(*Scope) Value { return U32(e.Value) }

// ---- compound construction/projection ----

type ExprTuple struct {
	exprBase
	Items []Expr
}

func (e ExprTuple) Eval(scope *Scope) Value {
	items := make([]Value, len(e.Items))
	for i, item := range e.Items {
		items[i] = Coerce(item.Eval(scope))
	}
	return Tuple{Items: items}
}

type ExprTupleProj struct {
	exprBase
	Head  Expr
	Index int
}

func (e ExprTupleProj) Eval(scope *Scope) Value {
	items := asTuple(e.Head.Eval(scope))
	return items[e.Index]
}

type ExprFieldExpr struct {
	Name  string
	Value Expr
}

type ExprRecord struct {
	exprBase
	Fields []ExprFieldExpr
}

func (e ExprRecord) Eval(scope *Scope) Value {
	fields := make([]RecordField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = RecordField{Name: f.Name, Value: Coerce(f.Value.Eval(scope))}
	}
	return Record{Fields: fields}
}

type ExprRecordProj struct {
	exprBase
	Head  Expr
	Label string
}

func (e ExprRecordProj) Eval(scope *Scope) Value {
	r, ok := Coerce(e.Head.Eval(scope)).(Record)
	if !ok {
		panic(fmt.Sprintf("expected record, found %v", e.Head.Eval(scope)))
	}
	return r.Proj(e.Label)
}

type ExprVariant struct {
	exprBase
	Label string
	Inner Expr
}

func (e ExprVariant) Eval(scope *Scope) Value {
	return Variant{Label: e.Label, Inner: Coerce(e.Inner.Eval(scope))}
}

type ExprSeq struct {
	exprBase
	Items []Expr
}

func (e ExprSeq) Eval(scope *Scope) Value {
	items := make([]Value, len(e.Items))
	for i, item := range e.Items {
		items[i] = Coerce(item.Eval(scope))
	}
	return Seq{Items: items}
}

// ---- pattern match ----

type ExprMatchBranch struct {
	Pattern Pattern
	Body    Expr
}

type ExprMatch struct {
	exprBase
	Head     Expr
	Branches []ExprMatchBranch
}

func (e ExprMatch) Eval(scope *Scope) Value {
	head := e.Head.Eval(scope)
	for _, br := range e.Branches {
		if child, ok := Matches(head, scope, br.Pattern); ok {
			return br.Body.Eval(child)
		}
	}
	panic("non-exhaustive patterns")
}

// ---- lambda: never eval'd directly, only via evalLambda ----

type ExprLambda struct {
	exprBase
	Param string
	Body  Expr
}

func (e ExprLambda) Eval(*Scope) Value {
	panic("cannot eval lambda")
}

// evalLambda applies a one-binder lambda to arg, pushing a child
// scope exactly as original_source/src/decoder.rs's eval_lambda does.
func evalLambda(e Expr, scope *Scope, arg Value) Value {
	lam, ok := e.(ExprLambda)
	if !ok {
		panic("expected lambda")
	}
	child := ChildScope(scope)
	child.Push(lam.Param, arg)
	return Coerce(lam.Body.Eval(child))
}

// ---- arithmetic / bitwise / comparison ----

type BinOp int

const (
	OpBitAnd BinOp = iota
	OpBitOr
	OpEq
	OpNe
	OpLt
	OpGt
	OpLte
	OpGte
	OpMul
	OpDiv
	OpRem
	OpShl
	OpShr
	OpAdd
	OpSub
)

type ExprBinary struct {
	exprBase
	Op   BinOp
	X, Y Expr
}

func (e ExprBinary) Eval(scope *Scope) Value {
	x := Coerce(e.X.Eval(scope))
	y := Coerce(e.Y.Eval(scope))
	switch xx := x.(type) {
	case U8:
		yy, ok := y.(U8)
		if !ok {
			panic(fmt.Sprintf("mismatched operands %v, %v", x, y))
		}
		return binOpU8(e.Op, uint8(xx), uint8(yy))
	case U16:
		yy, ok := y.(U16)
		if !ok {
			panic(fmt.Sprintf("mismatched operands %v, %v", x, y))
		}
		return binOpU16(e.Op, uint16(xx), uint16(yy))
	case U32:
		yy, ok := y.(U32)
		if !ok {
			panic(fmt.Sprintf("mismatched operands %v, %v", x, y))
		}
		return binOpU32(e.Op, uint32(xx), uint32(yy))
	default:
		panic(fmt.Sprintf("mismatched operands %v, %v", x, y))
	}
}

func checkedAdd[T uint8 | uint16 | uint32](x, y T) T {
	sum := x + y
	if sum < x {
		panic("checked add overflowed")
	}
	return sum
}

func checkedSub[T uint8 | uint16 | uint32](x, y T) T {
	if y > x {
		panic("checked sub underflowed")
	}
	return x - y
}

func checkedMul[T uint8 | uint16 | uint32](x, y T) T {
	if x == 0 || y == 0 {
		return 0
	}
	p := x * y
	if p/x != y {
		panic("checked mul overflowed")
	}
	return p
}

func checkedDiv[T uint8 | uint16 | uint32](x, y T) T {
	if y == 0 {
		panic("checked div by zero")
	}
	return x / y
}

func checkedRem[T uint8 | uint16 | uint32](x, y T) T {
	if y == 0 {
		panic("checked rem by zero")
	}
	return x % y
}

func checkedShl[T uint8 | uint16 | uint32](x, y T, width int) T {
	if uint64(y) >= uint64(width) {
		panic("checked shl overflowed")
	}
	return x << y
}

func checkedShr[T uint8 | uint16 | uint32](x, y T, width int) T {
	if uint64(y) >= uint64(width) {
		panic("checked shr overflowed")
	}
	return x >> y
}

func binOpU8(op BinOp, x, y uint8) Value {
	switch op {
	case OpBitAnd:
		return U8(x & y)
	case OpBitOr:
		return U8(x | y)
	case OpEq:
		return Bool(x == y)
	case OpNe:
		return Bool(x != y)
	case OpLt:
		return Bool(x < y)
	case OpGt:
		return Bool(x > y)
	case OpLte:
		return Bool(x <= y)
	case OpGte:
		return Bool(x >= y)
	case OpMul:
		return U8(checkedMul(x, y))
	case OpDiv:
		return U8(checkedDiv(x, y))
	case OpRem:
		return U8(checkedRem(x, y))
	case OpShl:
		return U8(checkedShl(x, y, 8))
	case OpShr:
		return U8(checkedShr(x, y, 8))
	case OpAdd:
		return U8(checkedAdd(x, y))
	case OpSub:
		return U8(checkedSub(x, y))
	default:
		panic("unknown binary op")
	}
}

func binOpU16(op BinOp, x, y uint16) Value {
	switch op {
	case OpBitAnd:
		return U16(x & y)
	case OpBitOr:
		return U16(x | y)
	case OpEq:
		return Bool(x == y)
	case OpNe:
		return Bool(x != y)
	case OpLt:
		return Bool(x < y)
	case OpGt:
		return Bool(x > y)
	case OpLte:
		return Bool(x <= y)
	case OpGte:
		return Bool(x >= y)
	case OpMul:
		return U16(checkedMul(x, y))
	case OpDiv:
		return U16(checkedDiv(x, y))
	case OpRem:
		return U16(checkedRem(x, y))
	case OpShl:
		return U16(checkedShl(x, y, 16))
	case OpShr:
		return U16(checkedShr(x, y, 16))
	case OpAdd:
		return U16(checkedAdd(x, y))
	case OpSub:
		return U16(checkedSub(x, y))
	default:
		panic("unknown binary op")
	}
}

func binOpU32(op BinOp, x, y uint32) Value {
	switch op {
	case OpBitAnd:
		return U32(x & y)
	case OpBitOr:
		return U32(x | y)
	case OpEq:
		return Bool(x == y)
	case OpNe:
		return Bool(x != y)
	case OpLt:
		return Bool(x < y)
	case OpGt:
		return Bool(x > y)
	case OpLte:
		return Bool(x <= y)
	case OpGte:
		return Bool(x >= y)
	case OpMul:
		return U32(checkedMul(x, y))
	case OpDiv:
		return U32(checkedDiv(x, y))
	case OpRem:
		return U32(checkedRem(x, y))
	case OpShl:
		return U32(checkedShl(x, y, 32))
	case OpShr:
		return U32(checkedShr(x, y, 32))
	case OpAdd:
		return U32(checkedAdd(x, y))
	case OpSub:
		return U32(checkedSub(x, y))
	default:
		panic("unknown binary op")
	}
}

// ---- widening casts ----

type ExprAsU8 struct {
	exprBase
	Inner Expr
}

func (e ExprAsU8) Eval(scope *Scope) Value {
	switch v := Coerce(e.Inner.Eval(scope)).(type) {
	case U8:
		return v
	case U16:
		if v < 256 {
			return U8(v)
		}
	case U32:
		if v < 256 {
			return U8(v)
		}
	}
	panic(fmt.Sprintf("cannot convert to U8: %v", e.Inner.Eval(scope)))
}

type ExprAsU16 struct {
	exprBase
	Inner Expr
}

func (e ExprAsU16) Eval(scope *Scope) Value {
	switch v := Coerce(e.Inner.Eval(scope)).(type) {
	case U8:
		return U16(v)
	case U16:
		return v
	case U32:
		if v < 65536 {
			return U16(v)
		}
	}
	panic(fmt.Sprintf("cannot convert to U16: %v", e.Inner.Eval(scope)))
}

type ExprAsU32 struct {
	exprBase
	Inner Expr
}

func (e ExprAsU32) Eval(scope *Scope) Value {
	switch v := Coerce(e.Inner.Eval(scope)).(type) {
	case U8:
		return U32(v)
	case U16:
		return U32(v)
	case U32:
		return v
	}
	panic(fmt.Sprintf("cannot convert to U32: %v", e.Inner.Eval(scope)))
}

// ---- endian-decode helpers over tuples of bytes ----

type ExprU16Be struct {
	exprBase
	Bytes Expr
}

func (e ExprU16Be) Eval(scope *Scope) Value {
	items := asTuple(Coerce(e.Bytes.Eval(scope)))
	if len(items) != 2 {
		panic("U16Be: expected (U8, U8)")
	}
	hi, ok1 := Coerce(items[0]).(U8)
	lo, ok2 := Coerce(items[1]).(U8)
	if !ok1 || !ok2 {
		panic("U16Be: expected (U8, U8)")
	}
	return U16(uint16(hi)<<8 | uint16(lo))
}

type ExprU16Le struct {
	exprBase
	Bytes Expr
}

func (e ExprU16Le) Eval(scope *Scope) Value {
	items := asTuple(Coerce(e.Bytes.Eval(scope)))
	if len(items) != 2 {
		panic("U16Le: expected (U8, U8)")
	}
	lo, ok1 := Coerce(items[0]).(U8)
	hi, ok2 := Coerce(items[1]).(U8)
	if !ok1 || !ok2 {
		panic("U16Le: expected (U8, U8)")
	}
	return U16(uint16(hi)<<8 | uint16(lo))
}

type ExprU32Be struct {
	exprBase
	Bytes Expr
}

func (e ExprU32Be) Eval(scope *Scope) Value {
	items := asTuple(Coerce(e.Bytes.Eval(scope)))
	if len(items) != 4 {
		panic("U32Be: expected (U8, U8, U8, U8)")
	}
	var bs [4]uint8
	for i := 0; i < 4; i++ {
		b, ok := Coerce(items[i]).(U8)
		if !ok {
			panic("U32Be: expected (U8, U8, U8, U8)")
		}
		bs[i] = uint8(b)
	}
	return U32(uint32(bs[0])<<24 | uint32(bs[1])<<16 | uint32(bs[2])<<8 | uint32(bs[3]))
}

type ExprU32Le struct {
	exprBase
	Bytes Expr
}

func (e ExprU32Le) Eval(scope *Scope) Value {
	items := asTuple(Coerce(e.Bytes.Eval(scope)))
	if len(items) != 4 {
		panic("U32Le: expected (U8, U8, U8, U8)")
	}
	var bs [4]uint8
	for i := 0; i < 4; i++ {
		b, ok := Coerce(items[i]).(U8)
		if !ok {
			panic("U32Le: expected (U8, U8, U8, U8)")
		}
		bs[i] = uint8(b)
	}
	return U32(uint32(bs[3])<<24 | uint32(bs[2])<<16 | uint32(bs[1])<<8 | uint32(bs[0]))
}

// ---- char cast with replacement fallback ----

type ExprAsChar struct {
	exprBase
	Inner Expr
}

const replacementChar = rune(0xFFFD)

func (e ExprAsChar) Eval(scope *Scope) Value {
	switch v := Coerce(e.Inner.Eval(scope)).(type) {
	case U8:
		return Char(rune(v))
	case U16:
		r := rune(v)
		if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
			return Char(replacementChar)
		}
		return Char(r)
	case U32:
		r := rune(v)
		if r > 0x10FFFF || (r >= 0xD800 && r <= 0xDFFF) {
			return Char(replacementChar)
		}
		return Char(r)
	default:
		panic("AsChar: expected U8, U16, or U32")
	}
}

// ---- sequence operations ----

type ExprSeqLength struct {
	exprBase
	Inner Expr
}

func (e ExprSeqLength) Eval(scope *Scope) Value {
	items := asSeq(e.Inner.Eval(scope))
	return U32(uint32(len(items)))
}

type ExprSubSeq struct {
	exprBase
	Seq    Expr
	Start  Expr
	Length Expr
}

func (e ExprSubSeq) Eval(scope *Scope) Value {
	items := asSeq(e.Seq.Eval(scope))
	start := AsUsize(e.Start.Eval(scope))
	length := AsUsize(e.Length.Eval(scope))
	sub := items[start:]
	sub = sub[:length]
	out := make([]Value, length)
	copy(out, sub)
	return Seq{Items: out}
}

type ExprFlatMap struct {
	exprBase
	Lambda Expr
	Seq    Expr
}

func (e ExprFlatMap) Eval(scope *Scope) Value {
	items := asSeq(e.Seq.Eval(scope))
	var out []Value
	for _, v := range items {
		ret := evalLambda(e.Lambda, scope, v)
		sub, ok := Coerce(ret).(Seq)
		if !ok {
			panic("FlatMap: expected Seq")
		}
		out = append(out, sub.Items...)
	}
	return Seq{Items: out}
}

type ExprFlatMapAccum struct {
	exprBase
	Lambda Expr
	Accum  Expr
	Seq    Expr
}

func (e ExprFlatMapAccum) Eval(scope *Scope) Value {
	items := asSeq(e.Seq.Eval(scope))
	accum := Coerce(e.Accum.Eval(scope))
	var out []Value
	for _, v := range items {
		ret := evalLambda(e.Lambda, scope, Tuple{Items: []Value{accum, v}})
		pair := asTuple(ret)
		if len(pair) != 2 {
			panic("FlatMapAccum: expected two values")
		}
		sub, ok := Coerce(pair[1]).(Seq)
		if !ok {
			panic("FlatMapAccum: expected two values")
		}
		out = append(out, sub.Items...)
		accum = Coerce(pair[0])
	}
	return Seq{Items: out}
}

type ExprDup struct {
	exprBase
	Count Expr
	Inner Expr
}

func (e ExprDup) Eval(scope *Scope) Value {
	count := AsUsize(e.Count.Eval(scope))
	v := Coerce(e.Inner.Eval(scope))
	out := make([]Value, count)
	for i := range out {
		out[i] = v
	}
	return Seq{Items: out}
}

type ExprInflate struct {
	exprBase
	Seq Expr
}

func (e ExprInflate) Eval(scope *Scope) Value {
	items := asSeq(e.Seq.Eval(scope))
	return Seq{Items: inflate(items)}
}

// ---- top-level evaluation for decoders ----

// EvalValue evaluates e and coerces the result, matching
// original_source/src/decoder.rs's eval_value helper: the top level of
// a Decoder.Compute/Decoder.RepeatCount/etc. never cares about
// Mapped/Branch provenance.
func EvalValue(e Expr, scope *Scope) Value {
	return Coerce(e.Eval(scope))
}
