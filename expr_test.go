package doodle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprVarAndLiterals(t *testing.T) {
	scope := NewScope()
	scope.Push("x", U8(3))
	assert.Equal(t, U8(3), ExprVar{Name: "x"}.Eval(scope))
	assert.Equal(t, Bool(true), ExprBool{Value: true}.Eval(scope))
	assert.Equal(t, U16(500), ExprU16{Value: 500}.Eval(scope))
}

func TestExprTupleAndProj(t *testing.T) {
	scope := NewScope()
	e := ExprTuple{Items: []Expr{ExprU8{Value: 1}, ExprU8{Value: 2}}}
	v := e.Eval(scope)
	assert.Equal(t, Tuple{Items: []Value{U8(1), U8(2)}}, v)

	proj := ExprTupleProj{Head: e, Index: 1}
	assert.Equal(t, U8(2), proj.Eval(scope))
}

func TestExprRecordAndProj(t *testing.T) {
	scope := NewScope()
	e := ExprRecord{Fields: []ExprFieldExpr{
		{Name: "length", Value: ExprU16{Value: 10}},
	}}
	proj := ExprRecordProj{Head: e, Label: "length"}
	assert.Equal(t, U16(10), proj.Eval(scope))
}

func TestExprVariantAndSeq(t *testing.T) {
	scope := NewScope()
	v := ExprVariant{Label: "literal", Inner: ExprU8{Value: 7}}.Eval(scope)
	assert.Equal(t, Variant{Label: "literal", Inner: U8(7)}, v)

	s := ExprSeq{Items: []Expr{ExprU8{Value: 1}, ExprU8{Value: 2}}}.Eval(scope)
	assert.Equal(t, Seq{Items: []Value{U8(1), U8(2)}}, s)
}

func TestExprMatchSelectsFirstMatchingBranch(t *testing.T) {
	scope := NewScope()
	e := ExprMatch{
		Head: ExprU8{Value: 2},
		Branches: []ExprMatchBranch{
			{Pattern: PatternU8{Value: 1}, Body: ExprBool{Value: false}},
			{Pattern: PatternU8{Value: 2}, Body: ExprBool{Value: true}},
			{Pattern: PatternWildcard{}, Body: ExprBool{Value: false}},
		},
	}
	assert.Equal(t, Bool(true), e.Eval(scope))
}

func TestExprMatchPanicsWhenNonExhaustive(t *testing.T) {
	scope := NewScope()
	e := ExprMatch{
		Head:     ExprU8{Value: 9},
		Branches: []ExprMatchBranch{{Pattern: PatternU8{Value: 1}, Body: ExprBool{Value: true}}},
	}
	assert.Panics(t, func() { e.Eval(scope) })
}

func TestEvalLambdaBindsParam(t *testing.T) {
	scope := NewScope()
	lam := ExprLambda{Param: "n", Body: ExprBinary{Op: OpAdd, X: ExprVar{Name: "n"}, Y: ExprU8{Value: 1}}}
	assert.Equal(t, U8(6), evalLambda(lam, scope, U8(5)))
}

func TestLambdaCannotBeEvaluatedDirectly(t *testing.T) {
	scope := NewScope()
	lam := ExprLambda{Param: "n", Body: ExprBool{Value: true}}
	assert.Panics(t, func() { lam.Eval(scope) })
}

func TestCheckedArithmeticOverflowPanics(t *testing.T) {
	scope := NewScope()
	add := ExprBinary{Op: OpAdd, X: ExprU8{Value: 250}, Y: ExprU8{Value: 10}}
	assert.Panics(t, func() { add.Eval(scope) })

	sub := ExprBinary{Op: OpSub, X: ExprU8{Value: 1}, Y: ExprU8{Value: 2}}
	assert.Panics(t, func() { sub.Eval(scope) })
}

func TestCheckedArithmeticWithinRange(t *testing.T) {
	scope := NewScope()
	add := ExprBinary{Op: OpAdd, X: ExprU16{Value: 100}, Y: ExprU16{Value: 200}}
	assert.Equal(t, U16(300), add.Eval(scope))

	mul := ExprBinary{Op: OpMul, X: ExprU8{Value: 12}, Y: ExprU8{Value: 10}}
	assert.Equal(t, U8(120), mul.Eval(scope))
}

func TestCheckedShiftOutOfWidthPanics(t *testing.T) {
	scope := NewScope()
	shl := ExprBinary{Op: OpShl, X: ExprU8{Value: 1}, Y: ExprU8{Value: 8}}
	assert.Panics(t, func() { shl.Eval(scope) })
}

func TestComparisonOps(t *testing.T) {
	scope := NewScope()
	assert.Equal(t, Bool(true), ExprBinary{Op: OpLt, X: ExprU8{Value: 1}, Y: ExprU8{Value: 2}}.Eval(scope))
	assert.Equal(t, Bool(false), ExprBinary{Op: OpEq, X: ExprU8{Value: 1}, Y: ExprU8{Value: 2}}.Eval(scope))
}

func TestMismatchedOperandTypesPanic(t *testing.T) {
	scope := NewScope()
	e := ExprBinary{Op: OpAdd, X: ExprU8{Value: 1}, Y: ExprU16{Value: 1}}
	assert.Panics(t, func() { e.Eval(scope) })
}

func TestWideningCasts(t *testing.T) {
	scope := NewScope()
	assert.Equal(t, U16(200), ExprAsU16{Inner: ExprU8{Value: 200}}.Eval(scope))
	assert.Equal(t, U32(200), ExprAsU32{Inner: ExprU16{Value: 200}}.Eval(scope))
}

func TestNarrowingCastPanicsWhenOutOfRange(t *testing.T) {
	scope := NewScope()
	e := ExprAsU8{Inner: ExprU16{Value: 300}}
	assert.Panics(t, func() { e.Eval(scope) })
}

func TestEndianHelpers(t *testing.T) {
	scope := NewScope()
	be := ExprU16Be{Bytes: ExprTuple{Items: []Expr{ExprU8{Value: 0x01}, ExprU8{Value: 0x02}}}}
	assert.Equal(t, U16(0x0102), be.Eval(scope))

	le := ExprU16Le{Bytes: ExprTuple{Items: []Expr{ExprU8{Value: 0x01}, ExprU8{Value: 0x02}}}}
	assert.Equal(t, U16(0x0201), le.Eval(scope))

	be32 := ExprU32Be{Bytes: ExprTuple{Items: []Expr{
		ExprU8{Value: 0x01}, ExprU8{Value: 0x02}, ExprU8{Value: 0x03}, ExprU8{Value: 0x04},
	}}}
	assert.Equal(t, U32(0x01020304), be32.Eval(scope))
}

func TestAsCharFallsBackToReplacementOnSurrogate(t *testing.T) {
	scope := NewScope()
	v := ExprAsChar{Inner: ExprU16{Value: 0xD800}}.Eval(scope)
	assert.Equal(t, Char(replacementChar), v)

	ok := ExprAsChar{Inner: ExprU8{Value: 65}}.Eval(scope)
	assert.Equal(t, Char('A'), ok)
}

func TestSeqLengthSubSeq(t *testing.T) {
	scope := NewScope()
	seq := ExprSeq{Items: []Expr{ExprU8{Value: 1}, ExprU8{Value: 2}, ExprU8{Value: 3}}}
	length := ExprSeqLength{Inner: seq}.Eval(scope)
	assert.Equal(t, U32(3), length)

	sub := ExprSubSeq{Seq: seq, Start: ExprU8{Value: 1}, Length: ExprU8{Value: 2}}.Eval(scope)
	assert.Equal(t, Seq{Items: []Value{U8(2), U8(3)}}, sub)
}

func TestDup(t *testing.T) {
	scope := NewScope()
	dup := ExprDup{Count: ExprU8{Value: 3}, Inner: ExprU8{Value: 9}}.Eval(scope)
	assert.Equal(t, Seq{Items: []Value{U8(9), U8(9), U8(9)}}, dup)
}

func TestFlatMap(t *testing.T) {
	scope := NewScope()
	lam := ExprLambda{Param: "x", Body: ExprSeq{Items: []Expr{ExprVar{Name: "x"}, ExprVar{Name: "x"}}}}
	seq := ExprSeq{Items: []Expr{ExprU8{Value: 1}, ExprU8{Value: 2}}}
	out := ExprFlatMap{Lambda: lam, Seq: seq}.Eval(scope)
	assert.Equal(t, Seq{Items: []Value{U8(1), U8(1), U8(2), U8(2)}}, out)
}

func TestInflateExprDelegatesToHelper(t *testing.T) {
	scope := NewScope()
	codes := ExprSeq{Items: []Expr{
		exprLiteral(0xAA),
		exprLiteral(0xBB),
	}}
	out := ExprInflate{Seq: codes}.Eval(scope)
	require.Equal(t, Seq{Items: []Value{U8(0xAA), U8(0xBB)}}, out)
}

func exprLiteral(b uint8) Expr {
	return ExprVariant{Label: "literal", Inner: ExprU8{Value: b}}
}
