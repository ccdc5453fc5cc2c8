package doodle

import "strconv"

// valueToVecUsize coerces a Seq of U8/U16 values into a plain []int,
// ported from original_source/src/decoder.rs's value_to_vec_usize.
func valueToVecUsize(v Value) []int {
	items := asSeq(v)
	out := make([]int, len(items))
	for i, item := range items {
		switch n := Coerce(item).(type) {
		case U8:
			out[i] = int(n)
		case U16:
			out[i] = int(n)
		default:
			panic("expected U8 or U16")
		}
	}
	return out
}

// MakeHuffmanCodes builds a canonical Huffman code table per RFC 1951
// §3.2.2 from per-symbol code lengths, emitting a Format that is a
// Union of bit-tuple matches — one alternative per non-zero-length
// symbol — each Map'd to that symbol's index as a U16. Ported from
// original_source/src/decoder.rs's make_huffman_codes; driven by the
// enclosing Bits(...) decoder so each Format.Byte alternative actually
// matches one 0/1 bit.
func MakeHuffmanCodes(lengths []int) Format {
	maxLength := 0
	for _, l := range lengths {
		if l > maxLength {
			maxLength = l
		}
	}

	blCount := make([]int, maxLength+1)
	for _, l := range lengths {
		blCount[l]++
	}

	nextCode := make([]int, maxLength+1)
	code := 0
	blCount[0] = 0
	for bits := 1; bits <= maxLength; bits++ {
		code = (code + blCount[bits-1]) << 1
		nextCode[bits] = code
	}

	var branches []FormatUnionBranch
	for n, length := range lengths {
		if length == 0 {
			continue
		}
		body := bitRange(length, nextCode[length])
		mapped := FormatMap{
			Inner:  body,
			Lambda: ExprLambda{Param: "_", Body: ExprU16{Value: uint16(n)}},
		}
		branches = append(branches, FormatUnionBranch{Label: strconv.Itoa(n), Format: mapped})
		nextCode[length]++
	}
	fs := make([]Format, len(branches))
	for i, b := range branches {
		fs[i] = b.Format
	}
	return FormatUnion{Branches: fs}
}

// bitRange builds a Tuple of n single-bit matches encoding bits
// MSB-first, the code's canonical left-to-right bit order.
func bitRange(n, bits int) Format {
	fs := make([]Format, n)
	for i := 0; i < n; i++ {
		r := n - 1 - i
		bit := (bits & (1 << r)) >> r
		fs[i] = isBit(bit != 0)
	}
	return FormatTuple{Fields: fs}
}

func isBit(b bool) Format {
	if b {
		return FormatByte{Set: NewByteSet(1)}
	}
	return FormatByte{Set: NewByteSet(0)}
}

// inflate expands a pre-decoded DEFLATE token stream (a Seq of
// Variant("literal", U8) and Variant("reference", Record{length,
// distance})) into the literal byte sequence it encodes, per
// original_source/src/decoder.rs's inflate. Used by Expr.Inflate.
func inflate(codes []Value) []Value {
	var vs []Value
	for _, code := range codes {
		variant, ok := Coerce(code).(Variant)
		if !ok {
			panic("inflate: expected variant")
		}
		switch variant.Label {
		case "literal":
			b, ok := Coerce(variant.Inner).(U8)
			if !ok {
				panic("inflate: expected U8")
			}
			vs = append(vs, b)
		case "reference":
			rec, ok := Coerce(variant.Inner).(Record)
			if !ok {
				panic("inflate: expected record")
			}
			length, lok := Coerce(rec.Proj("length")).(U16)
			distance, dok := Coerce(rec.Proj("distance")).(U16)
			if !lok || !dok {
				panic("inflate: unexpected length/distance")
			}
			l, dist := int(length), int(distance)
			if dist > len(vs) {
				panic("inflate: distance out of range")
			}
			start := len(vs) - dist
			for i := 0; i < l; i++ {
				vs = append(vs, vs[start+i])
			}
		default:
			panic("inflate: unknown code")
		}
	}
	return vs
}
