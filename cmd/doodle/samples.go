package main

import (
	"github.com/doodle-format/doodle"
)

// sampleFormat returns a built-in FormatModule and root Format for one
// of the demo formats named on the command line. These exist only to
// give the CLI something concrete to compile and run; real formats are
// expected to be constructed in Go code that imports this module.
func sampleFormat(name string) (*doodle.FormatModule, doodle.Format) {
	switch name {
	case "cons-list":
		return consListFormat()
	default:
		return lengthPrefixedFormat()
	}
}

// lengthPrefixedFormat is a record of a little-endian U16 length
// followed by that many raw bytes.
func lengthPrefixedFormat() (*doodle.FormatModule, doodle.Format) {
	module := doodle.NewFormatModule()
	u16le := doodle.MapFormat(
		doodle.SeqFormat(doodle.AnyByteFormat(), doodle.AnyByteFormat()),
		doodle.ExprLambda{Param: "bs", Body: doodle.ExprU16Le{Bytes: doodle.ExprVar{Name: "bs"}}},
	)
	record := doodle.RecordFormat(
		doodle.Field("length", u16le),
		doodle.Field("data", doodle.FormatRepeatCount{Count: doodle.ExprVar{Name: "length"}, Inner: doodle.AnyByteFormat()}),
	)
	return module, record
}

// consListFormat is a self-recursive nil/cons byte-list: 0x00 ends the
// list, 0x01 introduces one more byte followed by the rest of the list.
func consListFormat() (*doodle.FormatModule, doodle.Format) {
	module := doodle.NewFormatModule()
	ref := module.Reserve("list", nil)
	body := doodle.UnionVariantFormat(
		doodle.Alt("nil", doodle.ByteIn(0x00)),
		doodle.Alt("cons", doodle.SeqFormat(doodle.ByteIn(0x01), doodle.AnyByteFormat(), ref.Call())),
	)
	module.SetFormat(ref, body)
	return module, ref.Call()
}
