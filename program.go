package doodle

// Program is the compiler's output: an append-only table of compiled
// Decoders with index 0 as the entry point. It is immutable once
// compilation finishes and may be shared freely across goroutines;
// each Run call owns its own Scope chain.
type Program struct {
	Decoders []Decoder
}

// Run parses input against decoder 0 in a fresh root scope.
func (p *Program) Run(input Cursor) (Value, Cursor, error) {
	scope := NewScope()
	return p.Decoders[0].Parse(p, scope, input)
}
