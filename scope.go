package doodle

import "fmt"

// Scope is a linked chain of lexical frames mapping names to Values.
// Lookup walks from the youngest binding in the current frame to the
// oldest, then into the parent frame. A Scope is owned exclusively by
// one parse call and is never shared across goroutines.
type Scope struct {
	parent   *Scope
	names    []string
	values   []Value
	decoders []*Decoder // lazily-populated cache cell, one per binding, for Apply
}

// NewScope creates a root scope with no parent and no bindings.
func NewScope() *Scope {
	return &Scope{}
}

// ChildScope creates a new, empty frame linked to parent. Entering a
// Record, a Match branch, or a lambda body pushes a child scope; a Call
// instead starts from a fresh root scope (NewScope).
func ChildScope(parent *Scope) *Scope {
	return &Scope{parent: parent}
}

// Push binds name to v in the current frame, shadowing any existing
// binding of the same name in this or an ancestor frame.
func (s *Scope) Push(name string, v Value) {
	s.names = append(s.names, name)
	s.values = append(s.values, v)
	s.decoders = append(s.decoders, nil)
}

// lookup finds the frame and index of the most recently pushed
// binding named name, searching this frame before any ancestor.
func (s *Scope) lookup(name string) (*Scope, int, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		for i := len(frame.names) - 1; i >= 0; i-- {
			if frame.names[i] == name {
				return frame, i, true
			}
		}
	}
	return nil, 0, false
}

// Get returns the Value bound to name, panicking (a programmer error,
// not a parse failure) if no such binding exists.
func (s *Scope) Get(name string) Value {
	frame, i, ok := s.lookup(name)
	if !ok {
		panic(fmt.Sprintf("variable not found: %s", name))
	}
	return frame.values[i]
}

// Dump flattens every binding visible from s, youngest-first, for
// attaching to a KindFail ParseError.
func (s *Scope) Dump() []Binding {
	var out []Binding
	for frame := s; frame != nil; frame = frame.parent {
		for i := len(frame.names) - 1; i >= 0; i-- {
			out = append(out, Binding{Name: frame.names[i], Value: frame.values[i]})
		}
	}
	return out
}

// CallDecoderByName implements Decoder.Apply: name must be bound to a
// FormatValue. On first use the format is compiled in isolation and
// the resulting Decoder is cached in the binding's frame so later
// Apply calls against the same binding reuse it instead of
// recompiling.
func (s *Scope) CallDecoderByName(name string, program *Program, input Cursor) (Value, Cursor, error) {
	frame, i, ok := s.lookup(name)
	if !ok {
		panic(fmt.Sprintf("variable not found: %s", name))
	}
	if frame.decoders[i] == nil {
		fv, ok := Coerce(frame.values[i]).(FormatValue)
		if !ok {
			panic(fmt.Sprintf("variable not format: %s", name))
		}
		d, err := CompileStandalone(fv.Inner)
		if err != nil {
			panic(fmt.Sprintf("apply %s: %s", name, err))
		}
		frame.decoders[i] = &d
	}
	// The decoder is dispatched against the original calling scope s,
	// not the frame where the binding was found, so names it
	// references resolve in the caller's lexical environment.
	return (*frame.decoders[i]).Parse(program, s, input)
}
