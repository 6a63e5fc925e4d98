package param

import (
	"fmt"
	"io"
	"strings"
)

// Node is one sub-parameter of an option. The set of implementations is closed:
// *Simple[T] for leaf values and *Multi for parenthesised compound values.
type Node interface {
	// Prefix is the literal the node is recognized by.
	Prefix() string
	// IsRequired reports whether a usage containing this node needs it supplied.
	IsRequired() bool
	// SuppliedByUser reports whether the node matched an input fragment.
	SuppliedByUser() bool

	// tryMatch reports whether arg belongs to this node. A non-nil error means
	// the prefix matched but the fragment is unusable.
	tryMatch(arg string) (bool, error)
	parse(arg string) error
	setSatisfied()
	writeUsage(w io.Writer)
	writeDesc(w io.Writer, indent string)
}

// slotState tags where a node's value is in its lifecycle.
type slotState uint8

const (
	slotPending   slotState = iota // parse pass not finished, or node outside the chosen usage
	slotSatisfied                  // value (possibly unset) ready to be taken once
	slotConsumed                   // value already taken
)

// slot holds a value that can be taken exactly once after it is satisfied.
type slot[T any] struct {
	state slotState
	value T
	set   bool
}

func (s *slot[T]) store(v T) {
	s.value = v
	s.set = true
}

func (s *slot[T]) satisfy() {
	if s.state == slotConsumed {
		panic("param: satisfying a parameter whose value was already consumed")
	}
	s.state = slotSatisfied
}

// take moves the value out. name is only used for the fault message.
func (s *slot[T]) take(name string) (T, bool) {
	switch s.state {
	case slotPending:
		panic(fmt.Sprintf("param: value of '%s' read before it was satisfied; "+
			"parse the option first and read only parameters of the chosen usage", name))
	case slotConsumed:
		panic(fmt.Sprintf("param: value of '%s' has already been consumed", name))
	}
	v, ok := s.value, s.set
	var zero T
	s.value = zero
	s.state = slotConsumed
	return v, ok
}

// Simple is a leaf parameter: a literal prefix followed by a value of kind T.
// An empty prefix denotes a bare positional value.
type Simple[T any] struct {
	prefix     string
	kind       Kind[T]
	def        string
	hasDefault bool
	desc       string
	required   bool
	supplied   bool
	slot       slot[T]
}

// NewSimple creates a leaf parameter. Use it for Multi children; top-level
// parameters are normally created through the Parser helpers.
func NewSimple[T any](prefix string, kind Kind[T], desc string) *Simple[T] {
	return &Simple[T]{prefix: prefix, kind: kind, desc: desc}
}

// Default sets the textual default used when the parameter is not supplied.
// The default must follow the parameter's grammar.
func (s *Simple[T]) Default(value string) *Simple[T] {
	if _, err := s.kind.Parse(value); err != nil {
		panic(fmt.Sprintf("param: invalid default for '%s': %v", s.prefix, err))
	}
	s.def = value
	s.hasDefault = true
	return s
}

// Required marks the parameter as required within its usages.
func (s *Simple[T]) Required() *Simple[T] {
	s.required = true
	return s
}

func (s *Simple[T]) Prefix() string { return s.prefix }

func (s *Simple[T]) IsRequired() bool { return s.required }

// SuppliedByUser reports whether the parameter appeared on the command line.
func (s *Simple[T]) SuppliedByUser() bool { return s.supplied }

// Satisfied reports whether the value can be taken with Get.
func (s *Simple[T]) Satisfied() bool { return s.slot.state == slotSatisfied }

// Get takes the parsed value. It returns false when the parameter was
// satisfied without a value (not supplied and no default). Calling Get before
// the parameter was satisfied, or twice, is a programming error and panics.
func (s *Simple[T]) Get() (T, bool) {
	return s.slot.take(s.prefix)
}

func (s *Simple[T]) tryMatch(arg string) (bool, error) {
	if !strings.HasPrefix(arg, s.prefix) {
		return false, nil
	}
	if s.supplied {
		return false, duplicate(s.prefix, arg)
	}
	if _, err := s.kind.Parse(arg[len(s.prefix):]); err != nil {
		return false, malformed(arg, err)
	}
	return true, nil
}

func (s *Simple[T]) parse(arg string) error {
	v, err := s.kind.Parse(arg[len(s.prefix):])
	if err != nil {
		return malformed(arg, err)
	}
	s.slot.store(v)
	s.supplied = true
	return nil
}

func (s *Simple[T]) setSatisfied() {
	if !s.supplied && s.hasDefault {
		v, err := s.kind.Parse(s.def)
		if err != nil {
			panic(fmt.Sprintf("param: invalid default for '%s': %v", s.prefix, err))
		}
		s.slot.store(v)
	}
	s.slot.satisfy()
}

// usageText renders "threads=?" for values, "auto" for flags and an empty
// string for the bare positional value.
func (s *Simple[T]) usageText() string {
	if s.kind.isBool || s.prefix == "" {
		return s.prefix
	}
	return s.prefix + "?"
}

func (s *Simple[T]) writeUsage(w io.Writer) {
	if s.required {
		fmt.Fprint(w, s.usageText())
		return
	}
	fmt.Fprintf(w, "[%s]", s.usageText())
}

func (s *Simple[T]) writeDesc(w io.Writer, indent string) {
	head := s.usageText()
	if s.hasDefault {
		head += " (default=" + s.def + ")"
	}
	fmt.Fprintf(w, "%s%-40s %s\n", indent, head, s.desc)
}
