package param

import (
	"fmt"
	"io"
	"strings"
)

// Multi is a compound parameter of the form prefix(sub1,sub2,...).
//
// Each comma separated fragment is offered to the predefined children in
// declaration order. Fragments no child recognizes are stored as arbitrary
// key=value pairs when AcceptArbitrary was set, and rejected otherwise.
//
// For example replication(strategy=?,factor=?) with arbitrary parameters
// accepts replication(foo=bar,factor=3,key=value): factor=3 goes to the factor
// child while foo and key land in the arbitrary dictionary.
type Multi struct {
	prefix    string
	children  []Node
	desc      string
	required  bool
	arbitrary bool
	supplied  bool
	extra     slot[map[string]string]
}

// NewMulti creates a compound parameter with the given predefined children.
func NewMulti(prefix, desc string, children ...Node) *Multi {
	return &Multi{
		prefix:   prefix,
		children: children,
		desc:     desc,
	}
}

// AcceptArbitrary lets the parameter collect key=value pairs that match no child.
func (m *Multi) AcceptArbitrary() *Multi {
	m.arbitrary = true
	return m
}

// Required marks the parameter as required within its usages.
func (m *Multi) Required() *Multi {
	m.required = true
	return m
}

func (m *Multi) Prefix() string       { return m.prefix }
func (m *Multi) IsRequired() bool     { return m.required }
func (m *Multi) SuppliedByUser() bool { return m.supplied }

// Satisfied reports whether the parameter belongs to the chosen usage.
func (m *Multi) Satisfied() bool { return m.extra.state == slotSatisfied }

// Arbitrary takes the collected key=value pairs. It returns false if the
// parameter was not satisfied or does not accept arbitrary pairs. Taking the
// dictionary twice panics.
func (m *Multi) Arbitrary() (map[string]string, bool) {
	if m.extra.state == slotPending {
		return nil, false
	}
	v, _ := m.extra.take(m.prefix)
	if !m.arbitrary {
		return nil, false
	}
	return v, true
}

func (m *Multi) tryMatch(arg string) (bool, error) {
	if !strings.HasPrefix(arg, m.prefix) {
		return false, nil
	}
	if m.supplied {
		return false, duplicate(m.prefix, arg)
	}
	val := arg[len(m.prefix):]
	if len(val) < 2 || val[0] != '(' || val[len(val)-1] != ')' {
		return false, &ParseError{
			Type:    ErrorTypeMalformedValue,
			Arg:     arg,
			Message: fmt.Sprintf("Invalid %s specification: %s", m.prefix, arg),
		}
	}
	return true, nil
}

func (m *Multi) parse(arg string) error {
	m.supplied = true
	val := arg[len(m.prefix)+1 : len(arg)-1]

	for _, sub := range strings.Split(val, ",") {
		matched, err := m.parsePredefined(sub)
		if err != nil {
			return err
		}
		if matched {
			continue
		}
		if err := m.parseArbitrary(sub); err != nil {
			return err
		}
	}
	return nil
}

// parsePredefined offers sub to the children in order. The first structural
// match decides; a value error from that child is final.
func (m *Multi) parsePredefined(sub string) (bool, error) {
	for _, child := range m.children {
		ok, err := child.tryMatch(sub)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if err := child.parse(sub); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (m *Multi) parseArbitrary(sub string) error {
	if !m.arbitrary {
		return &ParseError{
			Type: ErrorTypeUnrecognizedArgument,
			Arg:  sub,
			Message: fmt.Sprintf("Cannot accept parameter %s. %s doesn't accept arbitrary parameters.",
				sub, m.prefix),
		}
	}

	key, value, ok := strings.Cut(sub, "=")
	if !ok || key == "" || value == "" || strings.Contains(value, "=") {
		return &ParseError{
			Type:    ErrorTypeUnrecognizedArgument,
			Arg:     sub,
			Message: fmt.Sprintf("Invalid '%s' specification: '%s'", m.prefix, sub),
		}
	}

	if m.extra.value == nil {
		m.extra.store(make(map[string]string))
	}
	if _, exists := m.extra.value[key]; exists {
		return &ParseError{
			Type:    ErrorTypeArbitraryKeyCollision,
			Arg:     sub,
			Message: fmt.Sprintf("%s suboption has been specified more than once", key),
		}
	}
	m.extra.value[key] = value
	return nil
}

func (m *Multi) setSatisfied() {
	if m.arbitrary && m.extra.value == nil {
		m.extra.store(make(map[string]string))
	}
	m.extra.satisfy()
	for _, child := range m.children {
		child.setSatisfied()
	}
}

func (m *Multi) writeUsage(w io.Writer) {
	if m.required {
		fmt.Fprintf(w, "%s(?)", m.prefix)
		return
	}
	fmt.Fprintf(w, "[%s(?)]", m.prefix)
}

func (m *Multi) writeDesc(w io.Writer, indent string) {
	fmt.Fprintf(w, "%s%s(", indent, m.prefix)
	for _, child := range m.children {
		child.writeUsage(w)
	}
	if m.arbitrary {
		fmt.Fprint(w, "[<option 1..N>=?]")
	}
	fmt.Fprintf(w, "): %s\n", m.desc)
	for _, child := range m.children {
		child.writeDesc(w, indent+"      ")
	}
}
