package param

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dzonerzy/go-cstress/internal/fuzzy"
)

// Group is one complete, mutually exclusive usage of an option: an ordered
// subset of the parser's parameters. Parameters may appear in several groups.
type Group struct {
	index int
	nodes []Node
}

// Index returns the declaration position of the group, starting at 0.
func (g *Group) Index() int { return g.index }

// Contains reports whether n is a member of the group.
func (g *Group) Contains(n Node) bool {
	for _, member := range g.nodes {
		if member == n {
			return true
		}
	}
	return false
}

// Parser resolves the fragments following one option flag. It owns every
// parameter of the option and the ordered list of usages built from them.
// A Parser is single-use and not safe for concurrent use.
type Parser struct {
	option string
	nodes  []Node
	groups []*Group
	parsed bool
}

// New creates a parser for the given option, e.g. "-rate".
func New(option string) *Parser {
	return &Parser{option: option}
}

// Option returns the option name the parser was created for.
func (p *Parser) Option() string { return p.option }

// Add registers a parameter. Prefixes must be unique within a parser.
func Add[N Node](p *Parser, n N) N {
	for _, existing := range p.nodes {
		if existing.Prefix() == n.Prefix() {
			panic(fmt.Sprintf("param: %s declares '%s' twice", p.option, n.Prefix()))
		}
	}
	p.nodes = append(p.nodes, n)
	return n
}

// Uint declares a parameter holding an unsigned integer.
func (p *Parser) Uint(prefix, desc string) *Simple[uint64] {
	return Add(p, NewSimple(prefix, Uint, desc))
}

// Ratio declares a parameter holding a fraction such as 0.02.
func (p *Parser) Ratio(prefix, desc string) *Simple[float64] {
	return Add(p, NewSimple(prefix, Ratio, desc))
}

// Flag declares a presence-only parameter.
func (p *Parser) Flag(prefix, desc string) *Simple[bool] {
	return Add(p, NewSimple(prefix, Flag, desc))
}

// Text declares a free text parameter.
func (p *Parser) Text(prefix, desc string) *Simple[string] {
	return Add(p, NewSimple(prefix, String, desc))
}

// Duration declares a parameter such as duration=10m.
func (p *Parser) Duration(prefix, desc string) *Simple[time.Duration] {
	return Add(p, NewSimple(prefix, Duration, desc))
}

// Count declares a parameter such as n=5m.
func (p *Parser) Count(prefix, desc string) *Simple[uint64] {
	return Add(p, NewSimple(prefix, Count, desc))
}

// Rate declares a parameter such as throttle=100/s.
func (p *Parser) Rate(prefix, desc string) *Simple[uint64] {
	return Add(p, NewSimple(prefix, Rate, desc))
}

// List declares a comma delimited list parameter.
func (p *Parser) List(prefix, desc string) *Simple[[]string] {
	return Add(p, NewSimple(prefix, CommaList, desc))
}

// Multi declares a compound prefix(...) parameter.
func (p *Parser) Multi(prefix, desc string, children ...Node) *Multi {
	return Add(p, NewMulti(prefix, desc, children...))
}

// Group declares the next usage of the option. Groups are tried in
// declaration order, so more specific usages should be declared first.
func (p *Parser) Group(nodes ...Node) *Group {
	if len(nodes) == 0 {
		panic(fmt.Sprintf("param: %s declares an empty group", p.option))
	}
	for i, n := range nodes {
		if !p.owns(n) {
			panic(fmt.Sprintf("param: %s groups '%s' which was not declared on this parser",
				p.option, n.Prefix()))
		}
		for _, prev := range nodes[:i] {
			if prev == n {
				panic(fmt.Sprintf("param: %s lists '%s' twice in one group", p.option, n.Prefix()))
			}
		}
	}
	g := &Group{index: len(p.groups), nodes: nodes}
	p.groups = append(p.groups, g)
	return g
}

func (p *Parser) owns(n Node) bool {
	for _, existing := range p.nodes {
		if existing == n {
			return true
		}
	}
	return false
}

// Parse consumes the fragments given for the option and selects the first
// declared usage they satisfy. Only parameters of the returned group are
// satisfied and may be read afterwards.
func (p *Parser) Parse(args []string) (*Group, error) {
	if p.parsed {
		panic(fmt.Sprintf("param: %s parser used twice", p.option))
	}
	p.parsed = true
	if len(p.groups) == 0 {
		panic(fmt.Sprintf("param: %s has no groups", p.option))
	}

	for _, arg := range args {
		if err := p.parseArgument(arg); err != nil {
			return nil, p.withOption(err)
		}
	}

	for _, g := range p.groups {
		if p.satisfies(g) {
			for _, n := range g.nodes {
				n.setSatisfied()
			}
			return g, nil
		}
	}
	return nil, p.unsatisfiedError()
}

// parseArgument hands one fragment to the first parameter that matches it.
func (p *Parser) parseArgument(arg string) error {
	for _, n := range p.nodes {
		ok, err := n.tryMatch(arg)
		if err != nil {
			return err
		}
		if ok {
			return n.parse(arg)
		}
	}
	return p.unrecognized(arg)
}

// satisfies reports whether every required member of g was supplied and
// nothing outside g was.
func (p *Parser) satisfies(g *Group) bool {
	for _, n := range g.nodes {
		if n.IsRequired() && !n.SuppliedByUser() {
			return false
		}
	}
	for _, n := range p.nodes {
		if n.SuppliedByUser() && !g.Contains(n) {
			return false
		}
	}
	return true
}

func (p *Parser) unrecognized(arg string) error {
	name, _, _ := strings.Cut(arg, "=")
	prefixes := make([]string, 0, len(p.nodes))
	for _, n := range p.nodes {
		if n.Prefix() != "" {
			prefixes = append(prefixes, n.Prefix())
		}
	}
	return &ParseError{
		Type:       ErrorTypeUnrecognizedArgument,
		Arg:        arg,
		Message:    fmt.Sprintf("Unrecognized argument: %s", arg),
		Suggestion: fuzzy.FindBestPrefix(name, prefixes, 2),
	}
}

func (p *Parser) unsatisfiedError() error {
	var b strings.Builder
	b.WriteString("invalid options provided, none of the usages is satisfied:")
	for _, g := range p.groups {
		b.WriteString("\n  Usage: ")
		b.WriteString(p.option)
		for _, n := range g.nodes {
			b.WriteByte(' ')
			n.writeUsage(&b)
		}
		var missing, foreign []string
		for _, n := range g.nodes {
			if n.IsRequired() && !n.SuppliedByUser() {
				missing = append(missing, displayPrefix(n.Prefix()))
			}
		}
		for _, n := range p.nodes {
			if n.SuppliedByUser() && !g.Contains(n) {
				foreign = append(foreign, displayPrefix(n.Prefix()))
			}
		}
		if len(missing) > 0 {
			b.WriteString("\n    missing: ")
			b.WriteString(strings.Join(missing, ", "))
		}
		if len(foreign) > 0 {
			b.WriteString("\n    not allowed here: ")
			b.WriteString(strings.Join(foreign, ", "))
		}
	}
	return &ParseError{
		Type:    ErrorTypeUnsatisfiedGroup,
		Option:  p.option,
		Message: b.String(),
	}
}

func (p *Parser) withOption(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Option == "" {
		pe.Option = p.option
	}
	return err
}

// WriteHelp renders every usage of the option followed by the parameter
// descriptions. It does not touch parse state.
func (p *Parser) WriteHelp(w io.Writer) {
	for i, g := range p.groups {
		if i > 0 {
			fmt.Fprintln(w, " OR ")
		}
		fmt.Fprintf(w, "Usage: %s", p.option)
		for _, n := range g.nodes {
			fmt.Fprint(w, " ")
			n.writeUsage(w)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	for _, n := range p.nodes {
		n.writeDesc(w, "  ")
	}
}
