package param

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// rateParser mirrors the two usages of the -rate option.
type rateParser struct {
	p                         *Parser
	threadsVal                *Simple[uint64]
	throttleVal, fixedRateVal *Simple[uint64]
	auto                      *Simple[bool]
	minThreads, maxThreads    *Simple[uint64]
	fixedGroup, autoGroup     *Group
}

func newRateParser() *rateParser {
	r := &rateParser{p: New("-rate")}
	r.threadsVal = r.p.Uint("threads=", "run this many clients concurrently").Required()
	r.throttleVal = r.p.Rate("throttle=", "throttle operations per second across all clients")
	r.auto = r.p.Flag("auto", "test with increasing number of threadCount until performance plateaus").Required()
	r.minThreads = r.p.Uint("threads>=", "run at least this many clients concurrently").Default("4")
	r.maxThreads = r.p.Uint("threads<=", "run at most this many clients concurrently").Default("1000")
	r.fixedRateVal = r.p.Rate("fixed=", "expect fixed rate of operations per second across all clients")
	r.fixedGroup = r.p.Group(r.threadsVal, r.throttleVal, r.fixedRateVal)
	r.autoGroup = r.p.Group(r.auto, r.minThreads, r.maxThreads)
	return r
}

func TestParserSelectsFixedUsage(t *testing.T) {
	r := newRateParser()
	g, err := r.p.Parse([]string{"threads=100", "throttle=15/s"})
	require.NoError(t, err)
	require.Same(t, r.fixedGroup, g)
	require.Equal(t, 0, g.Index())

	n, ok := r.threadsVal.Get()
	require.True(t, ok)
	require.Equal(t, uint64(100), n)

	rate, ok := r.throttleVal.Get()
	require.True(t, ok)
	require.Equal(t, uint64(15), rate)

	_, ok = r.fixedRateVal.Get()
	require.False(t, ok)

	// Parameters outside the chosen usage stay unsatisfied.
	require.False(t, r.minThreads.Satisfied())
	require.Panics(t, func() { r.minThreads.Get() })
}

func TestParserSelectsAutoUsage(t *testing.T) {
	r := newRateParser()
	g, err := r.p.Parse([]string{"threads<=200", "auto"})
	require.NoError(t, err)
	require.Same(t, r.autoGroup, g)

	lo, _ := r.minThreads.Get()
	hi, _ := r.maxThreads.Get()
	auto, _ := r.auto.Get()
	require.Equal(t, uint64(4), lo)
	require.Equal(t, uint64(200), hi)
	require.True(t, auto)
}

func TestParserRejectsMixedUsages(t *testing.T) {
	r := newRateParser()
	_, err := r.p.Parse([]string{"threads<=200", "auto", "fixed=10/s"})
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorTypeUnsatisfiedGroup, pe.Type)
	require.Contains(t, err.Error(), "none of the usages is satisfied")
	require.Contains(t, err.Error(), "missing: threads=")
	require.Contains(t, err.Error(), "not allowed here: fixed=")
}

func TestParserRequiresMember(t *testing.T) {
	r := newRateParser()
	_, err := r.p.Parse(nil)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorTypeUnsatisfiedGroup, pe.Type)
}

func TestParserFirstSatisfiedGroupWins(t *testing.T) {
	// Both usages accept "a=5"; declaration order decides, every time.
	for i := 0; i < 3; i++ {
		p := New("-opt")
		a := p.Uint("a=", "").Default("1")
		b := p.Uint("b=", "").Default("2")
		first := p.Group(a, b)
		p.Group(a)

		g, err := p.Parse([]string{"a=5"})
		require.NoError(t, err)
		require.Same(t, first, g)
		require.True(t, b.Satisfied())
	}
}

func TestParserUnrecognizedArgumentSuggests(t *testing.T) {
	r := newRateParser()
	_, err := r.p.Parse([]string{"thraeds=4"})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorTypeUnrecognizedArgument, pe.Type)
	require.Equal(t, "threads=", pe.Suggestion)
	require.Equal(t, "-rate: Unrecognized argument: thraeds=4 (did you mean 'threads='?)", err.Error())
}

func TestParserPositionalList(t *testing.T) {
	p := New("-node")
	dc := p.Text("datacenter=", "")
	hosts := p.List("", "comma delimited list of nodes").Default("localhost")
	p.Group(dc, hosts)

	_, err := p.Parse([]string{"10.0.0.1,10.0.0.2"})
	require.NoError(t, err)
	v, ok := hosts.Get()
	require.True(t, ok)
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, v)

	_, ok = dc.Get()
	require.False(t, ok)
}

func TestParserPositionalDuplicate(t *testing.T) {
	p := New("-node")
	hosts := p.List("", "")
	p.Group(hosts)

	_, err := p.Parse([]string{"a", "b"})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, ErrorTypeDuplicateSupply, pe.Type)
	require.Contains(t, err.Error(), "positional suboption")
}

func TestParserFaults(t *testing.T) {
	t.Run("parse twice", func(t *testing.T) {
		p := New("-opt")
		p.Group(p.Flag("x", ""))
		_, err := p.Parse(nil)
		require.NoError(t, err)
		require.Panics(t, func() { p.Parse(nil) })
	})

	t.Run("no groups", func(t *testing.T) {
		p := New("-opt")
		p.Flag("x", "")
		require.Panics(t, func() { p.Parse(nil) })
	})

	t.Run("empty group", func(t *testing.T) {
		require.Panics(t, func() { New("-opt").Group() })
	})

	t.Run("foreign node", func(t *testing.T) {
		p := New("-opt")
		require.Panics(t, func() { p.Group(NewSimple("x=", Uint, "")) })
	})

	t.Run("duplicate prefix", func(t *testing.T) {
		p := New("-opt")
		p.Uint("x=", "")
		require.Panics(t, func() { p.Uint("x=", "") })
	})

	t.Run("node twice in group", func(t *testing.T) {
		p := New("-opt")
		x := p.Uint("x=", "")
		require.Panics(t, func() { p.Group(x, x) })
	})
}

func TestParserWriteHelp(t *testing.T) {
	r := newRateParser()
	var buf bytes.Buffer
	r.p.WriteHelp(&buf)
	out := buf.String()

	require.Contains(t, out, "Usage: -rate threads=? [throttle=?] [fixed=?]\n OR \nUsage: -rate auto [threads>=?] [threads<=?]\n")
	require.Contains(t, out, "  threads>=? (default=4)")
	require.Contains(t, out, "  threads<=? (default=1000)")
	require.Contains(t, out, "run this many clients concurrently")

	// Help is side-effect free; the parser is still usable.
	_, err := r.p.Parse([]string{"threads=1"})
	require.NoError(t, err)
}
