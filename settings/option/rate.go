package option

import (
	"fmt"
	"io"

	"go.uber.org/ratelimit"

	"github.com/dzonerzy/go-cstress/settings/param"
)

const (
	RateName        = "-rate"
	RateDescription = "Thread count, rate limit or automatic mode (default is auto)"
)

// Rate is the resolved -rate option. Exactly one of Fixed and Auto is set.
type Rate struct {
	Fixed *FixedThreads
	Auto  *AutoThreads
}

// FixedThreads runs a set number of clients.
type FixedThreads struct {
	Threads   uint64  `validate:"gt=0"`
	Throttle  *uint64 // maximum operations per second, no implied schedule
	FixedRate *uint64 // operations per second on a fixed schedule
}

// AutoThreads increases the client count between the bounds until throughput saturates.
type AutoThreads struct {
	MinThreads uint64 `validate:"gt=0"`
	MaxThreads uint64 `validate:"gtefield=MinThreads"`
	Auto       bool
}

type rateParams struct {
	parser     *param.Parser
	threads    *param.Simple[uint64]
	throttle   *param.Simple[uint64]
	fixed      *param.Simple[uint64]
	minThreads *param.Simple[uint64]
	maxThreads *param.Simple[uint64]
	auto       *param.Simple[bool]
	fixedGroup *param.Group
}

func newRateParams() *rateParams {
	p := param.New(RateName)
	r := &rateParams{parser: p}
	r.threads = p.Uint("threads=", "run this many clients concurrently").Required()
	r.throttle = p.Rate("throttle=", "throttle operations per second across all clients to a maximum rate (or less) with no implied schedule")
	r.fixed = p.Rate("fixed=", "expect fixed rate of operations per second across all clients with implied schedule")
	r.minThreads = p.Uint("threads>=", "run at least this many clients concurrently").Default("4")
	r.maxThreads = p.Uint("threads<=", "run at most this many clients concurrently").Default("1000")
	r.auto = p.Flag("auto", "stop increasing threads once throughput saturates")

	// Usage: -rate threads=? [throttle=?] [fixed=?]
	//  OR
	// Usage: -rate [threads>=?] [threads<=?] [auto]
	r.fixedGroup = p.Group(r.threads, r.throttle, r.fixed)
	p.Group(r.minThreads, r.maxThreads, r.auto)
	return r
}

// ParseRate resolves the fragments given after -rate.
func ParseRate(fragments []string) (*Rate, error) {
	params := newRateParams()
	chosen, err := params.parser.Parse(fragments)
	if err != nil {
		return nil, err
	}

	rate := params.resolve(chosen)
	if err := validateStruct(RateName, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (r *rateParams) resolve(chosen *param.Group) *Rate {
	if chosen == r.fixedGroup {
		threads, _ := r.threads.Get()
		fixed := &FixedThreads{Threads: threads}
		if v, ok := r.throttle.Get(); ok {
			fixed.Throttle = &v
		}
		if v, ok := r.fixed.Get(); ok {
			fixed.FixedRate = &v
		}
		return &Rate{Fixed: fixed}
	}

	lo, _ := r.minThreads.Get()
	hi, _ := r.maxThreads.Get()
	return &Rate{Auto: &AutoThreads{
		MinThreads: lo,
		MaxThreads: hi,
		Auto:       r.auto.SuppliedByUser(),
	}}
}

// Limiter returns a limiter pacing operations across all clients. A fixed
// rate paces strictly without slack, a throttle allows bursts up to the
// default slack, and anything else is unlimited.
func (r *Rate) Limiter() ratelimit.Limiter {
	if r.Fixed == nil {
		return ratelimit.NewUnlimited()
	}
	switch {
	case r.Fixed.FixedRate != nil && *r.Fixed.FixedRate > 0:
		return ratelimit.New(int(*r.Fixed.FixedRate), ratelimit.WithoutSlack)
	case r.Fixed.Throttle != nil && *r.Fixed.Throttle > 0:
		return ratelimit.New(int(*r.Fixed.Throttle))
	default:
		return ratelimit.NewUnlimited()
	}
}

// WriteRateHelp prints the usages and parameters of -rate.
func WriteRateHelp(w io.Writer) {
	newRateParams().parser.WriteHelp(w)
}

// WriteSettings prints the resolved option.
func (r *Rate) WriteSettings(w io.Writer) {
	fmt.Fprintln(w, "Rate:")
	switch {
	case r.Fixed != nil:
		fmt.Fprintf(w, "  Thread count: %d\n", r.Fixed.Threads)
		if r.Fixed.Throttle != nil {
			fmt.Fprintf(w, "  OpsPer Sec: %d\n", *r.Fixed.Throttle)
		}
		if r.Fixed.FixedRate != nil {
			fmt.Fprintf(w, "  Fixed: %d\n", *r.Fixed.FixedRate)
		}
	case r.Auto != nil:
		fmt.Fprintf(w, "  Min threads: %d\n", r.Auto.MinThreads)
		fmt.Fprintf(w, "  Max threads: %d\n", r.Auto.MaxThreads)
		fmt.Fprintf(w, "  auto: %t\n", r.Auto.Auto)
	}
}
