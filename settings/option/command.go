package option

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dzonerzy/go-cstress/settings/param"
)

// Commands lists the workloads the tool accepts, with their descriptions.
var Commands = []struct {
	Name        string
	Description string
}{
	{"read", "Multiple concurrent reads - the cluster must first be populated by a write test"},
	{"write", "Multiple concurrent writes against the cluster"},
	{"counter_write", "Multiple concurrent updates of counters"},
	{"counter_read", "Multiple concurrent reads of counters - the cluster must first be populated by a counter_write test"},
}

// IsCommand reports whether name is a known command.
func IsCommand(name string) bool {
	for _, c := range Commands {
		if c.Name == name {
			return true
		}
	}
	return false
}

// StopMode says what ends a command.
type StopMode int

const (
	// StopOnUncertainty runs until the mean error falls below a target.
	StopOnUncertainty StopMode = iota
	// StopOnCount runs a fixed number of operations.
	StopOnCount
	// StopOnDuration runs for a fixed wall clock time.
	StopOnDuration
)

func (m StopMode) String() string {
	switch m {
	case StopOnUncertainty:
		return "uncertainty"
	case StopOnCount:
		return "count"
	case StopOnDuration:
		return "duration"
	default:
		return fmt.Sprintf("StopMode(%d)", int(m))
	}
}

// Command is the resolved command and its parameters.
type Command struct {
	Name     string `validate:"required"`
	Stop     StopMode
	Count    uint64        // operations, StopOnCount only
	Duration time.Duration // StopOnDuration only

	// Uncertainty is set for StopOnUncertainty.
	Uncertainty *Uncertainty

	NoWarmup         bool
	Truncate         string `validate:"oneof=never once always"`
	ConsistencyLevel string `validate:"valid_consistency"`
}

// Uncertainty bounds a run by the standard error of the mean.
type Uncertainty struct {
	TargetError     float64 `validate:"gt=0,lt=1"`
	MinMeasurements uint64  `validate:"gt=0"`
	MaxMeasurements uint64  `validate:"gtefield=MinMeasurements"`
}

type commandParams struct {
	parser        *param.Parser
	targetError   *param.Simple[float64]
	minMeasure    *param.Simple[uint64]
	maxMeasure    *param.Simple[uint64]
	noWarmup      *param.Simple[bool]
	truncate      *param.Simple[string]
	consistency   *param.Simple[string]
	count         *param.Simple[uint64]
	duration      *param.Simple[time.Duration]
	countGroup    *param.Group
	durationGroup *param.Group
}

func newCommandParams(name string) *commandParams {
	p := param.New(name)
	c := &commandParams{parser: p}
	c.targetError = p.Ratio("err<", "Run until the standard error of the mean is below this fraction").Default("0.02")
	c.minMeasure = p.Uint("n>", "Run at least this many iterations before accepting uncertainty convergence").Default("30")
	c.maxMeasure = p.Uint("n<", "Run at most this many iterations before accepting uncertainty convergence").Default("200")
	c.noWarmup = p.Flag("no-warmup", "Do not warmup the process")
	c.truncate = p.Text("truncate=", "Truncate the table: never, before performing any work, or before each iteration").Default("never")
	c.consistency = p.Text("cl=", "Consistency level to use").Default("LOCAL_ONE")
	c.count = p.Count("n=", "Number of operations to perform").Required()
	c.duration = p.Duration("duration=", "Time to run in (in seconds, minutes or hours)").Required()

	// Usage: write [err<?] [n>?] [n<?] [no-warmup] [truncate=?] [cl=?]
	//  OR
	// Usage: write n=? [no-warmup] [truncate=?] [cl=?]
	//  OR
	// Usage: write duration=? [no-warmup] [truncate=?] [cl=?]
	p.Group(c.targetError, c.minMeasure, c.maxMeasure, c.noWarmup, c.truncate, c.consistency)
	c.countGroup = p.Group(c.count, c.noWarmup, c.truncate, c.consistency)
	c.durationGroup = p.Group(c.duration, c.noWarmup, c.truncate, c.consistency)
	return c
}

// ParseCommand resolves the fragments following the command name.
func ParseCommand(name string, fragments []string) (*Command, error) {
	if !IsCommand(name) {
		return nil, fmt.Errorf("unknown command %q", name)
	}
	params := newCommandParams(name)
	chosen, err := params.parser.Parse(fragments)
	if err != nil {
		return nil, err
	}
	cmd := params.resolve(name, chosen)
	if err := validateStruct(name, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (c *commandParams) resolve(name string, chosen *param.Group) *Command {
	cmd := &Command{
		Name:     name,
		NoWarmup: c.noWarmup.SuppliedByUser(),
	}
	cmd.Truncate, _ = c.truncate.Get()
	cl, _ := c.consistency.Get()
	cmd.ConsistencyLevel = strings.ToUpper(cl)

	switch chosen {
	case c.countGroup:
		cmd.Stop = StopOnCount
		cmd.Count, _ = c.count.Get()
	case c.durationGroup:
		cmd.Stop = StopOnDuration
		cmd.Duration, _ = c.duration.Get()
	default:
		u := &Uncertainty{}
		u.TargetError, _ = c.targetError.Get()
		u.MinMeasurements, _ = c.minMeasure.Get()
		u.MaxMeasurements, _ = c.maxMeasure.Get()
		cmd.Stop = StopOnUncertainty
		cmd.Uncertainty = u
	}
	return cmd
}

// WriteCommandHelp prints the usages and parameters of a command.
func WriteCommandHelp(name string, w io.Writer) {
	newCommandParams(name).parser.WriteHelp(w)
}

// WriteSettings prints the resolved command.
func (c *Command) WriteSettings(w io.Writer) {
	fmt.Fprintln(w, "Command:")
	fmt.Fprintf(w, "  Type: %s\n", c.Name)
	switch c.Stop {
	case StopOnCount:
		fmt.Fprintf(w, "  Count: %d\n", c.Count)
	case StopOnDuration:
		fmt.Fprintf(w, "  Duration: %s\n", c.Duration)
	case StopOnUncertainty:
		fmt.Fprintf(w, "  Target Uncertainty: %g\n", c.Uncertainty.TargetError)
		fmt.Fprintf(w, "  Minimum Uncertainty Measurements: %d\n", c.Uncertainty.MinMeasurements)
		fmt.Fprintf(w, "  Maximum Uncertainty Measurements: %d\n", c.Uncertainty.MaxMeasurements)
	}
	fmt.Fprintf(w, "  No Warmup: %t\n", c.NoWarmup)
	fmt.Fprintf(w, "  Consistency Level: %s\n", c.ConsistencyLevel)
	fmt.Fprintf(w, "  Truncate: %s\n", c.Truncate)
}
