package settings

import (
	"fmt"
	"strings"

	"github.com/dzonerzy/go-cstress/internal/fuzzy"
	"github.com/dzonerzy/go-cstress/settings/option"
)

// Payload maps an option name, e.g. "-rate", to the fragments that followed it.
type Payload map[string][]string

// Args is a command line split into the command, its parameters and options.
type Args struct {
	Command       string
	CommandParams []string
	Options       Payload
}

// SplitArgs splits a command line such as
//
//	write n=100 cl=quorum -rate threads=8 -node 10.0.0.1
//
// The first token names the command. Tokens up to the first option are the
// command's parameters, and every token starting with '-' opens an option
// that collects the tokens after it.
func SplitArgs(args []string) (*Args, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no command given")
	}
	if isOption(args[0]) {
		return nil, fmt.Errorf("expected a command before %s", args[0])
	}

	out := &Args{Command: args[0], Options: make(Payload)}
	current := ""
	for _, arg := range args[1:] {
		if isOption(arg) {
			if _, dup := out.Options[arg]; dup {
				return nil, fmt.Errorf("%s has been specified more than once", arg)
			}
			if _, known := option.Lookup(arg); !known {
				return nil, unknownOption(arg)
			}
			out.Options[arg] = []string{}
			current = arg
			continue
		}
		if current == "" {
			out.CommandParams = append(out.CommandParams, arg)
			continue
		}
		out.Options[current] = append(out.Options[current], arg)
	}
	return out, nil
}

func isOption(arg string) bool {
	return strings.HasPrefix(arg, "-") && len(arg) > 1
}

func unknownOption(name string) error {
	var names []string
	for _, d := range option.Descriptors() {
		names = append(names, strings.TrimPrefix(d.Name, "-"))
	}
	if s := fuzzy.FindBestPrefix(strings.TrimPrefix(name, "-"), names, 2); s != "" {
		return fmt.Errorf("unrecognized option %s (did you mean '-%s'?)", name, s)
	}
	return fmt.Errorf("unrecognized option %s", name)
}
