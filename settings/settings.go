// Package settings turns a stress tool command line into typed, validated
// settings. Options can also come from a JSON profile and the environment;
// the command line wins over the environment, which wins over the profile.
package settings

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dzonerzy/go-cstress/settings/option"
)

// Settings holds the resolved command and every option.
type Settings struct {
	Command *option.Command
	Node    *option.Node
	Rate    *option.Rate
	Schema  *option.Schema

	// Sources records where each option's fragments came from.
	Sources map[string]SourceType
}

type config struct {
	profile string
	lookup  func(string) (string, bool)
	logger  *zap.Logger
}

// ParseOption configures Parse.
type ParseOption func(*config)

// WithProfile layers options from a JSON profile below the environment.
func WithProfile(path string) ParseOption {
	return func(c *config) { c.profile = path }
}

// WithEnv replaces os.LookupEnv for environment sourced options.
func WithEnv(lookup func(string) (string, bool)) ParseOption {
	return func(c *config) { c.lookup = lookup }
}

// WithLogger sets the logger used to report how options were resolved.
func WithLogger(l *zap.Logger) ParseOption {
	return func(c *config) { c.logger = l }
}

// Parse resolves a full command line, e.g. os.Args[1:].
func Parse(args []string, opts ...ParseOption) (*Settings, error) {
	cfg := &config{lookup: os.LookupEnv, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	log := cfg.logger

	split, err := SplitArgs(args)
	if err != nil {
		return nil, err
	}

	command, err := option.ParseCommand(split.Command, split.CommandParams)
	if err != nil {
		return nil, err
	}
	log.Debug("command resolved",
		zap.String("command", command.Name),
		zap.Stringer("stop", command.Stop),
		zap.Strings("params", split.CommandParams))

	pm := NewPrecedenceManager()
	names := make([]string, 0, len(option.Descriptors()))
	defaults := make(Payload)
	for _, d := range option.Descriptors() {
		names = append(names, d.Name)
		defaults[d.Name] = nil
	}
	pm.AddSource(SourceTypeDefaults, defaults)

	if cfg.profile != "" {
		profile, err := loadProfile(cfg.profile)
		if err != nil {
			return nil, err
		}
		for name := range profile {
			if _, ok := option.Lookup(name); !ok {
				return nil, fmt.Errorf("profile %s: %w", cfg.profile, unknownOption(name))
			}
		}
		pm.AddSource(SourceTypeFile, profile)
	}
	pm.AddSource(SourceTypeEnv, loadFromEnv(names, cfg.lookup))
	pm.AddSource(SourceTypeFlags, split.Options)

	payload, origin := pm.Resolve()
	for _, name := range names {
		log.Debug("option source",
			zap.String("option", name),
			zap.Stringer("source", origin[name]),
			zap.Strings("fragments", payload[name]))
	}

	s := &Settings{Command: command, Sources: origin}
	if s.Node, err = option.ParseNode(payload[option.NodeName]); err != nil {
		return nil, annotate(err, origin[option.NodeName])
	}
	if s.Rate, err = option.ParseRate(payload[option.RateName]); err != nil {
		return nil, annotate(err, origin[option.RateName])
	}
	if s.Schema, err = option.ParseSchema(payload[option.SchemaName]); err != nil {
		return nil, annotate(err, origin[option.SchemaName])
	}

	log.Info("settings resolved",
		zap.String("command", command.Name),
		zap.Strings("nodes", s.Node.Nodes),
		zap.String("keyspace", s.Schema.Keyspace))
	return s, nil
}

// annotate names the source of a bad option unless it was the command line.
func annotate(err error, src SourceType) error {
	if src == SourceTypeFlags || src == SourceTypeDefaults {
		return err
	}
	return fmt.Errorf("%w (from %s)", err, src)
}

// WriteSettings prints every resolved option.
func (s *Settings) WriteSettings(w io.Writer) {
	s.Command.WriteSettings(w)
	s.Node.WriteSettings(w)
	s.Rate.WriteSettings(w)
	s.Schema.WriteSettings(w)
}

// WriteHelp prints the commands and options the tool accepts.
func WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage:      cstress <command> [options]")
	fmt.Fprintln(w, "Help usage: cstress help <command|option>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---Commands---")
	for _, c := range option.Commands {
		fmt.Fprintf(w, "%-20s : %s\n", c.Name, c.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---Options---")
	for _, d := range option.Descriptors() {
		fmt.Fprintf(w, "%-20s : %s\n", d.Name, d.Description)
	}
}

// WriteTopicHelp prints the detailed help of one command or option.
func WriteTopicHelp(w io.Writer, topic string) error {
	if option.IsCommand(topic) {
		option.WriteCommandHelp(topic, w)
		return nil
	}
	if d, ok := option.Lookup(topic); ok {
		d.WriteHelp(w)
		return nil
	}
	return fmt.Errorf("invalid command or option %q", topic)
}
