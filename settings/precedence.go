package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceType represents where an option's fragments came from
type SourceType int

const (
	SourceTypeDefaults SourceType = iota
	SourceTypeFile
	SourceTypeEnv
	SourceTypeFlags
)

func (s SourceType) String() string {
	switch s {
	case SourceTypeDefaults:
		return "defaults"
	case SourceTypeFile:
		return "profile"
	case SourceTypeEnv:
		return "environment"
	case SourceTypeFlags:
		return "command line"
	default:
		return fmt.Sprintf("SourceType(%d)", int(s))
	}
}

// ConfigSource is one layer of option fragments
type ConfigSource struct {
	Type SourceType
	Data Payload
}

// PrecedenceManager layers option sources. An option is taken whole from
// the highest priority source that provides it; fragments are never merged
// across sources.
type PrecedenceManager struct {
	sources []ConfigSource
}

// NewPrecedenceManager creates a new precedence manager
func NewPrecedenceManager() *PrecedenceManager {
	return &PrecedenceManager{}
}

// AddSource adds a layer of option fragments
func (pm *PrecedenceManager) AddSource(sourceType SourceType, data Payload) {
	pm.sources = append(pm.sources, ConfigSource{Type: sourceType, Data: data})
}

// Resolve returns the winning fragments per option and the source each came from.
func (pm *PrecedenceManager) Resolve() (Payload, map[string]SourceType) {
	result := make(Payload)
	origin := make(map[string]SourceType)

	// Process sources in priority order (lowest to highest)
	for priority := SourceTypeDefaults; priority <= SourceTypeFlags; priority++ {
		for _, source := range pm.sources {
			if source.Type != priority {
				continue
			}
			for name, fragments := range source.Data {
				result[name] = fragments
				origin[name] = source.Type
			}
		}
	}
	return result, origin
}

// DebugPrecedence describes which source supplied each option.
func (pm *PrecedenceManager) DebugPrecedence() string {
	payload, origin := pm.Resolve()
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s from %s: %s\n", name, origin[name], strings.Join(payload[name], " "))
	}
	return b.String()
}

// loadProfile reads option fragments from a JSON file shaped like
// {"-rate": ["threads=8"], "-node": ["10.0.0.1,10.0.0.2"]}.
func loadProfile(filename string) (Payload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".json" {
		return nil, fmt.Errorf("unsupported profile format: %s (only .json supported)", ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var profile Payload
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", filename, err)
	}
	for name := range profile {
		if !isOption(name) {
			return nil, fmt.Errorf("invalid profile %s: %q is not an option name", filename, name)
		}
	}
	return profile, nil
}

// EnvVar returns the environment variable consulted for an option:
// "-rate" reads CSTRESS_RATE.
func EnvVar(optionName string) string {
	name := strings.TrimPrefix(optionName, "-")
	name = strings.ReplaceAll(name, "-", "_")
	return "CSTRESS_" + strings.ToUpper(name)
}

// loadFromEnv collects fragments from the environment. Values are split on
// whitespace, so CSTRESS_RATE="threads=8 throttle=10/s" yields two fragments.
func loadFromEnv(names []string, lookup func(string) (string, bool)) Payload {
	data := make(Payload)
	for _, name := range names {
		if value, ok := lookup(EnvVar(name)); ok && strings.TrimSpace(value) != "" {
			data[name] = strings.Fields(value)
		}
	}
	return data
}
