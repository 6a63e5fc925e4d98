// Package option defines the stress tool's command line options on top of the
// settings/param grammar engine. Each option declares its parameters and usages,
// resolves a parse pass into a typed value and validates that value.
package option

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

// Descriptor lists an option for help output and dispatch.
type Descriptor struct {
	Name        string // e.g. "-rate"
	Description string
	WriteHelp   func(w io.Writer)
}

// Descriptors returns every option in the order help lists them.
func Descriptors() []Descriptor {
	return []Descriptor{
		{Name: NodeName, Description: NodeDescription, WriteHelp: WriteNodeHelp},
		{Name: RateName, Description: RateDescription, WriteHelp: WriteRateHelp},
		{Name: SchemaName, Description: SchemaDescription, WriteHelp: WriteSchemaHelp},
	}
}

// Lookup finds the descriptor of an option by name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

const (
	nodeTag        = "valid_node"
	consistencyTag = "valid_consistency"
	identifierTag  = "valid_identifier"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		if err := RegisterCustomValidators(v); err != nil {
			panic(err)
		}
		validate = v
	})
	return validate
}

// RegisterCustomValidators registers the tags used by resolved options.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation(nodeTag, validateNode); err != nil {
		return fmt.Errorf("failed to register node validator: %w", err)
	}
	if err := v.RegisterValidation(consistencyTag, validateConsistency); err != nil {
		return fmt.Errorf("failed to register consistency validator: %w", err)
	}
	if err := v.RegisterValidation(identifierTag, validateIdentifier); err != nil {
		return fmt.Errorf("failed to register identifier validator: %w", err)
	}
	return nil
}

// validateStruct runs the struct tags of a resolved option.
func validateStruct(option string, s any) error {
	if err := getValidator().Struct(s); err != nil {
		return fmt.Errorf("%s: invalid settings: %w", option, err)
	}
	return nil
}

// validateNode accepts a host name or IP, optionally followed by :port.
func validateNode(fl validator.FieldLevel) bool {
	node := fl.Field().String()
	if node == "" || strings.ContainsAny(node, " \t") {
		return false
	}

	host := node
	if h, port, err := net.SplitHostPort(node); err == nil {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
		host = h
	}
	if net.ParseIP(host) != nil {
		return true
	}
	return validHostname(host)
}

func validHostname(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				return false
			}
		}
	}
	return true
}

var consistencyLevels = map[string]bool{
	"ANY":          true,
	"ONE":          true,
	"TWO":          true,
	"THREE":        true,
	"QUORUM":       true,
	"ALL":          true,
	"LOCAL_QUORUM": true,
	"EACH_QUORUM":  true,
	"SERIAL":       true,
	"LOCAL_SERIAL": true,
	"LOCAL_ONE":    true,
}

// validateConsistency accepts CQL consistency level names in upper case.
func validateConsistency(fl validator.FieldLevel) bool {
	return consistencyLevels[fl.Field().String()]
}

// validateIdentifier accepts unquoted CQL names: letters, digits and underscores.
func validateIdentifier(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

// writeOptional prints an optional value the way settings output does.
func writeOptional[T any](w io.Writer, label string, v *T) {
	if v == nil {
		fmt.Fprintf(w, "  %s: none\n", label)
		return
	}
	fmt.Fprintf(w, "  %s: %v\n", label, *v)
}
