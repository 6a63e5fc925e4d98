package option

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dzonerzy/go-cstress/settings/param"
)

const (
	SchemaName        = "-schema"
	SchemaDescription = "Replication settings, compression, compaction, etc."
)

// Schema is the resolved -schema option.
type Schema struct {
	Keyspace    string `validate:"required,max=48,valid_identifier"`
	Replication Replication
	Compaction  *Compaction // nil when not given
	Compression *string     // nil when not given
}

// Replication is the keyspace replication strategy. Options holds extra
// strategy parameters such as per datacenter factors; class and
// replication_factor come from Strategy and Factor and may not appear there.
type Replication struct {
	Strategy string            `validate:"required"`
	Factor   uint64            `validate:"gt=0"`
	Options  map[string]string `validate:"dive,keys,ne=class,ne=replication_factor,endkeys,required"`
}

// Compaction is the table compaction strategy.
type Compaction struct {
	Strategy *string
	Options  map[string]string
}

type schemaParams struct {
	parser       *param.Parser
	replication  *param.Multi
	replStrategy *param.Simple[string]
	replFactor   *param.Simple[uint64]
	keyspace     *param.Simple[string]
	compaction   *param.Multi
	compStrategy *param.Simple[string]
	compression  *param.Simple[string]
}

func newSchemaParams() *schemaParams {
	p := param.New(SchemaName)
	s := &schemaParams{parser: p}

	s.replStrategy = param.NewSimple("strategy=", param.String, "The replication strategy to use").Default("SimpleStrategy")
	s.replFactor = param.NewSimple("factor=", param.Uint, "The number of replicas").Default("1")
	s.replication = p.Multi("replication", "Define the replication strategy and any parameters",
		s.replStrategy, s.replFactor).AcceptArbitrary()

	s.keyspace = p.Text("keyspace=", "The keyspace name to use").Default("keyspace1")

	s.compStrategy = param.NewSimple("strategy=", param.String, "The compaction strategy to use")
	s.compaction = p.Multi("compaction", "Define the compaction strategy and any parameters",
		s.compStrategy).AcceptArbitrary()

	s.compression = p.Text("compression=", "Specify the compression to use for sstable, default:no compression")

	// Usage: -schema [replication(?)] [keyspace=?] [compaction(?)] [compression=?]
	p.Group(s.replication, s.keyspace, s.compaction, s.compression)
	return s
}

// ParseSchema resolves the fragments given after -schema.
func ParseSchema(fragments []string) (*Schema, error) {
	params := newSchemaParams()
	if _, err := params.parser.Parse(fragments); err != nil {
		return nil, err
	}
	schema := params.resolve()
	if err := validateStruct(SchemaName, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *schemaParams) resolve() *Schema {
	schema := &Schema{}
	schema.Keyspace, _ = s.keyspace.Get()

	schema.Replication.Strategy, _ = s.replStrategy.Get()
	schema.Replication.Factor, _ = s.replFactor.Get()
	schema.Replication.Options, _ = s.replication.Arbitrary()

	if s.compaction.SuppliedByUser() {
		c := &Compaction{}
		if v, ok := s.compStrategy.Get(); ok {
			c.Strategy = &v
		}
		c.Options, _ = s.compaction.Arbitrary()
		schema.Compaction = c
	}
	if v, ok := s.compression.Get(); ok {
		schema.Compression = &v
	}
	return schema
}

// KeyspaceCQL renders the CREATE KEYSPACE statement for the schema.
func (s *Schema) KeyspaceCQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE KEYSPACE IF NOT EXISTS %q WITH replication = {'class': %s, 'replication_factor': '%d'",
		s.Keyspace, cqlString(s.Replication.Strategy), s.Replication.Factor)
	for _, k := range sortedKeys(s.Replication.Options) {
		fmt.Fprintf(&b, ", %s: %s", cqlString(k), cqlString(s.Replication.Options[k]))
	}
	b.WriteString("}")
	return b.String()
}

// cqlString quotes s as a CQL string literal.
func cqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteSchemaHelp prints the usages and parameters of -schema.
func WriteSchemaHelp(w io.Writer) {
	newSchemaParams().parser.WriteHelp(w)
}

// WriteSettings prints the resolved option.
func (s *Schema) WriteSettings(w io.Writer) {
	fmt.Fprintln(w, "Schema:")
	fmt.Fprintf(w, "  Keyspace: %s\n", s.Keyspace)
	fmt.Fprintf(w, "  Replication Strategy: %s\n", s.Replication.Strategy)
	fmt.Fprintf(w, "  Replication Factor: %d\n", s.Replication.Factor)
	fmt.Fprintf(w, "  Replication Strategy Options: %s\n", formatOptions(s.Replication.Options))
	if s.Compaction != nil {
		writeOptional(w, "Table Compaction Strategy", s.Compaction.Strategy)
		fmt.Fprintf(w, "  Table Compaction Strategy Options: %s\n", formatOptions(s.Compaction.Options))
	}
	writeOptional(w, "Table Compression", s.Compression)
}

func formatOptions(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range sortedKeys(m) {
		parts = append(parts, k+"="+m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
