package option

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dzonerzy/go-cstress/settings/param"
)

const (
	NodeName        = "-node"
	NodeDescription = "Nodes to connect to"
)

// Node is the resolved -node option.
type Node struct {
	Nodes      []string `validate:"required,min=1,dive,valid_node"`
	Whitelist  bool
	Datacenter *string // preferred datacenter, nil when not given
}

type nodeParams struct {
	parser     *param.Parser
	datacenter *param.Simple[string]
	whitelist  *param.Simple[bool]
	file       *param.Simple[string]
	nodes      *param.Simple[[]string]
}

func newNodeParams() *nodeParams {
	p := param.New(NodeName)
	n := &nodeParams{
		parser:     p,
		datacenter: p.Text("datacenter=", "Preferred datacenter for the default load balancing policy"),
		whitelist:  p.Flag("whitelist", "Limit communications to the provided nodes"),
		file:       p.Text("file=", "Node file (one per line)"),
		// The bare list matches any fragment, so it is declared last.
		nodes: p.List("", "comma delimited list of nodes").Default("localhost"),
	}
	// Usage: -node [datacenter=?] [whitelist] []
	//  OR
	// Usage: -node [datacenter=?] [whitelist] [file=?]
	p.Group(n.datacenter, n.whitelist, n.nodes)
	p.Group(n.datacenter, n.whitelist, n.file)
	return n
}

// ParseNode resolves the fragments given after -node.
func ParseNode(fragments []string) (*Node, error) {
	params := newNodeParams()
	if _, err := params.parser.Parse(fragments); err != nil {
		return nil, err
	}
	node, err := params.resolve()
	if err != nil {
		return nil, err
	}
	if err := validateStruct(NodeName, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (n *nodeParams) resolve() (*Node, error) {
	node := &Node{Whitelist: n.whitelist.SuppliedByUser()}
	if dc, ok := n.datacenter.Get(); ok {
		node.Datacenter = &dc
	}

	// Exactly one of the list and the file belongs to the chosen usage.
	if n.nodes.Satisfied() {
		node.Nodes, _ = n.nodes.Get()
		return node, nil
	}
	path, _ := n.file.Get()
	nodes, err := readNodesFile(path)
	if err != nil {
		return nil, err
	}
	node.Nodes = nodes
	return node, nil
}

// readNodesFile reads one node per line, skipping empty lines.
func readNodesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid nodes file: %w", NodeName, err)
	}
	defer f.Close()

	var nodes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			nodes = append(nodes, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: invalid nodes file: %w", NodeName, err)
	}
	return nodes, nil
}

// WriteNodeHelp prints the usages and parameters of -node.
func WriteNodeHelp(w io.Writer) {
	newNodeParams().parser.WriteHelp(w)
}

// WriteSettings prints the resolved option.
func (n *Node) WriteSettings(w io.Writer) {
	fmt.Fprintln(w, "Node:")
	fmt.Fprintf(w, "  Nodes: %v\n", n.Nodes)
	fmt.Fprintf(w, "  Is White List: %t\n", n.Whitelist)
	writeOptional(w, "Datacenter", n.Datacenter)
}
