package graph

import (
	"fmt"

	"github.com/clausewise/backend/internal/util"
)

// Node categories. Clause nodes carry the clause category, variable nodes the
// variable category.
const (
	CategoryFinancial  = "financial"
	CategoryCovenant   = "covenant"
	CategoryDefinition = "definition"
	CategoryXref       = "xref"
)

const (
	defaultEdgeWeight = 1
	previewRunes      = 80
)

// Clause is the slice of a clause row the builder needs.
type Clause struct {
	ID       int64
	Category string
	Heading  string
	Body     string
}

// Variable is the slice of a bound variable row the builder needs.
type Variable struct {
	ID            int64
	ClauseID      int64
	Name          string
	Category      string
	Value         string
	Unit          string
	BaselineValue string
}

// Node is a graph node before persistence. Exactly one of ClauseID and
// VariableID is set.
type Node struct {
	Label        string
	Category     string
	ClauseID     *int64
	VariableID   *int64
	DisplayValue string
	HasDrift     bool
	HasWarning   bool
}

// Edge references nodes by their index in Arena.Nodes; row IDs only exist
// after the arena is persisted.
type Edge struct {
	Source int
	Target int
	Weight int32
}

// Arena is a fully built node/edge set, assembled in memory so a rebuild can
// be swapped into the store as a single transaction.
type Arena struct {
	Nodes []Node
	Edges []Edge
}

// Warned carries the has_warning flags of the previous graph so an externally
// supplied warning survives a rebuild.
type Warned struct {
	Clauses   map[int64]bool
	Variables map[int64]bool
}

// Build derives the ownership graph for a workspace: one node per clause, one
// node per bound variable, and one clause→variable edge per binding. Any
// richer cross-reference edges a previous graph carried are not reproduced;
// the graph simplifies to direct ownership edges.
func Build(clauses []Clause, variables []Variable, warned Warned) *Arena {
	arena := &Arena{
		Nodes: make([]Node, 0, len(clauses)+len(variables)),
		Edges: make([]Edge, 0, len(variables)),
	}

	clauseIdx := make(map[int64]int, len(clauses))
	for _, cl := range clauses {
		cl := cl
		clauseIdx[cl.ID] = len(arena.Nodes)
		arena.Nodes = append(arena.Nodes, Node{
			Label:        cl.Heading,
			Category:     cl.Category,
			ClauseID:     &cl.ID,
			DisplayValue: util.TruncatePreview(cl.Body, previewRunes),
			HasWarning:   warned.Clauses[cl.ID],
		})
	}

	for _, v := range variables {
		v := v
		src, ok := clauseIdx[v.ClauseID]
		if !ok {
			// Unbound variables have no owner node and cannot appear.
			continue
		}
		target := len(arena.Nodes)
		arena.Nodes = append(arena.Nodes, Node{
			Label:        v.Name,
			Category:     v.Category,
			VariableID:   &v.ID,
			DisplayValue: FormatValue(v.Value, v.Unit),
			HasDrift:     v.Value != v.BaselineValue,
			HasWarning:   warned.Variables[v.ID],
		})
		arena.Edges = append(arena.Edges, Edge{
			Source: src,
			Target: target,
			Weight: defaultEdgeWeight,
		})
	}

	return arena
}

// FormatValue renders a variable value with its unit for display.
func FormatValue(value, unit string) string {
	if unit == "" {
		return value
	}
	return fmt.Sprintf("%s %s", value, unit)
}
