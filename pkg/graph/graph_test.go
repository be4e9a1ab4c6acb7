package graph

import "testing"

func TestBuildDerivesOwnershipGraph(t *testing.T) {
	t.Parallel()

	clauses := []Clause{
		{ID: 1, Category: CategoryFinancial, Heading: "Margin", Body: "Margin of 2.50% per annum"},
		{ID: 2, Category: CategoryCovenant, Heading: "Leverage Ratio", Body: "Shall not exceed 4.00x"},
	}
	variables := []Variable{
		{ID: 10, ClauseID: 1, Name: "margin", Category: CategoryFinancial, Value: "250", Unit: "bps", BaselineValue: "250"},
		{ID: 11, ClauseID: 2, Name: "leverage_max", Category: CategoryCovenant, Value: "4.25", Unit: "x", BaselineValue: "4.00"},
		{ID: 12, ClauseID: 2, Name: "test_period", Category: CategoryCovenant, Value: "12", Unit: "months", BaselineValue: "12"},
	}

	arena := Build(clauses, variables, Warned{})

	if got, want := len(arena.Nodes), len(clauses)+len(variables); got != want {
		t.Fatalf("node count: got %d, want %d", got, want)
	}
	if got, want := len(arena.Edges), len(variables); got != want {
		t.Fatalf("edge count: got %d, want %d", got, want)
	}

	// Every edge must run clause → variable with the default weight.
	for _, e := range arena.Edges {
		src := arena.Nodes[e.Source]
		tgt := arena.Nodes[e.Target]
		if src.ClauseID == nil || tgt.VariableID == nil {
			t.Fatalf("edge %d→%d is not clause→variable", e.Source, e.Target)
		}
		if e.Weight != 1 {
			t.Fatalf("edge weight: got %d, want 1", e.Weight)
		}
	}
}

func TestBuildFlagsDriftFromBaseline(t *testing.T) {
	t.Parallel()

	clauses := []Clause{{ID: 1, Category: CategoryFinancial, Heading: "Margin", Body: "x"}}
	variables := []Variable{
		{ID: 10, ClauseID: 1, Name: "margin", Category: CategoryFinancial, Value: "275", BaselineValue: "250"},
		{ID: 11, ClauseID: 1, Name: "floor", Category: CategoryFinancial, Value: "0", BaselineValue: "0"},
	}

	arena := Build(clauses, variables, Warned{})

	var drifted, clean *Node
	for i := range arena.Nodes {
		n := &arena.Nodes[i]
		if n.VariableID == nil {
			continue
		}
		switch *n.VariableID {
		case 10:
			drifted = n
		case 11:
			clean = n
		}
	}
	if drifted == nil || clean == nil {
		t.Fatal("missing variable nodes")
	}
	if !drifted.HasDrift {
		t.Fatal("value != baseline must set HasDrift")
	}
	if clean.HasDrift {
		t.Fatal("value == baseline must not set HasDrift")
	}
}

func TestBuildPreservesWarningsAndNodeRefs(t *testing.T) {
	t.Parallel()

	clauses := []Clause{{ID: 1, Category: CategoryDefinition, Heading: "EBITDA", Body: "x"}}
	variables := []Variable{{ID: 10, ClauseID: 1, Name: "ebitda_floor", Category: CategoryFinancial, Value: "1", BaselineValue: "1"}}

	arena := Build(clauses, variables, Warned{
		Clauses:   map[int64]bool{1: true},
		Variables: map[int64]bool{10: true},
	})

	for _, n := range arena.Nodes {
		if !n.HasWarning {
			t.Fatalf("node %q lost its warning flag", n.Label)
		}
		if (n.ClauseID == nil) == (n.VariableID == nil) {
			t.Fatalf("node %q must reference exactly one of clause/variable", n.Label)
		}
	}
}

func TestBuildSkipsVariablesWithoutOwnerClause(t *testing.T) {
	t.Parallel()

	variables := []Variable{{ID: 10, ClauseID: 99, Name: "orphan", Value: "1", BaselineValue: "1"}}

	arena := Build(nil, variables, Warned{})
	if len(arena.Nodes) != 0 || len(arena.Edges) != 0 {
		t.Fatalf("orphan variable produced nodes=%d edges=%d", len(arena.Nodes), len(arena.Edges))
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	if got := FormatValue("250", "bps"); got != "250 bps" {
		t.Fatalf("got %q, want %q", got, "250 bps")
	}
	if got := FormatValue("4.25", ""); got != "4.25" {
		t.Fatalf("got %q, want %q", got, "4.25")
	}
}
