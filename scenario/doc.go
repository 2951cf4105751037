// Package scenario loads a complete study from YAML: the planning horizon,
// the node topology, every flow with its shape, and the discount rate. The
// loaded scenario formulates directly:
//
//	sc, err := scenario.LoadFile("study.yaml")
//	if err != nil { ... }
//	m, err := sc.Formulate()
//
// Series-valued fields accept a scalar (held constant over the domain) or a
// list with one entry per timestep, period or year:
//
//	variable_costs: 30        # flat price
//	fix: [0.1, 0.4, 0.8]      # per-timestep profile
//
// Unknown keys are rejected, so typos fail loudly instead of silently
// dropping an attribute.
package scenario
