// Package blocks is the formulation engine: it translates a declared
// network.System over a timeline.Timeline into the variables, constraints
// and objective of a linear / mixed-integer program.
//
// # Blocks
//
// Each structural pattern has one block. A block receives the shared
// Context (model handle, system, timeline, discount rate), claims its own
// artifact namespace, and emits algebra only for the flow subset matching
// its shape:
//
//   - FlowBlock          — plain flows: full-load-time aggregates, ramp
//     (gradient) limiting, integer dispatch; variable and gradient costs.
//   - InvestFlowBlock    — investment-sized flows: invest / total / old
//     capacity accounting across periods with lifetime-based
//     decommissioning, capacity-parametrized dispatch bounds, annuity-based
//     investment costs.
//   - NonConvexFlowBlock — on/off gated flows: binary status, startup /
//     shutdown transitions, minimum up/down times, transition and activity
//     costs.
//   - BusBlock           — per-bus, per-timestep conservation of flows.
//   - ConverterBlock     — linear efficiency relation between every input
//     and output of a converter.
//
// Formulate inspects each flow's shape, instantiates exactly the blocks the
// system needs, applies them sequentially against one shared Model and sums
// their cost expressions into the scalar objective. Blocks that were never
// instantiated contribute zero; the sum is order-independent.
//
// Cross-flow caps (joint capacity ceilings, per-period expansion limits,
// weighted resource budgets, capex budgets) attach after formulation via a
// Limiter.
//
// # Algebra emitted per block
//
// The algebra follows the standard capacity-expansion formulation. The
// investment accounting per flow and period p is
//
//	total(0) = invest(0) + existing
//	total(p) = total(p-1) + invest(p) - old(p)      p > 0
//
// where old splits into endogenous expiry (invest(p_comm) once the
// commissioning period's lifetime has elapsed) and exogenous expiry (the
// pre-existing capacity, decommissioned exactly once when age plus elapsed
// years reaches the lifetime). Single-period models never create
// decommissioning artifacts.
//
// Minimum up/down times use the interior-window policy: the sliding-window
// inequality applies only to timesteps at least max(uptime, downtime) away
// from both horizon ends; outside that window the status is pinned to the
// initial status.
//
// # Errors and warnings
//
// Configuration errors (network sentinels plus ErrMissingConversionFactor
// here) abort formulation; no partial model is returned. An investment flow
// without an explicit interest rate is allowed: the model discount rate is
// substituted and a "default_interest" warning is recorded on the Model.
// Numerically unsatisfiable bounds are NOT detected here — infeasibility is
// a solver outcome.
//
// Example usage:
//
//	m, err := blocks.Formulate(sys, tl, blocks.WithDiscountRate(0.02))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(m.NumVars(), m.NumConstraints())
package blocks
