// Package network defines the declarative component graph the formulation
// blocks translate: nodes (buses, sources, sinks, converters) and the
// directed, attribute-carrying flows between them.
//
// A System is append-only while being declared and strictly read-only once
// formulation starts; blocks only ever derive views (incident inflows and
// outflows, shape-filtered flow subsets) from it.
//
// # Flows and shapes
//
// Every Flow connects two declared nodes and carries per-timestep normalized
// bounds, optional cost series and one of three "shapes" the blocks key on:
//
//   - plain      — fixed nominal capacity (or none), purely linear dispatch
//   - investment — capacity itself is a decision, sized by an InvestSpec
//   - non-convex — dispatch gated by a binary on/off status (NonConvexSpec)
//
// A fixed nominal capacity and an InvestSpec are mutually exclusive, as are
// an InvestSpec and a NonConvexSpec (capacity sizing of discretely operated
// flows is not formulated) and a Fix profile and a NonConvexSpec (a pinned
// dispatch leaves the status nothing to decide). Validate enforces all three
// plus the per-attribute invariants before any block runs.
//
// # Series conventions
//
// Time-indexed attributes are float64 slices of either length 1 (a constant
// broadcast over the horizon) or exactly the horizon / period-count length;
// At performs the broadcast-aware lookup. Optional scalars are pointers so
// that "unset" and "zero" stay distinguishable.
//
// Errors (sentinel, configuration — they abort formulation):
//
//	– ErrEmptyNodeID             node ID is the empty string.
//	– ErrDuplicateNode           node ID declared twice.
//	– ErrUnknownNode             flow endpoint or factor target not declared.
//	– ErrDuplicateFlow           second flow between the same ordered pair.
//	– ErrNotConverter            conversion factor on a non-converter node.
//	– ErrCapacityConflict        nominal capacity and InvestSpec both set.
//	– ErrInvestWithNonConvexOp   InvestSpec combined with NonConvexSpec.
//	– ErrMissingNominal          NonConvexSpec without a nominal capacity.
//	– ErrMissingLifetime         multi-period InvestSpec without a lifetime.
//	– ErrMissingInvestMaximum    non-convex InvestSpec without a maximum.
//	– ErrAgeExceedsLifetime      InvestSpec age beyond its lifetime.
//	– ErrUpDownTimeTooLong       min up/downtime beyond half the horizon.
//	– ErrSeriesLength            series length neither 1 nor the domain size.
package network
