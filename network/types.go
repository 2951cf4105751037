package network

import "errors"

// Sentinel errors for system declaration and configuration validation.
var (
	// ErrEmptyNodeID indicates a node was declared with an empty ID.
	ErrEmptyNodeID = errors.New("network: node ID is empty")

	// ErrDuplicateNode indicates a node ID was declared twice.
	ErrDuplicateNode = errors.New("network: duplicate node ID")

	// ErrUnknownNode indicates a flow endpoint or conversion-factor target
	// that was never declared.
	ErrUnknownNode = errors.New("network: unknown node")

	// ErrDuplicateFlow indicates a second flow between the same ordered
	// (source, target) pair.
	ErrDuplicateFlow = errors.New("network: duplicate flow")

	// ErrNotConverter indicates a conversion factor set on a node that is
	// not a converter.
	ErrNotConverter = errors.New("network: node is not a converter")

	// ErrCapacityConflict indicates a flow carrying both a fixed nominal
	// capacity and an investment specification.
	ErrCapacityConflict = errors.New("network: nominal capacity and investment are mutually exclusive")

	// ErrInvestWithNonConvexOp indicates a flow combining investment sizing
	// with non-convex (on/off) operation; this combination is not
	// formulated.
	ErrInvestWithNonConvexOp = errors.New("network: investment sizing of a non-convex flow is not supported")

	// ErrMissingNominal indicates a non-convex flow without the nominal
	// capacity its status constraints scale against.
	ErrMissingNominal = errors.New("network: non-convex flow requires a nominal capacity")

	// ErrFixWithNonConvexOp indicates a flow combining a fixed dispatch
	// profile with non-convex (on/off) operation; a pinned dispatch leaves
	// the status no decision to make.
	ErrFixWithNonConvexOp = errors.New("network: fixed profile on a non-convex flow is not supported")

	// ErrMissingLifetime indicates an investment flow without a lifetime in
	// a model spanning more than one period.
	ErrMissingLifetime = errors.New("network: investment flow requires a lifetime in a multi-period model")

	// ErrMissingInvestMaximum indicates a non-convex investment without the
	// finite per-period maximum its big-M gating needs.
	ErrMissingInvestMaximum = errors.New("network: non-convex investment requires a per-period maximum")

	// ErrAgeExceedsLifetime indicates existing capacity declared older than
	// its own lifetime.
	ErrAgeExceedsLifetime = errors.New("network: age exceeds lifetime")

	// ErrUpDownTimeTooLong indicates a minimum up/downtime longer than half
	// the timestep horizon; the interior-window policy is then undefined.
	ErrUpDownTimeTooLong = errors.New("network: minimum up/downtime exceeds half the horizon")

	// ErrSeriesLength indicates a time or period series whose length is
	// neither 1 (constant) nor the size of its domain.
	ErrSeriesLength = errors.New("network: bad series length")
)

// NodeKind discriminates the structural role of a node.
type NodeKind int

const (
	// KindBus is a balancing point: inflows must equal outflows per slice.
	KindBus NodeKind = iota

	// KindSource only emits flows; it is not balanced.
	KindSource

	// KindSink only absorbs flows; it is not balanced.
	KindSink

	// KindConverter couples its inputs and outputs through a linear
	// efficiency relation instead of a balance.
	KindConverter
)

// Node is a declared network component. Nodes are created through the
// System's Add* methods, never directly.
type Node struct {
	id      string
	kind    NodeKind
	factors map[string][]float64 // converter only: other endpoint ID -> series
}

// ID returns the unique node identifier.
func (n *Node) ID() string { return n.id }

// Kind returns the structural role of the node.
func (n *Node) Kind() NodeKind { return n.kind }

// Factor returns the conversion-factor series a converter holds for the flow
// towards or from the node with the given ID. The boolean reports presence;
// absence is a configuration error surfaced by the converter block.
func (n *Node) Factor(nodeID string) ([]float64, bool) {
	s, ok := n.factors[nodeID]

	return s, ok
}

// At performs the broadcast-aware series lookup: a length-1 series is a
// constant over its whole domain and an empty series reads as zero.
func At(s []float64, i int) float64 {
	switch len(s) {
	case 0:
		return 0
	case 1:
		return s[0]
	}

	return s[i]
}

// seriesLenOK reports whether a series fits a domain of size n under the
// broadcast convention. Empty means "unset" and is always acceptable.
func seriesLenOK(s []float64, n int) bool {
	return len(s) == 0 || len(s) == 1 || len(s) == n
}
