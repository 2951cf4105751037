package network

import "fmt"

// System is the declared component graph. Declaration is append-only;
// formulation treats a System as immutable and only derives views from it.
//
// Iteration order of Flows, Buses and Converters follows declaration order,
// which keeps repeated formulations structurally identical.
type System struct {
	nodes     map[string]*Node
	nodeOrder []string

	flows     map[string]*Flow // keyed by Flow.Key()
	flowOrder []string
}

// NewSystem creates an empty System.
func NewSystem() *System {
	return &System{
		nodes: make(map[string]*Node),
		flows: make(map[string]*Flow),
	}
}

func (s *System) addNode(id string, kind NodeKind) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if _, ok := s.nodes[id]; ok {
		return fmt.Errorf("%q: %w", id, ErrDuplicateNode)
	}
	n := &Node{id: id, kind: kind}
	if kind == KindConverter {
		n.factors = make(map[string][]float64)
	}
	s.nodes[id] = n
	s.nodeOrder = append(s.nodeOrder, id)

	return nil
}

// AddBus declares a balancing node.
func (s *System) AddBus(id string) error { return s.addNode(id, KindBus) }

// AddSource declares an emitting-only node.
func (s *System) AddSource(id string) error { return s.addNode(id, KindSource) }

// AddSink declares an absorbing-only node.
func (s *System) AddSink(id string) error { return s.addNode(id, KindSink) }

// AddConverter declares a converting node; its conversion factors are set
// per incident endpoint via SetConversionFactor.
func (s *System) AddConverter(id string) error { return s.addNode(id, KindConverter) }

// SetConversionFactor attaches the efficiency series a converter applies to
// the flow exchanged with nodeID. The series follows the broadcast
// convention over the timestep horizon.
func (s *System) SetConversionFactor(converterID, nodeID string, series []float64) error {
	c, ok := s.nodes[converterID]
	if !ok {
		return fmt.Errorf("%q: %w", converterID, ErrUnknownNode)
	}
	if c.kind != KindConverter {
		return fmt.Errorf("%q: %w", converterID, ErrNotConverter)
	}
	if _, ok = s.nodes[nodeID]; !ok {
		return fmt.Errorf("%q: %w", nodeID, ErrUnknownNode)
	}
	c.factors[nodeID] = series

	return nil
}

// AddFlow attaches a directed flow between two declared nodes. The System
// takes ownership of f and fills in its endpoints.
func (s *System) AddFlow(from, to string, f *Flow) error {
	if _, ok := s.nodes[from]; !ok {
		return fmt.Errorf("%q: %w", from, ErrUnknownNode)
	}
	if _, ok := s.nodes[to]; !ok {
		return fmt.Errorf("%q: %w", to, ErrUnknownNode)
	}
	if f == nil {
		f = &Flow{}
	}
	f.From, f.To = from, to
	key := f.Key()
	if _, ok := s.flows[key]; ok {
		return fmt.Errorf("%s: %w", key, ErrDuplicateFlow)
	}
	s.flows[key] = f
	s.flowOrder = append(s.flowOrder, key)

	return nil
}

// Node returns the declared node with the given ID, if any.
func (s *System) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]

	return n, ok
}

// Flows returns all flows in declaration order.
func (s *System) Flows() []*Flow {
	out := make([]*Flow, 0, len(s.flowOrder))
	for _, key := range s.flowOrder {
		out = append(out, s.flows[key])
	}

	return out
}

// Flow returns the flow between the ordered pair (from, to), if any.
func (s *System) Flow(from, to string) (*Flow, bool) {
	f, ok := s.flows[from+"->"+to]

	return f, ok
}

// Inflows returns the flows targeting the given node, in declaration order.
func (s *System) Inflows(nodeID string) []*Flow {
	var out []*Flow
	for _, key := range s.flowOrder {
		if f := s.flows[key]; f.To == nodeID {
			out = append(out, f)
		}
	}

	return out
}

// Outflows returns the flows leaving the given node, in declaration order.
func (s *System) Outflows(nodeID string) []*Flow {
	var out []*Flow
	for _, key := range s.flowOrder {
		if f := s.flows[key]; f.From == nodeID {
			out = append(out, f)
		}
	}

	return out
}

// Buses returns the balancing nodes in declaration order.
func (s *System) Buses() []*Node { return s.nodesOfKind(KindBus) }

// Converters returns the converting nodes in declaration order.
func (s *System) Converters() []*Node { return s.nodesOfKind(KindConverter) }

func (s *System) nodesOfKind(kind NodeKind) []*Node {
	var out []*Node
	for _, id := range s.nodeOrder {
		if n := s.nodes[id]; n.kind == kind {
			out = append(out, n)
		}
	}

	return out
}
