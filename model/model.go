package model

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors for artifact bookkeeping.
var (
	// ErrNamespaceClaimed indicates a block namespace was claimed twice.
	ErrNamespaceClaimed = errors.New("model: namespace already claimed")

	// ErrDuplicateArtifact indicates a variable or constraint name that
	// already exists in the model.
	ErrDuplicateArtifact = errors.New("model: duplicate artifact name")

	// ErrBadBounds indicates a lower bound above the upper bound.
	ErrBadBounds = errors.New("model: lower bound exceeds upper bound")

	// ErrNilExpr indicates a constraint without an expression.
	ErrNilExpr = errors.New("model: nil expression")
)

// VarID identifies a decision variable inside one Model.
type VarID int

// VarKind discriminates the variable domain.
type VarKind int

const (
	// Continuous variables range over [lower, upper].
	Continuous VarKind = iota

	// Binary variables take values in {0, 1}.
	Binary

	// Integer variables take integer values in [lower, upper].
	Integer
)

// Sense is the comparison direction of a constraint.
type Sense int

const (
	// LessEqual constrains expr <= rhs.
	LessEqual Sense = iota

	// GreaterEqual constrains expr >= rhs.
	GreaterEqual

	// Equal constrains expr == rhs.
	Equal
)

// String renders the sense as its algebraic operator.
func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	default:
		return "="
	}
}

// Var is one decision variable. Fields are immutable after creation except
// the solved value written back by the solve step.
type Var struct {
	id       VarID
	name     string
	kind     VarKind
	lo, hi   float64
	value    float64
	hasValue bool
}

// ID returns the variable's model-local identifier.
func (v *Var) ID() VarID { return v.id }

// Name returns the fully qualified artifact name.
func (v *Var) Name() string { return v.name }

// Kind returns the variable domain.
func (v *Var) Kind() VarKind { return v.kind }

// Lower returns the lower bound.
func (v *Var) Lower() float64 { return v.lo }

// Upper returns the upper bound.
func (v *Var) Upper() float64 { return v.hi }

// Value returns the solved value, if one has been written back.
func (v *Var) Value() (float64, bool) { return v.value, v.hasValue }

// Constraint is one emitted algebraic relation: expr sense rhs.
type Constraint struct {
	name  string
	expr  *LinExpr
	sense Sense
	rhs   float64
}

// Name returns the fully qualified artifact name.
func (c *Constraint) Name() string { return c.name }

// Expr returns the left-hand side expression. Callers must not mutate it.
func (c *Constraint) Expr() *LinExpr { return c.expr }

// Sense returns the comparison direction.
func (c *Constraint) Sense() Sense { return c.sense }

// RHS returns the right-hand side constant.
func (c *Constraint) RHS() float64 { return c.rhs }

// Warning is one suspicious-but-allowed usage observation.
type Warning struct {
	Code    string
	Message string
}

// CostComponent is a named share of the objective with its per-period
// breakdown, kept addressable for downstream aggregate-limit constraints.
type CostComponent struct {
	Total     *LinExpr
	PerPeriod []*LinExpr
}

// Model is the shared, append-only symbolic program all blocks write into.
type Model struct {
	vars     []*Var
	varIndex map[string]VarID

	cons     []*Constraint
	conIndex map[string]int

	claimed    map[string]bool
	objective  *LinExpr
	components map[string]*CostComponent
	warnings   []Warning
	logger     *slog.Logger
}

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger routes warning mirroring to the given slog logger instead of
// the default one.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// New creates an empty Model.
func New(opts ...Option) *Model {
	m := &Model{
		varIndex:   make(map[string]VarID),
		conIndex:   make(map[string]int),
		claimed:    make(map[string]bool),
		objective:  NewExpr(),
		components: make(map[string]*CostComponent),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Namespace claims the artifact namespace for one block. Claiming the same
// name twice returns ErrNamespaceClaimed; this is how the engine guarantees
// no two blocks write the same named artifact.
func (m *Model) Namespace(name string) (*Namespace, error) {
	if m.claimed[name] {
		return nil, fmt.Errorf("%q: %w", name, ErrNamespaceClaimed)
	}
	m.claimed[name] = true

	return &Namespace{m: m, prefix: name}, nil
}

func (m *Model) newVar(name string, kind VarKind, lo, hi float64) (VarID, error) {
	if lo > hi {
		return 0, fmt.Errorf("%q: %w", name, ErrBadBounds)
	}
	if _, ok := m.varIndex[name]; ok {
		return 0, fmt.Errorf("%q: %w", name, ErrDuplicateArtifact)
	}
	id := VarID(len(m.vars))
	m.vars = append(m.vars, &Var{id: id, name: name, kind: kind, lo: lo, hi: hi})
	m.varIndex[name] = id

	return id, nil
}

func (m *Model) newConstraint(name string, expr *LinExpr, sense Sense, rhs float64) error {
	if expr == nil {
		return fmt.Errorf("%q: %w", name, ErrNilExpr)
	}
	if _, ok := m.conIndex[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicateArtifact)
	}
	m.conIndex[name] = len(m.cons)
	m.cons = append(m.cons, &Constraint{name: name, expr: expr, sense: sense, rhs: rhs})

	return nil
}

// Var resolves a fully qualified variable name.
func (m *Model) Var(name string) (VarID, bool) {
	id, ok := m.varIndex[name]

	return id, ok
}

// VarByID returns the variable with the given ID.
func (m *Model) VarByID(id VarID) *Var { return m.vars[id] }

// Vars returns all variables in creation order. The slice is a copy, its
// elements are shared.
func (m *Model) Vars() []*Var {
	out := make([]*Var, len(m.vars))
	copy(out, m.vars)

	return out
}

// NumVars returns the number of variables created so far.
func (m *Model) NumVars() int { return len(m.vars) }

// Constraint resolves a fully qualified constraint name.
func (m *Model) Constraint(name string) (*Constraint, bool) {
	i, ok := m.conIndex[name]
	if !ok {
		return nil, false
	}

	return m.cons[i], true
}

// Constraints returns all constraints in creation order. The slice is a
// copy, its elements are shared.
func (m *Model) Constraints() []*Constraint {
	out := make([]*Constraint, len(m.cons))
	copy(out, m.cons)

	return out
}

// NumConstraints returns the number of constraints emitted so far.
func (m *Model) NumConstraints() int { return len(m.cons) }

// SetValue writes a solved value back onto a variable.
func (m *Model) SetValue(id VarID, v float64) {
	m.vars[id].value = v
	m.vars[id].hasValue = true
}

// Value returns the solved value of id, if any.
func (m *Model) Value(id VarID) (float64, bool) { return m.vars[id].Value() }

// AddCost accumulates a block's cost expression into the scalar objective.
// Addition is commutative; block instantiation order is irrelevant.
func (m *Model) AddCost(e *LinExpr) { m.objective.AddExpr(e) }

// Objective returns the accumulated scalar objective. Callers must not
// mutate it.
func (m *Model) Objective() *LinExpr { return m.objective }

// AddCostComponent registers a named, per-period addressable share of the
// objective (e.g. the investment costs a budget ceiling later references).
func (m *Model) AddCostComponent(name string, c *CostComponent) error {
	if _, ok := m.components[name]; ok {
		return fmt.Errorf("%q: %w", name, ErrDuplicateArtifact)
	}
	m.components[name] = c

	return nil
}

// CostComponent resolves a registered cost component by name.
func (m *Model) CostComponent(name string) (*CostComponent, bool) {
	c, ok := m.components[name]

	return c, ok
}

// Warnf records a suspicious-but-allowed usage warning and mirrors it to
// the logger. Warnings never interrupt formulation.
func (m *Model) Warnf(code, format string, args ...any) {
	w := Warning{Code: code, Message: fmt.Sprintf(format, args...)}
	m.warnings = append(m.warnings, w)
	m.logger.Warn(w.Message, slog.String("code", w.Code))
}

// Warnings returns the collected warnings in emission order.
func (m *Model) Warnings() []Warning {
	out := make([]Warning, len(m.warnings))
	copy(out, m.warnings)

	return out
}

// Namespace is a block's private window onto the Model: every artifact it
// creates is prefixed with the block name and checked for uniqueness.
type Namespace struct {
	m      *Model
	prefix string
}

func (ns *Namespace) qualify(name string) string { return ns.prefix + "." + name }

// Continuous creates a continuous variable bounded by [lo, hi].
func (ns *Namespace) Continuous(name string, lo, hi float64) (VarID, error) {
	return ns.m.newVar(ns.qualify(name), Continuous, lo, hi)
}

// Binary creates a {0,1} variable.
func (ns *Namespace) Binary(name string) (VarID, error) {
	return ns.m.newVar(ns.qualify(name), Binary, 0, 1)
}

// Integer creates an integer variable bounded by [lo, hi].
func (ns *Namespace) Integer(name string, lo, hi float64) (VarID, error) {
	return ns.m.newVar(ns.qualify(name), Integer, lo, hi)
}

// Constrain emits the constraint expr sense rhs under the namespace.
func (ns *Namespace) Constrain(name string, expr *LinExpr, sense Sense, rhs float64) error {
	return ns.m.newConstraint(ns.qualify(name), expr, sense, rhs)
}
