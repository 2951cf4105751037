package solve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/katalvlaran/enflow/model"
)

// Sentinel errors returned by the in-process backend.
var (
	// ErrIntegerModel indicates a model with binary or integer variables
	// handed to the pure-LP backend without relaxation.
	ErrIntegerModel = errors.New("solve: model has integer variables, relax or export instead")

	// ErrInfeasible indicates no point satisfies all constraints.
	ErrInfeasible = errors.New("solve: model is infeasible")

	// ErrUnbounded indicates the objective can decrease without limit.
	ErrUnbounded = errors.New("solve: model is unbounded")
)

// Result reports a solved program. Variable values live in the model.
type Result struct {
	// Objective is the optimal objective value, constant offset included.
	Objective float64
}

// Options configures Simplex.
type Options struct {
	// Tolerance is the simplex pivot tolerance. Default 1e-10.
	Tolerance float64

	// Relax drops integrality and solves the LP relaxation of a
	// mixed-integer model. Default false.
	Relax bool
}

// Option mutates Options.
type Option func(*Options)

// WithTolerance sets the simplex pivot tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) { o.Tolerance = tol }
}

// WithRelaxation solves the LP relaxation of a mixed-integer model instead
// of rejecting it.
func WithRelaxation() Option {
	return func(o *Options) { o.Relax = true }
}

// Simplex solves the model as a pure linear program: the general form is
// converted to standard form and handed to gonum's simplex method, and the
// optimal point is written back into the model via SetValue.
func Simplex(m *model.Model, opts ...Option) (*Result, error) {
	o := Options{Tolerance: 1e-10}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.Relax {
		for _, v := range m.Vars() {
			if v.Kind() != model.Continuous {
				return nil, fmt.Errorf("%s: %w", v.Name(), ErrIntegerModel)
			}
		}
	}

	c, g, h, a, b := generalForm(m)
	if len(h) == 0 && len(b) == 0 {
		// Nothing constrains the variables: any cost direction escapes.
		for _, ci := range c {
			if ci != 0 {
				return nil, ErrUnbounded
			}
		}
		for _, v := range m.Vars() {
			m.SetValue(v.ID(), 0)
		}

		return &Result{Objective: m.Objective().Offset()}, nil
	}
	cNew, aNew, bNew := lp.Convert(c, g, h, a, b)

	_, x, err := lp.Simplex(cNew, aNew, bNew, o.Tolerance, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return nil, ErrUnbounded
	case err != nil:
		return nil, fmt.Errorf("solve: %w", err)
	}

	// Convert splits every variable into a positive and a negative part.
	n := m.NumVars()
	obj := m.Objective().Offset()
	for i := 0; i < n; i++ {
		v := x[i] - x[n+i]
		m.SetValue(model.VarID(i), v)
		obj += c[i] * v
	}

	return &Result{Objective: obj}, nil
}

// generalForm assembles minimize cᵀx s.t. Gx <= h, Ax = b from the model.
// Senses are normalized to <=, constant expression offsets move to the
// right-hand side and finite variable bounds become inequality rows.
func generalForm(m *model.Model) (c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) {
	n := m.NumVars()

	c = make([]float64, n)
	for _, term := range m.Objective().Terms() {
		c[int(term.Var)] = term.Coef
	}

	var ineqRows, eqRows [][]float64
	var ineqRHS, eqRHS []float64

	row := func(e *model.LinExpr, scale float64) []float64 {
		r := make([]float64, n)
		for _, term := range e.Terms() {
			r[int(term.Var)] = scale * term.Coef
		}

		return r
	}

	for _, con := range m.Constraints() {
		rhs := con.RHS() - con.Expr().Offset()
		switch con.Sense() {
		case model.LessEqual:
			ineqRows = append(ineqRows, row(con.Expr(), 1))
			ineqRHS = append(ineqRHS, rhs)
		case model.GreaterEqual:
			ineqRows = append(ineqRows, row(con.Expr(), -1))
			ineqRHS = append(ineqRHS, -rhs)
		case model.Equal:
			eqRows = append(eqRows, row(con.Expr(), 1))
			eqRHS = append(eqRHS, rhs)
		}
	}

	for _, v := range m.Vars() {
		i := int(v.ID())
		if !math.IsInf(v.Upper(), 1) {
			r := make([]float64, n)
			r[i] = 1
			ineqRows = append(ineqRows, r)
			ineqRHS = append(ineqRHS, v.Upper())
		}
		if !math.IsInf(v.Lower(), -1) {
			r := make([]float64, n)
			r[i] = -1
			ineqRows = append(ineqRows, r)
			ineqRHS = append(ineqRHS, -v.Lower())
		}
	}

	if len(ineqRows) > 0 {
		g, h = dense(ineqRows, n), ineqRHS
	}
	if len(eqRows) > 0 {
		a, b = dense(eqRows, n), eqRHS
	}

	return c, g, h, a, b
}

func dense(rows [][]float64, n int) *mat.Dense {
	d := mat.NewDense(len(rows), n, nil)
	for i, r := range rows {
		d.SetRow(i, r)
	}

	return d
}
