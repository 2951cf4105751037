package model

import "sort"

// Term is one (coefficient, variable) pair of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

// LinExpr is a mutable linear expression: sum of terms plus a constant
// offset. The zero value is not usable; create with NewExpr.
type LinExpr struct {
	terms  map[VarID]float64
	offset float64
}

// NewExpr returns an empty linear expression.
func NewExpr() *LinExpr {
	return &LinExpr{terms: make(map[VarID]float64)}
}

// Add accumulates coef·v into the expression. Terms cancelling to exactly
// zero are dropped so structural comparisons stay clean.
func (e *LinExpr) Add(coef float64, v VarID) *LinExpr {
	c := e.terms[v] + coef
	if c == 0 {
		delete(e.terms, v)
	} else {
		e.terms[v] = c
	}

	return e
}

// AddConst accumulates a constant into the offset.
func (e *LinExpr) AddConst(c float64) *LinExpr {
	e.offset += c

	return e
}

// AddExpr accumulates every term and the offset of o into e.
func (e *LinExpr) AddExpr(o *LinExpr) *LinExpr {
	if o == nil {
		return e
	}
	for v, c := range o.terms {
		e.Add(c, v)
	}
	e.offset += o.offset

	return e
}

// Scale multiplies every coefficient and the offset by f.
func (e *LinExpr) Scale(f float64) *LinExpr {
	if f == 0 {
		e.terms = make(map[VarID]float64)
		e.offset = 0

		return e
	}
	for v := range e.terms {
		e.terms[v] *= f
	}
	e.offset *= f

	return e
}

// Clone returns an independent copy of the expression.
func (e *LinExpr) Clone() *LinExpr {
	c := NewExpr()
	c.AddExpr(e)

	return c
}

// Coef returns the coefficient of v (zero when absent).
func (e *LinExpr) Coef(v VarID) float64 { return e.terms[v] }

// Offset returns the constant part of the expression.
func (e *LinExpr) Offset() float64 { return e.offset }

// Len returns the number of nonzero terms.
func (e *LinExpr) Len() int { return len(e.terms) }

// IsZero reports whether the expression has no terms and no offset.
func (e *LinExpr) IsZero() bool { return len(e.terms) == 0 && e.offset == 0 }

// Terms returns the nonzero terms sorted by variable ID; iteration over a
// LinExpr is therefore deterministic.
func (e *LinExpr) Terms() []Term {
	out := make([]Term, 0, len(e.terms))
	for v, c := range e.terms {
		out = append(out, Term{Var: v, Coef: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })

	return out
}

// Eval computes the value of the expression under the given assignment.
func (e *LinExpr) Eval(value func(VarID) float64) float64 {
	total := e.offset
	for v, c := range e.terms {
		total += c * value(v)
	}

	return total
}
