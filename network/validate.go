package network

import (
	"fmt"
	"math"
)

// horizonView is the subset of timeline.Timeline the validators need; it
// keeps the package decoupled from the concrete index type in tests.
type horizonView interface {
	Len() int
	Periods() int
	MultiPeriod() bool
}

// Validate checks every configuration invariant the formulation engine
// relies on against the given horizon. The first violation is returned,
// wrapped with the offending flow's identity; a valid System is safe to
// formulate without further attribute checks.
//
// Conversion-factor completeness is deliberately not checked here: the
// converter block raises it at lookup so the error names the exact
// (node, flow) pair.
func (s *System) Validate(tl horizonView) error {
	for _, key := range s.flowOrder {
		if err := s.validateFlow(s.flows[key], tl); err != nil {
			return err
		}
	}

	return nil
}

func (s *System) validateFlow(f *Flow, tl horizonView) error {
	steps, periods := tl.Len(), tl.Periods()

	// Shape exclusivity.
	if f.Nominal != nil && f.Invest != nil {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrCapacityConflict)
	}
	if f.Invest != nil && f.NonConvex != nil {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrInvestWithNonConvexOp)
	}
	if f.NonConvex != nil && f.Nominal == nil {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrMissingNominal)
	}
	if f.NonConvex != nil && len(f.Fix) > 0 {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrFixWithNonConvexOp)
	}

	// Timestep-indexed series.
	for name, series := range map[string][]float64{
		"min":            f.Min,
		"max":            f.Max,
		"fix":            f.Fix,
		"variable_costs": f.VariableCosts,
	} {
		if !seriesLenOK(series, steps) {
			return fmt.Errorf("flow %s attribute %s: %w", f.Key(), name, ErrSeriesLength)
		}
	}
	for name, g := range map[string]*Gradient{
		"positive_gradient": f.PositiveGradient,
		"negative_gradient": f.NegativeGradient,
	} {
		if g != nil && !seriesLenOK(g.Limit, steps) {
			return fmt.Errorf("flow %s attribute %s: %w", f.Key(), name, ErrSeriesLength)
		}
	}

	if f.Invest != nil {
		if err := validateInvest(f, tl, periods); err != nil {
			return err
		}
	}
	if f.NonConvex != nil {
		if err := validateNonConvex(f, steps); err != nil {
			return err
		}
	}

	return nil
}

func validateInvest(f *Flow, tl horizonView, periods int) error {
	inv := f.Invest
	if tl.MultiPeriod() && inv.Lifetime == 0 {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrMissingLifetime)
	}
	if inv.Age > inv.Lifetime {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrAgeExceedsLifetime)
	}
	if inv.NonConvex && !finiteMaximum(inv.Maximum) {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrMissingInvestMaximum)
	}
	for name, series := range map[string][]float64{
		"minimum":  inv.Minimum,
		"maximum":  inv.Maximum,
		"ep_costs": inv.EPCosts,
		"offset":   inv.Offset,
	} {
		if !seriesLenOK(series, periods) {
			return fmt.Errorf("flow %s investment attribute %s: %w", f.Key(), name, ErrSeriesLength)
		}
	}

	return nil
}

func validateNonConvex(f *Flow, steps int) error {
	nc := f.NonConvex
	if 2*nc.MaxUpDown() > steps {
		return fmt.Errorf("flow %s: %w", f.Key(), ErrUpDownTimeTooLong)
	}
	for name, series := range map[string][]float64{
		"startup_costs":  nc.StartupCosts,
		"shutdown_costs": nc.ShutdownCosts,
		"activity_costs": nc.ActivityCosts,
	} {
		if !seriesLenOK(series, steps) {
			return fmt.Errorf("flow %s non-convex attribute %s: %w", f.Key(), name, ErrSeriesLength)
		}
	}

	return nil
}

func finiteMaximum(s []float64) bool {
	if len(s) == 0 {
		return false
	}
	for _, v := range s {
		if math.IsInf(v, 1) {
			return false
		}
	}

	return true
}
