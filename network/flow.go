package network

// Gradient bounds how fast a flow may change between consecutive timesteps,
// and what each unit of change costs.
type Gradient struct {
	// Limit is the per-timestep ramp limit, normalized to capacity.
	Limit []float64

	// Costs is the price per unit of gradient.
	Costs float64
}

// InvestSpec turns a flow's capacity into a decision variable.
//
// Per-period series (Minimum, Maximum, EPCosts, Offset) follow the broadcast
// convention over the period count; FixedCosts is indexed by year offset.
type InvestSpec struct {
	// Minimum and Maximum bound the invest decision per period. A nil
	// Maximum means unbounded, which is only valid for convex investments.
	Minimum []float64
	Maximum []float64

	// Existing is exogenous capacity already installed before period 0.
	Existing float64

	// Lifetime is the number of years an investment stays installed.
	// Required whenever the model spans more than one period.
	Lifetime int

	// Age is how many years of the existing capacity's lifetime have
	// already elapsed before the horizon starts.
	Age int

	// EPCosts is the equivalent periodical (marginal) cost of capacity.
	EPCosts []float64

	// Offset is the one-off cost charged whenever the binary investment
	// decision is taken; only meaningful with NonConvex.
	Offset []float64

	// FixedCosts is a per-year cost stream charged on installed capacity,
	// indexed by year offset from the horizon start.
	FixedCosts []float64

	// OverallMaximum caps the total installed capacity in every period;
	// OverallMinimum binds only in the last period.
	OverallMaximum *float64
	OverallMinimum *float64

	// InterestRate feeds the annuity. Zero means "not specified": the
	// model discount rate is substituted and a warning is recorded.
	InterestRate float64

	// NonConvex gates the invest amount behind a binary decision with
	// min/max big-M linking instead of plain bounds.
	NonConvex bool
}

// NonConvexSpec gates a flow's dispatch behind a binary on/off status.
type NonConvexSpec struct {
	// InitialStatus is the on/off state before the first timestep (0 or 1).
	InitialStatus int

	// StartupCosts and ShutdownCosts price each status transition; setting
	// either creates the corresponding transition binaries.
	StartupCosts  []float64
	ShutdownCosts []float64

	// ActivityCosts price every timestep the status is on.
	ActivityCosts []float64

	// MaximumStartups and MaximumShutdowns cap the number of transitions
	// over the whole horizon.
	MaximumStartups  *int
	MaximumShutdowns *int

	// MinimumUptime and MinimumDowntime force the status to hold after a
	// transition, using the interior-window policy. Zero means unset.
	MinimumUptime   int
	MinimumDowntime int
}

// MaxUpDown returns the larger of the two minimum hold times; it delimits
// the interior window inside which the sliding constraints apply.
func (nc *NonConvexSpec) MaxUpDown() int {
	if nc.MinimumUptime > nc.MinimumDowntime {
		return nc.MinimumUptime
	}

	return nc.MinimumDowntime
}

// Flow is a directed, time-indexed quantity between two declared nodes.
// From and To are filled in by System.AddFlow; all other attributes are
// declared by the caller and never mutated afterwards.
type Flow struct {
	From string
	To   string

	// Nominal is the fixed capacity the normalized bounds scale against.
	// Nil means uncapped (plain flows) or decided by Invest.
	Nominal *float64

	// Min, Max and Fix are normalized per-timestep bounds; Fix overrides
	// both. Max defaults to 1, Min to 0.
	Min []float64
	Max []float64
	Fix []float64

	// FullLoadTimeMin / FullLoadTimeMax bound the duration-weighted sum of
	// the flow relative to its capacity (e.g. full-load hours).
	FullLoadTimeMin *float64
	FullLoadTimeMax *float64

	// VariableCosts is the per-timestep dispatch cost series.
	VariableCosts []float64

	// PositiveGradient / NegativeGradient limit and price ramping.
	PositiveGradient *Gradient
	NegativeGradient *Gradient

	// Integer forces the dispatch variable to integer values.
	Integer bool

	// Invest sizes the capacity; NonConvex gates the operation. See the
	// package doc for the shape exclusivity rules.
	Invest    *InvestSpec
	NonConvex *NonConvexSpec
}

// Key returns the canonical "from->to" identity used in artifact names.
func (f *Flow) Key() string { return f.From + "->" + f.To }

// IsPlain reports whether the flow has neither investment sizing nor
// non-convex operation.
func (f *Flow) IsPlain() bool { return f.Invest == nil && f.NonConvex == nil }

// MinAt, MaxAt and FixAt apply the bound defaults (Min 0, Max 1) on top of
// the broadcast convention.

// MinAt returns the normalized lower bound at timestep t.
func (f *Flow) MinAt(t int) float64 {
	if len(f.Min) == 0 {
		return 0
	}

	return At(f.Min, t)
}

// MaxAt returns the normalized upper bound at timestep t.
func (f *Flow) MaxAt(t int) float64 {
	if len(f.Max) == 0 {
		return 1
	}

	return At(f.Max, t)
}

// HasMin reports whether any timestep carries a nonzero lower bound;
// the investment block only emits min constraints for such flows.
func (f *Flow) HasMin() bool {
	for _, v := range f.Min {
		if v != 0 {
			return true
		}
	}

	return false
}
