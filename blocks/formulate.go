package blocks

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

// Formulate translates the declared system over the given timeline into one
// symbolic program: it validates the configuration, creates the shared
// dispatch variables, applies exactly the blocks the system needs and sums
// their cost expressions into the scalar objective.
//
// Formulation is a pure, one-shot translation: the system is never mutated,
// and formulating the same system twice yields structurally identical
// artifact collections. Configuration errors abort with no usable model.
func Formulate(sys *network.System, tl *timeline.Timeline, opts ...Option) (*model.Model, error) {
	if sys == nil {
		return nil, ErrNilSystem
	}
	if tl == nil {
		return nil, ErrNilTimeline
	}

	o := Options{Logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := sys.Validate(tl); err != nil {
		return nil, err
	}

	ctx := &Context{
		Model:        model.New(model.WithLogger(o.Logger)),
		System:       sys,
		Timeline:     tl,
		DiscountRate: o.DiscountRate,
		dispatch:     make(map[*network.Flow][]model.VarID),
	}
	if err := createDispatch(ctx); err != nil {
		return nil, err
	}

	var list []Block
	flows := sys.Flows()
	if len(flows) > 0 {
		list = append(list, &FlowBlock{flows: flows})
	}
	if invest := filter(flows, func(f *network.Flow) bool { return f.Invest != nil }); len(invest) > 0 {
		list = append(list, &InvestFlowBlock{flows: invest})
	}
	if ncv := filter(flows, func(f *network.Flow) bool { return f.NonConvex != nil }); len(ncv) > 0 {
		list = append(list, &NonConvexFlowBlock{flows: ncv})
	}
	if buses := sys.Buses(); len(buses) > 0 {
		list = append(list, &BusBlock{buses: buses})
	}
	if conv := sys.Converters(); len(conv) > 0 {
		list = append(list, &ConverterBlock{converters: conv})
	}

	for _, b := range list {
		if err := b.Build(ctx); err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Name(), err)
		}
	}
	// Cost expressions are summed after all blocks built; addition is
	// commutative, so block order never matters.
	for _, b := range list {
		costs, err := b.Costs(ctx)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Name(), err)
		}
		ctx.Model.AddCost(costs)
	}

	return ctx.Model, nil
}

// createDispatch creates the actual-flow-value variable per (flow, period,
// timestep). Bounds depend on the flow's shape: plain flows are bounded by
// their nominal capacity directly, investment flows stay unbounded above
// (the invest block restates bounds against total capacity), non-convex
// flows keep the static upper bound while the status constraints gate the
// lower one.
func createDispatch(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsDispatch)
	if err != nil {
		return err
	}

	var errOut error
	for _, f := range ctx.System.Flows() {
		vars := make([]model.VarID, ctx.Timeline.Len())
		ctx.Timeline.Each(func(p, t int) {
			if errOut != nil {
				return
			}
			lo, hi := dispatchBounds(f, t)
			name := "dispatch" + pt(f.Key(), p, t)
			vars[t], errOut = ns.Continuous(name, lo, hi)
		})
		if errOut != nil {
			return errOut
		}
		ctx.dispatch[f] = vars
	}

	return nil
}

func dispatchBounds(f *network.Flow, t int) (float64, float64) {
	switch {
	case f.Invest != nil:
		return 0, math.Inf(1)
	case f.Nominal == nil:
		return 0, math.Inf(1)
	case f.NonConvex != nil:
		return 0, f.MaxAt(t) * *f.Nominal
	case len(f.Fix) > 0:
		v := network.At(f.Fix, t) * *f.Nominal

		return v, v
	default:
		return f.MinAt(t) * *f.Nominal, f.MaxAt(t) * *f.Nominal
	}
}

func filter(flows []*network.Flow, keep func(*network.Flow) bool) []*network.Flow {
	var out []*network.Flow
	for _, f := range flows {
		if keep(f) {
			out = append(out, f)
		}
	}

	return out
}
