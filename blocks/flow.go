package blocks

import (
	"math"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
)

// FlowBlock emits the algebra every flow needs regardless of shape
// (variable costs, integer dispatch) plus the aggregate and ramp
// constraints of flows with a fixed nominal capacity, non-convex ones
// included:
//
//	sum_t dispatch(t)·τ(t) <= full_load_time_max · nominal
//	sum_t dispatch(t)·τ(t) >= full_load_time_min · nominal
//	dispatch(t) - dispatch(t-1) <= positive_gradient(t)     t > 0
//	dispatch(t-1) - dispatch(t) <= negative_gradient(t)     t > 0
//
// with the gradient variables bounded by limit(t)·nominal. The first
// timestep of the horizon has no predecessor and is skipped.
type FlowBlock struct {
	flows []*network.Flow

	posGrad map[*network.Flow][]model.VarID
	negGrad map[*network.Flow][]model.VarID
}

// Name returns the block namespace.
func (b *FlowBlock) Name() string { return nsFlow }

// rampFlows returns the fixed-capacity flows whose gradient limits this
// block owns; investment flows restate ramping against total capacity
// instead.
func (b *FlowBlock) rampFlows() []*network.Flow {
	return filter(b.flows, func(f *network.Flow) bool {
		return f.Invest == nil && f.Nominal != nil &&
			(f.PositiveGradient != nil || f.NegativeGradient != nil)
	})
}

// Build emits gradient variables and coupling, full-load-time aggregates
// and integer dispatch mirrors.
func (b *FlowBlock) Build(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsFlow)
	if err != nil {
		return err
	}

	b.posGrad = make(map[*network.Flow][]model.VarID)
	b.negGrad = make(map[*network.Flow][]model.VarID)
	for _, f := range b.rampFlows() {
		if err = b.buildGradients(ctx, ns, f); err != nil {
			return err
		}
	}

	for _, f := range b.flows {
		if f.Invest != nil || f.Nominal == nil {
			continue
		}
		if err = b.buildFullLoadTime(ctx, ns, f); err != nil {
			return err
		}
	}

	for _, f := range b.flows {
		if !f.Integer {
			continue
		}
		if err = b.buildInteger(ctx, ns, f); err != nil {
			return err
		}
	}

	return nil
}

func (b *FlowBlock) buildGradients(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, nom := f.Key(), *f.Nominal
	if g := f.PositiveGradient; g != nil {
		vars := make([]model.VarID, ctx.Timeline.Len())
		for t := range vars {
			id, err := ns.Continuous("positive_gradient"+tOnly(key, t), 0, network.At(g.Limit, t)*nom)
			if err != nil {
				return err
			}
			vars[t] = id
		}
		b.posGrad[f] = vars
	}
	if g := f.NegativeGradient; g != nil {
		vars := make([]model.VarID, ctx.Timeline.Len())
		for t := range vars {
			id, err := ns.Continuous("negative_gradient"+tOnly(key, t), 0, network.At(g.Limit, t)*nom)
			if err != nil {
				return err
			}
			vars[t] = id
		}
		b.negGrad[f] = vars
	}

	var errOut error
	ctx.Timeline.Each(func(p, t int) {
		if errOut != nil || t == 0 {
			return // no previous value at the horizon start
		}
		if f.PositiveGradient != nil {
			expr := model.NewExpr().
				Add(1, ctx.Dispatch(f, t)).
				Add(-1, ctx.Dispatch(f, t-1)).
				Add(-1, b.posGrad[f][t])
			errOut = ns.Constrain("positive_gradient_constr"+pt(key, p, t), expr, model.LessEqual, 0)
		}
		if errOut == nil && f.NegativeGradient != nil {
			expr := model.NewExpr().
				Add(1, ctx.Dispatch(f, t-1)).
				Add(-1, ctx.Dispatch(f, t)).
				Add(-1, b.negGrad[f][t])
			errOut = ns.Constrain("negative_gradient_constr"+pt(key, p, t), expr, model.LessEqual, 0)
		}
	})

	return errOut
}

func (b *FlowBlock) buildFullLoadTime(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	if f.FullLoadTimeMax == nil && f.FullLoadTimeMin == nil {
		return nil
	}

	sum := model.NewExpr()
	ctx.Timeline.Each(func(_, t int) {
		sum.Add(ctx.Timeline.Duration(t), ctx.Dispatch(f, t))
	})

	if f.FullLoadTimeMax != nil {
		rhs := *f.FullLoadTimeMax * *f.Nominal
		if err := ns.Constrain("full_load_time_max["+f.Key()+"]", sum.Clone(), model.LessEqual, rhs); err != nil {
			return err
		}
	}
	if f.FullLoadTimeMin != nil {
		rhs := *f.FullLoadTimeMin * *f.Nominal
		if err := ns.Constrain("full_load_time_min["+f.Key()+"]", sum.Clone(), model.GreaterEqual, rhs); err != nil {
			return err
		}
	}

	return nil
}

// buildInteger mirrors the dispatch variable onto an integer twin, forcing
// integer dispatch values.
func (b *FlowBlock) buildInteger(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	var errOut error
	ctx.Timeline.Each(func(p, t int) {
		if errOut != nil {
			return
		}
		var id model.VarID
		id, errOut = ns.Integer("integer_dispatch"+pt(f.Key(), p, t), 0, math.Inf(1))
		if errOut != nil {
			return
		}
		expr := model.NewExpr().Add(1, id).Add(-1, ctx.Dispatch(f, t))
		errOut = ns.Constrain("integer_dispatch_constr"+pt(f.Key(), p, t), expr, model.Equal, 0)
	})

	return errOut
}

// Costs sums duration-weighted, period-discounted variable costs over every
// flow carrying a cost series, plus the gradient costs of ramp-limited
// plain flows.
func (b *FlowBlock) Costs(ctx *Context) (*model.LinExpr, error) {
	costs := model.NewExpr()
	for _, f := range b.flows {
		if len(f.VariableCosts) == 0 {
			continue
		}
		ctx.Timeline.Each(func(p, t int) {
			w := ctx.Timeline.Duration(t) * network.At(f.VariableCosts, t) * ctx.discount(p)
			costs.Add(w, ctx.Dispatch(f, t))
		})
	}
	for _, f := range b.rampFlows() {
		if g := f.PositiveGradient; g != nil && g.Costs != 0 {
			ctx.Timeline.Each(func(p, t int) {
				costs.Add(g.Costs*ctx.discount(p), b.posGrad[f][t])
			})
		}
		if g := f.NegativeGradient; g != nil && g.Costs != 0 {
			ctx.Timeline.Each(func(p, t int) {
				costs.Add(g.Costs*ctx.discount(p), b.negGrad[f][t])
			})
		}
	}

	return costs, nil
}
