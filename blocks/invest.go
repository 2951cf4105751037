package blocks

import (
	"math"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
)

// InvestFlowBlock sizes flow capacity endogenously. Per investment flow and
// period it creates invest(p) (capacity added) and total(p) (capacity
// installed), and in multi-period horizons the decommissioning chain
// old(p) = old_end(p) + old_exo(p):
//
//	total(0) = invest(0) + existing
//	total(p) = total(p-1) + invest(p) - old(p)          p > 0
//	old_end(p) = invest(q)   q the commissioning period whose units
//	                         reach end of life in p, if any
//	old_exo(p) = existing    in the first period the pre-existing,
//	                         pre-aged capacity expires, if any
//
// Dispatch is re-coupled to total(p) instead of a fixed nominal value, and
// ramp limits scale with it. A non-convex investment adds a binary
// invest_status(p) gating invest(p) between its minimum and maximum.
type InvestFlowBlock struct {
	flows []*network.Flow

	invest map[*network.Flow][]model.VarID
	total  map[*network.Flow][]model.VarID
	status map[*network.Flow][]model.VarID
}

// Name returns the block namespace.
func (b *InvestFlowBlock) Name() string { return nsInvest }

// yearCost reads a per-year cost series, holding the last sample for years
// beyond its end: fixed costs run lifetime years past the final period.
func yearCost(s []float64, year int) float64 {
	if year >= len(s) {
		return s[len(s)-1]
	}
	return s[year]
}

func investMin(f *network.Flow, p int) float64 {
	if f.Invest.NonConvex || len(f.Invest.Minimum) == 0 {
		return 0
	}
	return network.At(f.Invest.Minimum, p)
}

func investMax(f *network.Flow, p int) float64 {
	if len(f.Invest.Maximum) == 0 {
		return math.Inf(1)
	}
	return network.At(f.Invest.Maximum, p)
}

// Build creates the sizing variables and every constraint tying dispatch,
// capacity accounting and decommissioning together.
func (b *InvestFlowBlock) Build(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsInvest)
	if err != nil {
		return err
	}

	b.invest = make(map[*network.Flow][]model.VarID)
	b.total = make(map[*network.Flow][]model.VarID)
	b.status = make(map[*network.Flow][]model.VarID)

	for _, f := range b.flows {
		if err = b.buildVars(ctx, ns, f); err != nil {
			return err
		}
		if err = b.buildTotals(ctx, ns, f); err != nil {
			return err
		}
		if err = b.buildCoupling(ctx, ns, f); err != nil {
			return err
		}
		if err = b.buildAggregates(ctx, ns, f); err != nil {
			return err
		}
	}

	return nil
}

func (b *InvestFlowBlock) buildVars(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, periods := f.Key(), ctx.Timeline.Periods()
	inv := make([]model.VarID, periods)
	tot := make([]model.VarID, periods)
	for p := 0; p < periods; p++ {
		var err error
		if inv[p], err = ns.Continuous("invest"+pOnly(key, p), investMin(f, p), investMax(f, p)); err != nil {
			return err
		}
		if tot[p], err = ns.Continuous("total"+pOnly(key, p), 0, math.Inf(1)); err != nil {
			return err
		}
	}
	b.invest[f] = inv
	b.total[f] = tot

	if !f.Invest.NonConvex {
		return nil
	}
	st := make([]model.VarID, periods)
	for p := 0; p < periods; p++ {
		var err error
		if st[p], err = ns.Binary("invest_status" + pOnly(key, p)); err != nil {
			return err
		}
		// invest(p) is pushed to zero or into [minimum, maximum] by the
		// binary; the continuous bound alone starts at zero.
		expr := model.NewExpr().Add(1, inv[p]).Add(-network.At(f.Invest.Minimum, p), st[p])
		if err = ns.Constrain("minimum_rule"+pOnly(key, p), expr, model.GreaterEqual, 0); err != nil {
			return err
		}
		expr = model.NewExpr().Add(1, inv[p]).Add(-network.At(f.Invest.Maximum, p), st[p])
		if err = ns.Constrain("maximum_rule"+pOnly(key, p), expr, model.LessEqual, 0); err != nil {
			return err
		}
	}
	b.status[f] = st

	return nil
}

// buildTotals emits the capacity recursion and, in multi-period horizons,
// the decommissioning variables and their defining equalities.
func (b *InvestFlowBlock) buildTotals(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key := f.Key()
	inv, tot := b.invest[f], b.total[f]

	expr := model.NewExpr().Add(1, tot[0]).Add(-1, inv[0])
	if err := ns.Constrain("total_rule"+pOnly(key, 0), expr, model.Equal, f.Invest.Existing); err != nil {
		return err
	}

	if !ctx.Timeline.MultiPeriod() {
		return nil
	}

	lifetime := f.Invest.Lifetime
	exoPeriod := -1 // first period the pre-existing units retire
	if f.Invest.Existing > 0 {
		for p := 1; p < ctx.Timeline.Periods(); p++ {
			if lifetime-f.Invest.Age <= ctx.Timeline.Year(p) {
				exoPeriod = p
				break
			}
		}
	}

	for p := 0; p < ctx.Timeline.Periods(); p++ {
		oldEnd, err := ns.Continuous("old_end"+pOnly(key, p), 0, math.Inf(1))
		if err != nil {
			return err
		}
		oldExo, err := ns.Continuous("old_exo"+pOnly(key, p), 0, math.Inf(1))
		if err != nil {
			return err
		}
		old, err := ns.Continuous("old"+pOnly(key, p), 0, math.Inf(1))
		if err != nil {
			return err
		}

		endExpr := model.NewExpr().Add(1, oldEnd)
		if comm, ok := ctx.Timeline.CommissioningPeriod(p, lifetime); ok {
			endExpr.Add(-1, inv[comm])
		}
		if err = ns.Constrain("old_rule_end"+pOnly(key, p), endExpr, model.Equal, 0); err != nil {
			return err
		}

		exo := 0.0
		if p == exoPeriod {
			exo = f.Invest.Existing
		}
		exoExpr := model.NewExpr().Add(1, oldExo)
		if err = ns.Constrain("old_rule_exo"+pOnly(key, p), exoExpr, model.Equal, exo); err != nil {
			return err
		}

		oldExpr := model.NewExpr().Add(1, old).Add(-1, oldEnd).Add(-1, oldExo)
		if err = ns.Constrain("old_rule"+pOnly(key, p), oldExpr, model.Equal, 0); err != nil {
			return err
		}

		if p > 0 {
			rec := model.NewExpr().
				Add(1, tot[p]).
				Add(-1, tot[p-1]).
				Add(-1, inv[p]).
				Add(1, old)
			if err = ns.Constrain("total_rule"+pOnly(key, p), rec, model.Equal, 0); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCoupling re-expresses the dispatch envelope against total(p): fixed
// profiles pin dispatch exactly, otherwise max (and min, when given) scale
// with the installed capacity, as do ramp limits.
func (b *InvestFlowBlock) buildCoupling(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, tot := f.Key(), b.total[f]

	var errOut error
	ctx.Timeline.Each(func(p, t int) {
		if errOut != nil {
			return
		}
		d := ctx.Dispatch(f, t)
		switch {
		case len(f.Fix) > 0:
			expr := model.NewExpr().Add(1, d).Add(-network.At(f.Fix, t), tot[p])
			errOut = ns.Constrain("fixed"+pt(key, p, t), expr, model.Equal, 0)
		default:
			expr := model.NewExpr().Add(1, d).Add(-f.MaxAt(t), tot[p])
			errOut = ns.Constrain("max"+pt(key, p, t), expr, model.LessEqual, 0)
			if errOut == nil && f.HasMin() {
				expr = model.NewExpr().Add(1, d).Add(-f.MinAt(t), tot[p])
				errOut = ns.Constrain("min"+pt(key, p, t), expr, model.GreaterEqual, 0)
			}
		}
		if errOut != nil || t == 0 {
			return
		}
		if g := f.PositiveGradient; g != nil {
			expr := model.NewExpr().
				Add(1, d).
				Add(-1, ctx.Dispatch(f, t-1)).
				Add(-network.At(g.Limit, t), tot[p])
			errOut = ns.Constrain("positive_gradient"+pt(key, p, t), expr, model.LessEqual, 0)
		}
		if errOut == nil && f.NegativeGradient != nil {
			expr := model.NewExpr().
				Add(1, ctx.Dispatch(f, t-1)).
				Add(-1, d).
				Add(-network.At(f.NegativeGradient.Limit, t), tot[p])
			errOut = ns.Constrain("negative_gradient"+pt(key, p, t), expr, model.LessEqual, 0)
		}
	})

	return errOut
}

func (b *InvestFlowBlock) buildAggregates(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, tot := f.Key(), b.total[f]

	if f.FullLoadTimeMax != nil || f.FullLoadTimeMin != nil {
		sum := model.NewExpr()
		ctx.Timeline.Each(func(_, t int) {
			sum.Add(ctx.Timeline.Duration(t), ctx.Dispatch(f, t))
		})
		if f.FullLoadTimeMax != nil {
			expr := sum.Clone()
			for _, v := range tot {
				expr.Add(-*f.FullLoadTimeMax, v)
			}
			if err := ns.Constrain("full_load_time_max["+key+"]", expr, model.LessEqual, 0); err != nil {
				return err
			}
		}
		if f.FullLoadTimeMin != nil {
			expr := sum.Clone()
			for _, v := range tot {
				expr.Add(-*f.FullLoadTimeMin, v)
			}
			if err := ns.Constrain("full_load_time_min["+key+"]", expr, model.GreaterEqual, 0); err != nil {
				return err
			}
		}
	}

	if f.Invest.OverallMaximum != nil {
		for p, v := range tot {
			expr := model.NewExpr().Add(1, v)
			if err := ns.Constrain("overall_maximum"+pOnly(key, p), expr, model.LessEqual, *f.Invest.OverallMaximum); err != nil {
				return err
			}
		}
	}
	if f.Invest.OverallMinimum != nil {
		last := len(tot) - 1
		expr := model.NewExpr().Add(1, tot[last])
		if err := ns.Constrain("overall_minimum"+pOnly(key, last), expr, model.GreaterEqual, *f.Invest.OverallMinimum); err != nil {
			return err
		}
	}

	return nil
}

// Costs turns invest(p) into money. Multi-period horizons annualize the
// period-specific capex over the asset lifetime and discount every annual
// payment to the horizon start; single-period horizons charge the plain
// equivalent periodical costs once. Fixed costs follow installed units over
// their remaining lifetime. The per-period split is registered as a cost
// component for reporting.
func (b *InvestFlowBlock) Costs(ctx *Context) (*model.LinExpr, error) {
	periods := ctx.Timeline.Periods()
	perPeriod := make([]*model.LinExpr, periods)
	for p := range perPeriod {
		perPeriod[p] = model.NewExpr()
	}

	for _, f := range b.flows {
		if err := b.flowCosts(ctx, f, perPeriod); err != nil {
			return nil, err
		}
	}

	total := model.NewExpr()
	for _, e := range perPeriod {
		total.AddExpr(e)
	}
	if err := ctx.Model.AddCostComponent(nsInvest, &model.CostComponent{Total: total, PerPeriod: perPeriod}); err != nil {
		return nil, err
	}

	return total, nil
}

func (b *InvestFlowBlock) flowCosts(ctx *Context, f *network.Flow, perPeriod []*model.LinExpr) error {
	inv := b.invest[f]
	spec := f.Invest

	if !ctx.Timeline.MultiPeriod() {
		perPeriod[0].Add(network.At(spec.EPCosts, 0), inv[0])
		if spec.NonConvex {
			perPeriod[0].Add(network.At(spec.Offset, 0), b.status[f][0])
		}
		return nil
	}

	dr := ctx.DiscountRate
	interest := spec.InterestRate
	if interest == 0 {
		ctx.Model.Warnf(WarnDefaultInterest,
			"investment flow %s has no interest rate set, defaulting to the discount rate %g", f.Key(), dr)
		interest = dr
	}

	lifetime := spec.Lifetime
	for p := 0; p < ctx.Timeline.Periods(); p++ {
		annuity, err := Annuity(network.At(spec.EPCosts, p), lifetime, interest)
		if err != nil {
			return err
		}
		disc := ctx.discount(p)
		perPeriod[p].Add(annuity*float64(lifetime)*disc, inv[p])
		if spec.NonConvex {
			perPeriod[p].Add(network.At(spec.Offset, p)*disc, b.status[f][p])
		}
		if len(spec.FixedCosts) > 0 {
			fc := 0.0
			for pp := ctx.Timeline.Year(p); pp < ctx.Timeline.Year(p)+lifetime; pp++ {
				fc += yearCost(spec.FixedCosts, pp) * math.Pow(1+dr, -float64(pp))
			}
			perPeriod[p].Add(fc*disc, inv[p])
		}
	}

	if len(spec.FixedCosts) > 0 && spec.Existing > 0 {
		fc := 0.0
		for pp := 0; pp < lifetime-spec.Age; pp++ {
			fc += yearCost(spec.FixedCosts, pp) * math.Pow(1+dr, -float64(pp))
		}
		perPeriod[0].AddConst(spec.Existing * fc)
	}

	return nil
}
