package blocks

import (
	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
)

// NonConvexFlowBlock models on/off operation of a flow with a fixed nominal
// capacity. A binary status(t) gates dispatch between its minimum and
// maximum envelope,
//
//	min(t)·nominal·status(t) <= dispatch(t) <= max(t)·nominal·status(t)
//
// and startup(t)/shutdown(t) indicators track status transitions so they can
// be counted, capped and priced. Minimum up/down times hold inside the
// interior of the horizon; the boundary timesteps too close to either edge
// for a full window are pinned to the initial status.
type NonConvexFlowBlock struct {
	flows []*network.Flow

	status   map[*network.Flow][]model.VarID
	startup  map[*network.Flow][]model.VarID
	shutdown map[*network.Flow][]model.VarID
}

// Name returns the block namespace.
func (b *NonConvexFlowBlock) Name() string { return nsNonConvex }

func wantsStartup(f *network.Flow) bool {
	return len(f.NonConvex.StartupCosts) > 0 || f.NonConvex.MaximumStartups != nil
}

func wantsShutdown(f *network.Flow) bool {
	return len(f.NonConvex.ShutdownCosts) > 0 || f.NonConvex.MaximumShutdowns != nil
}

// Build creates the status machinery for every non-convex flow.
func (b *NonConvexFlowBlock) Build(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsNonConvex)
	if err != nil {
		return err
	}

	b.status = make(map[*network.Flow][]model.VarID)
	b.startup = make(map[*network.Flow][]model.VarID)
	b.shutdown = make(map[*network.Flow][]model.VarID)

	for _, f := range b.flows {
		if err = b.buildStatus(ctx, ns, f); err != nil {
			return err
		}
		if err = b.buildTransitions(ctx, ns, f); err != nil {
			return err
		}
		if err = b.buildUpDownTimes(ctx, ns, f); err != nil {
			return err
		}
	}

	return nil
}

// buildStatus creates status(t) and couples dispatch to the gated envelope.
func (b *NonConvexFlowBlock) buildStatus(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, nom := f.Key(), *f.Nominal
	st := make([]model.VarID, ctx.Timeline.Len())
	for t := range st {
		id, err := ns.Binary("status" + tOnly(key, t))
		if err != nil {
			return err
		}
		st[t] = id
	}
	b.status[f] = st

	var errOut error
	ctx.Timeline.Each(func(p, t int) {
		if errOut != nil {
			return
		}
		expr := model.NewExpr().
			Add(1, ctx.Dispatch(f, t)).
			Add(-f.MinAt(t)*nom, st[t])
		errOut = ns.Constrain("min"+pt(key, p, t), expr, model.GreaterEqual, 0)
		if errOut != nil {
			return
		}
		expr = model.NewExpr().
			Add(1, ctx.Dispatch(f, t)).
			Add(-f.MaxAt(t)*nom, st[t])
		errOut = ns.Constrain("max"+pt(key, p, t), expr, model.LessEqual, 0)
	})

	return errOut
}

// buildTransitions creates startup/shutdown indicators where they are
// priced or capped, with the initial status standing in for status(-1).
func (b *NonConvexFlowBlock) buildTransitions(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	key, st := f.Key(), b.status[f]
	initial := float64(f.NonConvex.InitialStatus)

	if wantsStartup(f) {
		su := make([]model.VarID, ctx.Timeline.Len())
		for t := range su {
			id, err := ns.Binary("startup" + tOnly(key, t))
			if err != nil {
				return err
			}
			su[t] = id

			expr := model.NewExpr().Add(1, id).Add(-1, st[t])
			rhs := -initial
			if t > 0 {
				expr.Add(1, st[t-1])
				rhs = 0
			}
			if err = ns.Constrain("startup_constr"+tOnly(key, t), expr, model.GreaterEqual, rhs); err != nil {
				return err
			}
		}
		b.startup[f] = su

		if f.NonConvex.MaximumStartups != nil {
			sum := model.NewExpr()
			for _, id := range su {
				sum.Add(1, id)
			}
			if err := ns.Constrain("max_startup_constr["+key+"]", sum, model.LessEqual, float64(*f.NonConvex.MaximumStartups)); err != nil {
				return err
			}
		}
	}

	if wantsShutdown(f) {
		sd := make([]model.VarID, ctx.Timeline.Len())
		for t := range sd {
			id, err := ns.Binary("shutdown" + tOnly(key, t))
			if err != nil {
				return err
			}
			sd[t] = id

			expr := model.NewExpr().Add(1, id).Add(1, st[t])
			rhs := initial
			if t > 0 {
				expr.Add(-1, st[t-1])
				rhs = 0
			}
			if err = ns.Constrain("shutdown_constr"+tOnly(key, t), expr, model.GreaterEqual, rhs); err != nil {
				return err
			}
		}
		b.shutdown[f] = sd

		if f.NonConvex.MaximumShutdowns != nil {
			sum := model.NewExpr()
			for _, id := range sd {
				sum.Add(1, id)
			}
			if err := ns.Constrain("max_shutdown_constr["+key+"]", sum, model.LessEqual, float64(*f.NonConvex.MaximumShutdowns)); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildUpDownTimes enforces minimum up/down times over the interior window
// and pins the boundary timesteps to the initial status. Both windows share
// the wider of the two lengths so neither constraint reads past the horizon.
func (b *NonConvexFlowBlock) buildUpDownTimes(ctx *Context, ns *model.Namespace, f *network.Flow) error {
	maxUD := f.NonConvex.MaxUpDown()
	if maxUD == 0 {
		return nil
	}

	key, st := f.Key(), b.status[f]
	last := ctx.Timeline.Len() - 1
	initial := float64(f.NonConvex.InitialStatus)

	for t := 0; t <= last; t++ {
		if t < maxUD || t > last-maxUD {
			expr := model.NewExpr().Add(1, st[t])
			if err := ns.Constrain("status_pin_constr"+tOnly(key, t), expr, model.Equal, initial); err != nil {
				return err
			}
			continue
		}
		if up := f.NonConvex.MinimumUptime; up > 0 {
			expr := model.NewExpr().
				Add(float64(up), st[t]).
				Add(-float64(up), st[t-1])
			for u := 0; u < up; u++ {
				expr.Add(-1, st[t+u])
			}
			if err := ns.Constrain("min_uptime_constr"+tOnly(key, t), expr, model.LessEqual, 0); err != nil {
				return err
			}
		}
		if down := f.NonConvex.MinimumDowntime; down > 0 {
			expr := model.NewExpr().
				Add(float64(down), st[t-1]).
				Add(-float64(down), st[t])
			for d := 0; d < down; d++ {
				expr.Add(1, st[t+d])
			}
			if err := ns.Constrain("min_downtime_constr"+tOnly(key, t), expr, model.LessEqual, float64(down)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Costs prices startups, shutdowns and plain on-time, period-discounted in
// multi-period horizons.
func (b *NonConvexFlowBlock) Costs(ctx *Context) (*model.LinExpr, error) {
	costs := model.NewExpr()
	for _, f := range b.flows {
		ncv := f.NonConvex
		if su := b.startup[f]; su != nil && len(ncv.StartupCosts) > 0 {
			ctx.Timeline.Each(func(p, t int) {
				costs.Add(network.At(ncv.StartupCosts, t)*ctx.discount(p), su[t])
			})
		}
		if sd := b.shutdown[f]; sd != nil && len(ncv.ShutdownCosts) > 0 {
			ctx.Timeline.Each(func(p, t int) {
				costs.Add(network.At(ncv.ShutdownCosts, t)*ctx.discount(p), sd[t])
			})
		}
		if len(ncv.ActivityCosts) > 0 {
			st := b.status[f]
			ctx.Timeline.Each(func(p, t int) {
				costs.Add(network.At(ncv.ActivityCosts, t)*ctx.discount(p), st[t])
			})
		}
	}

	return costs, nil
}
