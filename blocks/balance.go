package blocks

import (
	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
)

// BusBlock balances every bus at every timestep: what flows in must flow
// out. Buses with no incident flows contribute nothing.
type BusBlock struct {
	buses []*network.Node
}

// Name returns the block namespace.
func (b *BusBlock) Name() string { return nsBus }

// Build emits one balance equality per bus and timestep.
func (b *BusBlock) Build(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsBus)
	if err != nil {
		return err
	}

	for _, bus := range b.buses {
		in := ctx.System.Inflows(bus.ID())
		out := ctx.System.Outflows(bus.ID())
		if len(in) == 0 && len(out) == 0 {
			continue
		}

		var errOut error
		ctx.Timeline.Each(func(p, t int) {
			if errOut != nil {
				return
			}
			expr := model.NewExpr()
			for _, f := range in {
				expr.Add(1, ctx.Dispatch(f, t))
			}
			for _, f := range out {
				expr.Add(-1, ctx.Dispatch(f, t))
			}
			errOut = ns.Constrain("balance"+pt(bus.ID(), p, t), expr, model.Equal, 0)
		})
		if errOut != nil {
			return errOut
		}
	}

	return nil
}

// Costs reports nothing; balancing is free.
func (b *BusBlock) Costs(_ *Context) (*model.LinExpr, error) {
	return model.NewExpr(), nil
}
