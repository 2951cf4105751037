package blocks

import (
	"fmt"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
)

// ConverterBlock relates the inflows and outflows of converter nodes. For
// every inflow i, outflow o and timestep t it emits
//
//	dispatch(i,t) · factor(o,t) == dispatch(o,t) · factor(i,t)
//
// which reads as "inputs scaled by the output factor equal outputs scaled by
// the input factor" and covers arbitrary in/out arities. A converter missing
// the factor for an incident flow is a configuration error, reported with
// the converter and the flow named.
type ConverterBlock struct {
	converters []*network.Node
}

// Name returns the block namespace.
func (b *ConverterBlock) Name() string { return nsConverter }

// Build emits the relation constraints for every converter.
func (b *ConverterBlock) Build(ctx *Context) error {
	ns, err := ctx.Model.Namespace(nsConverter)
	if err != nil {
		return err
	}

	for _, node := range b.converters {
		in := ctx.System.Inflows(node.ID())
		out := ctx.System.Outflows(node.ID())

		factors := make(map[*network.Flow][]float64, len(in)+len(out))
		for _, f := range in {
			s, ok := node.Factor(f.From)
			if !ok {
				return fmt.Errorf("converter %s, flow %s: %w", node.ID(), f.Key(), ErrMissingConversionFactor)
			}
			factors[f] = s
		}
		for _, f := range out {
			s, ok := node.Factor(f.To)
			if !ok {
				return fmt.Errorf("converter %s, flow %s: %w", node.ID(), f.Key(), ErrMissingConversionFactor)
			}
			factors[f] = s
		}

		var errOut error
		for _, fi := range in {
			for _, fo := range out {
				ctx.Timeline.Each(func(p, t int) {
					if errOut != nil {
						return
					}
					expr := model.NewExpr().
						Add(network.At(factors[fo], t), ctx.Dispatch(fi, t)).
						Add(-network.At(factors[fi], t), ctx.Dispatch(fo, t))
					name := fmt.Sprintf("relation[%s,%s,%s,p%d,t%d]", node.ID(), fi.From, fo.To, p, t)
					errOut = ns.Constrain(name, expr, model.Equal, 0)
				})
				if errOut != nil {
					return errOut
				}
			}
		}
	}

	return nil
}

// Costs reports nothing; converters are priced through their flows.
func (b *ConverterBlock) Costs(_ *Context) (*model.LinExpr, error) {
	return model.NewExpr(), nil
}
