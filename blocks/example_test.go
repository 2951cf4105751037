package blocks_test

import (
	"fmt"

	"github.com/katalvlaran/enflow/blocks"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

// ExampleFormulate wires a minimal supply chain: a gas source feeding a
// power plant through a bus, the plant serving a fixed demand profile, and
// formulates the dispatch program.
func ExampleFormulate() {
	tl, _ := timeline.Uniform(2, 1)

	nominal := 50.0
	s := network.NewSystem()
	_ = s.AddSource("gas")
	_ = s.AddBus("el")
	_ = s.AddSink("demand")
	_ = s.AddFlow("gas", "el", &network.Flow{
		Nominal:       &nominal,
		VariableCosts: []float64{30},
	})
	_ = s.AddFlow("el", "demand", &network.Flow{
		Nominal: &nominal,
		Fix:     []float64{0.4, 0.7},
	})

	m, err := blocks.Formulate(s, tl)
	if err != nil {
		panic(err)
	}

	fmt.Println("variables:", m.NumVars())
	fmt.Println("constraints:", m.NumConstraints())

	// The balance forces the plant to follow the demand profile; its cost
	// coefficient is the fuel price weighted by the timestep duration.
	c, _ := m.Constraint("bus.balance[el,p0,t0]")
	fmt.Println("balance terms:", c.Expr().Len())
	d, _ := m.Var("flow.dispatch[gas->el,p0,t0]")
	fmt.Println("fuel cost coefficient:", m.Objective().Coef(d))

	// Output:
	// variables: 4
	// constraints: 2
	// balance terms: 2
	// fuel cost coefficient: 30
}
