// Package solve_test runs small dispatch programs end to end: formulate,
// solve in-process, inspect the optimum, and round-trips the LP export.
package solve_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/enflow/blocks"
	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/solve"
	"github.com/katalvlaran/enflow/timeline"
)

func float(v float64) *float64 { return &v }

// dispatchChain formulates src->el->demand with a priced supply flow and a
// fixed demand profile.
func dispatchChain(t *testing.T, supplyNominal float64) *model.Model {
	t.Helper()
	tl, err := timeline.Uniform(2, 1)
	require.NoError(t, err)

	s := network.NewSystem()
	require.NoError(t, s.AddSource("src"))
	require.NoError(t, s.AddBus("el"))
	require.NoError(t, s.AddSink("demand"))
	require.NoError(t, s.AddFlow("src", "el", &network.Flow{
		Nominal:       &supplyNominal,
		VariableCosts: []float64{5},
	}))
	require.NoError(t, s.AddFlow("el", "demand", &network.Flow{
		Nominal: float(10),
		Fix:     []float64{0.6, 0.3},
	}))

	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	return m
}

// ------------------------------------------------------------------------
// 1. Optimal dispatch.
// ------------------------------------------------------------------------

func TestSimplex_Dispatch(t *testing.T) {
	m := dispatchChain(t, 10)

	res, err := solve.Simplex(m)
	require.NoError(t, err)
	assert.InDelta(t, 45, res.Objective, 1e-8)

	// The balance forces supply to track demand exactly.
	for tt, want := range []float64{6, 3} {
		id, ok := m.Var("flow.dispatch[src->el,p0,t" + string(rune('0'+tt)) + "]")
		require.True(t, ok)
		v, ok := m.Value(id)
		require.True(t, ok)
		assert.InDelta(t, want, v, 1e-8)
	}
}

func TestSimplex_Infeasible(t *testing.T) {
	// Supply is capped below the demand peak.
	m := dispatchChain(t, 5)

	_, err := solve.Simplex(m)
	require.ErrorIs(t, err, solve.ErrInfeasible)
}

func TestSimplex_Unbounded(t *testing.T) {
	m := model.New()
	ns, err := m.Namespace("free")
	require.NoError(t, err)
	x, err := ns.Continuous("x", math.Inf(-1), math.Inf(1))
	require.NoError(t, err)
	m.AddCost(model.NewExpr().Add(1, x))

	_, err = solve.Simplex(m)
	require.ErrorIs(t, err, solve.ErrUnbounded)
}

// ------------------------------------------------------------------------
// 2. Integrality handling.
// ------------------------------------------------------------------------

func onOffChain(t *testing.T) *model.Model {
	t.Helper()
	tl, err := timeline.Uniform(2, 1)
	require.NoError(t, err)

	s := network.NewSystem()
	require.NoError(t, s.AddSource("plant"))
	require.NoError(t, s.AddBus("el"))
	require.NoError(t, s.AddSink("demand"))
	require.NoError(t, s.AddFlow("plant", "el", &network.Flow{
		Nominal:   float(10),
		NonConvex: &network.NonConvexSpec{},
	}))
	require.NoError(t, s.AddFlow("el", "demand", &network.Flow{
		Nominal: float(10),
		Fix:     []float64{0.5, 0.2},
	}))

	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	return m
}

func TestSimplex_RejectsIntegers(t *testing.T) {
	m := onOffChain(t)

	_, err := solve.Simplex(m)
	require.ErrorIs(t, err, solve.ErrIntegerModel)
	assert.Contains(t, err.Error(), "status")

	_, err = solve.Simplex(m, solve.WithRelaxation())
	require.NoError(t, err)
}

// ------------------------------------------------------------------------
// 3. LP export.
// ------------------------------------------------------------------------

func TestWriteLP_Sections(t *testing.T) {
	m := onOffChain(t)

	var sb strings.Builder
	require.NoError(t, solve.WriteLP(&sb, m))
	out := sb.String()

	for _, section := range []string{"Minimize", "Subject To", "Bounds", "Binary", "End"} {
		assert.Contains(t, out, section)
	}
	// Names are mapped onto the LP charset.
	assert.Contains(t, out, "flow.dispatch_plant__el_p0_t0_")
	assert.Contains(t, out, "nonconvex_flow.status_plant__el_t0_")
	assert.NotContains(t, out, "->")

	// Fixed demand bounds survive the export.
	assert.Contains(t, out, "5 <= flow.dispatch_el__demand_p0_t0_ <= 5")
}

func TestWriteLP_Deterministic(t *testing.T) {
	m := onOffChain(t)

	var a, b strings.Builder
	require.NoError(t, solve.WriteLP(&a, m))
	require.NoError(t, solve.WriteLP(&b, m))
	assert.Equal(t, a.String(), b.String())
}
