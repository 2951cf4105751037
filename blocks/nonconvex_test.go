package blocks_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/enflow/blocks"
	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

func intp(v int) *int { return &v }

// ------------------------------------------------------------------------
// 1. Status gating.
// ------------------------------------------------------------------------

func TestNonConvex_StatusEnvelope(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal:   float(50),
		Min:       []float64{0.3},
		Max:       []float64{0.9},
		NonConvex: &network.NonConvexSpec{},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	st, ok := m.Var("nonconvex_flow.status[src->el,t0]")
	require.True(t, ok)
	assert.Equal(t, model.Binary, m.VarByID(st).Kind())

	d, _ := m.Var("flow.dispatch[src->el,p0,t0]")

	// status off forces dispatch to zero, status on admits [15, 45].
	c, ok := m.Constraint("nonconvex_flow.min[src->el,p0,t0]")
	require.True(t, ok)
	assert.Equal(t, model.GreaterEqual, c.Sense())
	assert.Equal(t, 1.0, c.Expr().Coef(d))
	assert.Equal(t, -15.0, c.Expr().Coef(st))

	c, ok = m.Constraint("nonconvex_flow.max[src->el,p0,t0]")
	require.True(t, ok)
	assert.Equal(t, model.LessEqual, c.Sense())
	assert.Equal(t, -45.0, c.Expr().Coef(st))

	// The static dispatch bound stays at the ungated envelope.
	assert.Equal(t, 45.0, m.VarByID(d).Upper())
}

// ------------------------------------------------------------------------
// 2. Startup and shutdown tracking.
// ------------------------------------------------------------------------

func TestNonConvex_StartupShutdown(t *testing.T) {
	tl, err := timeline.Uniform(4, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal: float(20),
		NonConvex: &network.NonConvexSpec{
			InitialStatus:    1,
			StartupCosts:     []float64{100},
			ShutdownCosts:    []float64{40},
			MaximumStartups:  intp(2),
			MaximumShutdowns: intp(1),
		},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	st0, _ := m.Var("nonconvex_flow.status[src->el,t0]")
	st1, _ := m.Var("nonconvex_flow.status[src->el,t1]")
	su0, _ := m.Var("nonconvex_flow.startup[src->el,t0]")
	su1, _ := m.Var("nonconvex_flow.startup[src->el,t1]")

	// t=0 measures against the initial status.
	c, ok := m.Constraint("nonconvex_flow.startup_constr[src->el,t0]")
	require.True(t, ok)
	assert.Equal(t, model.GreaterEqual, c.Sense())
	assert.Equal(t, -1.0, c.RHS())
	assert.Equal(t, 1.0, c.Expr().Coef(su0))
	assert.Equal(t, -1.0, c.Expr().Coef(st0))

	// Interior steps measure against the previous status.
	c, ok = m.Constraint("nonconvex_flow.startup_constr[src->el,t1]")
	require.True(t, ok)
	assert.Equal(t, 0.0, c.RHS())
	assert.Equal(t, 1.0, c.Expr().Coef(su1))
	assert.Equal(t, -1.0, c.Expr().Coef(st1))
	assert.Equal(t, 1.0, c.Expr().Coef(st0))

	// Shutdown mirrors with opposite signs.
	sd1, _ := m.Var("nonconvex_flow.shutdown[src->el,t1]")
	c, ok = m.Constraint("nonconvex_flow.shutdown_constr[src->el,t1]")
	require.True(t, ok)
	assert.Equal(t, 1.0, c.Expr().Coef(sd1))
	assert.Equal(t, 1.0, c.Expr().Coef(st1))
	assert.Equal(t, -1.0, c.Expr().Coef(st0))

	// Transition caps sum over the horizon.
	c, ok = m.Constraint("nonconvex_flow.max_startup_constr[src->el]")
	require.True(t, ok)
	assert.Equal(t, 2.0, c.RHS())
	assert.Equal(t, 4, c.Expr().Len())
	c, ok = m.Constraint("nonconvex_flow.max_shutdown_constr[src->el]")
	require.True(t, ok)
	assert.Equal(t, 1.0, c.RHS())

	// Transition prices enter the objective.
	assert.Equal(t, 100.0, m.Objective().Coef(su1))
	assert.Equal(t, 40.0, m.Objective().Coef(sd1))
}

func TestNonConvex_NoTransitionVarsWithoutUse(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal:   float(20),
		NonConvex: &network.NonConvexSpec{ActivityCosts: []float64{2}},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	_, ok := m.Var("nonconvex_flow.startup[src->el,t0]")
	assert.False(t, ok)
	_, ok = m.Var("nonconvex_flow.shutdown[src->el,t0]")
	assert.False(t, ok)

	// On-time is still priced through the status binary.
	st, _ := m.Var("nonconvex_flow.status[src->el,t1]")
	assert.Equal(t, 2.0, m.Objective().Coef(st))
}

// A non-convex flow carries a fixed nominal capacity, so its aggregate and
// ramp constraints formulate exactly like a plain flow's.
func TestNonConvex_FullLoadTimeAndGradient(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal:          float(40),
		FullLoadTimeMax:  float(2),
		PositiveGradient: &network.Gradient{Limit: []float64{0.1}},
		NonConvex:        &network.NonConvexSpec{},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	c, ok := m.Constraint("simple_flow.full_load_time_max[src->el]")
	require.True(t, ok)
	assert.Equal(t, 80.0, c.RHS())

	g, ok := m.Var("simple_flow.positive_gradient[src->el,t1]")
	require.True(t, ok)
	assert.Equal(t, 4.0, m.VarByID(g).Upper())
	c, ok = m.Constraint("simple_flow.positive_gradient_constr[src->el,p0,t1]")
	require.True(t, ok)
	assert.Equal(t, -1.0, c.Expr().Coef(g))
}

// ------------------------------------------------------------------------
// 3. Minimum up/down times.
// ------------------------------------------------------------------------

func TestNonConvex_MinimumUptimeWindow(t *testing.T) {
	tl, err := timeline.Uniform(8, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal: float(20),
		NonConvex: &network.NonConvexSpec{
			InitialStatus: 1,
			MinimumUptime: 2,
		},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	// Timesteps closer than the window to either horizon edge are pinned
	// to the initial status.
	for _, tt := range []int{0, 1, 7} {
		c, ok := m.Constraint(fmt.Sprintf("nonconvex_flow.status_pin_constr[src->el,t%d]", tt))
		require.True(t, ok, "t%d", tt)
		assert.Equal(t, model.Equal, c.Sense())
		assert.Equal(t, 1.0, c.RHS())
	}
	_, ok := m.Constraint("nonconvex_flow.status_pin_constr[src->el,t3]")
	assert.False(t, ok)

	// Interior window: switching on at t obliges the next two steps on.
	c, ok := m.Constraint("nonconvex_flow.min_uptime_constr[src->el,t3]")
	require.True(t, ok)
	assert.Equal(t, model.LessEqual, c.Sense())
	st2, _ := m.Var("nonconvex_flow.status[src->el,t2]")
	st3, _ := m.Var("nonconvex_flow.status[src->el,t3]")
	st4, _ := m.Var("nonconvex_flow.status[src->el,t4]")
	assert.Equal(t, -2.0, c.Expr().Coef(st2))
	assert.Equal(t, 1.0, c.Expr().Coef(st3)) // +uptime from the switch, -1 from the window
	assert.Equal(t, -1.0, c.Expr().Coef(st4))

	// No downtime constraints were requested.
	_, ok = m.Constraint("nonconvex_flow.min_downtime_constr[src->el,t3]")
	assert.False(t, ok)
}

func TestNonConvex_MinimumDowntimeWindow(t *testing.T) {
	tl, err := timeline.Uniform(10, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal: float(20),
		NonConvex: &network.NonConvexSpec{
			MinimumDowntime: 3,
		},
	})
	m, err := blocks.Formulate(s, tl)
	require.NoError(t, err)

	c, ok := m.Constraint("nonconvex_flow.min_downtime_constr[src->el,t4]")
	require.True(t, ok)
	assert.Equal(t, model.LessEqual, c.Sense())
	assert.Equal(t, 3.0, c.RHS())
	st3, _ := m.Var("nonconvex_flow.status[src->el,t3]")
	st4, _ := m.Var("nonconvex_flow.status[src->el,t4]")
	st5, _ := m.Var("nonconvex_flow.status[src->el,t5]")
	assert.Equal(t, 3.0, c.Expr().Coef(st3))
	assert.Equal(t, -2.0, c.Expr().Coef(st4)) // -downtime from the switch, +1 from the window
	assert.Equal(t, 1.0, c.Expr().Coef(st5))

	// Unset initial status pins the boundary off.
	c, ok = m.Constraint("nonconvex_flow.status_pin_constr[src->el,t0]")
	require.True(t, ok)
	assert.Equal(t, 0.0, c.RHS())
}

func TestNonConvex_UpDownTimeTooLong(t *testing.T) {
	tl, err := timeline.Uniform(4, 1)
	require.NoError(t, err)

	s := chain(t, &network.Flow{
		Nominal:   float(20),
		NonConvex: &network.NonConvexSpec{MinimumUptime: 3},
	})
	_, err = blocks.Formulate(s, tl)
	require.ErrorIs(t, err, network.ErrUpDownTimeTooLong)
}
