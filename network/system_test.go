// Package network_test validates system declaration, the derived incidence
// views and the configuration invariants.
package network_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

func float(v float64) *float64 { return &v }

// ------------------------------------------------------------------------
// 1. Declaration: node and flow bookkeeping.
// ------------------------------------------------------------------------

func TestSystem_NodeDeclaration(t *testing.T) {
	s := network.NewSystem()
	require.NoError(t, s.AddBus("el"))
	require.NoError(t, s.AddSource("pv"))
	require.NoError(t, s.AddSink("demand"))
	require.NoError(t, s.AddConverter("chp"))

	require.ErrorIs(t, s.AddBus(""), network.ErrEmptyNodeID)
	require.ErrorIs(t, s.AddSource("el"), network.ErrDuplicateNode)

	n, ok := s.Node("chp")
	require.True(t, ok)
	assert.Equal(t, network.KindConverter, n.Kind())
	assert.Len(t, s.Buses(), 1)
	assert.Len(t, s.Converters(), 1)
}

func TestSystem_FlowDeclaration(t *testing.T) {
	s := network.NewSystem()
	require.NoError(t, s.AddSource("pv"))
	require.NoError(t, s.AddBus("el"))
	require.NoError(t, s.AddSink("demand"))

	require.ErrorIs(t, s.AddFlow("pv", "nowhere", &network.Flow{}), network.ErrUnknownNode)
	require.NoError(t, s.AddFlow("pv", "el", &network.Flow{Nominal: float(10)}))
	require.ErrorIs(t, s.AddFlow("pv", "el", &network.Flow{}), network.ErrDuplicateFlow)
	require.NoError(t, s.AddFlow("el", "demand", nil))

	f, ok := s.Flow("pv", "el")
	require.True(t, ok)
	assert.Equal(t, "pv->el", f.Key())

	// Incidence is derived, never stored.
	assert.Len(t, s.Inflows("el"), 1)
	assert.Len(t, s.Outflows("el"), 1)
	assert.Empty(t, s.Inflows("pv"))
}

func TestSystem_ConversionFactors(t *testing.T) {
	s := network.NewSystem()
	require.NoError(t, s.AddBus("gas"))
	require.NoError(t, s.AddConverter("chp"))

	require.ErrorIs(t, s.SetConversionFactor("gas", "chp", []float64{1}), network.ErrNotConverter)
	require.ErrorIs(t, s.SetConversionFactor("chp", "oil", []float64{1}), network.ErrUnknownNode)
	require.NoError(t, s.SetConversionFactor("chp", "gas", []float64{1.2}))

	n, _ := s.Node("chp")
	series, ok := n.Factor("gas")
	require.True(t, ok)
	assert.Equal(t, []float64{1.2}, series)
	_, ok = n.Factor("el")
	assert.False(t, ok)
}

// ------------------------------------------------------------------------
// 2. Shapes and series helpers.
// ------------------------------------------------------------------------

func TestFlow_ShapeAndBounds(t *testing.T) {
	plain := &network.Flow{Nominal: float(5)}
	assert.True(t, plain.IsPlain())

	inv := &network.Flow{Invest: &network.InvestSpec{}}
	assert.False(t, inv.IsPlain())

	f := &network.Flow{Min: []float64{0, 0.3}, Max: []float64{0.9}}
	assert.Equal(t, 0.0, f.MinAt(0))
	assert.Equal(t, 0.3, f.MinAt(1))
	assert.Equal(t, 0.9, f.MaxAt(7)) // broadcast
	assert.True(t, f.HasMin())
	assert.False(t, (&network.Flow{}).HasMin())
	assert.Equal(t, 1.0, (&network.Flow{}).MaxAt(0)) // default
}

func TestNonConvexSpec_MaxUpDown(t *testing.T) {
	nc := &network.NonConvexSpec{MinimumUptime: 2, MinimumDowntime: 5}
	assert.Equal(t, 5, nc.MaxUpDown())
}

// ------------------------------------------------------------------------
// 3. Validation: configuration invariants.
// ------------------------------------------------------------------------

func declare(t *testing.T, f *network.Flow) *network.System {
	t.Helper()
	s := network.NewSystem()
	require.NoError(t, s.AddSource("src"))
	require.NoError(t, s.AddBus("bus"))
	require.NoError(t, s.AddFlow("src", "bus", f))

	return s
}

func TestValidate_ShapeExclusivity(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := declare(t, &network.Flow{Nominal: float(1), Invest: &network.InvestSpec{}})
	require.ErrorIs(t, s.Validate(tl), network.ErrCapacityConflict)

	s = declare(t, &network.Flow{
		Invest:    &network.InvestSpec{},
		NonConvex: &network.NonConvexSpec{},
	})
	require.ErrorIs(t, s.Validate(tl), network.ErrInvestWithNonConvexOp)

	s = declare(t, &network.Flow{NonConvex: &network.NonConvexSpec{}})
	require.ErrorIs(t, s.Validate(tl), network.ErrMissingNominal)

	// A pinned dispatch leaves the on/off status nothing to decide.
	s = declare(t, &network.Flow{
		Nominal:   float(1),
		Fix:       []float64{0.5},
		NonConvex: &network.NonConvexSpec{},
	})
	require.ErrorIs(t, s.Validate(tl), network.ErrFixWithNonConvexOp)
}

func TestValidate_MissingLifetime(t *testing.T) {
	multi, err := timeline.New([]timeline.Period{
		{Year: 0, Durations: []float64{1}},
		{Year: 1, Durations: []float64{1}},
	})
	require.NoError(t, err)

	s := declare(t, &network.Flow{Invest: &network.InvestSpec{Maximum: []float64{10}}})
	require.ErrorIs(t, s.Validate(multi), network.ErrMissingLifetime)

	// The very same configuration is fine on a single-period horizon.
	single, err := timeline.Uniform(2, 1)
	require.NoError(t, err)
	require.NoError(t, s.Validate(single))
}

func TestValidate_InvestSpec(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := declare(t, &network.Flow{Invest: &network.InvestSpec{Lifetime: 2, Age: 5}})
	require.ErrorIs(t, s.Validate(tl), network.ErrAgeExceedsLifetime)

	s = declare(t, &network.Flow{Invest: &network.InvestSpec{NonConvex: true}})
	require.ErrorIs(t, s.Validate(tl), network.ErrMissingInvestMaximum)

	s = declare(t, &network.Flow{Invest: &network.InvestSpec{Maximum: []float64{1, 2}}})
	require.ErrorIs(t, s.Validate(tl), network.ErrSeriesLength)
}

func TestValidate_UpDownTimeWindow(t *testing.T) {
	tl, err := timeline.Uniform(6, 1)
	require.NoError(t, err)

	s := declare(t, &network.Flow{
		Nominal:   float(1),
		NonConvex: &network.NonConvexSpec{MinimumUptime: 4},
	})
	require.ErrorIs(t, s.Validate(tl), network.ErrUpDownTimeTooLong)

	s = declare(t, &network.Flow{
		Nominal:   float(1),
		NonConvex: &network.NonConvexSpec{MinimumUptime: 3},
	})
	require.NoError(t, s.Validate(tl))
}

func TestValidate_SeriesLength(t *testing.T) {
	tl, err := timeline.Uniform(3, 1)
	require.NoError(t, err)

	s := declare(t, &network.Flow{Nominal: float(1), Max: []float64{1, 1}})
	require.ErrorIs(t, s.Validate(tl), network.ErrSeriesLength)

	s = declare(t, &network.Flow{Nominal: float(1), Max: []float64{1, 1, 1}})
	require.NoError(t, s.Validate(tl))
}
