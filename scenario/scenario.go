package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/enflow/blocks"
	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

// Sentinel errors raised while loading a scenario.
var (
	// ErrNoHorizon indicates a document declaring neither timesteps nor
	// periods.
	ErrNoHorizon = errors.New("scenario: no horizon declared")

	// ErrHorizonConflict indicates a document declaring both a uniform
	// timestep horizon and explicit periods.
	ErrHorizonConflict = errors.New("scenario: horizon and periods are mutually exclusive")
)

// Series is a YAML-friendly value sequence: a scalar decodes to a length-1
// constant series, a list decodes element-wise.
type Series []float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Series) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = Series{v}

		return nil
	}

	var vs []float64
	if err := node.Decode(&vs); err != nil {
		return err
	}
	*s = vs

	return nil
}

// Horizon declares a single-period run of uniform timesteps.
type Horizon struct {
	Timesteps int     `yaml:"timesteps"`
	Duration  float64 `yaml:"duration"`
}

// PeriodSpec declares one planning period of a multi-period run.
type PeriodSpec struct {
	Year      int    `yaml:"year"`
	Durations Series `yaml:"durations"`
}

// ConverterSpec declares a converter node with its factor per connected
// node.
type ConverterSpec struct {
	ID      string            `yaml:"id"`
	Factors map[string]Series `yaml:"factors"`
}

// GradientSpec declares a ramp limit relative to capacity.
type GradientSpec struct {
	Limit Series  `yaml:"limit"`
	Costs float64 `yaml:"costs"`
}

// InvestSpec declares endogenous sizing of a flow.
type InvestSpec struct {
	Minimum        Series   `yaml:"minimum"`
	Maximum        Series   `yaml:"maximum"`
	EPCosts        Series   `yaml:"ep_costs"`
	Offset         Series   `yaml:"offset"`
	Existing       float64  `yaml:"existing"`
	Lifetime       int      `yaml:"lifetime"`
	Age            int      `yaml:"age"`
	FixedCosts     Series   `yaml:"fixed_costs"`
	OverallMaximum *float64 `yaml:"overall_maximum"`
	OverallMinimum *float64 `yaml:"overall_minimum"`
	InterestRate   float64  `yaml:"interest_rate"`
	NonConvex      bool     `yaml:"nonconvex"`
}

// NonConvexSpec declares on/off operation of a flow.
type NonConvexSpec struct {
	InitialStatus    int    `yaml:"initial_status"`
	StartupCosts     Series `yaml:"startup_costs"`
	ShutdownCosts    Series `yaml:"shutdown_costs"`
	ActivityCosts    Series `yaml:"activity_costs"`
	MaximumStartups  *int   `yaml:"maximum_startups"`
	MaximumShutdowns *int   `yaml:"maximum_shutdowns"`
	MinimumUptime    int    `yaml:"minimum_uptime"`
	MinimumDowntime  int    `yaml:"minimum_downtime"`
}

// FlowSpec declares one directed flow between two nodes.
type FlowSpec struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`

	Nominal         *float64       `yaml:"nominal"`
	Min             Series         `yaml:"min"`
	Max             Series         `yaml:"max"`
	Fix             Series         `yaml:"fix"`
	FullLoadTimeMin *float64       `yaml:"full_load_time_min"`
	FullLoadTimeMax *float64       `yaml:"full_load_time_max"`
	VariableCosts   Series         `yaml:"variable_costs"`
	PositiveGrad    *GradientSpec  `yaml:"positive_gradient"`
	NegativeGrad    *GradientSpec  `yaml:"negative_gradient"`
	Integer         bool           `yaml:"integer"`
	Invest          *InvestSpec    `yaml:"invest"`
	NonConvex       *NonConvexSpec `yaml:"nonconvex"`
}

// Document is the YAML shape of a study.
type Document struct {
	DiscountRate float64         `yaml:"discount_rate"`
	Horizon      *Horizon        `yaml:"horizon"`
	Periods      []PeriodSpec    `yaml:"periods"`
	Buses        []string        `yaml:"buses"`
	Sources      []string        `yaml:"sources"`
	Sinks        []string        `yaml:"sinks"`
	Converters   []ConverterSpec `yaml:"converters"`
	Flows        []FlowSpec      `yaml:"flows"`
}

// Scenario is a loaded, buildable study.
type Scenario struct {
	System       *network.System
	Timeline     *timeline.Timeline
	DiscountRate float64
}

// Load reads a YAML document and builds the scenario. Unknown fields are
// rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}

	return build(&doc)
}

// LoadFile reads a YAML study from disk.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Formulate translates the scenario into a model.
func (sc *Scenario) Formulate(opts ...blocks.Option) (*model.Model, error) {
	opts = append([]blocks.Option{blocks.WithDiscountRate(sc.DiscountRate)}, opts...)

	return blocks.Formulate(sc.System, sc.Timeline, opts...)
}

func build(doc *Document) (*Scenario, error) {
	tl, err := buildTimeline(doc)
	if err != nil {
		return nil, err
	}

	s := network.NewSystem()
	for _, id := range doc.Buses {
		if err = s.AddBus(id); err != nil {
			return nil, err
		}
	}
	for _, id := range doc.Sources {
		if err = s.AddSource(id); err != nil {
			return nil, err
		}
	}
	for _, id := range doc.Sinks {
		if err = s.AddSink(id); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Converters {
		if err = s.AddConverter(c.ID); err != nil {
			return nil, err
		}
		for nodeID, series := range c.Factors {
			if err = s.SetConversionFactor(c.ID, nodeID, series); err != nil {
				return nil, err
			}
		}
	}
	for i := range doc.Flows {
		spec := &doc.Flows[i]
		if err = s.AddFlow(spec.From, spec.To, buildFlow(spec)); err != nil {
			return nil, err
		}
	}

	return &Scenario{System: s, Timeline: tl, DiscountRate: doc.DiscountRate}, nil
}

func buildTimeline(doc *Document) (*timeline.Timeline, error) {
	switch {
	case doc.Horizon != nil && len(doc.Periods) > 0:
		return nil, ErrHorizonConflict
	case doc.Horizon != nil:
		return timeline.Uniform(doc.Horizon.Timesteps, doc.Horizon.Duration)
	case len(doc.Periods) > 0:
		periods := make([]timeline.Period, len(doc.Periods))
		for i, p := range doc.Periods {
			periods[i] = timeline.Period{Year: p.Year, Durations: p.Durations}
		}

		return timeline.New(periods)
	default:
		return nil, ErrNoHorizon
	}
}

func buildFlow(spec *FlowSpec) *network.Flow {
	f := &network.Flow{
		Nominal:         spec.Nominal,
		Min:             spec.Min,
		Max:             spec.Max,
		Fix:             spec.Fix,
		FullLoadTimeMin: spec.FullLoadTimeMin,
		FullLoadTimeMax: spec.FullLoadTimeMax,
		VariableCosts:   spec.VariableCosts,
		Integer:         spec.Integer,
	}
	if g := spec.PositiveGrad; g != nil {
		f.PositiveGradient = &network.Gradient{Limit: g.Limit, Costs: g.Costs}
	}
	if g := spec.NegativeGrad; g != nil {
		f.NegativeGradient = &network.Gradient{Limit: g.Limit, Costs: g.Costs}
	}
	if inv := spec.Invest; inv != nil {
		f.Invest = &network.InvestSpec{
			Minimum:        inv.Minimum,
			Maximum:        inv.Maximum,
			EPCosts:        inv.EPCosts,
			Offset:         inv.Offset,
			Existing:       inv.Existing,
			Lifetime:       inv.Lifetime,
			Age:            inv.Age,
			FixedCosts:     inv.FixedCosts,
			OverallMaximum: inv.OverallMaximum,
			OverallMinimum: inv.OverallMinimum,
			InterestRate:   inv.InterestRate,
			NonConvex:      inv.NonConvex,
		}
	}
	if nc := spec.NonConvex; nc != nil {
		f.NonConvex = &network.NonConvexSpec{
			InitialStatus:    nc.InitialStatus,
			StartupCosts:     nc.StartupCosts,
			ShutdownCosts:    nc.ShutdownCosts,
			ActivityCosts:    nc.ActivityCosts,
			MaximumStartups:  nc.MaximumStartups,
			MaximumShutdowns: nc.MaximumShutdowns,
			MinimumUptime:    nc.MinimumUptime,
			MinimumDowntime:  nc.MinimumDowntime,
		}
	}

	return f
}
