package blocks

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/network"
	"github.com/katalvlaran/enflow/timeline"
)

// Sentinel errors raised during formulation.
var (
	// ErrNilSystem indicates a nil *network.System was passed to Formulate.
	ErrNilSystem = errors.New("blocks: system is nil")

	// ErrNilTimeline indicates a nil *timeline.Timeline was passed to
	// Formulate.
	ErrNilTimeline = errors.New("blocks: timeline is nil")

	// ErrNilModel indicates a nil *model.Model handed to NewLimiter.
	ErrNilModel = errors.New("blocks: model is nil")

	// ErrMissingConversionFactor indicates a converter with an incident
	// flow it holds no conversion-factor series for. The wrapped message
	// names the offending (node, flow) pair.
	ErrMissingConversionFactor = errors.New("blocks: missing conversion factor")

	// ErrBadLifetime indicates a non-positive lifetime handed to Annuity.
	ErrBadLifetime = errors.New("blocks: lifetime must be positive")

	// ErrBadInterest indicates a negative interest rate handed to Annuity.
	ErrBadInterest = errors.New("blocks: interest rate must not be negative")

	// ErrNoInvestmentCosts indicates a budget-limit constraint was requested
	// on a model without registered investment costs.
	ErrNoInvestmentCosts = errors.New("blocks: model has no investment cost component")

	// ErrUnknownInvestFlow indicates a weighted invest limit referencing a
	// flow key with no invest variables in the model.
	ErrUnknownInvestFlow = errors.New("blocks: no invest variables for flow key")

	// ErrBadLimitShape indicates a per-period limit series that matches
	// neither one value nor one value per period.
	ErrBadLimitShape = errors.New("blocks: limit series does not match period count")
)

// WarnDefaultInterest is the warning code recorded when an investment flow
// omits an explicit interest rate and the model discount rate is used.
const WarnDefaultInterest = "default_interest"

// Namespace names, one per block. Partitioning the artifact namespace this
// way is what guarantees no two blocks write the same named artifact.
const (
	nsDispatch  = "flow"
	nsFlow      = "simple_flow"
	nsInvest    = "invest_flow"
	nsNonConvex = "nonconvex_flow"
	nsBus       = "bus"
	nsConverter = "converter"
	nsLimit     = "invest_limit"
)

// Block is one composable formulation module: it inspects its subset of the
// network and emits variables, constraints and a local cost expression into
// the shared context.
type Block interface {
	// Name returns the block's namespace name.
	Name() string

	// Build emits the block's variables and constraints.
	Build(ctx *Context) error

	// Costs returns the block's local contribution to the objective.
	// It must be called after Build.
	Costs(ctx *Context) (*model.LinExpr, error)
}

// Context carries everything a block needs: explicit arguments instead of
// ambient state. Blocks read the system and timeline, write through the
// model handle, and look dispatch variables up by (flow, global timestep).
type Context struct {
	Model        *model.Model
	System       *network.System
	Timeline     *timeline.Timeline
	DiscountRate float64

	dispatch map[*network.Flow][]model.VarID
}

// Dispatch returns the actual-flow-value variable of f at global timestep t.
func (ctx *Context) Dispatch(f *network.Flow, t int) model.VarID {
	return ctx.dispatch[f][t]
}

// discount returns the objective discount factor (1+dr)^-year(p).
// Single-period models are undiscounted.
func (ctx *Context) discount(p int) float64 {
	if !ctx.Timeline.MultiPeriod() {
		return 1
	}

	return math.Pow(1+ctx.DiscountRate, -float64(ctx.Timeline.Year(p)))
}

// Options configures Formulate.
type Options struct {
	// DiscountRate is the model-wide discount rate applied per period year
	// offset in multi-period mode. Default 0.
	DiscountRate float64

	// Logger receives mirrored usage warnings. Default slog.Default().
	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithDiscountRate sets the model-wide discount rate.
func WithDiscountRate(r float64) Option {
	return func(o *Options) { o.DiscountRate = r }
}

// WithLogger routes warning mirroring to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// pt renders the canonical (flow key, period, timestep) artifact suffix.
func pt(key string, p, t int) string { return fmt.Sprintf("[%s,p%d,t%d]", key, p, t) }

// pOnly renders the canonical (flow key, period) artifact suffix.
func pOnly(key string, p int) string { return fmt.Sprintf("[%s,p%d]", key, p) }

// tOnly renders the canonical (flow key, timestep) artifact suffix.
func tOnly(key string, t int) string { return fmt.Sprintf("[%s,t%d]", key, t) }
