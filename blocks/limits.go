package blocks

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/enflow/model"
	"github.com/katalvlaran/enflow/timeline"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Limiter attaches cross-flow caps to an already formulated model. It finds
// the sizing variables of investment flows by their flow key ("from->to")
// and constrains them jointly, which is how shared budgets, land use or
// resource ceilings spanning several technologies are expressed.
//
// A Limiter claims the invest_limit namespace once; create it after
// Formulate and reuse it for every cap.
type Limiter struct {
	ns *model.Namespace
	m  *model.Model
	tl *timeline.Timeline
}

// NewLimiter prepares a Limiter on a formulated model.
func NewLimiter(m *model.Model, tl *timeline.Timeline) (*Limiter, error) {
	if m == nil {
		return nil, ErrNilModel
	}
	if tl == nil {
		return nil, ErrNilTimeline
	}
	ns, err := m.Namespace(nsLimit)
	if err != nil {
		return nil, err
	}

	return &Limiter{ns: ns, m: m, tl: tl}, nil
}

// investVar resolves the sizing variable of an investment flow in a period.
func (l *Limiter) investVar(key string, p int) (model.VarID, error) {
	id, ok := l.m.Var(nsInvest + ".invest" + pOnly(key, p))
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, ErrUnknownInvestFlow)
	}

	return id, nil
}

// Overall caps the capacity invested over the whole horizon:
//
//	sum_{f,p} invest(f,p) <= limit
func (l *Limiter) Overall(name string, keys []string, limit float64) error {
	sum := model.NewExpr()
	for _, key := range keys {
		for p := 0; p < l.tl.Periods(); p++ {
			id, err := l.investVar(key, p)
			if err != nil {
				return err
			}
			sum.Add(1, id)
		}
	}

	return l.ns.Constrain(name, sum, model.LessEqual, limit)
}

// PerPeriod caps the capacity invested in each period separately. The limit
// series broadcasts like any other: one value for all periods or one per
// period.
func (l *Limiter) PerPeriod(name string, keys []string, limits []float64) error {
	if n := len(limits); n != 1 && n != l.tl.Periods() {
		return fmt.Errorf("%s: %d limits for %d periods: %w", name, n, l.tl.Periods(), ErrBadLimitShape)
	}
	for p := 0; p < l.tl.Periods(); p++ {
		sum := model.NewExpr()
		for _, key := range keys {
			id, err := l.investVar(key, p)
			if err != nil {
				return err
			}
			sum.Add(1, id)
		}
		lim := limits[0]
		if len(limits) > 1 {
			lim = limits[p]
		}
		if err := l.ns.Constrain(name+fmt.Sprintf("[p%d]", p), sum, model.LessEqual, lim); err != nil {
			return err
		}
	}

	return nil
}

// Budget caps the discounted investment costs accumulated by the investment
// block over the whole horizon:
//
//	sum_{f,p} costs(invest(f,p)) <= limit
//
// It requires a model formulated with at least one investment flow.
func (l *Limiter) Budget(name string, limit float64) error {
	comp, ok := l.m.CostComponent(nsInvest)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoInvestmentCosts)
	}

	return l.ns.Constrain(name, comp.Total.Clone(), model.LessEqual, limit)
}

// Weighted caps a weighted sum of invested capacity, e.g. square metres per
// installed unit against available land:
//
//	sum_{f,p} weight(f)·invest(f,p) <= limit
func (l *Limiter) Weighted(name string, weights map[string]float64, limit float64) error {
	sum := model.NewExpr()
	for _, key := range sortedKeys(weights) {
		for p := 0; p < l.tl.Periods(); p++ {
			id, err := l.investVar(key, p)
			if err != nil {
				return err
			}
			sum.Add(weights[key], id)
		}
	}

	return l.ns.Constrain(name, sum, model.LessEqual, limit)
}
