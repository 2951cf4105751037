package timeline

import (
	"errors"
	"sort"
)

// Sentinel errors for timeline construction.
var (
	// ErrNoPeriods indicates that New was called without any period.
	ErrNoPeriods = errors.New("timeline: no periods supplied")

	// ErrNoTimesteps indicates that a period carries no timesteps.
	ErrNoTimesteps = errors.New("timeline: period has no timesteps")

	// ErrBadDuration indicates a non-positive timestep duration weight.
	ErrBadDuration = errors.New("timeline: duration must be positive")

	// ErrBadYearOffset indicates year offsets that do not start at zero
	// or are not strictly increasing.
	ErrBadYearOffset = errors.New("timeline: year offsets must start at 0 and increase")
)

// Period describes one planning period before Timeline construction.
//
// Year is the offset in years from the horizon start (period 0 must carry
// Year 0). Durations holds one weight per timestep inside the period, in
// whatever unit the cost series use (typically hours).
type Period struct {
	Year      int
	Durations []float64
}

// Timeline is the immutable (period, timestep) index shared by all blocks.
//
// Timesteps are numbered globally across periods; all accessors take either
// a global timestep index t or a period index p.
type Timeline struct {
	durations []float64 // global timestep -> duration weight
	periodOf  []int     // global timestep -> owning period
	steps     [][]int   // period -> global timestep indices
	years     []int     // period -> year offset from horizon start
}

// New validates the period sequence and builds the global index.
// Complexity: O(T) over all timesteps.
func New(periods []Period) (*Timeline, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	tl := &Timeline{
		steps: make([][]int, len(periods)),
		years: make([]int, len(periods)),
	}
	for p, per := range periods {
		if len(per.Durations) == 0 {
			return nil, ErrNoTimesteps
		}
		if p == 0 && per.Year != 0 {
			return nil, ErrBadYearOffset
		}
		if p > 0 && per.Year <= periods[p-1].Year {
			return nil, ErrBadYearOffset
		}
		tl.years[p] = per.Year
		tl.steps[p] = make([]int, 0, len(per.Durations))
		for _, d := range per.Durations {
			if d <= 0 {
				return nil, ErrBadDuration
			}
			tl.steps[p] = append(tl.steps[p], len(tl.durations))
			tl.durations = append(tl.durations, d)
			tl.periodOf = append(tl.periodOf, p)
		}
	}

	return tl, nil
}

// Uniform is a convenience constructor for a single-period horizon of n
// timesteps, each weighted dur.
func Uniform(n int, dur float64) (*Timeline, error) {
	durations := make([]float64, n)
	for i := range durations {
		durations[i] = dur
	}

	return New([]Period{{Year: 0, Durations: durations}})
}

// Len returns the total number of timesteps across all periods.
func (tl *Timeline) Len() int { return len(tl.durations) }

// Periods returns the number of planning periods.
func (tl *Timeline) Periods() int { return len(tl.years) }

// MultiPeriod reports whether lifetime / decommissioning accounting applies.
func (tl *Timeline) MultiPeriod() bool { return len(tl.years) > 1 }

// Year returns the year offset of period p from the horizon start.
func (tl *Timeline) Year(p int) int { return tl.years[p] }

// Duration returns the weight of global timestep t.
func (tl *Timeline) Duration(t int) float64 { return tl.durations[t] }

// PeriodOf returns the period owning global timestep t.
func (tl *Timeline) PeriodOf(t int) int { return tl.periodOf[t] }

// Steps returns the global timestep indices of period p. The returned slice
// is shared; callers must not mutate it.
func (tl *Timeline) Steps(p int) []int { return tl.steps[p] }

// Each invokes fn for every (period, global timestep) pair in order.
func (tl *Timeline) Each(fn func(p, t int)) {
	for t, p := range tl.periodOf {
		fn(p, t)
	}
}

// CommissioningPeriod locates the period whose investment reaches the end of
// its lifetime in period p: the period k preceding the first sign change of
// years(p) - lifetime - years(k). The boolean reports whether any capacity
// can expire in p at all (lifetime <= years(p)); period 0 never
// decommissions.
//
// Complexity: O(log P) binary search over the year-offset table.
func (tl *Timeline) CommissioningPeriod(p, lifetime int) (int, bool) {
	if p == 0 || lifetime > tl.years[p] {
		return 0, false
	}
	// First k with years(k) > years(p) - lifetime; the sign change happens
	// there, so commissioning took place one period earlier.
	cut := tl.years[p] - lifetime
	k := sort.SearchInts(tl.years, cut+1)

	return k - 1, true
}
