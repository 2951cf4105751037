// Package timeline provides the period / timestep index every formulation
// block iterates over.
//
// A Timeline is an ordered sequence of planning periods (coarse buckets such
// as years), each holding a run of fine-grained timesteps with individual
// duration weights. Timesteps are numbered globally 0..T-1 across all
// periods, so a (period, timestep) pair always carries the global timestep
// index — blocks never re-derive offsets.
//
// Periods additionally carry a year offset from the horizon start, used by
// the investment block for lifetime arithmetic and discounting. The year
// offsets double as the lookup table for the commissioning period of
// capacity that expires in a later period: CommissioningPeriod answers
// "which period built the capacity that dies in period p" in O(log P)
// against the precomputed offsets instead of a per-flow linear scan.
//
// A Timeline with a single period is a plain dispatch horizon; MultiPeriod
// reports whether lifetime / decommissioning accounting applies at all.
//
// Errors (sentinel):
//
//	– ErrNoPeriods           if no period is supplied.
//	– ErrNoTimesteps         if a period has no timesteps.
//	– ErrBadDuration         if a duration weight is not strictly positive.
//	– ErrBadYearOffset       if year offsets do not start at 0 or decrease.
//
// Example usage:
//
//	tl, err := timeline.New([]timeline.Period{
//	    {Year: 0, Durations: []float64{1, 1, 1}},
//	    {Year: 1, Durations: []float64{1, 1, 1}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tl.Each(func(p, t int) { fmt.Println(p, t, tl.Duration(t)) })
package timeline
