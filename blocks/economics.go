package blocks

import "math"

// Annuity returns the periodic-equivalent cost of a one-time investment
// expense capex over a lifetime of n years at interest rate wacc:
//
//	A = capex · wacc·(1+wacc)^n / ((1+wacc)^n - 1)
//
// A zero interest rate yields the limit capex/n (straight-line split).
func Annuity(capex float64, n int, wacc float64) (float64, error) {
	if n <= 0 {
		return 0, ErrBadLifetime
	}
	if wacc < 0 {
		return 0, ErrBadInterest
	}
	if wacc == 0 {
		return capex / float64(n), nil
	}
	q := math.Pow(1+wacc, float64(n))

	return capex * wacc * q / (q - 1), nil
}
