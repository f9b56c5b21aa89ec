// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package downsample

import (
	"math"
	"math/rand"
)

// MultivariateHypergeometric draws n items without replacement from an urn
// holding counts[i] items of category i, and returns how many items of each
// category were drawn.  The result has the same length as counts, sums to
// min(n, sum(counts)), and never exceeds counts elementwise.
//
// Categories are drawn one at a time from their conditional (univariate)
// hypergeometric marginals, so the draw sequence is a deterministic function
// of rng's state and the category order.
func MultivariateHypergeometric(rng *rand.Rand, counts []int64, n int64) []int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	if n > total {
		n = total
	}
	out := make([]int64, len(counts))
	remaining := total
	for i, c := range counts {
		if n == 0 {
			break
		}
		x := hypergeometric(rng, c, remaining-c, n)
		out[i] = x
		n -= x
		remaining -= c
	}
	return out
}

// hypergeometric returns the number of successes among n draws without
// replacement from an urn with good successes and bad failures.  It inverts
// the CDF starting from the mode and walking outwards, which costs time
// proportional to the standard deviation of the distribution.
func hypergeometric(rng *rand.Rand, good, bad, n int64) int64 {
	switch {
	case n <= 0 || good <= 0:
		return 0
	case bad <= 0:
		return n
	}
	lo := n - bad
	if lo < 0 {
		lo = 0
	}
	hi := n
	if good < hi {
		hi = good
	}
	if lo == hi {
		return lo
	}
	g, b, fn := float64(good), float64(bad), float64(n)
	mode := int64(math.Floor((fn + 1) * (g + 1) / (g + b + 2)))
	if mode < lo {
		mode = lo
	} else if mode > hi {
		mode = hi
	}
	pMode := math.Exp(logHypergeometricPMF(mode, good, bad, n))

	u := rng.Float64() - pMode
	if u <= 0 {
		return mode
	}
	up, down := mode, mode
	pUp, pDown := pMode, pMode
	for up < hi || down > lo {
		if up < hi {
			k := float64(up)
			pUp *= (g - k) * (fn - k) / ((k + 1) * (b - fn + k + 1))
			up++
			if u -= pUp; u <= 0 {
				return up
			}
		}
		if down > lo {
			k := float64(down)
			pDown *= k * (b - fn + k) / ((g - k + 1) * (fn - k + 1))
			down--
			if u -= pDown; u <= 0 {
				return down
			}
		}
	}
	// Rounding left some mass unaccounted for.
	return mode
}

func logHypergeometricPMF(k, good, bad, n int64) float64 {
	return logChoose(good, k) + logChoose(bad, n-k) - logChoose(good+bad, n)
}

func logChoose(n, k int64) float64 {
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
