package engine

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

func lognormal(r *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(r.NormFloat64()*sigma + mu)
}

// randIntBetween draws uniformly from [min, max] inclusive.
func randIntBetween(r *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

func cumsum(weights []float64) []float64 {
	out := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		sum += w
		out[i] = sum
	}
	return out
}

// weightedIndex draws an index proportionally to the weights behind the
// cumulative sum. cum must be non-empty with a positive total.
func weightedIndex(r *rand.Rand, cum []float64) int {
	total := cum[len(cum)-1]
	x := r.Float64() * total
	i := sort.SearchFloat64s(cum, x)
	if i == len(cum) {
		i = len(cum) - 1
	}
	// SearchFloat64s lands on the first cum value >= x; zero-weight entries
	// share a cum value with their predecessor and must be skipped.
	for i < len(cum)-1 && x == cum[i] {
		i++
	}
	return i
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// randDate draws a uniform whole day in [start, end] inclusive.
func randDate(r *rand.Rand, start, end time.Time) time.Time {
	days := int(day(end).Sub(day(start)).Hours() / 24)
	if days <= 0 {
		return day(start)
	}
	return day(start).AddDate(0, 0, r.Intn(days+1))
}

func daysBetween(a, b time.Time) int {
	return int(day(b).Sub(day(a)).Hours() / 24)
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// shuffleOrder returns a random permutation of [0,n).
func shuffleOrder(r *rand.Rand, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	r.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}
