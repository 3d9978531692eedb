// Package geo provides the pure spatial and weighted-random primitives
// shared by every behavior pass. Nothing here holds state beyond the
// injected rng.Source.
package geo

import (
	"math"

	"github.com/google/uuid"

	"github.com/chaosgarden/ecosim/internal/rng"
)

// Point is a real-valued 2-D position within the garden rectangle.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Clamp restricts v to [lo,hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPoint restricts p to the garden rectangle [0,width] x [0,height].
func ClampPoint(p Point, width, height float64) Point {
	return Point{
		X: Clamp(p.X, 0, width),
		Y: Clamp(p.Y, 0, height),
	}
}

// RandomInRange returns a uniform real in [lo,hi).
func RandomInRange(src rng.Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// PickRandom returns a uniformly random element of seq, or the zero value
// and false if seq is empty.
func PickRandom[T any](src rng.Source, seq []T) (T, bool) {
	var zero T
	if len(seq) == 0 {
		return zero, false
	}
	return seq[src.IntN(len(seq))], true
}

// Weighted pairs a value with its selection weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// PickWeightedRandom selects one entry from items proportional to its
// weight. Non-positive weights are treated as zero. Ties (equal cumulative
// position) resolve to the earliest qualifying input in iteration order.
// Returns the zero value and false if items is empty or every weight is
// non-positive.
func PickWeightedRandom[T any](src rng.Source, items []Weighted[T]) (T, bool) {
	var zero T
	total := 0.0
	for _, it := range items {
		if it.Weight > 0 {
			total += it.Weight
		}
	}
	if total <= 0 {
		return zero, false
	}
	r := src.Float64() * total
	cursor := 0.0
	for _, it := range items {
		if it.Weight <= 0 {
			continue
		}
		cursor += it.Weight
		if r < cursor {
			return it.Value, true
		}
	}
	// Floating point edge case: fall back to the last positive-weight entry.
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Weight > 0 {
			return items[i].Value, true
		}
	}
	return zero, false
}

// RandomPositionInGarden samples a uniform point within the garden
// rectangle.
func RandomPositionInGarden(src rng.Source, width, height float64) Point {
	return Point{
		X: RandomInRange(src, 0, width),
		Y: RandomInRange(src, 0, height),
	}
}

// PositionNearParent samples a uniform angle and a uniform radius in
// [0,radius], returning a point offset from p and clamped to the garden.
func PositionNearParent(src rng.Source, p Point, radius, width, height float64) Point {
	angle := RandomInRange(src, 0, 2*math.Pi)
	r := RandomInRange(src, 0, radius)
	offset := Point{
		X: p.X + r*math.Cos(angle),
		Y: p.Y + r*math.Sin(angle),
	}
	return ClampPoint(offset, width, height)
}

// ApplyMutation multiplies value by a uniform factor in
// [1-mutationRange, 1+mutationRange].
func ApplyMutation(src rng.Source, value, mutationRange float64) float64 {
	factor := 1 - mutationRange + src.Float64()*(2*mutationRange)
	return value * factor
}

// NewEntityID returns an RFC-4122 v4 identifier, unique with overwhelming
// probability.
func NewEntityID() string {
	return uuid.New().String()
}
