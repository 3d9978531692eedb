// Package fertility derives a static, per-position soil quality field from
// coherent noise. It is sampled once per garden (seeded from the garden's
// own world seed) and recomputed on demand rather than persisted per cell.
package fertility

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field samples a soil-quality scalar for any position in the garden.
type Field struct {
	noise   opensimplex.Noise
	scale   float64
	enabled bool
}

// New returns a Field seeded from seed. scale controls the spatial
// wavelength of fertility patches; smaller values produce larger patches.
func New(seed int64, scale float64, enabled bool) *Field {
	return &Field{
		noise:   opensimplex.NewNormalized(seed),
		scale:   scale,
		enabled: enabled,
	}
}

// At returns the fertility multiplier at (x,y), in [0.5, 1.5]. Disabled
// fields always return 1.0 so plant photosynthesis gain is unchanged from
// the un-enriched contract.
func (f *Field) At(x, y float64) float64 {
	if f == nil || !f.enabled {
		return 1.0
	}
	n := octaveNoise(f.noise, x, y, 3, f.scale, 0.5) // in [0,1]
	return 0.5 + n
}

// octaveNoise layers multiple noise frequencies for a more organic field
// than a single simplex lookup.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
