package events

import (
	"fmt"
	"strings"

	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

// AmbientCategory is one of the weighted narrative categories the ambient
// selector chooses between each tick.
type AmbientCategory string

const (
	CategoryTimeOfDay    AmbientCategory = "time-of-day"
	CategoryWeather      AmbientCategory = "weather"
	CategoryPopulation   AmbientCategory = "population"
	CategorySpotlight    AmbientCategory = "spotlight"
	CategoryHumor        AmbientCategory = "humor"
	CategoryPhilosophy   AmbientCategory = "philosophy"
	CategoryInterspecies AmbientCategory = "interspecies"
	CategoryTension      AmbientCategory = "tension"
	CategoryMilestone    AmbientCategory = "milestone"
)

// ambientCategoryOrder is the fixed iteration order used when turning an
// AmbientWeights map into a weighted-pick list. Map iteration order in Go
// is randomized per process, which would make the same rng.Source draw
// select a different category on different runs of an identically seeded
// simulation; iterating this slice instead keeps the cumulative-weight
// ranges stable across runs.
var ambientCategoryOrder = []AmbientCategory{
	CategoryTimeOfDay,
	CategoryWeather,
	CategoryPopulation,
	CategorySpotlight,
	CategoryHumor,
	CategoryPhilosophy,
	CategoryInterspecies,
	CategoryTension,
	CategoryMilestone,
}

// AmbientWeights lets the caller boost categories based on tick context
// (dawn/dusk transitions, notable weather, extreme population, dramatic
// predator/prey ratios, resource scarcity) before a category is drawn.
type AmbientWeights map[AmbientCategory]float64

// DefaultAmbientWeights is the baseline distribution before any contextual
// boosts are applied.
func DefaultAmbientWeights() AmbientWeights {
	return AmbientWeights{
		CategoryTimeOfDay:    1.0,
		CategoryWeather:      1.0,
		CategoryPopulation:   1.0,
		CategorySpotlight:    1.0,
		CategoryHumor:        0.6,
		CategoryPhilosophy:   0.4,
		CategoryInterspecies: 0.8,
		CategoryTension:      0.8,
		CategoryMilestone:    0.3,
	}
}

// ambientTemplates holds the placeholder prose per category. Template text
// is not part of the core contract — only the event shape is — but a
// non-empty template set keeps the ambient stream legible without a
// downstream renderer.
var ambientTemplates = map[AmbientCategory][]string{
	CategoryTimeOfDay:    {"The garden settles into %s.", "Light shifts as %s arrives."},
	CategoryWeather:      {"The sky holds steady.", "A change moves through the air."},
	CategoryPopulation:   {"The garden's census holds its shape.", "Something in the balance has shifted."},
	CategorySpotlight:    {"One creature goes about its quiet business."},
	CategoryHumor:        {"A vole trips over nothing in particular."},
	CategoryPhilosophy:   {"Growth and decay trade places again."},
	CategoryInterspecies: {"Paths cross between unrelated lives."},
	CategoryTension:      {"Something watches, and something is watched."},
	CategoryMilestone:    {"A lineage passes an unremarked threshold."},
}

// PickAmbientCategory draws one category proportional to weights.
func PickAmbientCategory(src rng.Source, weights AmbientWeights) AmbientCategory {
	items := make([]geo.Weighted[AmbientCategory], 0, len(ambientCategoryOrder))
	for _, cat := range ambientCategoryOrder {
		if w, ok := weights[cat]; ok {
			items = append(items, geo.Weighted[AmbientCategory]{Value: cat, Weight: w})
		}
	}
	picked, ok := geo.PickWeightedRandom(src, items)
	if !ok {
		return CategoryTimeOfDay
	}
	return picked
}

// RenderAmbient picks a template uniformly within category and substitutes
// placeholder.
func RenderAmbient(src rng.Source, category AmbientCategory, placeholder string) string {
	templates := ambientTemplates[category]
	tmpl, ok := geo.PickRandom(src, templates)
	if !ok {
		return fmt.Sprintf("The garden continues, %s.", placeholder)
	}
	if placeholder == "" || !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, placeholder)
}
