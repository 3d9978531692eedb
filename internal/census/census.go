// Package census computes the PopulationSummary aggregate and the
// population-change events derived from comparing two consecutive
// summaries.
package census

import (
	"fmt"

	"github.com/chaosgarden/ecosim/internal/events"
	"github.com/chaosgarden/ecosim/internal/organism"
)

// TypeCounts holds living/dead/all-time-dead counts for one Kind.
type TypeCounts struct {
	Living      int `json:"living"`
	InGardenDead int `json:"inGardenDead"`
	AllTimeDead int `json:"allTimeDead"`
}

// Total returns living + in-garden dead, per the domain's resolved
// definition of "total" (not all entities ever seen).
func (t TypeCounts) Total() int { return t.Living + t.InGardenDead }

// Summary mirrors the persisted PopulationSummary shape.
type Summary struct {
	Plant     TypeCounts `json:"plant"`
	Herbivore TypeCounts `json:"herbivore"`
	Carnivore TypeCounts `json:"carnivore"`
	Fungus    TypeCounts `json:"fungus"`
}

// TotalLiving sums living counts across every type.
func (s Summary) TotalLiving() int {
	return s.Plant.Living + s.Herbivore.Living + s.Carnivore.Living + s.Fungus.Living
}

func (s Summary) totalOf(k organism.Kind) int {
	return s.forKind(k).Total()
}

func (s Summary) forKind(k organism.Kind) TypeCounts {
	switch k {
	case organism.KindPlant:
		return s.Plant
	case organism.KindHerbivore:
		return s.Herbivore
	case organism.KindCarnivore:
		return s.Carnivore
	case organism.KindFungus:
		return s.Fungus
	default:
		return TypeCounts{}
	}
}

func (s *Summary) setForKind(k organism.Kind, c TypeCounts) {
	switch k {
	case organism.KindPlant:
		s.Plant = c
	case organism.KindHerbivore:
		s.Herbivore = c
	case organism.KindCarnivore:
		s.Carnivore = c
	case organism.KindFungus:
		s.Fungus = c
	}
}

// Compute builds the new Summary from the full post-behavior entity set
// (living and decomposable-dead), the previous summary's all-time-dead
// counters, and the ids of entities that died on this specific tick.
// newlyDeadIDs must carry only this tick's deaths — a corpse persists in
// allEntities across many ticks while it decomposes, but it must only be
// counted into AllTimeDead once, on the tick it actually died.
func Compute(allEntities []*organism.Entity, previous Summary, newlyDeadIDs []string) Summary {
	newlyDead := make(map[string]bool, len(newlyDeadIDs))
	for _, id := range newlyDeadIDs {
		newlyDead[id] = true
	}

	var next Summary
	kinds := []organism.Kind{organism.KindPlant, organism.KindHerbivore, organism.KindCarnivore, organism.KindFungus}
	for _, k := range kinds {
		prev := previous.forKind(k)
		counts := TypeCounts{AllTimeDead: prev.AllTimeDead}
		for _, e := range allEntities {
			if e.Kind != k {
				continue
			}
			switch {
			case e.IsAlive:
				counts.Living++
			case e.IsDecomposableCorpse():
				counts.InGardenDead++
			}
			if newlyDead[e.ID] {
				counts.AllTimeDead++
			}
		}
		next.setForKind(k, counts)
	}
	return next
}

// EmitPopulationEvents compares previous and next summaries and emits
// EXTINCTION, ECOSYSTEM_COLLAPSE, POPULATION_EXPLOSION, and
// POPULATION_DELTA events into buf.
func EmitPopulationEvents(buf *events.Buffer, previous, next Summary) {
	kinds := []organism.Kind{organism.KindPlant, organism.KindHerbivore, organism.KindCarnivore, organism.KindFungus}
	for _, k := range kinds {
		prevLiving := previous.forKind(k).Living
		nextLiving := next.forKind(k).Living
		if prevLiving > 0 && nextLiving == 0 {
			buf.Emit(events.Extinction, events.Critical,
				fmt.Sprintf("%s have vanished from the garden", k),
				nil, []string{"extinction", "ecology", string(k)}, nil)
		}
		if prevLiving > 0 && nextLiving >= prevLiving*3 {
			buf.Emit(events.PopulationExplosion, events.High,
				fmt.Sprintf("%s population has exploded", k),
				nil, []string{"population", "chaos", string(k)},
				map[string]any{"previous": prevLiving, "current": nextLiving})
		}
	}

	prevTotal := previous.TotalLiving()
	nextTotal := next.TotalLiving()
	if prevTotal >= 10 && nextTotal < 10 {
		buf.Emit(events.EcosystemCollapse, events.Critical,
			"the garden's ecosystem has collapsed",
			nil, []string{"collapse", "ecology"},
			map[string]any{"previous": prevTotal, "current": nextTotal})
	}

	plantDelta := next.Plant.Living - previous.Plant.Living
	herbivoreDelta := next.Herbivore.Living - previous.Herbivore.Living
	if absInt(plantDelta) > 5 || absInt(herbivoreDelta) > 2 {
		buf.Emit(events.PopulationDelta, events.Low,
			"the garden's population shifted noticeably",
			nil, []string{"census", "population"},
			map[string]any{"plantDelta": plantDelta, "herbivoreDelta": herbivoreDelta})
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
