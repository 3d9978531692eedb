package organism

import (
	"math"

	"github.com/chaosgarden/ecosim/internal/geo"
	"github.com/chaosgarden/ecosim/internal/rng"
)

// TraitMutation records one trait's old and new value, for MUTATION event
// metadata. It is only recorded when the relative change exceeds 1%,
// matching the domain's "don't report noise" rule.
type TraitMutation struct {
	Field string
	Old   float64
	New   float64
}

// mutateField applies the per-trait mutation gate: with probability
// mutationProbability, multiply by a uniform factor in
// [1-mutationRange, 1+mutationRange].
func mutateField(src rng.Source, mutationProbability, mutationRange float64, field string, value float64) (float64, *TraitMutation) {
	if src.Float64() >= mutationProbability {
		return value, nil
	}
	newValue := geo.ApplyMutation(src, value, mutationRange)
	if value == 0 {
		return newValue, nil
	}
	if math.Abs(newValue-value)/math.Abs(value) <= 0.01 {
		return newValue, nil
	}
	return newValue, &TraitMutation{Field: field, Old: value, New: newValue}
}

// MutatePlantTraits returns a mutated copy of parent plus the list of
// reportable mutations.
func MutatePlantTraits(src rng.Source, mutationProbability, mutationRange float64, parent PlantTraits) (PlantTraits, []TraitMutation) {
	child := parent
	var muts []TraitMutation
	if v, m := mutateField(src, mutationProbability, mutationRange, "reproductionRate", parent.ReproductionRate); m != nil {
		child.ReproductionRate = v
		muts = append(muts, *m)
	} else {
		child.ReproductionRate = v
	}
	if v, m := mutateField(src, mutationProbability, mutationRange, "metabolismEfficiency", parent.MetabolismEfficiency); m != nil {
		child.MetabolismEfficiency = v
		muts = append(muts, *m)
	} else {
		child.MetabolismEfficiency = v
	}
	if v, m := mutateField(src, mutationProbability, mutationRange, "photosynthesisRate", parent.PhotosynthesisRate); m != nil {
		child.PhotosynthesisRate = v
		muts = append(muts, *m)
	} else {
		child.PhotosynthesisRate = v
	}
	return child, muts
}

// MutateHerbivoreTraits returns a mutated copy of parent plus the list of
// reportable mutations.
func MutateHerbivoreTraits(src rng.Source, mutationProbability, mutationRange float64, parent HerbivoreTraits) (HerbivoreTraits, []TraitMutation) {
	child := parent
	var muts []TraitMutation
	fields := []struct {
		name string
		get  func() float64
		set  func(float64)
	}{
		{"reproductionRate", func() float64 { return parent.ReproductionRate }, func(v float64) { child.ReproductionRate = v }},
		{"metabolismEfficiency", func() float64 { return parent.MetabolismEfficiency }, func(v float64) { child.MetabolismEfficiency = v }},
		{"movementSpeed", func() float64 { return parent.MovementSpeed }, func(v float64) { child.MovementSpeed = v }},
		{"perceptionRadius", func() float64 { return parent.PerceptionRadius }, func(v float64) { child.PerceptionRadius = v }},
		{"threatDetectionRadius", func() float64 { return parent.ThreatDetectionRadius }, func(v float64) { child.ThreatDetectionRadius = v }},
	}
	for _, f := range fields {
		v, m := mutateField(src, mutationProbability, mutationRange, f.name, f.get())
		f.set(v)
		if m != nil {
			muts = append(muts, *m)
		}
	}
	return child, muts
}

// MutateCarnivoreTraits returns a mutated copy of parent plus the list of
// reportable mutations.
func MutateCarnivoreTraits(src rng.Source, mutationProbability, mutationRange float64, parent CarnivoreTraits) (CarnivoreTraits, []TraitMutation) {
	child := parent
	var muts []TraitMutation
	fields := []struct {
		name string
		get  func() float64
		set  func(float64)
	}{
		{"reproductionRate", func() float64 { return parent.ReproductionRate }, func(v float64) { child.ReproductionRate = v }},
		{"metabolismEfficiency", func() float64 { return parent.MetabolismEfficiency }, func(v float64) { child.MetabolismEfficiency = v }},
		{"movementSpeed", func() float64 { return parent.MovementSpeed }, func(v float64) { child.MovementSpeed = v }},
		{"perceptionRadius", func() float64 { return parent.PerceptionRadius }, func(v float64) { child.PerceptionRadius = v }},
	}
	for _, f := range fields {
		v, m := mutateField(src, mutationProbability, mutationRange, f.name, f.get())
		f.set(v)
		if m != nil {
			muts = append(muts, *m)
		}
	}
	return child, muts
}

// MutateFungusTraits returns a mutated copy of parent plus the list of
// reportable mutations.
func MutateFungusTraits(src rng.Source, mutationProbability, mutationRange float64, parent FungusTraits) (FungusTraits, []TraitMutation) {
	child := parent
	var muts []TraitMutation
	fields := []struct {
		name string
		get  func() float64
		set  func(float64)
	}{
		{"reproductionRate", func() float64 { return parent.ReproductionRate }, func(v float64) { child.ReproductionRate = v }},
		{"metabolismEfficiency", func() float64 { return parent.MetabolismEfficiency }, func(v float64) { child.MetabolismEfficiency = v }},
		{"decompositionRate", func() float64 { return parent.DecompositionRate }, func(v float64) { child.DecompositionRate = v }},
		{"perceptionRadius", func() float64 { return parent.PerceptionRadius }, func(v float64) { child.PerceptionRadius = v }},
	}
	for _, f := range fields {
		v, m := mutateField(src, mutationProbability, mutationRange, f.name, f.get())
		f.set(v)
		if m != nil {
			muts = append(muts, *m)
		}
	}
	return child, muts
}
