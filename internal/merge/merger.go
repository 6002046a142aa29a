// Package merge composes several chains ("legs") into one multi-leg chain
// that a step-by-step executor can run like any other chain.
//
// Legs can be aligned step by step (Parallel), laid end to end (Serial), or
// grouped by alignment group and handled with both (Auto). In every case each
// leg keeps a fixed slot in every merged step, and positions where a leg has
// no work are filled with deterministic placeholders.
package merge

import (
	"fmt"
	"slices"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

// Strategy selects how legs are composed.
type Strategy string

const (
	StrategyParallel Strategy = "parallel"
	StrategySerial   Strategy = "serial"
	StrategyAuto     Strategy = "auto"
)

// ParseStrategy converts a strategy name. The empty string means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyParallel, StrategySerial:
		return Strategy(s), nil
	default:
		return "", configErrorf("", "unknown merge strategy %q", s)
	}
}

// Request is one merge: the legs, the strategy and its parameters.
type Request struct {
	Legs     []chain.Chain
	Strategy Strategy

	// Offset applies to the parallel strategy and must be 0.
	Offset int

	// GroupOrder is the total order of alignment groups used by the auto
	// strategy.
	GroupOrder []string
}

// Merger runs merges. It holds no per-merge state and can be shared by
// goroutines as long as its Cache is safe for concurrent use.
type Merger struct {
	factory  *Factory
	combiner *Combiner
}

// New returns a Merger whose placeholders are memoized in cache. A nil cache
// gets a private MapCache.
func New(cache Cache) *Merger {
	factory := NewFactory(cache)
	return &Merger{
		factory:  factory,
		combiner: NewCombiner(factory),
	}
}

// Merge dispatches req to the strategy it names.
func (m *Merger) Merge(req Request) (chain.Chain, error) {
	switch req.Strategy {
	case StrategyParallel:
		return m.Parallel(req.Legs, req.Offset)
	case StrategySerial:
		return m.Serial(req.Legs)
	case StrategyAuto, "":
		return m.Auto(req.Legs, req.GroupOrder)
	default:
		return chain.Chain{}, configErrorf(chainName(req.Legs), "unknown merge strategy %q", req.Strategy)
	}
}

// checkLegs rejects an empty leg list and legs from different chains.
func checkLegs(legs []chain.Chain) error {
	if len(legs) == 0 {
		return configErrorf("", "no legs to merge")
	}
	name := legs[0].Name
	for i, leg := range legs[1:] {
		if leg.Name != name {
			return structuralErrorf(name, "leg %d belongs to chain %q", i+1, leg.Name)
		}
		if leg.Width() == 0 {
			return structuralErrorf(name, "leg %d has no slots", i+1)
		}
	}
	if legs[0].Width() == 0 {
		return structuralErrorf(name, "leg 0 has no slots")
	}
	return nil
}

// multiPartSignatures may describe one slot with several parts, e.g. a jet
// leg asking for 1j100 and 2j50 at once.
var multiPartSignatures = map[string]bool{
	"Jet":  true,
	"Bjet": true,
}

// checkDescriptors verifies that every slot's descriptor agrees with the
// multiplicity the step declares for it.
func checkDescriptors(legs []chain.Chain) error {
	for li, leg := range legs {
		for si, step := range leg.Steps {
			if len(step.Descriptors) != len(step.Multiplicity) {
				return configErrorf(leg.Name, "leg %d step %q declares %d multiplicities but has %d descriptors",
					li, step.Name, len(step.Multiplicity), len(step.Descriptors))
			}
			for slot, d := range step.Descriptors {
				if multiPartSignatures[d.Signature] {
					continue
				}
				if len(d.Parts) != 1 {
					return configErrorf(leg.Name, "leg %d step %d slot %d: %s slot has %d parts, want 1",
						li, si, slot, d.Signature, len(d.Parts)).With("step", step.Name)
				}
				if got, want := d.Parts[0].Multiplicity, step.Multiplicity[slot]; got != want {
					return configErrorf(leg.Name, "leg %d step %d slot %d: part multiplicity %d, step declares %d",
						li, si, slot, got, want).With("step", step.Name)
				}
			}
		}
	}
	return nil
}

// lengthFunc folds the per-group step counts of the legs.
type lengthFunc func(acc, n int) int

// longest is used when legs run side by side, total when they run one after
// the other.
func longest(acc, n int) int { return max(acc, n) }
func total(acc, n int) int   { return acc + n }

func assemble(legs []chain.Chain, steps []chain.Step, fold lengthFunc) (chain.Chain, error) {
	out := chain.Chain{
		Name:             legs[0].Name,
		Steps:            steps,
		AlignmentLengths: make(map[string]int),
	}
	for _, leg := range legs {
		out.L1Thresholds = append(out.L1Thresholds, leg.L1Thresholds...)
		for _, g := range leg.AlignmentGroups {
			if !slices.Contains(out.AlignmentGroups, g) {
				out.AlignmentGroups = append(out.AlignmentGroups, g)
			}
		}
		for g, n := range leg.AlignmentLengths {
			out.AlignmentLengths[g] = fold(out.AlignmentLengths[g], n)
		}
	}

	if err := out.Validate(); err != nil {
		return chain.Chain{}, &Error{
			Kind:    KindStructural,
			Chain:   out.Name,
			Message: "merged chain breaks slot invariants",
			Cause:   err,
		}
	}
	return out, nil
}

func chainName(legs []chain.Chain) string {
	if len(legs) == 0 {
		return ""
	}
	return legs[0].Name
}

// wrapLeg annotates err with the composite leg it came from.
func wrapLeg(err error, group string) error {
	return fmt.Errorf("alignment group %s: %w", group, err)
}
