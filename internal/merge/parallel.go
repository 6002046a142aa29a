package merge

import "github.com/dusk-indust/chainmerge/internal/chain"

// Parallel aligns legs step by step: merged step p holds step p of every leg.
// Legs shorter than the longest one are padded with placeholders carrying
// their last known multiplicity. offset must be 0.
func (m *Merger) Parallel(legs []chain.Chain, offset int) (chain.Chain, error) {
	return m.parallel(legs, offset, nil)
}

func (m *Merger) parallel(legs []chain.Chain, offset int, numbering map[int]int) (chain.Chain, error) {
	if offset != 0 {
		return chain.Chain{}, configErrorf(chainName(legs),
			"parallel merge supports offset 0 only, got %d", offset)
	}
	if err := checkLegs(legs); err != nil {
		return chain.Chain{}, err
	}
	if err := checkDescriptors(legs); err != nil {
		return chain.Chain{}, err
	}

	depth := 0
	for _, leg := range legs {
		depth = max(depth, len(leg.Steps))
	}

	name := legs[0].Name
	steps := make([]chain.Step, 0, depth)
	var prior *chain.Step

	for p := range depth {
		entries := make([]*chain.Step, len(legs))
		for i := range legs {
			if p < len(legs[i].Steps) {
				entries[i] = &legs[i].Steps[p]
			}
		}

		step, err := m.combiner.Combine(CombineInput{
			Chain:     name,
			Steps:     entries,
			Position:  p,
			Legs:      legs,
			Prior:     prior,
			Numbering: numbering,
		})
		if err != nil {
			return chain.Chain{}, err
		}
		steps = append(steps, step)
		if !step.Collapsed() {
			prior = &step
		}
	}

	return assemble(legs, steps, longest)
}
