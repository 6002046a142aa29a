package merge

import "github.com/dusk-indust/chainmerge/internal/chain"

// legState is what the serial merge remembers about a leg between its real
// steps: the multiplicity and descriptors it reported last.
type legState struct {
	mult []int
	tmpl []chain.Descriptor
}

// alignCounter numbers merged steps within their alignment group. The count
// starts at 1 when a group becomes active for the first time and resumes
// where it left off when a group becomes active again, so placeholder
// identities never repeat inside one chain.
type alignCounter struct {
	counts map[string]int
}

func (c *alignCounter) next(group string) int {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[group]++
	return c.counts[group]
}

// Serial lays the legs end to end: every step of leg 0, then every step of
// leg 1, and so on. At each merged step the contributing leg runs its real
// step and every other leg runs a placeholder tagged with the active
// alignment group.
func (m *Merger) Serial(legs []chain.Chain) (chain.Chain, error) {
	return m.serial(legs, nil)
}

func (m *Merger) serial(legs []chain.Chain, numbering map[int]int) (chain.Chain, error) {
	if err := checkLegs(legs); err != nil {
		return chain.Chain{}, err
	}
	if err := checkDescriptors(legs); err != nil {
		return chain.Chain{}, err
	}

	name := legs[0].Name
	states := make([]legState, len(legs))
	starts := make([]int, len(legs))
	for i, leg := range legs {
		states[i] = legState{mult: leg.FirstMultiplicity(), tmpl: leg.Template()}
		if i > 0 {
			starts[i] = starts[i-1] + legs[i-1].Width()
		}
	}

	var (
		steps   []chain.Step
		prior   *chain.Step
		counter alignCounter
	)

	for li := range legs {
		leg := &legs[li]
		for k := range leg.Steps {
			own := &leg.Steps[k]

			// A composite leg can span several groups; the active one is
			// whatever its non-placeholder slot says.
			group, ok := own.ActiveGroup()
			if !ok {
				group = leg.GroupAt(k)
			}
			align := counter.next(group)
			position := len(steps)

			entries := make([]*chain.Step, len(legs))
			for i := range legs {
				if i == li {
					entries[i] = own
					continue
				}
				pad := m.factory.Make(PlaceholderSpec{
					Leg:          starts[i],
					Position:     align,
					Group:        group,
					Signature:    legs[i].Signature(),
					Multiplicity: states[i].mult,
					FullScan:     legs[i].FullScan(),
					Chained:      position > 0,
					Template:     states[i].tmpl,
				})
				entries[i] = &pad
			}

			step, err := m.combiner.Combine(CombineInput{
				Chain:     name,
				Steps:     entries,
				Position:  position,
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
			if !own.Empty {
				states[li] = legState{mult: own.Multiplicity, tmpl: own.Descriptors}
			}
		}
	}

	return assemble(legs, steps, total)
}
