package merge

import (
	"slices"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

// Auto partitions legs by alignment group, runs the legs of each group side
// by side, and lays the group composites end to end in the order given by
// groupOrder. The order of legs in the input only matters within a group.
//
// Slots in the result keep the ordinal of the input leg they came from, so a
// caller can map every slot back to the leg it passed in.
func (m *Merger) Auto(legs []chain.Chain, groupOrder []string) (chain.Chain, error) {
	if err := checkLegs(legs); err != nil {
		return chain.Chain{}, err
	}
	name := legs[0].Name

	rank := make(map[string]int, len(groupOrder))
	for i, g := range groupOrder {
		if _, dup := rank[g]; !dup {
			rank[g] = i
		}
	}

	byGroup := make(map[string][]int)
	for i, leg := range legs {
		if len(leg.AlignmentGroups) != 1 {
			return chain.Chain{}, configErrorf(name,
				"leg %d spans %d alignment groups, auto merge needs exactly one", i, len(leg.AlignmentGroups))
		}
		g := leg.AlignmentGroups[0]
		if _, ok := rank[g]; !ok {
			return chain.Chain{}, configErrorf(name,
				"alignment group %q of leg %d is not in the group order", g, i).
				With("order", groupOrder)
		}
		byGroup[g] = append(byGroup[g], i)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b string) int { return rank[a] - rank[b] })

	// First slot of every input leg, counted in input order.
	starts := make([]int, len(legs))
	for i := 1; i < len(legs); i++ {
		starts[i] = starts[i-1] + legs[i-1].Width()
	}

	// Output slots are laid out group by group; pin each one to the ordinal
	// its input leg would have had.
	numbering := make(map[int]int)
	slot := 0
	for _, g := range groups {
		for _, li := range byGroup[g] {
			for w := range legs[li].Width() {
				numbering[slot] = starts[li] + w
				slot++
			}
		}
	}

	if len(groups) == 1 {
		return m.parallel(legs, 0, numbering)
	}

	composites := make([]chain.Chain, 0, len(groups))
	for _, g := range groups {
		members := make([]chain.Chain, 0, len(byGroup[g]))
		for _, li := range byGroup[g] {
			members = append(members, legs[li])
		}
		composite, err := m.parallel(members, 0, nil)
		if err != nil {
			return chain.Chain{}, wrapLeg(err, g)
		}
		composites = append(composites, composite)
	}
	return m.serial(composites, numbering)
}
