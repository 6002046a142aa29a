package chain

import "slices"

// LegStep describes one step of a single-slot leg.
type LegStep struct {
	Name         string
	Sequence     string
	Multiplicity int
	Parts        []Part
	ComboHypo    *ComboHypo

	// Empty authors a placeholder step directly. Sequence is ignored.
	Empty bool
}

// LegSpec describes a single-slot leg as authored in a menu.
type LegSpec struct {
	Chain     string
	Signature string
	Group     string
	L1        string
	Steps     []LegStep
}

// NewLeg builds a one-slot Chain from spec. Missing multiplicities default
// to 1 and a step without parts gets a single part named after the
// signature.
func NewLeg(spec LegSpec) Chain {
	c := Chain{
		Name:             spec.Chain,
		L1Thresholds:     []string{spec.L1},
		AlignmentGroups:  []string{spec.Group},
		AlignmentLengths: map[string]int{spec.Group: len(spec.Steps)},
		Steps:            make([]Step, 0, len(spec.Steps)),
	}

	for i, ls := range spec.Steps {
		mult := ls.Multiplicity
		if mult == 0 {
			mult = 1
		}
		parts := slices.Clone(ls.Parts)
		if len(parts) == 0 {
			parts = []Part{{Name: spec.Signature, Multiplicity: mult}}
		}

		var seq Sequence = RealSequence{Name: ls.Sequence}
		if ls.Empty {
			seq = EmptySequence{ID: PlaceholderID{
				Position:     i + 1,
				Group:        spec.Group,
				Signature:    spec.Signature,
				Multiplicity: []int{mult},
				FullScan:     IsFullScanSeed(spec.L1),
				Root:         IsFullScanSeed(spec.L1) && i == 0,
			}}
		}

		c.Steps = append(c.Steps, Step{
			Name:         ls.Name,
			Sequences:    []Sequence{seq},
			Multiplicity: []int{mult},
			Descriptors: []Descriptor{{
				Chain:          spec.Chain,
				Signature:      spec.Signature,
				AlignmentGroup: spec.Group,
				L1Threshold:    spec.L1,
				Parts:          parts,
			}},
			ComboHypo: ls.ComboHypo.Clone(),
			Empty:     ls.Empty,
		})
	}
	return c
}
