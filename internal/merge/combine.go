package merge

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

// stepPrefixRe matches the position and merge markers earlier merges put in
// front of step names.
var stepPrefixRe = regexp.MustCompile(`^(?:merged_|Step\d+_)+`)

// CombineInput is one merge position: the step each leg contributes there
// plus the context needed to pad the legs that contribute nothing.
type CombineInput struct {
	// Chain is the name of the chain being built.
	Chain string

	// Steps holds one entry per leg. A nil entry means the leg has no step
	// at this position.
	Steps []*chain.Step

	// Position is the 0-based index of the merged step in the output.
	Position int

	// Legs are the chains being merged, in slot order.
	Legs []chain.Chain

	// Prior is the most recent merged step that has slots, or nil.
	Prior *chain.Step

	// Numbering pins the leg ordinal of individual slots. Keys are slot
	// indexes across all legs.
	Numbering map[int]int
}

// Combiner reduces the steps at one merge position to a single step.
type Combiner struct {
	factory *Factory
}

// NewCombiner returns a Combiner that pads with placeholders from factory.
func NewCombiner(factory *Factory) *Combiner {
	return &Combiner{factory: factory}
}

// Combine merges in.Steps into one step. If no leg runs a real step, the
// result is a single collapsed empty step without slots. Otherwise every leg
// gets its slots in leg order, absent legs as placeholders carrying their
// last known multiplicity, and every slot is renamed to its leg ordinal.
func (c *Combiner) Combine(in CombineInput) (chain.Step, error) {
	if len(in.Steps) != len(in.Legs) {
		return chain.Step{}, structuralErrorf(in.Chain,
			"%d steps given for %d legs at position %d", len(in.Steps), len(in.Legs), in.Position)
	}

	if allIdle(in.Steps) {
		return collapsedStep(in.Steps, in.Position), nil
	}

	var (
		out    chain.Step
		names  []string
		offset int
		combos []*chain.ComboHypo
	)

	for i, leg := range in.Legs {
		width := leg.Width()
		entry := in.Steps[i]

		var step chain.Step
		switch {
		case entry == nil || entry.Collapsed():
			step = c.pad(in, i, offset, width)
		case entry.Width() != width:
			return chain.Step{}, structuralErrorf(in.Chain,
				"leg %d step %q has %d slots, leg is %d wide", i, entry.Name, entry.Width(), width).
				With("position", in.Position)
		default:
			step = entry.Clone()
		}

		base := len(out.Sequences)
		out.Sequences = append(out.Sequences, step.Sequences...)
		rekey(out.Sequences[base:], offset)
		out.Multiplicity = append(out.Multiplicity, step.Multiplicity...)
		out.Descriptors = append(out.Descriptors, step.Descriptors...)
		names = append(names, stripPrefix(step.Name))
		if step.ComboHypo != nil {
			combos = append(combos, step.ComboHypo)
		}
		offset += width
	}

	renamer := NewRenamer(in.Chain, in.Numbering)
	for slot := range out.Descriptors {
		id, err := renamer.Assign(slot)
		if err != nil {
			return chain.Step{}, err
		}
		out.Descriptors[slot].Leg = id
		out.Descriptors[slot].Chain = in.Chain
	}

	combo, err := mergeCombos(in.Chain, in.Position, combos)
	if err != nil {
		return chain.Step{}, err
	}
	out.ComboHypo = combo
	out.Name = "merged_" + strings.Join(names, "_")
	return out, nil
}

// pad synthesizes the placeholder for leg i, whose slots start at offset.
// The placeholder is keyed by offset, not i, so that its identity names the
// slot it occupies in the merged step.
func (c *Combiner) pad(in CombineInput, i, offset, width int) chain.Step {
	leg := in.Legs[i]
	mult := leg.FirstMultiplicity()
	tmpl := leg.Template()
	if in.Prior != nil && in.Position > 0 && in.Prior.Width() >= offset+width {
		mult = in.Prior.Multiplicity[offset : offset+width]
		tmpl = in.Prior.Descriptors[offset : offset+width]
	}

	return c.factory.Make(PlaceholderSpec{
		Leg:          offset,
		Position:     in.Position + 1,
		Group:        leg.GroupAt(in.Position),
		Signature:    leg.Signature(),
		Multiplicity: mult,
		FullScan:     leg.FullScan(),
		Chained:      in.Position > 0,
		Template:     tmpl,
	})
}

// rekey pins every placeholder among one leg's slots to the leg's first
// slot in the merged step. Placeholders a leg carries in (authored idle
// steps, padding from an earlier merge) only know their position inside
// that leg and would otherwise collide with other legs' placeholders.
func rekey(seqs []chain.Sequence, offset int) {
	for k, seq := range seqs {
		if e, ok := seq.(chain.EmptySequence); ok {
			e.ID.Leg = offset
			e.ID.Slot = k
			seqs[k] = e
		}
	}
}

// allIdle reports whether no entry runs real computation.
func allIdle(steps []*chain.Step) bool {
	for _, s := range steps {
		if s != nil && !s.Empty {
			return false
		}
	}
	return true
}

func collapsedStep(steps []*chain.Step, position int) chain.Step {
	var names []string
	for _, s := range steps {
		if s != nil && s.Name != "" {
			names = append(names, stripPrefix(s.Name))
		}
	}
	name := "merged_Empty" + strconv.Itoa(position+1)
	if len(names) > 0 {
		name = "merged_" + strings.Join(names, "_")
	}
	return chain.Step{Name: name, Empty: true}
}

// mergeCombos returns the single combinatorial hypothesis configuration
// shared by all contributing steps.
func mergeCombos(chainName string, position int, combos []*chain.ComboHypo) (*chain.ComboHypo, error) {
	var kept *chain.ComboHypo
	for _, c := range combos {
		if kept == nil {
			kept = c
			continue
		}
		if !kept.Equal(c) {
			return nil, configErrorf(chainName,
				"conflicting combo hypos %q and %q at position %d", kept.Name, c.Name, position).
				With("first", kept.Tools).
				With("second", c.Tools)
		}
	}
	return kept.Clone(), nil
}

// stripPrefix removes leading "merged_" and "StepN_" markers so that names
// do not grow with every nested merge.
func stripPrefix(name string) string {
	return stepPrefixRe.ReplaceAllString(name, "")
}
