package chain

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("chain: invalid")

// Validate checks the slot invariants of c: every step has one sequence,
// multiplicity and descriptor per slot, every non-collapsed step has the
// same width and slot i keeps the same leg ordinal throughout. Within a
// step, ordinals are distinct and no two slots share a placeholder
// identifier.
func (c Chain) Validate() error {
	width := -1
	var ordinals []int

	for i, s := range c.Steps {
		if len(s.Sequences) != len(s.Multiplicity) || len(s.Sequences) != len(s.Descriptors) {
			return fmt.Errorf("%w: %s step %d (%s): %d sequences, %d multiplicities, %d descriptors",
				ErrInvalid, c.Name, i, s.Name, len(s.Sequences), len(s.Multiplicity), len(s.Descriptors))
		}
		if s.Collapsed() {
			continue
		}
		if s.Empty && s.HasReal() {
			return fmt.Errorf("%w: %s step %d (%s) is marked empty but runs real sequences",
				ErrInvalid, c.Name, i, s.Name)
		}

		if width < 0 {
			width = s.Width()
			ordinals = make([]int, width)
			for slot, d := range s.Descriptors {
				ordinals[slot] = d.Leg.Ordinal
			}
		} else if s.Width() != width {
			return fmt.Errorf("%w: %s step %d (%s) has %d slots, want %d",
				ErrInvalid, c.Name, i, s.Name, s.Width(), width)
		}

		seen := make(map[int]int, width)
		for slot, d := range s.Descriptors {
			if d.Leg.Ordinal != ordinals[slot] {
				return fmt.Errorf("%w: %s step %d (%s) slot %d is %s, earlier steps use %s",
					ErrInvalid, c.Name, i, s.Name, slot, d.LegName(), LegID{Ordinal: ordinals[slot]}.Render(d.Chain))
			}
			if other, dup := seen[d.Leg.Ordinal]; dup {
				return fmt.Errorf("%w: %s step %d (%s) slots %d and %d both render %s",
					ErrInvalid, c.Name, i, s.Name, other, slot, d.LegName())
			}
			seen[d.Leg.Ordinal] = slot
		}

		names := make(map[string]int)
		for slot, seq := range s.Sequences {
			if !IsEmpty(seq) {
				continue
			}
			name := seq.SequenceName()
			if other, dup := names[name]; dup {
				return fmt.Errorf("%w: %s step %d (%s) slots %d and %d share placeholder %s",
					ErrInvalid, c.Name, i, s.Name, other, slot, name)
			}
			names[name] = slot
		}
	}
	return nil
}
