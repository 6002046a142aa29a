package chain

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence is an opaque computation unit inside a step. It is either a
// RealSequence or an EmptySequence; the set is closed.
type Sequence interface {
	// SequenceName renders the sequence's identifier.
	SequenceName() string

	sequence()
}

// RealSequence runs actual computation. The engine never looks inside it.
type RealSequence struct {
	Name string
}

func (s RealSequence) SequenceName() string { return s.Name }
func (RealSequence) sequence()              {}

// EmptySequence is a pass-through placeholder. Root is set for a full-scan
// leg's first placeholder, which has no parent step to link its decisions
// from.
type EmptySequence struct {
	ID   PlaceholderID
	Root bool
}

func (s EmptySequence) SequenceName() string { return s.ID.String() }
func (EmptySequence) sequence()              {}

// IsEmpty reports whether seq is a placeholder.
func IsEmpty(seq Sequence) bool {
	_, ok := seq.(EmptySequence)
	return ok
}

// LegID identifies one original leg of a merged chain. The rendered name is
// derived from the ordinal, never parsed back.
type LegID struct {
	Ordinal int
}

// Render returns the display name of the leg within chainName, e.g.
// "leg001_HLT_mu10_j45".
func (l LegID) Render(chainName string) string {
	return fmt.Sprintf("leg%03d_%s", l.Ordinal, chainName)
}

// PlaceholderID is the structured identity of one placeholder sequence.
// String renders it; two IDs render equal iff all fields are equal.
type PlaceholderID struct {
	Leg          int
	Slot         int
	Position     int
	Group        string
	Signature    string
	Multiplicity []int
	FullScan     bool
	Root         bool
}

// StepName renders the name of the placeholder step the sequence belongs
// to. It leaves out the slot, which only distinguishes sequences within one
// step.
func (id PlaceholderID) StepName() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Empty%sAlign%d_%s_%s_leg%03d", id.Group, id.Position,
		FormatMultiplicity(id.Multiplicity), id.Signature, id.Leg)
	if id.FullScan {
		b.WriteString("FS")
		if id.Root {
			b.WriteString("Root")
		}
	}
	return b.String()
}

// String renders the sequence identifier.
func (id PlaceholderID) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Empty%sSeq%d_%s_%s_leg%03d_s%d", id.Group, id.Position,
		FormatMultiplicity(id.Multiplicity), id.Signature, id.Leg, id.Slot)
	if id.FullScan {
		b.WriteString("FS")
		if id.Root {
			b.WriteString("Root")
		}
	}
	return b.String()
}

// FormatMultiplicity renders a multiplicity vector as "1", "2x1", ...
func FormatMultiplicity(m []int) string {
	parts := make([]string, len(m))
	for i, n := range m {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "x")
}
