// Package chain defines the pipeline data model shared by the merge engine,
// the menu assembler and the export surfaces.
//
// A Chain is an ordered list of Steps. A leg passed to the merge engine is a
// Chain, and so is the engine's output: merged and unmerged chains share one
// shape so the downstream executor never needs to tell them apart.
package chain

import (
	"slices"
	"strings"
)

// Chain is one selection pipeline, either as authored or as produced by a
// merge.
type Chain struct {
	Name  string
	Steps []Step

	// L1Thresholds holds one seed threshold per slot, leg-major.
	L1Thresholds []string

	// AlignmentGroups lists the groups this chain's steps belong to, in
	// first-seen order without duplicates.
	AlignmentGroups []string

	// AlignmentLengths maps each alignment group to the number of steps
	// the chain spends in it.
	AlignmentLengths map[string]int
}

// Step is one stage of a chain. For a merged step, entry i of Sequences,
// Multiplicity and Descriptors belongs to slot i.
type Step struct {
	Name         string
	Sequences    []Sequence
	Multiplicity []int
	Descriptors  []Descriptor
	ComboHypo    *ComboHypo

	// Empty marks a step that carries no real computation for any slot.
	Empty bool
}

// Part is one object requirement inside a descriptor, e.g. "2 muons above
// 10 GeV".
type Part struct {
	Name         string
	Multiplicity int
	Threshold    int
}

// Descriptor is the per-slot bookkeeping record of a step.
type Descriptor struct {
	Leg            LegID
	Chain          string
	Signature      string
	AlignmentGroup string
	L1Threshold    string
	Parts          []Part
}

// LegName renders the descriptor's leg identifier.
func (d Descriptor) LegName() string {
	return d.Leg.Render(d.Chain)
}

// ComboHypo is a cross-object combinatorial decision configuration attached
// to a step.
type ComboHypo struct {
	Name  string
	Tools []string
}

// Equal reports whether two configurations are identical. Two nil values are
// equal.
func (c *ComboHypo) Equal(other *ComboHypo) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Name == other.Name && slices.Equal(c.Tools, other.Tools)
}

// Clone returns a deep copy of c.
func (c *ComboHypo) Clone() *ComboHypo {
	if c == nil {
		return nil
	}
	return &ComboHypo{Name: c.Name, Tools: slices.Clone(c.Tools)}
}

// Width returns the number of slots a step occupies.
func (s Step) Width() int {
	return len(s.Sequences)
}

// Collapsed reports whether s is an empty step with no slots at all, as
// produced when every leg at a merge position is idle.
func (s Step) Collapsed() bool {
	return s.Empty && len(s.Sequences) == 0
}

// HasReal reports whether at least one slot of s runs a real sequence.
func (s Step) HasReal() bool {
	for _, seq := range s.Sequences {
		if _, ok := seq.(RealSequence); ok {
			return true
		}
	}
	return false
}

// ActiveGroup returns the alignment group of the first slot running a real
// sequence. ok is false when every slot is a placeholder.
func (s Step) ActiveGroup() (group string, ok bool) {
	for i, seq := range s.Sequences {
		if _, real := seq.(RealSequence); real && i < len(s.Descriptors) {
			return s.Descriptors[i].AlignmentGroup, true
		}
	}
	return "", false
}

// Clone returns a deep copy of s.
func (s Step) Clone() Step {
	out := Step{
		Name:         s.Name,
		Sequences:    slices.Clone(s.Sequences),
		Multiplicity: slices.Clone(s.Multiplicity),
		ComboHypo:    s.ComboHypo.Clone(),
		Empty:        s.Empty,
	}
	if s.Descriptors != nil {
		out.Descriptors = make([]Descriptor, len(s.Descriptors))
		for i, d := range s.Descriptors {
			out.Descriptors[i] = d.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	d.Parts = slices.Clone(d.Parts)
	return d
}

// Width returns the number of slots the chain occupies, taken from its
// first non-collapsed step.
func (c Chain) Width() int {
	for _, s := range c.Steps {
		if !s.Collapsed() {
			return s.Width()
		}
	}
	return 0
}

// Template returns the descriptors of the chain's first non-collapsed step.
// Placeholders synthesized for this chain copy them.
func (c Chain) Template() []Descriptor {
	for _, s := range c.Steps {
		if !s.Collapsed() {
			return s.Descriptors
		}
	}
	return nil
}

// FirstMultiplicity returns the multiplicity vector of the chain's first
// non-collapsed step.
func (c Chain) FirstMultiplicity() []int {
	for _, s := range c.Steps {
		if !s.Collapsed() {
			return s.Multiplicity
		}
	}
	return nil
}

// Signature joins the signatures of the chain's slots, e.g. "Muon" or
// "Jet-Jet".
func (c Chain) Signature() string {
	tmpl := c.Template()
	sigs := make([]string, 0, len(tmpl))
	for _, d := range tmpl {
		sigs = append(sigs, d.Signature)
	}
	return strings.Join(sigs, "-")
}

// FullScan reports whether the chain is seeded by a full-scan L1 item.
func (c Chain) FullScan() bool {
	return len(c.L1Thresholds) > 0 && IsFullScanSeed(c.L1Thresholds[0])
}

// GroupAt returns the alignment group the chain is in at step index p. Past
// the last step, the group of the last step is returned.
func (c Chain) GroupAt(p int) string {
	if p >= len(c.Steps) {
		p = len(c.Steps) - 1
	}
	for ; p >= 0; p-- {
		if g, ok := c.Steps[p].ActiveGroup(); ok {
			return g
		}
	}
	if len(c.AlignmentGroups) > 0 {
		return c.AlignmentGroups[0]
	}
	return ""
}

// IsFullScanSeed reports whether an L1 threshold name denotes a full-scan
// seed rather than a region of interest.
func IsFullScanSeed(threshold string) bool {
	return threshold == "FSNOSEED" || strings.HasPrefix(threshold, "FS")
}
