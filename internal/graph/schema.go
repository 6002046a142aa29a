package graph

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

// --- Enums ---

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindHasStep EdgeKind = "HAS_STEP"
	EdgeKindNext    EdgeKind = "NEXT"
	EdgeKindHasSlot EdgeKind = "HAS_SLOT"
)

// --- Models ---

// ChainNode is the summary record of one stored chain.
type ChainNode struct {
	Name            string   `json:"name"`
	Width           int      `json:"width"`
	StepCount       int      `json:"stepCount"`
	L1Thresholds    []string `json:"l1Thresholds"`
	AlignmentGroups []string `json:"alignmentGroups"`
}

// StepNode is one step of a stored chain.
type StepNode struct {
	Chain     string `json:"chain"`
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Empty     bool   `json:"empty"`
	ComboHypo string `json:"comboHypo,omitempty"`
}

// ID returns the store-wide identifier of the step.
func (s StepNode) ID() string {
	return stepID(s.Chain, s.Index)
}

// SlotNode is one slot of a stored step: the sequence one leg runs there.
type SlotNode struct {
	Chain        string `json:"chain"`
	StepIndex    int    `json:"stepIndex"`
	Slot         int    `json:"slot"`
	Leg          string `json:"leg"`
	Sequence     string `json:"sequence"`
	Placeholder  bool   `json:"placeholder"`
	Multiplicity int    `json:"multiplicity"`
	Group        string `json:"group"`
}

// ID returns the store-wide identifier of the slot.
func (s SlotNode) ID() string {
	return fmt.Sprintf("%s#%d", stepID(s.Chain, s.StepIndex), s.Slot)
}

// StepRecord is a step with its slots in slot order.
type StepRecord struct {
	StepNode
	Slots []SlotNode `json:"slots"`
}

// ChainRecord is the stored topology of a chain. It is what the store,
// the diagram renderer and the MCP tools work with; the sequences
// themselves are reduced to their names.
type ChainRecord struct {
	ChainNode
	Steps []StepRecord `json:"steps"`
}

// GraphStats summarizes the contents of a store.
type GraphStats struct {
	ChainCount       int `json:"chainCount"`
	StepCount        int `json:"stepCount"`
	SlotCount        int `json:"slotCount"`
	PlaceholderCount int `json:"placeholderCount"`
	EdgeCount        int `json:"edgeCount"`
}

// FromChain projects c onto the store's record model.
func FromChain(c chain.Chain) ChainRecord {
	rec := ChainRecord{
		ChainNode: ChainNode{
			Name:            c.Name,
			Width:           c.Width(),
			StepCount:       len(c.Steps),
			L1Thresholds:    c.L1Thresholds,
			AlignmentGroups: c.AlignmentGroups,
		},
		Steps: make([]StepRecord, 0, len(c.Steps)),
	}

	for i, s := range c.Steps {
		step := StepRecord{StepNode: StepNode{
			Chain: c.Name,
			Index: i,
			Name:  s.Name,
			Empty: s.Empty,
		}}
		if s.ComboHypo != nil {
			step.ComboHypo = s.ComboHypo.Name
		}
		for slot, seq := range s.Sequences {
			node := SlotNode{
				Chain:       c.Name,
				StepIndex:   i,
				Slot:        slot,
				Sequence:    seq.SequenceName(),
				Placeholder: chain.IsEmpty(seq),
			}
			if slot < len(s.Multiplicity) {
				node.Multiplicity = s.Multiplicity[slot]
			}
			if slot < len(s.Descriptors) {
				node.Leg = s.Descriptors[slot].LegName()
				node.Group = s.Descriptors[slot].AlignmentGroup
			}
			if e, ok := seq.(chain.EmptySequence); ok {
				node.Group = e.ID.Group
			}
			step.Slots = append(step.Slots, node)
		}
		rec.Steps = append(rec.Steps, step)
	}
	return rec
}

// Stats counts the nodes and edges rec contributes to a store.
func (r ChainRecord) Stats() GraphStats {
	st := GraphStats{ChainCount: 1, StepCount: len(r.Steps)}
	st.EdgeCount = len(r.Steps) // HAS_STEP
	if len(r.Steps) > 1 {
		st.EdgeCount += len(r.Steps) - 1 // NEXT
	}
	for _, s := range r.Steps {
		st.SlotCount += len(s.Slots)
		st.EdgeCount += len(s.Slots) // HAS_SLOT
		for _, sl := range s.Slots {
			if sl.Placeholder {
				st.PlaceholderCount++
			}
		}
	}
	return st
}

func stepID(chainName string, index int) string {
	return fmt.Sprintf("%s#%d", chainName, index)
}

// joinList and splitList encode string lists as single columns.
func joinList(ss []string) string {
	return strings.Join(ss, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
