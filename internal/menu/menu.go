// Package menu assembles a whole menu: it merges every chain definition
// with the strategy the definition names and hands the results to the
// store, the metrics recorder and progress listeners.
package menu

import (
	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/merge"
)

// ChainDef is one chain as authored: its legs and how to merge them.
type ChainDef struct {
	Name     string
	Strategy merge.Strategy
	Offset   int
	Legs     []chain.Chain
}

// Menu is a set of chain definitions plus the alignment group order the
// auto strategy sorts legs by.
type Menu struct {
	GroupOrder []string
	Chains     []ChainDef
}

// Chain returns the definition called name.
func (m Menu) Chain(name string) (ChainDef, bool) {
	for _, def := range m.Chains {
		if def.Name == name {
			return def, true
		}
	}
	return ChainDef{}, false
}

// ProgressEvent is emitted while a menu is assembled.
type ProgressEvent struct {
	Chain   string
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of one chain within an assembly.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Terminal reports whether st ends a chain's progress.
func (st ProgressStatus) Terminal() bool {
	return st == ProgressComplete || st == ProgressFailed
}
