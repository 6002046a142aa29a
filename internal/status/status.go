package status

import (
	"context"
	"fmt"

	"github.com/dusk-indust/chainmerge/internal/graph"
)

// ChainStatus summarizes one merged chain.
type ChainStatus struct {
	Name            string
	Legs            int
	Steps           int
	RealSlots       int
	Placeholders    int
	Collapsed       int // steps with no slots at all
	AlignmentGroups []string
}

// Density is the share of slots that run real sequences, in [0, 1]. A chain
// without slots has density 0.
func (cs ChainStatus) Density() float64 {
	total := cs.RealSlots + cs.Placeholders
	if total == 0 {
		return 0
	}
	return float64(cs.RealSlots) / float64(total)
}

// MenuStatus holds the status of every chain in a store.
type MenuStatus struct {
	Chains       []ChainStatus
	Steps        int
	Placeholders int
}

// Summarize computes the status of one chain record.
func Summarize(rec graph.ChainRecord) ChainStatus {
	cs := ChainStatus{
		Name:            rec.Name,
		Legs:            rec.Width,
		Steps:           len(rec.Steps),
		AlignmentGroups: rec.AlignmentGroups,
	}
	for _, step := range rec.Steps {
		if len(step.Slots) == 0 {
			cs.Collapsed++
			continue
		}
		for _, sl := range step.Slots {
			if sl.Placeholder {
				cs.Placeholders++
			} else {
				cs.RealSlots++
			}
		}
	}
	return cs
}

// GetMenuStatus summarizes every chain in store, in name order.
func GetMenuStatus(ctx context.Context, store graph.Store) (MenuStatus, error) {
	var ms MenuStatus
	list, err := store.ListChains(ctx)
	if err != nil {
		return ms, fmt.Errorf("status: list chains: %w", err)
	}
	for _, node := range list {
		rec, err := store.GetChain(ctx, node.Name)
		if err != nil {
			return ms, fmt.Errorf("status: get chain %s: %w", node.Name, err)
		}
		if rec == nil {
			continue
		}
		cs := Summarize(*rec)
		ms.Chains = append(ms.Chains, cs)
		ms.Steps += cs.Steps
		ms.Placeholders += cs.Placeholders
	}
	return ms, nil
}
