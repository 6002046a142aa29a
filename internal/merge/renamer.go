package merge

import "github.com/dusk-indust/chainmerge/internal/chain"

// Renamer hands out leg ordinals for the slots of one merged step. Slots
// listed in the numbering override keep the ordinal given there; the rest
// take the next value of a counter that is neither used nor reserved by the
// override. No two slots of one step may end up with the same ordinal.
type Renamer struct {
	chainName string
	numbering map[int]int
	reserved  map[int]bool
	next      int
	used      map[int]int // ordinal -> slot
}

// NewRenamer returns a Renamer for one step of chainName. numbering maps
// slot index to ordinal and may be nil.
func NewRenamer(chainName string, numbering map[int]int) *Renamer {
	reserved := make(map[int]bool, len(numbering))
	for _, ordinal := range numbering {
		reserved[ordinal] = true
	}
	return &Renamer{
		chainName: chainName,
		numbering: numbering,
		reserved:  reserved,
		used:      make(map[int]int),
	}
}

// Assign returns the leg ordinal for slot.
func (r *Renamer) Assign(slot int) (chain.LegID, error) {
	ordinal, explicit := r.numbering[slot]
	if !explicit {
		for {
			if _, taken := r.used[r.next]; !taken && !r.reserved[r.next] {
				break
			}
			r.next++
		}
		ordinal = r.next
		r.next++
	}

	if other, taken := r.used[ordinal]; taken {
		return chain.LegID{}, configErrorf(r.chainName,
			"slots %d and %d would both be renamed %s", other, slot,
			chain.LegID{Ordinal: ordinal}.Render(r.chainName)).
			With("ordinal", ordinal)
	}
	r.used[ordinal] = slot
	return chain.LegID{Ordinal: ordinal}, nil
}
