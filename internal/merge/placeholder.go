package merge

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

// Cache memoizes placeholder sequences by their deterministic key. A cached
// value is a pure function of its key, so a cache never changes what the
// engine produces.
type Cache interface {
	// LookupOrInsert returns the sequences stored under key, building and
	// storing them first if absent. hit reports whether they were already
	// present.
	LookupOrInsert(key string, build func() []chain.Sequence) (seqs []chain.Sequence, hit bool)
}

// MapCache is a Cache backed by a map. It is safe for concurrent use.
type MapCache struct {
	mu      sync.Mutex
	entries map[string][]chain.Sequence
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: make(map[string][]chain.Sequence)}
}

// LookupOrInsert implements Cache.
func (c *MapCache) LookupOrInsert(key string, build func() []chain.Sequence) ([]chain.Sequence, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seqs, ok := c.entries[key]; ok {
		return slices.Clone(seqs), true
	}
	seqs := build()
	c.entries[key] = seqs
	return slices.Clone(seqs), false
}

// Len returns the number of cached entries.
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PlaceholderSpec is everything that determines a placeholder step.
type PlaceholderSpec struct {
	// Leg is the index of the leg's first slot in the merged step.
	Leg int
	// Position is the 1-based alignment position inside Group.
	Position  int
	Group     string
	Signature string
	// Multiplicity is the leg's last known multiplicity vector, one entry
	// per slot of the leg.
	Multiplicity []int
	FullScan     bool
	// Chained is false when the placeholder is the leg's first step in the
	// chain being built, i.e. it has no parent step to link from.
	Chained bool
	// Template holds the leg's last known descriptors; they are copied onto
	// the placeholder.
	Template []chain.Descriptor
}

func (s PlaceholderSpec) id(slot int) chain.PlaceholderID {
	return chain.PlaceholderID{
		Leg:          s.Leg,
		Slot:         slot,
		Position:     s.Position,
		Group:        s.Group,
		Signature:    s.Signature,
		Multiplicity: slices.Clone(s.Multiplicity),
		FullScan:     s.FullScan,
		Root:         s.root(),
	}
}

func (s PlaceholderSpec) root() bool {
	return s.FullScan && !s.Chained
}

// Key returns the cache key of the placeholder. Unlike the rendered names
// it quotes every free-form field, so distinct specs never share a key.
func (s PlaceholderSpec) Key() string {
	return fmt.Sprintf("%d|%d|%q|%q|%v|%t|%t",
		s.Leg, s.Position, s.Group, s.Signature, s.Multiplicity, s.FullScan, s.root())
}

// Factory builds placeholder steps.
type Factory struct {
	cache Cache
}

// NewFactory returns a Factory backed by cache. A nil cache gets a private
// MapCache.
func NewFactory(cache Cache) *Factory {
	if cache == nil {
		cache = NewMapCache()
	}
	return &Factory{cache: cache}
}

// Make returns the placeholder step described by spec: one empty sequence
// per slot of the leg, the leg's multiplicities and a copy of its template
// descriptors.
func (f *Factory) Make(spec PlaceholderSpec) chain.Step {
	width := len(spec.Multiplicity)

	seqs, _ := f.cache.LookupOrInsert(spec.Key(), func() []chain.Sequence {
		out := make([]chain.Sequence, width)
		for slot := range width {
			out[slot] = chain.EmptySequence{ID: spec.id(slot), Root: spec.root()}
		}
		return out
	})

	descs := make([]chain.Descriptor, width)
	for slot := range width {
		if slot < len(spec.Template) {
			descs[slot] = spec.Template[slot].Clone()
		}
		descs[slot].Parts = placeholderParts(descs[slot].Parts, spec.Multiplicity[slot])
	}

	return chain.Step{
		Name:         spec.id(0).StepName(),
		Sequences:    seqs,
		Multiplicity: slices.Clone(spec.Multiplicity),
		Descriptors:  descs,
		Empty:        true,
	}
}

// placeholderParts keeps a single-part descriptor consistent with the
// multiplicity the placeholder carries.
func placeholderParts(parts []chain.Part, mult int) []chain.Part {
	if len(parts) == 1 {
		parts[0].Multiplicity = mult
	}
	return parts
}
