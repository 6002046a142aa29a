package graph

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu     sync.RWMutex
	chains map[string]ChainRecord
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{chains: make(map[string]ChainRecord)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddChain stores a copy of rec keyed by its name.
func (m *MemStore) AddChain(_ context.Context, rec ChainRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[rec.Name] = cloneRecord(rec)
	return nil
}

// GetChain returns a copy of the named chain, or nil if not found.
func (m *MemStore) GetChain(_ context.Context, name string) (*ChainRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.chains[name]
	if !ok {
		return nil, nil
	}
	out := cloneRecord(rec)
	return &out, nil
}

// ListChains returns every chain summary sorted by name.
func (m *MemStore) ListChains(_ context.Context) ([]ChainNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ChainNode, 0, len(m.chains))
	for _, rec := range m.chains {
		out = append(out, rec.ChainNode)
	}
	slices.SortFunc(out, func(a, b ChainNode) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Stats sums the per-chain counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total GraphStats
	for _, rec := range m.chains {
		st := rec.Stats()
		total.ChainCount += st.ChainCount
		total.StepCount += st.StepCount
		total.SlotCount += st.SlotCount
		total.PlaceholderCount += st.PlaceholderCount
		total.EdgeCount += st.EdgeCount
	}
	return &total, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

func cloneRecord(rec ChainRecord) ChainRecord {
	rec.L1Thresholds = slices.Clone(rec.L1Thresholds)
	rec.AlignmentGroups = slices.Clone(rec.AlignmentGroups)
	steps := make([]StepRecord, len(rec.Steps))
	for i, s := range rec.Steps {
		s.Slots = slices.Clone(s.Slots)
		steps[i] = s
	}
	rec.Steps = steps
	return rec
}
