// Package graph stores the topology of merged chains: chains, their steps,
// and the slot each leg occupies in every step.
package graph

import (
	"context"
	"io"
)

// Store is the interface for the chain topology backend.
// Implementations: KuzuStore (persistent, cgo), MemStore (default, testing).
type Store interface {
	io.Closer

	// InitSchema is called once before any data is inserted. It is
	// idempotent.
	InitSchema(ctx context.Context) error

	// AddChain stores rec, replacing any chain of the same name.
	AddChain(ctx context.Context, rec ChainRecord) error

	// GetChain returns the chain called name, or nil if there is none.
	GetChain(ctx context.Context, name string) (*ChainRecord, error)

	// ListChains returns the summary of every stored chain, sorted by name.
	ListChains(ctx context.Context) ([]ChainNode, error)

	Stats(ctx context.Context) (*GraphStats, error)
}
