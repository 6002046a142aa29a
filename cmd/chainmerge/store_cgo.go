//go:build cgo

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/chainmerge/internal/graph"
)

// openStore returns the KuzuDB store at path when persist is set and an
// in-memory store otherwise.
func openStore(path string, persist bool) (graph.Store, error) {
	if !persist {
		return graph.NewMemStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create graph dir: %w", err)
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
