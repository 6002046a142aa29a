//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/chainmerge/internal/graph"
)

func openStore(_ string, persist bool) (graph.Store, error) {
	if persist {
		return nil, fmt.Errorf("--persist needs KuzuDB, which requires a cgo build")
	}
	return graph.NewMemStore(), nil
}
