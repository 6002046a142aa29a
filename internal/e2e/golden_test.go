//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/config"
	"github.com/dusk-indust/chainmerge/internal/export"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/menu"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

func menuPath() string {
	return filepath.Join("..", "..", "testdata", "menu.yml")
}

// goldenOutputs assembles the sample menu and renders the diagram of every
// chain, keyed by golden file name. The JSON export is left out: its
// fingerprints are covered by TestMenu_E2E_Deterministic.
func goldenOutputs(t *testing.T) map[string][]byte {
	t.Helper()

	m, err := config.LoadMenu(menuPath())
	require.NoError(t, err)

	store := graph.NewMemStore()
	asm := menu.NewAssembler(menu.Options{Store: store, Logger: quietLogger})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	chains, err := asm.Assemble(ctx, m)
	require.NoError(t, err)

	out := make(map[string][]byte, len(chains))
	for _, c := range chains {
		diagram, err := export.ChainDiagram(ctx, store, c.Name)
		require.NoError(t, err)
		out[c.Name+".mmd"] = []byte(diagram)
	}
	return out
}

// TestGolden compares the assembled menu against the committed golden files.
func TestGolden(t *testing.T) {
	outputs := goldenOutputs(t)
	gDir := goldenDir()
	require.Len(t, outputs, 5)

	for name, actual := range outputs {
		t.Run(name, func(t *testing.T) {
			golden, err := os.ReadFile(filepath.Join(gDir, name))
			require.NoError(t, err, "golden file %s missing; run TestUpdateGolden with -update", name)
			assert.Equal(t, string(golden), string(actual), "output for %s does not match golden file", name)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	gDir := goldenDir()
	require.NoError(t, os.MkdirAll(gDir, 0o755))

	for name, data := range goldenOutputs(t) {
		require.NoError(t, os.WriteFile(filepath.Join(gDir, name), data, 0o644))
		t.Logf("updated %s", name)
	}
}
