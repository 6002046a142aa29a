//go:build cgo

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/export"
)

func writeMenu(t *testing.T, dir, name, chainName string) string {
	t.Helper()
	data := "alignmentGroups: [Muon]\nchains:\n" +
		"  - name: " + chainName + "\n    legs:\n" +
		"      - {signature: Muon, group: Muon, l1: MU8F, steps: [{sequence: muFast}]}\n"
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestRun_PersistedMergeExportsWholeGraph(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph", "chains.kuzu")
	first := writeMenu(t, dir, "first.yml", "HLT_mu4")
	second := writeMenu(t, dir, "second.yml", "HLT_mu6")

	_, _, err := runCLI(t, "--persist", "--graph", graphPath, "--menu", first, "merge")
	require.NoError(t, err)

	out, _, err := runCLI(t, "--persist", "--graph", graphPath, "--menu", second, "merge")
	require.NoError(t, err)

	var exp export.MenuExport
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	require.Len(t, exp.Chains, 2)
	assert.Equal(t, "HLT_mu4", exp.Chains[0].Name)
	assert.Equal(t, "HLT_mu6", exp.Chains[1].Name)

	status, _, err := runCLI(t, "--persist", "--graph", graphPath, "--menu", second, "status")
	require.NoError(t, err)
	assert.Contains(t, status, "2 chains, 2 steps, 0 placeholders")
	assert.Contains(t, status, "graph: 2 slots, 4 edges")
}
