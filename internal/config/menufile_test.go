package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/merge"
)

const sampleMenu = `
alignmentGroups: [Muon, Jet]
chains:
  - name: HLT_mu10_2j45
    legs:
      - signature: Muon
        group: Muon
        l1: MU8F
        steps:
          - sequence: muFast
          - sequence: muComb
            combo: {name: DR, tools: [dRmuJet]}
      - signature: Jet
        group: Jet
        l1: FSNOSEED
        steps:
          - empty: true
          - name: Step2_jet
            sequence: jetReco
            multiplicity: 2
            parts:
              - {name: j45, threshold: 45}
  - name: HLT_2mu4
    strategy: parallel
    legs:
      - signature: Muon
        group: Muon
        l1: MU3V
        steps:
          - sequence: muFast
            multiplicity: 2
`

func TestParseMenu(t *testing.T) {
	m, err := ParseMenu([]byte(sampleMenu))
	require.NoError(t, err)

	assert.Equal(t, []string{"Muon", "Jet"}, m.GroupOrder)
	require.Len(t, m.Chains, 2)

	def := m.Chains[0]
	assert.Equal(t, "HLT_mu10_2j45", def.Name)
	assert.Equal(t, merge.StrategyAuto, def.Strategy)
	require.Len(t, def.Legs, 2)

	mu := def.Legs[0]
	assert.Equal(t, "HLT_mu10_2j45", mu.Name)
	assert.Equal(t, "Step1_muFast", mu.Steps[0].Name)
	assert.Equal(t, []int{1}, mu.Steps[0].Multiplicity)
	assert.Equal(t, &chain.ComboHypo{Name: "DR", Tools: []string{"dRmuJet"}}, mu.Steps[1].ComboHypo)

	jet := def.Legs[1]
	assert.True(t, jet.FullScan())
	assert.True(t, jet.Steps[0].Empty)
	assert.Equal(t, "Step1_Empty", jet.Steps[0].Name)
	assert.Equal(t, "Step2_jet", jet.Steps[1].Name)
	assert.Equal(t, []chain.Part{{Name: "j45", Multiplicity: 2, Threshold: 45}}, jet.Steps[1].Descriptors[0].Parts)

	assert.Equal(t, merge.StrategyParallel, m.Chains[1].Strategy)
}

func TestParseMenu_MergesCleanly(t *testing.T) {
	m, err := ParseMenu([]byte(sampleMenu))
	require.NoError(t, err)

	for _, def := range m.Chains {
		_, err := merge.New(nil).Merge(merge.Request{
			Legs: def.Legs, Strategy: def.Strategy, Offset: def.Offset, GroupOrder: m.GroupOrder,
		})
		assert.NoError(t, err, def.Name)
	}
}

func TestParseMenu_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "menu is empty"},
		{"unknown key", "chains: []\nbogus: 1\n", "bogus"},
		{"no name", "chains:\n  - legs: []\n", "has no name"},
		{"duplicate", "chains:\n  - name: A\n    legs: [{signature: Muon, group: Muon, steps: [{sequence: s}]}]\n  - name: A\n    legs: [{signature: Muon, group: Muon, steps: [{sequence: s}]}]\n", "defined twice"},
		{"bad strategy", "chains:\n  - name: A\n    strategy: zigzag\n    legs: [{signature: Muon, group: Muon, steps: [{sequence: s}]}]\n", "zigzag"},
		{"no legs", "chains:\n  - name: A\n", "has no legs"},
		{"no group", "chains:\n  - name: A\n    legs: [{signature: Muon, steps: [{sequence: s}]}]\n", "signature and a group"},
		{"no sequence", "chains:\n  - name: A\n    legs: [{signature: Muon, group: Muon, steps: [{multiplicity: 1}]}]\n", "has no sequence"},
		{"empty with sequence", "chains:\n  - name: A\n    legs: [{signature: Muon, group: Muon, steps: [{sequence: s, empty: true}]}]\n", "is empty but"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMenu([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMenu(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleMenu), 0o644))

	m, err := LoadMenu(path)
	require.NoError(t, err)
	assert.Len(t, m.Chains, 2)

	_, err = LoadMenu(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
