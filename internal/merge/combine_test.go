package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/chain"
)

func TestRenamer_CounterSkipsReservedOrdinals(t *testing.T) {
	r := NewRenamer(testChain, map[int]int{0: 2})

	var got []int
	for slot := range 3 {
		id, err := r.Assign(slot)
		require.NoError(t, err)
		got = append(got, id.Ordinal)
	}
	assert.Equal(t, []int{2, 0, 1}, got)
}

func TestRenamer_Collision(t *testing.T) {
	r := NewRenamer(testChain, map[int]int{0: 1, 1: 1})

	_, err := r.Assign(0)
	require.NoError(t, err)
	_, err = r.Assign(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "leg001_HLT_mu10_j45")
}

func TestFactory_SameSpecSameStep(t *testing.T) {
	cache := NewMapCache()
	f := NewFactory(cache)
	spec := PlaceholderSpec{
		Leg: 1, Position: 2, Group: "Jet", Signature: "Jet-Jet",
		Multiplicity: []int{1, 2},
		Template: []chain.Descriptor{
			{Signature: "Jet", Parts: []chain.Part{{Name: "Jet", Multiplicity: 1}}},
			{Signature: "Jet", Parts: []chain.Part{{Name: "Jet", Multiplicity: 1}}},
		},
	}

	first := f.Make(spec)
	second := f.Make(spec)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	require.Len(t, first.Sequences, 2)
	assert.Equal(t, "EmptyJetSeq2_1x2_Jet-Jet_leg001_s0", first.Sequences[0].SequenceName())
	assert.Equal(t, "EmptyJetSeq2_1x2_Jet-Jet_leg001_s1", first.Sequences[1].SequenceName())
	assert.Equal(t, "EmptyJetAlign2_1x2_Jet-Jet_leg001", first.Name)
	assert.True(t, first.Empty)
	assert.Equal(t, 2, first.Descriptors[1].Parts[0].Multiplicity)

	// The template is copied, not shared.
	assert.Equal(t, 1, spec.Template[1].Parts[0].Multiplicity)
}

func TestFactory_DistinctSpecsDistinctKeys(t *testing.T) {
	base := PlaceholderSpec{Leg: 0, Position: 1, Group: "Muon", Signature: "Muon", Multiplicity: []int{1}}

	variants := []PlaceholderSpec{
		{Leg: 1, Position: 1, Group: "Muon", Signature: "Muon", Multiplicity: []int{1}},
		{Leg: 0, Position: 2, Group: "Muon", Signature: "Muon", Multiplicity: []int{1}},
		{Leg: 0, Position: 1, Group: "Jet", Signature: "Muon", Multiplicity: []int{1}},
		{Leg: 0, Position: 1, Group: "Muon", Signature: "Muon", Multiplicity: []int{2}},
		{Leg: 0, Position: 1, Group: "Muon", Signature: "Muon", Multiplicity: []int{1}, FullScan: true},
		{Leg: 0, Position: 1, Group: "Muon", Signature: "Muon", Multiplicity: []int{1}, FullScan: true, Chained: true},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.Key(), v.Key(), "%+v", v)
	}

	// Chained only matters for full-scan legs.
	chained := base
	chained.Chained = true
	assert.Equal(t, base.Key(), chained.Key())
}

func TestCombine_ConflictingComboHypos(t *testing.T) {
	a := muon(chain.LegStep{Name: "Step1_mu", Sequence: "mu", ComboHypo: &chain.ComboHypo{Name: "DR", Tools: []string{"dRmu"}}})
	b := muon(chain.LegStep{Name: "Step1_mu2", Sequence: "mu2", ComboHypo: &chain.ComboHypo{Name: "DR", Tools: []string{"dRjet"}}})

	_, err := New(nil).Parallel([]chain.Chain{a, b}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCombine_IdenticalComboHyposKeptOnce(t *testing.T) {
	combo := &chain.ComboHypo{Name: "DR", Tools: []string{"dRmu"}}
	a := muon(chain.LegStep{Name: "Step1_mu", Sequence: "mu", ComboHypo: combo})
	b := muon(chain.LegStep{Name: "Step1_mu2", Sequence: "mu2", ComboHypo: combo})

	out, err := New(nil).Parallel([]chain.Chain{a, b}, 0)
	require.NoError(t, err)
	assert.True(t, combo.Equal(out.Steps[0].ComboHypo))
	assert.NotSame(t, combo, out.Steps[0].ComboHypo)
}

func TestCombine_WidthMismatch(t *testing.T) {
	single := muon(run("mu1", 1))
	wide := single.Steps[0].Clone()
	wide.Sequences = append(wide.Sequences, chain.RealSequence{Name: "extra"})

	c := NewCombiner(NewFactory(nil))
	_, err := c.Combine(CombineInput{
		Chain: testChain,
		Steps: []*chain.Step{&wide},
		Legs:  []chain.Chain{single},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestStripPrefix(t *testing.T) {
	cases := map[string]string{
		"Step1_muFast":               "muFast",
		"merged_Step2_muComb":        "muComb",
		"merged_merged_Step12_jet":   "jet",
		"Step_idle":                  "Step_idle",
		"EmptyMuonAlign1_1_Muon_leg0": "EmptyMuonAlign1_1_Muon_leg0",
	}
	for in, want := range cases {
		assert.Equal(t, want, stripPrefix(in), in)
	}
}

func TestError_Format(t *testing.T) {
	err := configErrorf(testChain, "bad %s", "thing").With("b", 2).With("a", 1)
	assert.Equal(t, "merge [configuration] HLT_mu10_j45: bad thing (a=1, b=2)", err.Error())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.NotErrorIs(t, err, ErrStructural)
	assert.Equal(t, Kind(""), KindOf(assert.AnError))
}
