package menu

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/merge"
	"github.com/dusk-indust/chainmerge/internal/metrics"
)

// recordingRecorder is a metrics.Recorder that keeps what it is told.
type recordingRecorder struct {
	mu        sync.Mutex
	outcomes  map[string]int
	hits      int
	misses    int
	assembled int
}

func (r *recordingRecorder) IncMerge(strategy string, outcome metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[string]int)
	}
	r.outcomes[strategy+"/"+string(outcome)]++
}

func (r *recordingRecorder) ObserveMergeDuration(string, time.Duration) {}

func (r *recordingRecorder) IncPlaceholderCache(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func (r *recordingRecorder) ObserveAssembly(chains int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assembled = chains
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func leg(chainName, sig, group, l1 string, seqs ...string) chain.Chain {
	spec := chain.LegSpec{Chain: chainName, Signature: sig, Group: group, L1: l1}
	for _, s := range seqs {
		spec.Steps = append(spec.Steps, chain.LegStep{Name: "Step1_" + s, Sequence: s})
	}
	return chain.NewLeg(spec)
}

func testMenu() Menu {
	return Menu{
		GroupOrder: []string{"Muon", "Jet"},
		Chains: []ChainDef{
			{
				Name:     "HLT_mu10_j45",
				Strategy: merge.StrategyAuto,
				Legs: []chain.Chain{
					leg("HLT_mu10_j45", "Jet", "Jet", "FSNOSEED", "jetReco"),
					leg("HLT_mu10_j45", "Muon", "Muon", "MU8F", "muFast", "muComb"),
				},
			},
			{
				Name:     "HLT_2mu4",
				Strategy: merge.StrategyParallel,
				Legs: []chain.Chain{
					leg("HLT_2mu4", "Muon", "Muon", "MU3V", "muFast"),
					leg("HLT_2mu4", "Muon", "Muon", "MU3V", "muFast"),
				},
			},
			{
				Name:     "HLT_mu4",
				Strategy: merge.StrategySerial,
				Legs:     []chain.Chain{leg("HLT_mu4", "Muon", "Muon", "MU3V", "muFast")},
			},
		},
	}
}

func TestAssembler_MergesEveryChainInOrder(t *testing.T) {
	store := graph.NewMemStore()
	rec := &recordingRecorder{}

	var mu sync.Mutex
	var events []ProgressEvent
	a := NewAssembler(Options{
		Concurrency: 2,
		Store:       store,
		Recorder:    rec,
		Logger:      quietLogger,
		OnProgress: func(ev ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, ev)
		},
	})

	m := testMenu()
	out, err := a.Assemble(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, def := range m.Chains {
		assert.Equal(t, def.Name, out[i].Name)
	}
	assert.Len(t, out[0].Steps, 3)
	assert.Equal(t, 2, out[1].Width())

	list, err := store.ListChains(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)

	assert.Equal(t, 3, rec.assembled)
	assert.Equal(t, 1, rec.outcomes["auto/success"])
	assert.Equal(t, 1, rec.outcomes["parallel/success"])
	assert.Equal(t, 1, rec.outcomes["serial/success"])
	assert.Positive(t, rec.misses)

	mu.Lock()
	defer mu.Unlock()
	complete := 0
	for _, ev := range events {
		if ev.Status == ProgressComplete {
			complete++
		}
	}
	assert.Equal(t, 3, complete)
}

func TestAssembler_FailureIsWrappedAndClassified(t *testing.T) {
	rec := &recordingRecorder{}
	a := NewAssembler(Options{Recorder: rec, Logger: quietLogger})

	m := testMenu()
	m.Chains[1].Offset = 2

	out, err := a.Assemble(context.Background(), m)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, merge.ErrConfiguration)
	assert.Contains(t, err.Error(), "menu: chain HLT_2mu4")
	assert.Equal(t, 1, rec.outcomes["parallel/configuration_error"])
}

func TestAssembler_StructuralOutcome(t *testing.T) {
	rec := &recordingRecorder{}
	a := NewAssembler(Options{Recorder: rec, Logger: quietLogger})

	def := ChainDef{
		Name:     "HLT_bad",
		Strategy: merge.StrategySerial,
		Legs: []chain.Chain{
			leg("HLT_bad", "Muon", "Muon", "MU3V", "muFast"),
			leg("HLT_other", "Muon", "Muon", "MU3V", "muFast"),
		},
	}
	_, err := a.MergeChain(context.Background(), def, nil)
	assert.ErrorIs(t, err, merge.ErrStructural)
	assert.Equal(t, 1, rec.outcomes["serial/structural_error"])
}

func TestAssembler_CanceledContext(t *testing.T) {
	a := NewAssembler(Options{Logger: quietLogger})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Assemble(ctx, testMenu())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAssembler_SharedCacheReusedAcrossChains(t *testing.T) {
	rec := &recordingRecorder{}
	a := NewAssembler(Options{Concurrency: 1, Recorder: rec, Logger: quietLogger})

	m := Menu{GroupOrder: []string{"Muon"}}
	for range 2 {
		m.Chains = append(m.Chains, ChainDef{
			Name:     "HLT_2mu4",
			Strategy: merge.StrategyParallel,
			Legs: []chain.Chain{
				leg("HLT_2mu4", "Muon", "Muon", "MU3V", "muFast", "muComb"),
				leg("HLT_2mu4", "Muon", "Muon", "MU3V", "muFast"),
			},
		})
	}

	_, err := a.Assemble(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.misses)
	assert.Equal(t, 1, rec.hits)
}

func TestMenu_Chain(t *testing.T) {
	m := testMenu()
	def, ok := m.Chain("HLT_2mu4")
	require.True(t, ok)
	assert.Equal(t, merge.StrategyParallel, def.Strategy)

	_, ok = m.Chain("HLT_missing")
	assert.False(t, ok)
}
