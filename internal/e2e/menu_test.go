//go:build e2e

package e2e

import (
	"context"
	"io"
	"log/slog"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/chainmerge/internal/config"
	"github.com/dusk-indust/chainmerge/internal/export"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/menu"
	"github.com/dusk-indust/chainmerge/internal/metrics"
	"github.com/dusk-indust/chainmerge/internal/status"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func gatherSum(t *testing.T, reg *prom.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			}
		}
	}
	return sum
}

// TestMenu_E2E assembles the sample menu end to end: YAML, merge, store,
// metrics and status.
func TestMenu_E2E(t *testing.T) {
	m, err := config.LoadMenu(menuPath())
	require.NoError(t, err)

	reg := prom.NewRegistry()
	store := graph.NewMemStore()
	asm := menu.NewAssembler(menu.Options{
		Concurrency: 2,
		Store:       store,
		Recorder:    metrics.NewPrometheusRecorder(reg),
		Logger:      quietLogger,
	})

	ctx := context.Background()
	chains, err := asm.Assemble(ctx, m)
	require.NoError(t, err)
	require.Len(t, chains, len(m.Chains))

	want := map[string]struct{ width, steps, placeholders int }{
		"HLT_mu10_j45":      {2, 3, 3},
		"HLT_2mu4":          {2, 2, 1},
		"HLT_e26_mu8_tau25": {3, 5, 10},
		"HLT_mu6_2mu4_3j20": {3, 3, 5},
		"HLT_j420":          {1, 1, 0},
	}
	for _, c := range chains {
		t.Run(c.Name, func(t *testing.T) {
			require.NoError(t, c.Validate())
			w, ok := want[c.Name]
			require.True(t, ok)
			assert.Equal(t, w.width, c.Width())
			assert.Len(t, c.Steps, w.steps)

			rec, err := store.GetChain(ctx, c.Name)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, w.placeholders, status.Summarize(*rec).Placeholders)
		})
	}

	ms, err := status.GetMenuStatus(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 14, ms.Steps)
	assert.Equal(t, 19, ms.Placeholders)

	assert.Equal(t, 5.0, gatherSum(t, reg, "chainmerge_merges_total"))
	assert.Equal(t, 5.0, gatherSum(t, reg, "chainmerge_assembled_chains"))
	assert.Greater(t, gatherSum(t, reg, "chainmerge_placeholder_cache_lookups_total"), 0.0)
}

// TestMenu_E2E_Deterministic assembles the menu twice with separate caches
// and stores and compares the exports.
func TestMenu_E2E_Deterministic(t *testing.T) {
	m, err := config.LoadMenu(menuPath())
	require.NoError(t, err)

	fingerprint := func(concurrency int) string {
		asm := menu.NewAssembler(menu.Options{Concurrency: concurrency, Logger: quietLogger})
		chains, err := asm.Assemble(context.Background(), m)
		require.NoError(t, err)
		exp, err := export.ExportChains(chains)
		require.NoError(t, err)
		return exp.Fingerprint
	}

	assert.Equal(t, fingerprint(1), fingerprint(8))
}
