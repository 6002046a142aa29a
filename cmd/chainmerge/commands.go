package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/export"
	"github.com/dusk-indust/chainmerge/internal/logfields"
	"github.com/dusk-indust/chainmerge/internal/mcptools"
	"github.com/dusk-indust/chainmerge/internal/menu"
	"github.com/dusk-indust/chainmerge/internal/metrics"
	"github.com/dusk-indust/chainmerge/internal/status"
)

// exportFile is the name of the JSON export written to --out.
const exportFile = "menu.json"

func (ws *workspace) assembler(opts menu.Options) *menu.Assembler {
	opts.Concurrency = ws.cfg.Concurrency
	opts.Store = ws.store
	opts.Logger = ws.log
	return menu.NewAssembler(opts)
}

// assemble merges the whole menu, printing progress lines to progress when
// it is not nil.
func (ws *workspace) assemble(ctx context.Context, progress io.Writer) ([]chain.Chain, error) {
	if progress == nil {
		return ws.assembler(menu.Options{}).Assemble(ctx, ws.menu)
	}

	fmt.Fprintln(progress, menu.FormatHeader(filepath.Base(ws.source), len(ws.menu.Chains)))

	reporter := menu.NewProgressReporter()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range reporter.Subscribe() {
			fmt.Fprintln(progress, menu.FormatProgress(ev))
		}
	}()

	// Only one line per chain is printed, so pending and working events
	// never reach the reporter's buffer.
	onProgress := func(ev menu.ProgressEvent) {
		if ev.Status.Terminal() {
			reporter.Emit(ev)
		}
	}

	chains, err := ws.assembler(menu.Options{OnProgress: onProgress}).Assemble(ctx, ws.menu)
	reporter.Close()
	<-done
	return chains, err
}

// ensureMerged fills an in-memory store. A persisted store already holds
// what an earlier merge wrote.
func (ws *workspace) ensureMerged(ctx context.Context) error {
	if ws.persist {
		return nil
	}
	_, err := ws.assemble(ctx, nil)
	return err
}

func runMerge(ctx context.Context, ws *workspace, stdout, stderr io.Writer) error {
	chains, err := ws.assemble(ctx, stderr)
	if err != nil {
		return err
	}

	// A persisted graph may hold chains from earlier menus; the export
	// covers everything it holds.
	var exp *export.MenuExport
	if ws.persist {
		exp, err = export.ExportStore(ctx, ws.store)
	} else {
		exp, err = export.ExportChains(chains)
	}
	if err != nil {
		return err
	}
	exp.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	out, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	out = append(out, '\n')

	if ws.cfg.OutputDir == "" {
		_, err = stdout.Write(out)
		return err
	}

	if err := os.MkdirAll(ws.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(ws.cfg.OutputDir, exportFile)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	ws.log.Info("export written", logfields.Path(path), slog.Int("chains", len(exp.Chains)))
	return nil
}

func runStatus(ctx context.Context, ws *workspace, stdout io.Writer) error {
	if err := ws.ensureMerged(ctx); err != nil {
		return err
	}

	ms, err := status.GetMenuStatus(ctx, ws.store)
	if err != nil {
		return err
	}
	if len(ms.Chains) == 0 {
		fmt.Fprintln(stdout, "No merged chains found.")
		fmt.Fprintln(stdout, "Run 'chainmerge --persist merge' to merge the menu.")
		return nil
	}

	fmt.Fprintf(stdout, "%-32s %4s %5s %12s %8s\n", "CHAIN", "LEGS", "STEPS", "PLACEHOLDERS", "DENSITY")
	for _, cs := range ms.Chains {
		fmt.Fprintf(stdout, "%-32s %4d %5d %12d %7.0f%%\n",
			cs.Name, cs.Legs, cs.Steps, cs.Placeholders, cs.Density()*100)
	}
	fmt.Fprintf(stdout, "\n%d chains, %d steps, %d placeholders\n", len(ms.Chains), ms.Steps, ms.Placeholders)

	stats, err := ws.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("graph stats: %w", err)
	}
	fmt.Fprintf(stdout, "graph: %d slots, %d edges\n", stats.SlotCount, stats.EdgeCount)
	return nil
}

func runDiagram(ctx context.Context, ws *workspace, name string, stdout io.Writer) error {
	if err := ws.ensureMerged(ctx); err != nil {
		return err
	}

	mermaid, err := export.ChainDiagram(ctx, ws.store, name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdout, mermaid)
	return err
}

func runServe(ctx context.Context, ws *workspace, addr string) error {
	reg := prom.NewRegistry()
	asm := ws.assembler(menu.Options{Recorder: metrics.NewPrometheusRecorder(reg)})
	svc := mcptools.NewService(asm, ws.menu, ws.store, ws.log)

	if addr != "" {
		return mcptools.RunHTTP(ctx, svc, addr, reg)
	}
	return mcptools.RunStdio(ctx, mcptools.NewServer(svc))
}
