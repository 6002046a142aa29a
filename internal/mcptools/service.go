// Package mcptools exposes chain merging over the Model Context Protocol.
package mcptools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/chainmerge/internal/export"
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/logfields"
	"github.com/dusk-indust/chainmerge/internal/menu"
	"github.com/dusk-indust/chainmerge/internal/merge"
	"github.com/dusk-indust/chainmerge/internal/status"
)

// Service holds the menu, the assembler and the store used by the MCP tool
// handlers.
type Service struct {
	assembler *menu.Assembler
	menu      menu.Menu
	store     graph.Store
	factory   *merge.Factory
	log       *slog.Logger
}

// NewService creates a Service. A nil logger means slog.Default().
func NewService(asm *menu.Assembler, m menu.Menu, store graph.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		assembler: asm,
		menu:      m,
		store:     store,
		factory:   merge.NewFactory(merge.NewMapCache()),
		log:       logger,
	}
}

// MergeChain merges one chain of the menu, stores the result and returns
// its topology.
func (s *Service) MergeChain(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeChainInput,
) (*mcp.CallToolResult, MergeChainOutput, error) {
	if input.Chain == "" {
		return nil, MergeChainOutput{}, fmt.Errorf("chain is required")
	}
	def, ok := s.menu.Chain(input.Chain)
	if !ok {
		return nil, MergeChainOutput{}, fmt.Errorf("chain %q is not defined in the menu", input.Chain)
	}
	if input.Strategy != "" {
		strategy, err := merge.ParseStrategy(input.Strategy)
		if err != nil {
			return nil, MergeChainOutput{}, err
		}
		def.Strategy = strategy
	}
	if input.Offset != nil {
		def.Offset = *input.Offset
	}

	merged, err := s.assembler.MergeChain(ctx, def, s.menu.GroupOrder)
	if err != nil {
		s.log.Warn("tool failed", logfields.Tool("merge_chain"), logfields.Chain(def.Name), logfields.Error(err))
		return nil, MergeChainOutput{}, err
	}

	if err := s.store.InitSchema(ctx); err != nil {
		return nil, MergeChainOutput{}, fmt.Errorf("init schema: %w", err)
	}
	rec := graph.FromChain(merged)
	if err := s.store.AddChain(ctx, rec); err != nil {
		return nil, MergeChainOutput{}, fmt.Errorf("store chain: %w", err)
	}

	fp, err := export.Fingerprint(rec)
	if err != nil {
		return nil, MergeChainOutput{}, err
	}
	s.log.Info("tool completed", logfields.Tool("merge_chain"), logfields.Chain(def.Name))
	return nil, MergeChainOutput{Chain: rec, Fingerprint: fp}, nil
}

// GetChain returns a merged chain with its summary and Mermaid diagram.
func (s *Service) GetChain(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetChainInput,
) (*mcp.CallToolResult, GetChainOutput, error) {
	if input.Chain == "" {
		return nil, GetChainOutput{}, fmt.Errorf("chain is required")
	}
	rec, err := s.store.GetChain(ctx, input.Chain)
	if err != nil {
		return nil, GetChainOutput{}, fmt.Errorf("get chain: %w", err)
	}
	if rec == nil {
		return nil, GetChainOutput{}, fmt.Errorf("chain %q has not been merged", input.Chain)
	}
	return nil, GetChainOutput{
		Chain:   *rec,
		Status:  status.Summarize(*rec),
		Diagram: export.GenerateMermaid(*rec),
	}, nil
}

// ListChains returns the menu's chain names and everything merged so far.
func (s *Service) ListChains(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListChainsInput,
) (*mcp.CallToolResult, ListChainsOutput, error) {
	merged, err := s.store.ListChains(ctx)
	if err != nil {
		return nil, ListChainsOutput{}, fmt.Errorf("list chains: %w", err)
	}
	ms, err := status.GetMenuStatus(ctx, s.store)
	if err != nil {
		return nil, ListChainsOutput{}, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, ListChainsOutput{}, fmt.Errorf("graph stats: %w", err)
	}

	defined := make([]string, len(s.menu.Chains))
	for i, def := range s.menu.Chains {
		defined[i] = def.Name
	}
	if merged == nil {
		merged = []graph.ChainNode{}
	}
	if ms.Chains == nil {
		ms.Chains = []status.ChainStatus{}
	}
	return nil, ListChainsOutput{Defined: defined, Merged: merged, Status: ms, Graph: *stats}, nil
}

// PlaceholderName renders the names of the placeholder step described by
// input without merging anything.
func (s *Service) PlaceholderName(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PlaceholderNameInput,
) (*mcp.CallToolResult, PlaceholderNameOutput, error) {
	if input.Position < 1 {
		return nil, PlaceholderNameOutput{}, fmt.Errorf("position must be at least 1, got %d", input.Position)
	}
	if len(input.Multiplicity) == 0 {
		return nil, PlaceholderNameOutput{}, fmt.Errorf("multiplicity must have one entry per slot")
	}
	if input.Group == "" || input.Signature == "" {
		return nil, PlaceholderNameOutput{}, fmt.Errorf("group and signature are required")
	}

	step := s.factory.Make(merge.PlaceholderSpec{
		Leg:          input.Leg,
		Position:     input.Position,
		Group:        input.Group,
		Signature:    input.Signature,
		Multiplicity: input.Multiplicity,
		FullScan:     input.FullScan,
		Chained:      input.Chained,
	})

	out := PlaceholderNameOutput{Step: step.Name}
	for _, seq := range step.Sequences {
		out.Sequences = append(out.Sequences, seq.SequenceName())
	}
	return nil, out, nil
}
