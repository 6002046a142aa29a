package mcptools

import (
	"github.com/dusk-indust/chainmerge/internal/graph"
	"github.com/dusk-indust/chainmerge/internal/status"
)

// MergeChainInput is the input for the merge_chain MCP tool.
type MergeChainInput struct {
	Chain    string `json:"chain" jsonschema:"name of a chain defined in the loaded menu"`
	Strategy string `json:"strategy,omitempty" jsonschema:"override the menu strategy: parallel, serial or auto"`
	Offset   *int   `json:"offset,omitempty" jsonschema:"override the parallel step offset (only 0 is supported)"`
}

// MergeChainOutput is the result of the merge_chain MCP tool.
type MergeChainOutput struct {
	Chain       graph.ChainRecord `json:"chain"`
	Fingerprint string            `json:"fingerprint"`
}

// GetChainInput is the input for the get_chain MCP tool.
type GetChainInput struct {
	Chain string `json:"chain" jsonschema:"name of a merged chain"`
}

// GetChainOutput is the result of the get_chain MCP tool.
type GetChainOutput struct {
	Chain   graph.ChainRecord  `json:"chain"`
	Status  status.ChainStatus `json:"status"`
	Diagram string             `json:"diagram"`
}

// ListChainsInput is the input for the list_chains MCP tool.
type ListChainsInput struct{}

// ListChainsOutput is the result of the list_chains MCP tool.
type ListChainsOutput struct {
	// Defined lists the chains of the loaded menu, in menu order.
	Defined []string          `json:"defined"`
	Merged  []graph.ChainNode `json:"merged"`
	Status  status.MenuStatus `json:"status"`
	// Graph counts the nodes and edges the store holds.
	Graph graph.GraphStats `json:"graph"`
}

// PlaceholderNameInput is the input for the placeholder_name MCP tool.
type PlaceholderNameInput struct {
	Leg          int    `json:"leg" jsonschema:"slot index of the leg in the merge"`
	Position     int    `json:"position" jsonschema:"1-based alignment position inside the group"`
	Group        string `json:"group" jsonschema:"alignment group, e.g. Muon"`
	Signature    string `json:"signature" jsonschema:"signature of the leg, e.g. Jet"`
	Multiplicity []int  `json:"multiplicity" jsonschema:"multiplicity per slot of the leg"`
	FullScan     bool   `json:"fullScan,omitempty" jsonschema:"whether the leg is seeded by a full-scan threshold"`
	Chained      bool   `json:"chained,omitempty" jsonschema:"whether the placeholder follows an earlier step of the same leg"`
}

// PlaceholderNameOutput is the result of the placeholder_name MCP tool.
type PlaceholderNameOutput struct {
	Step      string   `json:"step"`
	Sequences []string `json:"sequences"`
}
