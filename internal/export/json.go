package export

import (
	"context"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/graph"
)

// MenuExport is the top-level JSON export structure.
type MenuExport struct {
	GeneratedAt string        `json:"generatedAt,omitempty"`
	Fingerprint string        `json:"fingerprint"`
	Chains      []ChainExport `json:"chains"`
}

// ChainExport is one merged chain with its content fingerprint.
type ChainExport struct {
	graph.ChainRecord
	Fingerprint string `json:"fingerprint"`
}

// encMode produces Core Deterministic CBOR (RFC 8949 §4.2), so equal
// records always hash to equal fingerprints.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// Fingerprint returns the hex BLAKE3-256 digest of rec's deterministic CBOR
// encoding.
func Fingerprint(rec graph.ChainRecord) (string, error) {
	data, err := encMode.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("export: encode %s: %w", rec.Name, err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ExportChains builds a MenuExport from merged chains, in the order given.
// The menu fingerprint covers every chain fingerprint in name order, so it
// does not depend on the order chains were assembled in.
func ExportChains(chains []chain.Chain) (*MenuExport, error) {
	records := make([]graph.ChainRecord, len(chains))
	for i, c := range chains {
		records[i] = graph.FromChain(c)
	}
	return exportRecords(records)
}

// ExportStore builds a MenuExport from every chain in store.
func ExportStore(ctx context.Context, store graph.Store) (*MenuExport, error) {
	list, err := store.ListChains(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: list chains: %w", err)
	}
	records := make([]graph.ChainRecord, 0, len(list))
	for _, node := range list {
		rec, err := store.GetChain(ctx, node.Name)
		if err != nil {
			return nil, fmt.Errorf("export: get chain %s: %w", node.Name, err)
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return exportRecords(records)
}

func exportRecords(records []graph.ChainRecord) (*MenuExport, error) {
	out := &MenuExport{Chains: make([]ChainExport, 0, len(records))}
	byName := make(map[string]string, len(records))
	for _, rec := range records {
		fp, err := Fingerprint(rec)
		if err != nil {
			return nil, err
		}
		out.Chains = append(out.Chains, ChainExport{ChainRecord: rec, Fingerprint: fp})
		byName[rec.Name] = fp
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	h := blake3.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(byName[name]))
		h.Write([]byte{0})
	}
	out.Fingerprint = hex.EncodeToString(h.Sum(nil))
	return out, nil
}
