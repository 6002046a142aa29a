//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at
// dbPath, so merged menus survive across runs. KuzuDB creates the leaf
// directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Chain(
		name STRING,
		width INT64,
		steps INT64,
		l1 STRING,
		groups STRING,
		PRIMARY KEY(name)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Step(
		id STRING,
		chain STRING,
		idx INT64,
		name STRING,
		empty BOOLEAN,
		combo STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Slot(
		id STRING,
		chain STRING,
		step_idx INT64,
		slot INT64,
		leg STRING,
		sequence STRING,
		placeholder BOOLEAN,
		multiplicity INT64,
		grp STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_STEP(FROM Chain TO Step)`,
	`CREATE REL TABLE IF NOT EXISTS NEXT(FROM Step TO Step)`,
	`CREATE REL TABLE IF NOT EXISTS HAS_SLOT(FROM Step TO Slot)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddChain replaces any stored chain of the same name with rec.
func (s *KuzuStore) AddChain(ctx context.Context, rec ChainRecord) error {
	if err := s.deleteChain(rec.Name); err != nil {
		return err
	}

	err := s.exec(
		"CREATE (c:Chain {name: $name, width: $width, steps: $steps, l1: $l1, groups: $groups})",
		map[string]any{
			"name":   rec.Name,
			"width":  int64(rec.Width),
			"steps":  int64(rec.StepCount),
			"l1":     joinList(rec.L1Thresholds),
			"groups": joinList(rec.AlignmentGroups),
		},
	)
	if err != nil {
		return err
	}

	for i, step := range rec.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.addStep(step); err != nil {
			return err
		}
		if i > 0 {
			err := s.exec(
				`MATCH (a:Step {id: $src}), (b:Step {id: $dst})
				CREATE (a)-[:NEXT]->(b)`,
				map[string]any{"src": rec.Steps[i-1].ID(), "dst": step.ID()},
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *KuzuStore) addStep(step StepRecord) error {
	err := s.exec(
		"CREATE (s:Step {id: $id, chain: $chain, idx: $idx, name: $name, empty: $empty, combo: $combo})",
		map[string]any{
			"id":    step.ID(),
			"chain": step.Chain,
			"idx":   int64(step.Index),
			"name":  step.Name,
			"empty": step.Empty,
			"combo": step.ComboHypo,
		},
	)
	if err != nil {
		return err
	}
	err = s.exec(
		`MATCH (c:Chain {name: $chain}), (s:Step {id: $id})
		CREATE (c)-[:HAS_STEP]->(s)`,
		map[string]any{"chain": step.Chain, "id": step.ID()},
	)
	if err != nil {
		return err
	}

	for _, sl := range step.Slots {
		err := s.exec(
			`CREATE (s:Slot {
				id: $id,
				chain: $chain,
				step_idx: $step,
				slot: $slot,
				leg: $leg,
				sequence: $seq,
				placeholder: $ph,
				multiplicity: $mult,
				grp: $grp
			})`,
			map[string]any{
				"id":    sl.ID(),
				"chain": sl.Chain,
				"step":  int64(sl.StepIndex),
				"slot":  int64(sl.Slot),
				"leg":   sl.Leg,
				"seq":   sl.Sequence,
				"ph":    sl.Placeholder,
				"mult":  int64(sl.Multiplicity),
				"grp":   sl.Group,
			},
		)
		if err != nil {
			return err
		}
		err = s.exec(
			`MATCH (a:Step {id: $src}), (b:Slot {id: $dst})
			CREATE (a)-[:HAS_SLOT]->(b)`,
			map[string]any{"src": step.ID(), "dst": sl.ID()},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// deleteChain removes a chain with its steps and slots. Deleting a chain
// that does not exist is not an error.
func (s *KuzuStore) deleteChain(name string) error {
	for _, cypher := range []string{
		"MATCH (n:Slot) WHERE n.chain = $name DETACH DELETE n",
		"MATCH (n:Step) WHERE n.chain = $name DETACH DELETE n",
		"MATCH (n:Chain) WHERE n.name = $name DETACH DELETE n",
	} {
		if err := s.exec(cypher, map[string]any{"name": name}); err != nil {
			return fmt.Errorf("kuzu: delete chain %s: %w", name, err)
		}
	}
	return nil
}

// ---------- Read operations ----------

// GetChain reassembles the named chain, or returns nil if not found.
func (s *KuzuStore) GetChain(_ context.Context, name string) (*ChainRecord, error) {
	rows, err := s.query(
		"MATCH (c:Chain) WHERE c.name = $name RETURN c.name, c.width, c.steps, c.l1, c.groups",
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := &ChainRecord{ChainNode: rowToChain(rows[0])}

	stepRows, err := s.query(
		`MATCH (s:Step) WHERE s.chain = $name
		RETURN s.idx, s.name, s.empty, s.combo
		ORDER BY s.idx`,
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range stepRows {
		rec.Steps = append(rec.Steps, StepRecord{StepNode: StepNode{
			Chain:     name,
			Index:     toInt(r[0]),
			Name:      toString(r[1]),
			Empty:     toBool(r[2]),
			ComboHypo: toString(r[3]),
		}})
	}

	slotRows, err := s.query(
		`MATCH (s:Slot) WHERE s.chain = $name
		RETURN s.step_idx, s.slot, s.leg, s.sequence, s.placeholder, s.multiplicity, s.grp
		ORDER BY s.step_idx, s.slot`,
		map[string]any{"name": name},
	)
	if err != nil {
		return nil, err
	}
	for _, r := range slotRows {
		idx := toInt(r[0])
		if idx < 0 || idx >= len(rec.Steps) {
			return nil, fmt.Errorf("kuzu: slot of %s references missing step %d", name, idx)
		}
		rec.Steps[idx].Slots = append(rec.Steps[idx].Slots, SlotNode{
			Chain:        name,
			StepIndex:    idx,
			Slot:         toInt(r[1]),
			Leg:          toString(r[2]),
			Sequence:     toString(r[3]),
			Placeholder:  toBool(r[4]),
			Multiplicity: toInt(r[5]),
			Group:        toString(r[6]),
		})
	}
	return rec, nil
}

// ListChains returns every chain summary sorted by name.
func (s *KuzuStore) ListChains(_ context.Context) ([]ChainNode, error) {
	rows, err := s.query(
		"MATCH (c:Chain) RETURN c.name, c.width, c.steps, c.l1, c.groups ORDER BY c.name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	out := make([]ChainNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToChain(r))
	}
	return out, nil
}

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	chains, err := s.count("MATCH (n:Chain) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	steps, err := s.count("MATCH (n:Step) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	slots, err := s.count("MATCH (n:Slot) RETURN count(n)")
	if err != nil {
		return nil, err
	}
	placeholders, err := s.count("MATCH (n:Slot) WHERE n.placeholder = true RETURN count(n)")
	if err != nil {
		return nil, err
	}
	edges := 0
	for _, kind := range []EdgeKind{EdgeKindHasStep, EdgeKindNext, EdgeKindHasSlot} {
		// Relationship names are fixed constants, not user input.
		n, err := s.count(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", kind))
		if err != nil {
			return nil, err
		}
		edges += n
	}
	return &GraphStats{
		ChainCount:       chains,
		StepCount:        steps,
		SlotCount:        slots,
		PlaceholderCount: placeholders,
		EdgeCount:        edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows in column
// order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// count runs a single-value count query.
func (s *KuzuStore) count(cypher string) (int, error) {
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// rowToChain converts a 5-column result row into a ChainNode.
// Column order: name, width, steps, l1, groups.
func rowToChain(r []any) ChainNode {
	return ChainNode{
		Name:            toString(r[0]),
		Width:           toInt(r[1]),
		StepCount:       toInt(r[2]),
		L1Thresholds:    splitList(toString(r[3])),
		AlignmentGroups: splitList(toString(r[4])),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
