//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore with an initialized schema.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()), "InitSchema should not fail")
	return s
}

func TestKuzuStore_InitSchemaIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InitSchema(context.Background()))
}

func TestKuzuStore(t *testing.T) {
	exerciseStore(t, newTestStore(t))
}

func TestKuzuFileStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph", "chains.kuzu")
	ctx := context.Background()
	rec := FromChain(sampleChain(t, "HLT_persist"))

	s, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddChain(ctx, rec))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, reopened.InitSchema(ctx))

	got, err := reopened.GetChain(ctx, "HLT_persist")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}
