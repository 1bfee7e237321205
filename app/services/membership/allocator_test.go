package membership

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	mu     sync.Mutex
	issued map[string]bool
	max    map[string]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{issued: make(map[string]bool), max: make(map[string]int)}
}

func (d *fakeDirectory) MaxSuffix(ctx context.Context, prefix string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.max[prefix], nil
}

func (d *fakeDirectory) Exists(ctx context.Context, membershipID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.issued[membershipID], nil
}

func (d *fakeDirectory) issue(prefix string, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issued[Format(prefix, n)] = true
	if n > d.max[prefix] {
		d.max[prefix] = n
	}
}

func TestAllocateStartsAtOne(t *testing.T) {
	alloc := NewAllocator(newFakeDirectory())

	id, err := alloc.Allocate(context.Background(), "FM")
	require.NoError(t, err)
	require.Equal(t, "FM-000001", id)
}

func TestAllocateIncrementsPastGreatestSuffix(t *testing.T) {
	dir := newFakeDirectory()
	dir.issue("FM", 41)
	alloc := NewAllocator(dir)

	id, err := alloc.Allocate(context.Background(), "FM")
	require.NoError(t, err)
	require.Equal(t, "FM-000042", id)
}

func TestAllocateProbesPastTakenCandidates(t *testing.T) {
	dir := newFakeDirectory()
	dir.issue("FM", 5)
	// A stale max plus an already-issued candidate forces probing.
	dir.issued[Format("FM", 6)] = true
	alloc := NewAllocator(dir)

	id, err := alloc.Allocate(context.Background(), "FM")
	require.NoError(t, err)
	require.Equal(t, "FM-000007", id)
}

func TestAllocatePrefixesAreIndependent(t *testing.T) {
	dir := newFakeDirectory()
	dir.issue("FM", 10)
	alloc := NewAllocator(dir)

	id, err := alloc.Allocate(context.Background(), "AM")
	require.NoError(t, err)
	require.Equal(t, "AM-000001", id)
}

func TestAllocateSequentialIDsAreUnique(t *testing.T) {
	dir := newFakeDirectory()
	alloc := NewAllocator(dir)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, err := alloc.Allocate(context.Background(), "FM")
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		dir.issue("FM", ParseSuffix(id, "FM"))
	}
	require.Equal(t, "FM-000010", Format("FM", dir.max["FM"]))
}

func TestParseSuffix(t *testing.T) {
	require.Equal(t, 42, ParseSuffix("FM-000042", "FM"))
	require.Equal(t, 7, ParseSuffix("FM-7", "FM"))
	require.Zero(t, ParseSuffix("AM-000042", "FM"))
	require.Zero(t, ParseSuffix("FM-00x42", "FM"))
	require.Zero(t, ParseSuffix("FM000042", "FM"))
}

func TestRolePrefix(t *testing.T) {
	require.Equal(t, "FM", RolePrefix("Fellow Member"))
	require.Equal(t, "A", RolePrefix("Associate"))
	require.Equal(t, "AM", RolePrefix("Associate Member Grade"))
}
