package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acecheckin/internal/records/memory"
)

func TestDefaultSeedData(t *testing.T) {
	data := defaultSeedData(50, 25)
	require.Len(t, data.Members, 5)
	assert.Equal(t, "Alice Johnson", data.Members[0].Name)
	assert.Equal(t, "Edward Norton", data.Members[4].Name)

	var entries, payments int
	for _, m := range data.Members {
		entries += len(m.Entries)
		payments += len(m.Payments)
	}
	assert.Equal(t, 50, entries)
	assert.Equal(t, 25, payments)

	// Round-robin puts the first entry and the first payment on Alice.
	require.NotEmpty(t, data.Members[0].Entries)
	assert.Equal(t, "Entry at Court A", data.Members[0].Entries[0].Notes)
	require.NotEmpty(t, data.Members[0].Payments)
	assert.Equal(t, "25.50", data.Members[0].Payments[0].Amount)
	assert.Equal(t, "Court rental fee", data.Members[0].Payments[0].Notes)
}

func TestDefaultSeedDataScaled(t *testing.T) {
	data := defaultSeedData(8, 3)
	require.Len(t, data.Members, 5)

	var entries, payments int
	for _, m := range data.Members {
		entries += len(m.Entries)
		payments += len(m.Payments)
	}
	assert.Equal(t, 8, entries)
	assert.Equal(t, 3, payments)

	empty := defaultSeedData(0, 0)
	for _, m := range empty.Members {
		assert.Empty(t, m.Entries)
		assert.Empty(t, m.Payments)
	}
}

func TestSeedStore(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	data := seedFile{Members: []seedMember{
		{
			Name:  "Alice Johnson",
			Email: "alice@example.com",
			Entries: []seedEntry{
				{Notes: "Entry at Court A", DaysAgo: 1},
				{Notes: "Entry at Court B", HoursAgo: 3},
			},
			Payments: []seedPayment{
				{Amount: "25.50", Notes: "Monthly membership", DaysAgo: 7},
			},
		},
		{Name: "Bob Smith"},
	}}

	var out bytes.Buffer
	stats, err := seedStore(ctx, store, data, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.membersCreated)
	assert.Zero(t, stats.membersExisting)
	assert.Equal(t, 2, stats.entries)
	assert.Equal(t, 1, stats.payments)
	assert.Contains(t, out.String(), "Created member: Alice Johnson")

	members, err := store.ListMembers(ctx, 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 2)

	entries, err := store.ListEntries(ctx, members[0].ID, 0, -1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	payments, err := store.ListPayments(ctx, members[0].ID, 0, -1)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "25.50", payments[0].Amount.String())
}

func TestSeedStoreRerunReusesMembers(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	data := seedFile{Members: []seedMember{
		{Name: "Alice Johnson", Entries: []seedEntry{{Notes: "Entry at Court A"}}},
	}}

	var out bytes.Buffer
	_, err := seedStore(ctx, store, data, &out)
	require.NoError(t, err)

	stats, err := seedStore(ctx, store, data, &out)
	require.NoError(t, err)
	assert.Zero(t, stats.membersCreated)
	assert.Equal(t, 1, stats.membersExisting)
	assert.Equal(t, 1, stats.entries, "activity is appended on every run")

	members, err := store.ListMembers(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, members, 1, "members are not duplicated")

	entries, err := store.ListEntries(ctx, members[0].ID, 0, -1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSeedStoreRejectsBadAmount(t *testing.T) {
	store := memory.New()

	data := seedFile{Members: []seedMember{
		{Name: "Alice Johnson", Payments: []seedPayment{{Amount: "25.555"}}},
	}}

	var out bytes.Buffer
	_, err := seedStore(context.Background(), store, data, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "25.555")
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "seed.yaml")
	content := `members:
  - name: Alice Johnson
    email: alice@example.com
    entries:
      - notes: Entry at Court A
        days_ago: 2
    payments:
      - amount: "25.50"
        notes: Monthly membership
        days_ago: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := loadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, data.Members, 1)
	assert.Equal(t, "Alice Johnson", data.Members[0].Name)
	require.Len(t, data.Members[0].Entries, 1)
	assert.Equal(t, 2, data.Members[0].Entries[0].DaysAgo)
	require.Len(t, data.Members[0].Payments, 1)
	assert.Equal(t, "25.50", data.Members[0].Payments[0].Amount)
}

func TestLoadSeedFileErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("members: []\n"), 0o644))
	_, err := loadSeedFile(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no members")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("members: {broken\n"), 0o644))
	_, err = loadSeedFile(bad)
	require.Error(t, err)

	_, err = loadSeedFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
