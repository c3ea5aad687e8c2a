package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acecheckin/internal/records/memory"
)

func TestImportMembersNameColumn(t *testing.T) {
	store := memory.New()
	imp := New(store)

	csvData := `name,email,phone
Alice Johnson,alice@example.com,555-0100
Bob Smith,,
Carol Lee,carol@example.com,
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 3, stats.Created)
	assert.Zero(t, stats.Errors)

	members, err := store.ListMembers(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "Alice Johnson", members[0].Name)
	assert.Equal(t, "alice@example.com", members[0].Email)
	assert.Empty(t, members[1].Email)
}

func TestImportMembersFirstLastColumns(t *testing.T) {
	store := memory.New()
	imp := New(store)

	csvData := `First,Last,Email
Alice,Johnson,alice@example.com
Bob,Smith,
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	members, err := store.ListMembers(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Alice Johnson", members[0].Name)
	assert.Equal(t, "Bob Smith", members[1].Name)
}

func TestImportMembersSkipsEmptyNames(t *testing.T) {
	store := memory.New()
	imp := New(store)

	csvData := `first,last
Alice,Johnson
,
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRows)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.SkippedEmpty)
}

func TestImportMembersSkipsDuplicates(t *testing.T) {
	store := memory.New()
	imp := New(store)

	// Seed an existing member; duplicate matching ignores case.
	_, err := imp.ImportMembers(context.Background(),
		strings.NewReader("name\nAlice Johnson\n"), Options{})
	require.NoError(t, err)

	csvData := `name
ALICE JOHNSON
Alice Johnson
Bob Smith
Bob Smith
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 1, stats.Created, "only Bob Smith is new")
	assert.Equal(t, 3, stats.SkippedDuplicates, "two Alice rows and the repeated Bob row")
}

func TestImportMembersAllowDuplicates(t *testing.T) {
	store := memory.New()
	imp := New(store)

	csvData := `name
Alice Johnson
Alice Johnson
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{AllowDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)
}

func TestImportMembersDryRun(t *testing.T) {
	store := memory.New()
	imp := New(store)

	csvData := `name
Alice Johnson
Alice Johnson
`
	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.SkippedDuplicates, "dry run still catches duplicates within the file")

	members, err := store.ListMembers(context.Background(), 0, -1)
	require.NoError(t, err)
	assert.Empty(t, members, "dry run must not write")
}

func TestImportMembersInvalidRowCounted(t *testing.T) {
	store := memory.New()
	imp := New(store)

	longName := strings.Repeat("x", 300)
	csvData := "name\n" + longName + "\nBob Smith\n"

	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Created)
}

func TestImportMembersHeaderValidation(t *testing.T) {
	imp := New(memory.New())

	_, err := imp.ImportMembers(context.Background(), strings.NewReader("nickname\nAl\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")

	_, err = imp.ImportMembers(context.Background(), strings.NewReader(""), Options{})
	require.Error(t, err)
}

func TestImportMembersShortRows(t *testing.T) {
	store := memory.New()
	imp := New(store)

	// The second row is missing the email field entirely.
	csvData := "name,email\nAlice Johnson,alice@example.com\nBob Smith\n"

	stats, err := imp.ImportMembers(context.Background(), strings.NewReader(csvData), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	members, err := store.ListMembers(context.Background(), 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Empty(t, members[1].Email)
}
