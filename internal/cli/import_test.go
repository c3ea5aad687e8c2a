package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "test.db"))

	csvPath := filepath.Join(dir, "members.csv")
	csvData := "name,email\nAlice Johnson,alice@example.com\nBob Smith,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csvData), 0o644))

	out, err := runCommand(t, "import", csvPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created:              2")

	// A second run skips both as duplicates.
	out, err = runCommand(t, "import", csvPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created:              0")
	assert.Contains(t, out, "Skipped (duplicate):  2")
}

func TestImportCommandDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "test.db"))

	csvPath := filepath.Join(dir, "members.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name\nAlice Johnson\n"), 0o644))

	out, err := runCommand(t, "import", csvPath, "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Dry run: nothing was written")

	// The dry run left the database empty, so a real import creates the row.
	out, err = runCommand(t, "import", csvPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created:              1")
}

func TestImportCommandRejectsMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "memory")

	csvPath := filepath.Join(dir, "members.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name\nAlice Johnson\n"), 0o644))

	_, err := runCommand(t, "import", csvPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite backend")
}

func TestImportCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "test.db"))

	_, err := runCommand(t, "import", filepath.Join(dir, "absent.csv"))
	require.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", dbPath)

	out, err := runCommand(t, "migrate", "up")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Migrations applied")

	_, statErr := os.Stat(dbPath)
	require.NoError(t, statErr, "migrate up must create the database file")

	out, err = runCommand(t, "migrate", "down", "--steps", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Rolled back 1 migration(s)")
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "test.db"))

	seedPath := filepath.Join(dir, "seed.yaml")
	content := `members:
  - name: Alice Johnson
    payments:
      - amount: "25.50"
`
	require.NoError(t, os.WriteFile(seedPath, []byte(content), 0o644))

	out, err := runCommand(t, "seed", "--file", seedPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Members created:  1")
	assert.Contains(t, out, "Payments added:   1")
}
