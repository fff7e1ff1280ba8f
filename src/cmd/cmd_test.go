package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/expensetracker/backend/src/database"
	"github.com/username/expensetracker/backend/src/model"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// setupEnv points the configuration at a fresh database holding one user.
func setupEnv(t *testing.T) int64 {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("AMQP_URL", "")
	t.Setenv("FIELD_MAPPING_PATH", "")

	db, err := database.OpenAndMigrate(dbPath)
	require.NoError(t, err)
	defer db.Close()
	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, user.CreateUser(db))
	return user.ID
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "migrate")
	assert.NoError(t, err)
}

func TestImportThenExport(t *testing.T) {
	userID := setupEnv(t)
	dir := t.TempDir()
	userFlag := "--user=" + itoa(userID)

	input := filepath.Join(dir, "purchases.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name,Price,Category,Date\nMilk,2.50,Food,2024-01-01\nBread,abc,Food,2024-01-02\n"), 0o644))

	out, err := run(t, "import", userFlag, input)
	require.NoError(t, err)
	assert.Contains(t, out, `"imported": 1`)
	assert.Contains(t, out, "row 3")

	target := filepath.Join(dir, "out.json")
	out, err = run(t, "export", userFlag, "--format", "json", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 purchases")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"item_name": "Milk"`)

	_, err = run(t, "export", userFlag, "--from", "2025-01-01")
	assert.ErrorContains(t, err, "nothing to export")
}

func TestImportRequiresKnownUser(t *testing.T) {
	setupEnv(t)
	input := filepath.Join(t.TempDir(), "purchases.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name,Price,Category\nMilk,1,Food\n"), 0o644))

	_, err := run(t, "import", "--user=999", input)
	assert.ErrorContains(t, err, "user 999 not found")

	_, err = run(t, "import", input)
	assert.ErrorContains(t, err, "--user is required")
}

func TestImportAllRowsFailing(t *testing.T) {
	userID := setupEnv(t)
	input := filepath.Join(t.TempDir(), "purchases.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name,Price,Category\nMilk,abc,Food\n"), 0o644))

	_, err := run(t, "import", "--user="+itoa(userID), input)
	assert.ErrorContains(t, err, "no records were imported")
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
