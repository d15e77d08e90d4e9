package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	env := setupTestEnv(t)

	out := env.run(t, "add", "acme", "planning", "--start", "09:00", "--end", "10:15")
	assert.Equal(t, "Logged: 2024-01-15 09:00-10:15 acme: planning (1h 15m)\n", out)

	out = env.run(t, "add", "globex", "call", "@initech", "for", "20m")
	assert.Equal(t, "Logged: globex: call @initech (20m)\n", out)

	require.NoError(t, env.execute(t, "add", "acme", "--start", "09:00"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "--start and --end must be used together")

	require.NoError(t, env.execute(t, "add", "acme", "--start", "11:00", "--end", "10:00"))
	assert.Equal(t, 1, env.exitCode)

	assert.Error(t, env.execute(t, "add"))
}

func TestEdit(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t)

	out := env.run(t, "edit", "2", "--meta", "standup @initech", "--billed")
	assert.Contains(t, out, "Updated entry 2:")
	assert.Contains(t, out, "beta: standup @initech")
	assert.Contains(t, env.readLog(t), "beta,2024-01-15T10:00:00,2024-01-15T11:00:00,standup @initech,")

	out = env.run(t, "edit", "2", "--project", "gamma")
	assert.Contains(t, out, "gamma: standup @initech")

	require.NoError(t, env.execute(t, "edit", "2"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "Pass at least one of")

	require.NoError(t, env.execute(t, "edit", "9", "--meta", "x"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "tt list")

	require.NoError(t, env.execute(t, "edit", "2", "--start", "12:00"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "start time must not be after the end time")
}

func TestDelete(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t)

	out := env.input(t, "n\n", "delete", "2")
	assert.Contains(t, out, "Entry to delete:")
	assert.Contains(t, out, "Deletion cancelled")
	assert.Contains(t, env.readLog(t), "beta,")

	out = env.run(t, "delete", "2", "--yes")
	assert.Contains(t, out, "Deleted: beta: call")
	assert.Contains(t, out, "tt undo")
	log := env.readLog(t)
	assert.NotContains(t, log, "beta,")
	assert.Contains(t, log, ",deleted,")

	require.NoError(t, env.execute(t, "delete", "abc", "-y"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "index must be a number")
}

func TestUndoRedoAcrossRuns(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t)
	env.run(t, "delete", "2", "-y")

	out := env.run(t, "undo")
	assert.Equal(t, "Undone: 1 restored\n", out)
	assert.Contains(t, env.readLog(t), "beta,")

	out = env.run(t, "redo")
	assert.Equal(t, "Redone: 1 removed\n", out)
	assert.NotContains(t, env.readLog(t), "beta,")

	out = env.run(t, "history")
	assert.Equal(t, 5, strings.Count(out, "\n"), out)
	assert.Contains(t, out, "delete")

	for range 4 {
		env.run(t, "undo")
	}
	require.NoError(t, env.execute(t, "undo"))
	assert.Equal(t, 1, env.exitCode)
	assert.Contains(t, env.stderr.String(), "bulk edit or restore")
	assert.Contains(t, env.run(t), "No entries found for today")
}

func TestBill(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t)

	out := env.run(t, "bill", "1", "3")
	assert.Contains(t, out, "Marked 2 entries as billed")
	assert.Equal(t, 2, strings.Count(env.readLog(t), ",true\n"))

	assert.Contains(t, env.run(t, "list", "--billed"), "(2 entries)")
	assert.Contains(t, env.run(t, "list", "--unbilled"), "(1 entry)")

	out = env.run(t, "unbill", "3")
	assert.Contains(t, out, "Marked 1 entry as unbilled")
	assert.Equal(t, 1, strings.Count(env.readLog(t), ",true\n"))

	require.NoError(t, env.execute(t, "bill", "0"))
	assert.Equal(t, 1, env.exitCode)
}

func TestSearch(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t)

	out := env.run(t, "search", "review")
	assert.Contains(t, out, "acme: review #code")
	assert.NotContains(t, out, "beta")
}
