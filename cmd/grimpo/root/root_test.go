package root

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimpo/internal/garden"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GRIMPO_LOG_LEVEL", "error")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsPersistAcrossInvocations(t *testing.T) {
	db := filepath.Join(t.TempDir(), "garden.db")

	out, err := run(t, db, "complete", "task-1")
	require.NoError(t, err)
	assert.Contains(t, out, "kelp")

	out, err = run(t, db, "complete", "task-1")
	require.NoError(t, err)
	assert.Contains(t, out, "already rewarded")

	_, err = run(t, db, "buy", "kelp")
	require.NoError(t, err)

	out, err = run(t, db, "place", "kelp", "12", "7.5")
	require.NoError(t, err)
	id := regexp.MustCompile(`placed (\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2, "output: %s", out)

	_, err = run(t, db, "resize", id[1], "5")
	require.NoError(t, err)
	_, err = run(t, db, "recolor", id[1], "gold")
	require.NoError(t, err)

	out, err = run(t, db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "x2.00")
	assert.Contains(t, out, "gold")
	assert.Contains(t, out, "(empty)")

	_, err = run(t, db, "remove", id[1])
	require.NoError(t, err)

	out, err = run(t, db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "kelp x1")
	assert.Contains(t, out, "(nothing placed)")
}

func TestCommandErrors(t *testing.T) {
	db := filepath.Join(t.TempDir(), "garden.db")

	_, err := run(t, db, "buy", "abyssal_temple")
	assert.ErrorIs(t, err, garden.ErrItemLocked)

	_, err = run(t, db, "buy", "nope")
	assert.ErrorIs(t, err, garden.ErrUnknownItem)

	_, err = run(t, db, "move", "missing", "1", "2")
	assert.ErrorIs(t, err, garden.ErrNotFound)

	_, err = run(t, db, "place", "kelp", "x", "2")
	assert.EqualError(t, err, "x must be a finite number")

	_, err = run(t, db, "place", "kelp", "1", "2")
	assert.ErrorIs(t, err, garden.ErrNoneOwned)
}

func TestPlaceRejectsNonFiniteCoordinatesWithoutLosingItem(t *testing.T) {
	db := filepath.Join(t.TempDir(), "garden.db")

	_, err := run(t, db, "complete", "t1")
	require.NoError(t, err)
	_, err = run(t, db, "buy", "kelp")
	require.NoError(t, err)

	_, err = run(t, db, "place", "kelp", "NaN", "0")
	assert.EqualError(t, err, "x must be a finite number")
	_, err = run(t, db, "place", "kelp", "0", "-Inf")
	assert.EqualError(t, err, "y must be a finite number")

	out, err := run(t, db, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "kelp x1")
	assert.Contains(t, out, "(nothing placed)")

	out, err = run(t, db, "place", "kelp", "1", "2")
	require.NoError(t, err)
	id := regexp.MustCompile(`placed (\S+)`).FindStringSubmatch(out)
	require.Len(t, id, 2, "output: %s", out)

	_, err = run(t, db, "move", id[1], "Inf", "0")
	assert.EqualError(t, err, "x must be a finite number")
}

func TestKeyFlagIsolatesGardens(t *testing.T) {
	db := filepath.Join(t.TempDir(), "garden.db")

	_, err := run(t, db, "--key", "alice", "complete")
	require.NoError(t, err)

	out, err := run(t, db, "--key", "bob", "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "locked")
	assert.NotContains(t, out, "unlocked")

	out, err = run(t, db, "--key", "alice", "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "unlocked")
}
