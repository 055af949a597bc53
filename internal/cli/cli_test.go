package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/robotstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	dbPath string
	state  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("ROBOLAB_CONFIG_PATH", "")
	t.Setenv("ROBOLAB_DB_PATH", "")
	t.Setenv("ROBOLAB_SNAPSHOT_BACKEND", "")
	t.Setenv("ROBOLAB_SNAPSHOT_PATH", "")
	t.Setenv("ROBOLAB_LOG_PATH", "")
	dir := t.TempDir()
	return &harness{
		t:      t,
		dbPath: filepath.Join(dir, "data", "robots.db"),
		state:  filepath.Join(dir, "state"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCommand("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", h.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "robolab %v", args)
	return out
}

func (h *harness) create(name string, year int) robot.Robot {
	h.t.Helper()
	out := h.mustRun("create", "--json", "--name", name, "--label", "Test robot", "--year", itoa(year), "--type", "industrial")
	var rec robot.Robot
	require.NoError(h.t, json.Unmarshal([]byte(out), &rec))
	return rec
}

func (h *harness) list(args ...string) []robot.Robot {
	h.t.Helper()
	out := h.mustRun(append([]string{"list", "--json"}, args...)...)
	var recs []robot.Robot
	require.NoError(h.t, json.Unmarshal([]byte(out), &recs))
	return recs
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestMigrate_ReportsAppliedScripts(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("migrate")
	assert.Contains(t, out, "applied 1_create_robots")
	assert.Contains(t, out, "applied 5_kv_store")
	assert.Contains(t, out, "schema version 5")

	out = h.mustRun("migrate")
	assert.NotContains(t, out, "applied")
	assert.Contains(t, out, "schema version 5")
}

func TestCreateListGet(t *testing.T) {
	h := newHarness(t)

	created := h.create("R2D2", 1977)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "R2D2", created.Name)

	h.create("Atlas", 2013)

	recs := h.list("--sort", "year", "--order", "DESC")
	require.Len(t, recs, 2)
	assert.Equal(t, "Atlas", recs[0].Name)
	assert.Equal(t, "R2D2", recs[1].Name)

	recs = h.list("--q", "r2")
	require.Len(t, recs, 1)

	out := h.mustRun("get", created.ID)
	assert.Contains(t, out, "R2D2")
	assert.Contains(t, out, "active")
}

func TestCreate_DuplicateNameMessage(t *testing.T) {
	h := newHarness(t)
	h.create("R2D2", 1977)

	_, err := h.run("create", "--name", " r2d2 ", "--label", "Another droid", "--year", "1980", "--type", "service")
	require.Error(t, err)
	assert.ErrorIs(t, err, robot.ErrDuplicateName)
	assert.Equal(t, `A robot named "r2d2" already exists`, err.Error())
}

func TestCreate_ValidationMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("create", "--name", "X", "--label", "Valid label", "--year", "1977", "--type", "service")
	require.Error(t, err)
	assert.ErrorIs(t, err, robot.ErrValidation)
	assert.Contains(t, err.Error(), "name must be at least 2 characters")
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	rec := h.create("R2D2", 1977)

	_, err := h.run("update", rec.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	out := h.mustRun("update", "--json", rec.ID, "--year", "1983")
	var updated robot.Robot
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, 1983, updated.Year)
	assert.Equal(t, "R2D2", updated.Name)

	_, err = h.run("update", "missing-id", "--year", "1983")
	assert.ErrorIs(t, err, robot.ErrNotFound)
}

func TestArchiveFreesName(t *testing.T) {
	h := newHarness(t)
	first := h.create("R2D2", 1977)

	h.mustRun("archive", first.ID)
	assert.Empty(t, h.list())
	assert.Len(t, h.list("--all"), 1)

	h.create("R2D2", 1999)

	_, err := h.run("unarchive", first.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, robot.ErrDuplicateName)
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	rec := h.create("R2D2", 1977)

	out := h.mustRun("delete", rec.ID)
	assert.Equal(t, "deleted "+rec.ID+"\n", out)

	_, err := h.run("delete", rec.ID)
	assert.ErrorIs(t, err, robot.ErrNotFound)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	_, err := h.run("export", "--dir", dir)
	assert.ErrorIs(t, err, robot.ErrNothingToExport)

	h.create("R2D2", 1977)
	out := h.mustRun("export", "--dir", dir)
	assert.Contains(t, out, "exported 1 robots")

	files, err := filepath.Glob(filepath.Join(dir, "robots_export_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var recs []robot.Robot
	require.NoError(t, json.Unmarshal(data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "R2D2", recs[0].Name)
}

func TestState_FileBackendPersistsAcrossRuns(t *testing.T) {
	h := newHarness(t)
	flags := []string{"state", "--backend", "file", "--path", h.state}
	state := func(args ...string) string {
		return h.mustRun(append(append([]string{}, flags...), args...)...)
	}

	out := state("add", "--json", "--name", "Atlas", "--label", "Humanoid robot", "--year", "2013", "--type", "industrial")
	var atlas robot.Robot
	require.NoError(t, json.Unmarshal([]byte(out), &atlas))

	state("add", "--name", "Baxter", "--label", "Collaborative arm", "--year", "2012", "--type", "educational")

	var recs []robot.Robot
	require.NoError(t, json.Unmarshal([]byte(state("list", "--json")), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "Atlas", recs[0].Name)

	require.NoError(t, json.Unmarshal([]byte(state("list", "--json", "--by-year")), &recs))
	assert.Equal(t, 2013, recs[0].Year)

	state("select", atlas.ID)
	assert.Contains(t, state("select"), "Atlas")

	var stats robotstate.Stats
	require.NoError(t, json.Unmarshal([]byte(state("stats", "--json")), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2013, stats.NewestYear)

	state("remove", atlas.ID)
	assert.Contains(t, state("select"), "no robot selected")

	_, err := h.run(append(append([]string{}, flags...), "add", "--name", "baxter", "--label", "Duplicate arm", "--year", "2012", "--type", "other")...)
	assert.ErrorIs(t, err, robot.ErrDuplicateName)

	state("clear")
	require.NoError(t, json.Unmarshal([]byte(state("list", "--json")), &recs))
	assert.Empty(t, recs)
}

func TestState_SQLiteBackend(t *testing.T) {
	h := newHarness(t)

	h.mustRun("state", "--backend", "sqlite", "add", "--name", "Spot", "--label", "Quadruped robot", "--year", "2016", "--type", "service")

	var recs []robot.Robot
	out := h.mustRun("state", "--backend", "sqlite", "list", "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Spot", recs[0].Name)

	// The snapshot store is separate from the robots table.
	assert.Empty(t, h.list())
}

func TestState_UpdateKeepsUnchangedFields(t *testing.T) {
	h := newHarness(t)
	flags := []string{"state", "--backend", "file", "--path", h.state}

	out := h.mustRun(append(append([]string{}, flags...), "add", "--json", "--name", "Spot", "--label", "Quadruped robot", "--year", "2016", "--type", "service")...)
	var spot robot.Robot
	require.NoError(t, json.Unmarshal([]byte(out), &spot))

	out = h.mustRun(append(append([]string{}, flags...), "update", "--json", spot.ID, "--year", "2019")...)
	var updated robot.Robot
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, spot.ID, updated.ID)
	assert.Equal(t, 2019, updated.Year)
	assert.Equal(t, "Quadruped robot", updated.Label)
}

func TestState_UnknownBackend(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("state", "--backend", "s3", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown snapshot backend")
}

func TestExecute_ClosesLogFileWhenCommandFails(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "logs", "robolab.log")
	t.Setenv("ROBOLAB_LOG_PATH", logPath)

	rootCmd, opts := newRootCommand("test")
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--db", h.dbPath, "--verbose", "get", "missing-id"})

	err := execute(context.Background(), rootCmd, opts)
	require.ErrorIs(t, err, robot.ErrNotFound)
	assert.Nil(t, opts.logFile)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
