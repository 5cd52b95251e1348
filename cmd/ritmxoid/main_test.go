package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/ritmxoid/internal/forecast"
	"github.com/talgya/ritmxoid/internal/rhythm"
	"github.com/talgya/ritmxoid/internal/roster"
)

// run executes the CLI in-process against dbPath and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dbPath string, args ...string) string {
	t.Helper()
	out, err := run(t, dbPath, args...)
	require.NoError(t, err, "ritmxoid %s", strings.Join(args, " "))
	return out
}

func newDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data", "cli.db")
}

func TestProfileLifecycle(t *testing.T) {
	db := newDB(t)
	mustRun(t, db, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00", "--master")
	mustRun(t, db, "profile", "add", "--name", "Ben", "--birth", "1991-03-04T09:00", "--team", "Red")

	out := mustRun(t, db, "--json", "profile", "list")
	var profiles []roster.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ann", profiles[0].Name)
	assert.True(t, profiles[0].IsMaster)
	assert.Equal(t, "1990-01-01T12:00:00", profiles[0].Birth)

	out = mustRun(t, db, "profile", "remove", "ben")
	assert.Contains(t, out, "removed Ben")

	_, err := run(t, db, "profile", "remove", "nobody")
	assert.Error(t, err)
}

func TestProfileAddRequiresFlags(t *testing.T) {
	_, err := run(t, newDB(t), "profile", "add", "--name", "Ann")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newDB(t)
	mustRun(t, src, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00", "--team", "Red")

	file := filepath.Join(t.TempDir(), "profiles.json")
	mustRun(t, src, "profile", "export", "-o", file)

	dst := newDB(t)
	out := mustRun(t, dst, "profile", "import", file)
	assert.Equal(t, "imported 1 profiles\n", out)

	exported, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, string(exported), mustRun(t, dst, "profile", "export"))
}

func TestSnapshotMaster(t *testing.T) {
	db := newDB(t)
	mustRun(t, db, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00", "--master")

	out := mustRun(t, db, "snapshot", "--at", "1990-01-01T12:00")
	assert.Contains(t, out, "Ann (born 1990-01-01T12:00:00)")
	assert.Contains(t, out, "Balance:    45 (Optimal)  basic 30  reactive 15")
	assert.Contains(t, out, "motor 72  physical 48  sensory 32  analytical 24")
	assert.Contains(t, out, "1st day of the year")

	out = mustRun(t, db, "--json", "snapshot", "ann", "--at", "2024-02-01T12:00", "--chart", "14")
	var body struct {
		Snapshot forecast.Snapshot   `json:"snapshot"`
		Chart    []forecast.ChartBar `json:"chart"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, rhythm.ElapsedDays(time.Date(1990, 1, 1, 12, 0, 0, 0, rhythm.AppZone),
		time.Date(2024, 2, 1, 12, 0, 0, 0, rhythm.AppZone)), body.Snapshot.ElapsedDays)
	assert.Len(t, body.Chart, 14)
}

func TestSnapshotWithoutMaster(t *testing.T) {
	_, err := run(t, newDB(t), "snapshot")
	assert.Error(t, err)
}

func TestCalendarText(t *testing.T) {
	db := newDB(t)
	mustRun(t, db, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00", "--master")

	out := mustRun(t, db, "calendar", "--year", "2024")
	assert.Contains(t, out, "Ann, 2024")
	assert.Contains(t, out, "January")
	assert.Contains(t, out, "December")
	assert.Equal(t, 12, strings.Count(out, " Mo  Tu  We  Th  Fr  Sa  Su"))
}

func TestRankAndArena(t *testing.T) {
	db := newDB(t)
	mustRun(t, db, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00", "--team", "Red")
	mustRun(t, db, "profile", "add", "--name", "Ben", "--birth", "1991-03-04T09:00", "--team", "Red")
	mustRun(t, db, "profile", "add", "--name", "Cid", "--birth", "1988-11-20T18:45")

	out := mustRun(t, db, "rank", "--at", "2024-02-01")
	assert.Contains(t, out, "Red\n")
	assert.Contains(t, out, "No team\n")
	assert.Contains(t, out, "1st")
	assert.Contains(t, out, "2nd")

	out = mustRun(t, db, "--json", "rank", "--at", "2024-02-01", "--group", "Red", "--mode", "reactive")
	var entries []roster.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsGroup)
	assert.Equal(t, 2, entries[0].Members)

	_, err := run(t, db, "rank", "--group", "Red", "--mode", "loud")
	assert.Error(t, err)
}

func TestCompat(t *testing.T) {
	db := newDB(t)
	mustRun(t, db, "profile", "add", "--name", "Ann", "--birth", "1990-01-01T12:00")
	mustRun(t, db, "profile", "add", "--name", "Ben", "--birth", "1990-01-07T12:00")

	out := mustRun(t, db, "compat", "Ann", "Ben", "--at", "2024-02-01")
	assert.Equal(t, "Ann and Ben: Polar (index 6, gauge 100)\n", out)

	_, err := run(t, db, "compat", "Ann", "Ann")
	assert.ErrorIs(t, err, roster.ErrNeedTwoProfiles)
}

func TestParseTarget(t *testing.T) {
	timeNow = func() time.Time { return time.Date(2024, 2, 1, 7, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = time.Now })

	now, err := parseTarget("")
	require.NoError(t, err)
	assert.Equal(t, 12, now.Hour())

	wall, err := parseTarget("2024-02-01T08:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 8, 30, 0, 0, rhythm.AppZone), wall)

	instant, err := parseTarget("2024-02-01T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 13, instant.Hour())

	_, err = parseTarget("next tuesday")
	assert.Error(t, err)
}

func TestServeFailsOnBusyPort(t *testing.T) {
	held, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { held.Close() })
	t.Setenv("RITMXOID_PORT", strconv.Itoa(held.Addr().(*net.TCPAddr).Port))

	_, err = run(t, newDB(t), "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on port")
}
