package tui

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/learnlog/pkg/db"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := pkgdb.OpenDBConnection(":memory:", false, "NORMAL")
	require.NoError(t, err)
	require.NoError(t, pkgdb.UpgradeDB(testDB, ":memory:", pkgdb.TargetSchemaVersion, zerolog.Nop()))
	t.Cleanup(func() { testDB.Close() })

	return testDB
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)
}

func newTestModel(t *testing.T) (model, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return initModel(db, ":memory:", Options{Clock: fixedNow}), db
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok, "Update must return a model, got %T", next)
	return nm, cmd
}

func TestComposeEntry(t *testing.T) {
	m, db := newTestModel(t)

	m, _ = send(t, m, keys("n"))
	require.Equal(t, inputCompose, m.inputMode)

	// Enter on an empty text field keeps the form open.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Entry text cannot be empty", m.formError)
	assert.Equal(t, 0, m.inputStep)

	m, _ = send(t, m, keys("closures capture variables"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, 1, m.inputStep)

	m, _ = send(t, m, keys("go, go"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, inputNone, m.inputMode)
	require.NotNil(t, cmd)

	msg := cmd()
	status, ok := msg.(statusMsg)
	require.True(t, ok, "expected statusMsg, got %T", msg)
	assert.False(t, status.isError)
	assert.True(t, status.reload)

	entries, err := journal.ListEntriesForToday(context.Background(), db, fixedNow())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "closures capture variables", entries[0].Text)
	assert.Equal(t, "go", entries[0].Tags)
}

func TestComposeEntry_EscCancels(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, keys("n"))
	m, _ = send(t, m, keys("half a thought"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, cmd)
	assert.Equal(t, inputNone, m.inputMode)
	assert.Empty(t, m.textInput.Value())
}

func TestSwitchViews(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, viewBrowse, m.view)

	m, _ = send(t, m, keys("3"))
	assert.Equal(t, viewDashboard, m.view)

	m, _ = send(t, m, keys("1"))
	assert.Equal(t, viewToday, m.view)
}

func TestBrowseNeverPassesToday(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = send(t, m, keys("2"))

	m, cmd := send(t, m, keys("l"))
	assert.Nil(t, cmd)
	assert.Equal(t, "2024-03-10", m.browseDate)

	m, cmd = send(t, m, keys("h"))
	require.NotNil(t, cmd)
	assert.Equal(t, "2024-03-09", m.browseDate)

	msg, ok := cmd().(browseEntriesMsg)
	require.True(t, ok)
	assert.Equal(t, "2024-03-09", msg.date)
}

func TestDashboardLoadsMissedDays(t *testing.T) {
	m, db := newTestModel(t)
	ctx := context.Background()

	_, err := journal.SaveEntry(ctx, db, time.Date(2024, time.March, 7, 9, 0, 0, 0, time.Local), "sqlite pragmas", "")
	require.NoError(t, err)

	msg, ok := loadDashboard(db, "2024-03", fixedNow())().(dashboardMsg)
	require.True(t, ok)
	assert.Equal(t, []journal.Day{{Date: "2024-03-08"}, {Date: "2024-03-09"}}, msg.missed)
	assert.Equal(t, 4, msg.summary.TotalDays)

	m, _ = send(t, m, msg)
	m, _ = send(t, m, keys("3"))
	m, _ = send(t, m, keys("j"))
	m, _ = send(t, m, keys("r"))
	require.Equal(t, inputReason, m.inputMode)
	assert.Equal(t, "2024-03-09", m.reasonDate)

	m, _ = send(t, m, keys("conference"))
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	status, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.False(t, status.isError, status.text)

	day, err := journal.GetDay(ctx, db, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, "conference", day.MissReason)

	view := m.View()
	assert.Contains(t, view, "Missed days")
}

func TestRenderHeatmap(t *testing.T) {
	start := time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 19, 0, 0, 0, 0, time.UTC)
	h := journal.BuildHeatmap(map[string]int{"2024-03-06": 2}, start, end)

	out := RenderHeatmap(h)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Month header, seven weekday rows, a blank line and the legend.
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "    Mar"))
	assert.True(t, strings.HasPrefix(lines[1], "Mon"))
	assert.True(t, strings.HasPrefix(lines[7], "Sun"))
	assert.Contains(t, lines[9], "Less")
	assert.Contains(t, lines[9], "More")

	assert.Equal(t, "No days in range.\n", RenderHeatmap(journal.Heatmap{}))
}

func TestPluralEntries(t *testing.T) {
	assert.Equal(t, "0 entries", pluralEntries(0))
	assert.Equal(t, "1 entry", pluralEntries(1))
	assert.Equal(t, "4 entries", pluralEntries(4))
}
