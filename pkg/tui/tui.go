package tui

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/unowned-ai/learnlog/pkg/journal"
)

type view int

const (
	viewToday view = iota
	viewBrowse
	viewDashboard
)

var viewNames = []string{"Today", "Browse", "Dashboard"}

type inputMode int

const (
	inputNone    inputMode = iota
	inputCompose           // new entry for today
	inputEdit              // rewrite an existing entry
	inputReason            // miss reason of a past day
)

// Options configures ShowTUI.
type Options struct {
	BackupDir string
	WAL       bool
	Clock     func() time.Time // defaults to time.Now
}

type model struct {
	db         *sql.DB
	dbFilename string
	opts       Options

	view   view
	width  int // Current terminal width (for layout)
	height int // Current terminal height
	err    error

	quitting bool

	status        string
	statusIsError bool
	statusSeq     int

	// Shared entry form: text first, then tags
	inputMode  inputMode
	inputStep  int // 0 = editing text, 1 = editing tags
	formError  string
	textInput  textinput.Model
	tagsInput  textinput.Model
	editingID  int64
	reasonDate string
	reasonIn   textinput.Model

	today []journal.Entry

	browseDate            string
	browseEntries         []journal.Entry
	entryCursor           int
	entryDeleting         bool
	entryDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	month        string
	summary      journal.Summary
	missed       []journal.Day
	heatmap      journal.Heatmap
	missedCursor int
}

// Initialize TUI model
func initModel(db *sql.DB, dbFile string, opts Options) model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	now := opts.Clock()

	text := textinput.New()
	text.Placeholder = "What did you learn?"
	text.CharLimit = 1024

	tags := textinput.New()
	tags.Placeholder = "Tags, comma separated (optional)"
	tags.CharLimit = 256

	reason := textinput.New()
	reason.Placeholder = "Why was this day missed? (empty clears)"
	reason.CharLimit = 256

	return model{
		db:         db,
		dbFilename: filepath.Base(dbFile),
		opts:       opts,

		view: viewToday,

		textInput: text,
		tagsInput: tags,
		reasonIn:  reason,

		today:         []journal.Entry{},
		browseDate:    journal.FormatDate(now),
		browseEntries: []journal.Entry{},
		month:         journal.FormatMonth(now),
		missed:        []journal.Day{},
	}
}

func (m model) now() time.Time {
	return m.opts.Clock()
}

// Reload the data behind every view
func (m model) reload() tea.Cmd {
	now := m.now()
	return tea.Batch(
		loadToday(m.db, now),
		loadEntriesForDate(m.db, m.browseDate),
		loadDashboard(m.db, m.month, now),
	)
}

// Execute commands concurrently with no ordering guarantees during initialization
func (m model) Init() tea.Cmd {
	return m.reload()
}

func (m *model) setStatus(text string, isError bool) tea.Cmd {
	m.status = text
	m.statusIsError = isError
	m.statusSeq++
	return clearStatusAfter(m.statusSeq)
}

func (m *model) startForm(mode inputMode, text, tags string) tea.Cmd {
	m.inputMode = mode
	m.inputStep = 0
	m.formError = ""
	m.textInput.SetValue(text)
	m.tagsInput.SetValue(tags)
	m.tagsInput.Blur()
	return m.textInput.Focus()
}

func (m *model) endInput() {
	m.inputMode = inputNone
	m.inputStep = 0
	m.formError = ""
	m.editingID = 0
	m.reasonDate = ""
	m.textInput.Reset()
	m.tagsInput.Reset()
	m.reasonIn.Reset()
	m.textInput.Blur()
	m.tagsInput.Blur()
	m.reasonIn.Blur()
}

// Processes events like window resize, errors, loaded data, and key presses
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Save the new window size in the model for responsive layout
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case todayEntriesMsg:
		m.today = msg
		return m, nil

	case browseEntriesMsg:
		// Ignore results for a date the user has already moved away from
		if msg.date != m.browseDate {
			return m, nil
		}
		m.browseEntries = msg.entries
		if m.entryCursor >= len(m.browseEntries) {
			m.entryCursor = max(len(m.browseEntries)-1, 0)
		}
		return m, nil

	case dashboardMsg:
		m.summary = msg.summary
		m.missed = msg.missed
		m.heatmap = msg.heatmap
		if m.missedCursor >= len(m.missed) {
			m.missedCursor = max(len(m.missed)-1, 0)
		}
		return m, nil

	case statusMsg:
		cmd := m.setStatus(msg.text, msg.isError)
		if msg.reload {
			return m, tea.Batch(cmd, m.reload())
		}
		return m, cmd

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.updateInput(msg)
		}
		if m.entryDeleting {
			return m.updateDeleteConfirm(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			// Exit alt screen before quitting so the goodbye message displays
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

		case "tab":
			m.view = (m.view + 1) % view(len(viewNames))
			return m, nil

		case "shift+tab":
			m.view = (m.view + view(len(viewNames)) - 1) % view(len(viewNames))
			return m, nil

		case "1", "2", "3":
			m.view = view(msg.String()[0] - '1')
			return m, nil

		case "b":
			return m, runBackup(m.db, m.opts.BackupDir, m.opts.WAL, m.now())

		case "ctrl+r":
			return m, m.reload()
		}

		switch m.view {
		case viewToday:
			return m.updateToday(msg)
		case viewBrowse:
			return m.updateBrowse(msg)
		case viewDashboard:
			return m.updateDashboard(msg)
		}
	}

	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		return m, nil

	case tea.KeyEnter:
		if m.inputMode == inputReason {
			date, reason := m.reasonDate, m.reasonIn.Value()
			m.endInput()
			return m, saveMissReason(m.db, date, reason, m.now())
		}

		if m.inputStep == 0 {
			if strings.TrimSpace(m.textInput.Value()) == "" {
				m.formError = "Entry text cannot be empty"
				return m, nil
			}
			// Press Enter on text field -> move to tags field
			m.formError = ""
			m.inputStep = 1
			m.textInput.Blur()
			cmd := m.tagsInput.Focus()
			return m, cmd
		}

		mode, id := m.inputMode, m.editingID
		text, tags := m.textInput.Value(), m.tagsInput.Value()
		m.endInput()
		if mode == inputEdit {
			return m, updateEntry(m.db, id, text, tags)
		}
		return m, saveEntry(m.db, m.now(), text, tags)
	}

	// Route character input to the focused field
	var cmd tea.Cmd
	switch {
	case m.inputMode == inputReason:
		m.reasonIn, cmd = m.reasonIn.Update(msg)
	case m.inputStep == 0:
		m.textInput, cmd = m.textInput.Update(msg)
	default:
		m.tagsInput, cmd = m.tagsInput.Update(msg)
	}
	return m, cmd
}

func (m model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.entryDeleteConfirmIdx = 0

	case "down", "j":
		m.entryDeleteConfirmIdx = 1

	case "enter":
		m.entryDeleting = false
		if m.entryDeleteConfirmIdx == 0 && m.entryCursor < len(m.browseEntries) {
			return m, deleteEntry(m.db, m.browseEntries[m.entryCursor].ID)
		}

	case "esc":
		m.entryDeleting = false
	}
	return m, nil
}

func (m model) updateToday(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "a", "enter":
		cmd := m.startForm(inputCompose, "", "")
		return m, cmd
	}
	return m, nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return m.shiftBrowseDate(-1)

	case "right", "l":
		return m.shiftBrowseDate(1)

	case "t":
		m.browseDate = journal.FormatDate(m.now())
		m.entryCursor = 0
		return m, loadEntriesForDate(m.db, m.browseDate)

	case "up", "k":
		if m.entryCursor > 0 {
			m.entryCursor--
		}

	case "down", "j":
		if m.entryCursor < len(m.browseEntries)-1 {
			m.entryCursor++
		}

	case "e", "enter":
		if m.entryCursor < len(m.browseEntries) {
			entry := m.browseEntries[m.entryCursor]
			cmd := m.startForm(inputEdit, entry.Text, entry.Tags)
			m.editingID = entry.ID
			return m, cmd
		}

	case "d":
		if len(m.browseEntries) > 0 {
			m.entryDeleteConfirmIdx = 1
			m.entryDeleting = true
		}
	}
	return m, nil
}

// Move the browsed date by days, never past today
func (m model) shiftBrowseDate(days int) (tea.Model, tea.Cmd) {
	current, err := journal.ParseDate(m.browseDate)
	if err != nil {
		return m, nil
	}
	next := journal.FormatDate(current.AddDate(0, 0, days))
	if next > journal.FormatDate(m.now()) {
		return m, nil
	}
	m.browseDate = next
	m.entryCursor = 0
	m.browseEntries = []journal.Entry{}
	return m, loadEntriesForDate(m.db, next)
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		return m.shiftMonth(-1)

	case "right", "l":
		return m.shiftMonth(1)

	case "up", "k":
		if m.missedCursor > 0 {
			m.missedCursor--
		}

	case "down", "j":
		if m.missedCursor < len(m.missed)-1 {
			m.missedCursor++
		}

	case "r", "enter":
		if m.missedCursor < len(m.missed) {
			day := m.missed[m.missedCursor]
			m.inputMode = inputReason
			m.reasonDate = day.Date
			m.reasonIn.SetValue(day.MissReason)
			cmd := m.reasonIn.Focus()
			return m, cmd
		}
	}
	return m, nil
}

// Move the dashboard month, never past the current one
func (m model) shiftMonth(months int) (tea.Model, tea.Cmd) {
	current, err := journal.ParseMonth(m.month)
	if err != nil {
		return m, nil
	}
	next := journal.FormatMonth(current.AddDate(0, months, 0))
	if next > journal.FormatMonth(m.now()) {
		return m, nil
	}
	m.month = next
	m.missedCursor = 0
	return m, loadDashboard(m.db, next, m.now())
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Keep learning. See you tomorrow.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("learnlog - what did you learn today?")

	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if view(i) == m.view {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var body string
	switch m.view {
	case viewToday:
		body = m.viewToday()
	case viewBrowse:
		body = m.viewBrowse()
	case viewDashboard:
		body = m.viewDashboard()
	}

	panel := panelStyle
	if m.width > 4 {
		panel = panel.Width(m.width - 2)
	}

	walStatus := 2
	if m.opts.WAL {
		walStatus = 1
	}
	info := fmt.Sprintf("Database file: %s  WAL: %s",
		TextStatusColorize(m.dbFilename, 1),
		TextStatusColorize(fmt.Sprintf("%t", m.opts.WAL), walStatus))

	statusLine := ""
	if m.status != "" {
		if m.statusIsError {
			statusLine = textRedStyle.Render(m.status)
		} else {
			statusLine = textStyle.Render(m.status)
		}
	}

	footerBar := footerStyle.Width(m.width).Render(m.helpText())

	return titleBar + "\n" + tabBar + "\n" + panel.Render(body) + "\n" + info + "\n" + statusLine + "\n" + footerBar
}

func (m model) viewForm(title string) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(title) + "\n\n")
	b.WriteString(labelStyle.Render("Text: ") + m.textInput.View() + "\n")
	b.WriteString(labelStyle.Render("Tags: ") + m.tagsInput.View() + "\n\n")
	b.WriteString("(enter to continue, esc to cancel)")
	if m.formError != "" {
		b.WriteString("\n\n" + textRedStyle.Render(m.formError))
	}
	return b.String()
}

func (m model) viewEntryLine(e journal.Entry, width int) string {
	line := e.CreatedAt.Local().Format("15:04") + "  " + truncate(e.Text, width)
	if e.Tags != "" {
		line += "  " + tagStyle.Render("["+e.Tags+"]")
	}
	return line
}

func (m model) textWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-30, 10)
}

func (m model) viewToday() string {
	if m.inputMode == inputCompose {
		return m.viewForm("New entry for " + journal.FormatDate(m.now()))
	}

	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Today %s  ·  %s", journal.FormatDate(m.now()), pluralEntries(len(m.today)))))
	b.WriteString("\n\n")

	if len(m.today) == 0 {
		b.WriteString("Nothing logged yet today. Press 'n' to add what you learned.\n")
		return b.String()
	}
	for _, e := range m.today {
		b.WriteString("  " + m.viewEntryLine(e, m.textWidth()) + "\n")
	}
	return b.String()
}

func (m model) viewBrowse() string {
	if m.inputMode == inputEdit {
		return m.viewForm(fmt.Sprintf("Edit entry %d", m.editingID))
	}

	var b strings.Builder
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("<  %s  >  ·  %s", m.browseDate, pluralEntries(len(m.browseEntries)))))
	b.WriteString("\n\n")

	if m.entryDeleting && m.entryCursor < len(m.browseEntries) {
		b.WriteString("Delete: " + textRedStyle.Render(truncate(m.browseEntries[m.entryCursor].Text, m.textWidth())) + "\n\n")
		yesOpt, noOpt := "Yes", "No"
		if m.entryDeleteConfirmIdx == 0 {
			yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
			noOpt = inactiveStyle.Render("  " + noOpt)
		} else {
			yesOpt = inactiveStyle.Render("  " + yesOpt)
			noOpt = selectedStyle.Render(" >" + noOpt)
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
		b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
		return b.String()
	}

	if len(m.browseEntries) == 0 {
		b.WriteString("  No entries on this day.\n")
		return b.String()
	}
	for i, e := range m.browseEntries {
		pointer := generateLinePointer(i == m.entryCursor, 2)
		line := m.viewEntryLine(e, m.textWidth())
		if i == m.entryCursor {
			line = selectedStyle.Render(e.CreatedAt.Local().Format("15:04")+"  "+truncate(e.Text, m.textWidth())) +
				tagsSuffix(e)
		}
		b.WriteString(pointer + line + "\n")
	}
	return b.String()
}

func tagsSuffix(e journal.Entry) string {
	if e.Tags == "" {
		return ""
	}
	return "  " + tagStyle.Render("["+e.Tags+"]")
}

func (m model) viewDashboard() string {
	var b strings.Builder
	s := m.summary

	b.WriteString(subtitleStyle.Render("<  " + m.month + "  >"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Days logged:      ") + fmt.Sprintf("%d / %d\n", s.ActiveDays, s.TotalDays))
	b.WriteString(labelStyle.Render("Missed days:      ") + fmt.Sprintf("%d\n", s.MissedDays))
	b.WriteString(labelStyle.Render("Total entries:    ") + fmt.Sprintf("%d\n", s.TotalEntries))
	b.WriteString(labelStyle.Render("Avg / active day: ") + fmt.Sprintf("%.2f\n\n", s.AvgPerActiveDay))

	b.WriteString(subtitleStyle.Render("Missed days") + "\n")
	if m.inputMode == inputReason {
		b.WriteString(labelStyle.Render(m.reasonDate+": ") + m.reasonIn.View() + "\n")
		b.WriteString("(enter to save, esc to cancel)\n")
	} else if len(m.missed) == 0 {
		b.WriteString("  None. Keep it up!\n")
	} else {
		for i, d := range m.missed {
			reason := TextStatusColorize("no reason", 0)
			if d.MissReason != "" {
				reason = TextStatusColorize(d.MissReason, 2)
			}
			date := d.Date
			if i == m.missedCursor {
				date = selectedStyle.Render(date)
			}
			b.WriteString(generateLinePointer(i == m.missedCursor, 2) + date + "  " + reason + "\n")
		}
	}

	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("Activity %d", m.heatmap.Start.Year())) + "\n")
	b.WriteString(RenderHeatmap(m.heatmap))
	return b.String()
}

func (m model) helpText() string {
	if m.inputMode != inputNone || m.entryDeleting {
		return "enter to confirm • esc to cancel"
	}
	common := "tab/1-3 switch view • b backup • q quit"
	switch m.view {
	case viewBrowse:
		return "←/→ day • ↑/↓ select • e edit • d delete • t today • " + common
	case viewDashboard:
		return "←/→ month • ↑/↓ select • r set/clear reason • " + common
	default:
		return "n new entry • " + common
	}
}

// Create and start the Bubble Tea TUI
func ShowTUI(db *sql.DB, dbFile string, opts Options) error {
	p := tea.NewProgram(initModel(db, dbFile, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
