package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jrnl/internal/config"
	"jrnl/internal/due"
	"jrnl/internal/item"
	"jrnl/internal/journal"
)

type mode int

const (
	modeList mode = iota
	modeAddTask
	modeAddNote
	modeDue
	modeRecur
	modeDoneNote
	modeLink
	modeSearch
)

type view int

const (
	viewJournal view = iota
	viewDue
	viewStatus
	viewDone
	viewNotes
	viewSearch
)

var viewNames = map[view]string{
	viewJournal: "journal",
	viewDue:     "due",
	viewStatus:  "status",
	viewDone:    "done",
	viewNotes:   "notes",
	viewSearch:  "search",
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	doingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	waitingStyle  = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dueTodayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	noteStyle     = lipgloss.NewStyle().Faint(true)
)

// row is one rendered line: either a section header or a selectable item.
type row struct {
	text   string
	id     int64
	isTask bool
	task   item.Task
	header bool
}

type Model struct {
	svc    *journal.Service
	cfg    config.Config
	view   view
	rows   []row
	cursor int
	mode   mode
	input  textinput.Model
	status string

	confirmDel bool
	pendingDel *row
	results    []item.Item
}

func Run(svc *journal.Service, cfg config.Config) error {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		svc:    svc,
		cfg:    cfg,
		view:   parseView(cfg.DefaultView),
		input:  ti,
		mode:   modeList,
		status: "a task • n note • x done • space status • / search • tab views",
	}
	m = m.reload()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func parseView(name string) view {
	for v, n := range viewNames {
		if n == strings.ToLower(strings.TrimSpace(name)) && v != viewSearch {
			return v
		}
	}
	return viewJournal
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode != modeList {
			return m.updatePrompt(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		}
	case m.cfg.Keys.NextView, "right":
		m.view = nextView(m.view, 1)
		m = m.reload()
	case m.cfg.Keys.PrevView, "left":
		m.view = nextView(m.view, -1)
		m = m.reload()
	case m.cfg.Keys.AddTask:
		return m.startPrompt(modeAddTask, "Task title (append @today, @eow, @monday, @2025-12-25 ...)", ""), nil
	case m.cfg.Keys.AddNote:
		if r, ok := m.selected(); ok {
			return m.startPrompt(modeAddNote, fmt.Sprintf("Note text (under #%d)", r.id), ""), nil
		}
		return m.startPrompt(modeAddNote, "Note text (standalone)", ""), nil
	case m.cfg.Keys.Cycle:
		return m.cycleStatus()
	case m.cfg.Keys.Done:
		return m.toggleDone()
	case m.cfg.Keys.Due:
		r, ok := m.selected()
		if !ok || !r.isTask {
			m.status = "Select a task first"
			return m, nil
		}
		return m.startPrompt(modeDue, "Due spec (today, tomorrow, eow, eom, eoy, weekday, YYYY-MM-DD; empty clears)", formatDue(r.task.Info.DueDate)), nil
	case m.cfg.Keys.Recur:
		r, ok := m.selected()
		if !ok || !r.isTask {
			m.status = "Select a task first"
			return m, nil
		}
		return m.startPrompt(modeRecur, "Recur pattern (2d, 4w, 1m, 1y; empty clears)", formatRecur(r.task.Info.Recur)), nil
	case m.cfg.Keys.LinkMode:
		r, ok := m.selected()
		if !ok {
			m.status = "Select an item first"
			return m, nil
		}
		return m.startPrompt(modeLink, fmt.Sprintf("Link #%d to item id (prefix - to unlink)", r.id), ""), nil
	case m.cfg.Keys.SearchKey:
		return m.startPrompt(modeSearch, "Search pattern (* and ? wildcards)", ""), nil
	case m.cfg.Keys.Delete:
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		sel := r
		m.confirmDel = true
		m.pendingDel = &sel
		m.status = fmt.Sprintf("Delete \"%s\" and everything under it? y/n", r.text)
	}
	return m, nil
}

func (m Model) startPrompt(pm mode, placeholder, value string) Model {
	m.mode = pm
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.Focus()
	m.status = placeholder
	return m
}

func (m Model) updatePrompt(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.submitPrompt()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	pm := m.mode
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()

	var err error
	switch pm {
	case modeAddTask:
		title, dueSpec := splitDueSuffix(value)
		_, err = m.svc.CreateTask(nil, title, dueSpec, "")
		if err == nil {
			m.status = "Added task"
		}
	case modeAddNote:
		var parent *int64
		if r, ok := m.selected(); ok {
			id := r.id
			parent = &id
		}
		_, err = m.svc.CreateNote(parent, value)
		if err == nil {
			m.status = "Added note"
		}
	case modeDue:
		if r, ok := m.selected(); ok {
			_, err = m.svc.SetDueDate(r.id, value)
			if err == nil {
				m.status = "Due date updated"
			}
		}
	case modeRecur:
		if r, ok := m.selected(); ok {
			_, err = m.svc.SetRecurrence(r.id, value)
			if err == nil {
				m.status = "Recurrence updated"
			}
		}
	case modeDoneNote:
		if r, ok := m.selected(); ok {
			_, err = m.svc.SetStatus(r.id, item.StatusDone, value)
			if err == nil {
				m.status = "Completed"
			}
		}
	case modeLink:
		if r, ok := m.selected(); ok {
			err = m.applyLink(r.id, value)
		}
	case modeSearch:
		m.results, err = m.svc.Search(value)
		if err == nil {
			m.view = viewSearch
			m.status = fmt.Sprintf("%d match(es) for %q", len(m.results), value)
		}
	}
	if err != nil {
		m.status = describeErr(err)
		return m, nil
	}
	m = m.reload()
	return m, nil
}

func (m *Model) applyLink(from int64, value string) error {
	unlink := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")
	target, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: item id %q", item.ErrValidation, value)
	}
	if unlink {
		if err := m.svc.Unlink(from, target); err != nil {
			return err
		}
		m.status = fmt.Sprintf("Unlinked #%d and #%d", from, target)
		return nil
	}
	if err := m.svc.Link(from, target); err != nil {
		return err
	}
	m.status = fmt.Sprintf("Linked #%d and #%d", from, target)
	return nil
}

func (m Model) cycleStatus() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok || !r.isTask {
		m.status = "Select a task first"
		return m, nil
	}
	var next item.Status
	switch r.task.Info.Status {
	case item.StatusTodo:
		next = item.StatusDoing
	case item.StatusDoing:
		next = item.StatusWaiting
	default:
		next = item.StatusTodo
	}
	if _, err := m.svc.SetStatus(r.id, next, ""); err != nil {
		m.status = describeErr(err)
		return m, nil
	}
	m.status = fmt.Sprintf("#%d -> %s", r.id, next)
	m = m.reload()
	return m, nil
}

func (m Model) toggleDone() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok || !r.isTask {
		m.status = "Select a task first"
		return m, nil
	}
	if r.task.Info.Status == item.StatusDone {
		if _, err := m.svc.SetStatus(r.id, item.StatusTodo, ""); err != nil {
			m.status = describeErr(err)
			return m, nil
		}
		m.status = fmt.Sprintf("#%d restarted", r.id)
		m = m.reload()
		return m, nil
	}
	return m.startPrompt(modeDoneNote, "Completion note (optional, enter to skip)", ""), nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.svc.DeleteItem(m.pendingDel.id); err != nil {
			m.status = describeErr(err)
		} else {
			m.status = "Deleted"
		}
		m.confirmDel = false
		m.pendingDel = nil
		m = m.reload()
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) selected() (row, bool) {
	for i := m.cursor; i >= 0 && i < len(m.rows); i-- {
		if !m.rows[i].header {
			return m.rows[i], true
		}
	}
	return row{}, false
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("Nothing here yet. Press 'a' to add a task, 'n' for a note.")
		b.WriteString("\n")
	} else {
		for i, r := range m.rows {
			cursor := " "
			if m.cursor == i && m.mode == modeList {
				cursor = ">"
			}
			b.WriteString(cursor + " " + r.text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.mode != modeList {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))
	return b.String()
}

func (m Model) renderTabs() string {
	order := []view{viewJournal, viewDue, viewStatus, viewDone, viewNotes}
	parts := make([]string, 0, len(order)+1)
	for _, v := range order {
		name := viewNames[v]
		if v == m.view {
			name = headerStyle.Render("[" + name + "]")
		}
		parts = append(parts, name)
	}
	if m.view == viewSearch {
		parts = append(parts, headerStyle.Render("[search]"))
	}
	return strings.Join(parts, "  ")
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s/%s views • %s task • %s note • %s status • %s done • %s due • %s recur • %s link • %s search • %s delete • %s quit",
		k.Up, k.Down, k.NextView, k.PrevView, k.AddTask, k.AddNote, k.Cycle, k.Done, k.Due, k.Recur, k.LinkMode, k.SearchKey, k.Delete, k.Quit)
}

// reload rebuilds the row list for the current view.
func (m Model) reload() Model {
	var (
		rows []row
		err  error
	)
	switch m.view {
	case viewJournal:
		rows, err = m.journalRows()
	case viewDue:
		rows, err = m.dueRows()
	case viewStatus:
		rows, err = m.statusRows()
	case viewDone:
		rows, err = m.doneRows()
	case viewNotes:
		rows, err = m.noteRows()
	case viewSearch:
		rows = m.searchRows()
	}
	if err != nil {
		m.status = describeErr(err)
		return m
	}
	m.rows = rows
	m.cursor = clampCursor(m.cursor, len(m.rows))
	return m
}

func (m Model) journalRows() ([]row, error) {
	days, err := m.svc.JournalView()
	if err != nil {
		return nil, err
	}
	today := due.Date(time.Now())
	var rows []row
	for _, day := range days {
		rows = append(rows, headerRow(due.Format(day.Date)))
		for _, t := range day.Tasks {
			rows = append(rows, m.taskRow(t, today, "  "))
			rows = append(rows, m.childNoteRows(t.ID)...)
		}
		for _, n := range day.Notes {
			rows = append(rows, noteRow(n, "  "))
		}
	}
	return rows, nil
}

func (m Model) dueRows() ([]row, error) {
	today := due.Date(time.Now())
	buckets, err := m.svc.DueView(today)
	if err != nil {
		return nil, err
	}
	var rows []row
	for _, bucket := range due.BucketOrder {
		tasks := buckets[bucket]
		if len(tasks) == 0 {
			continue
		}
		rows = append(rows, headerRow(string(bucket)))
		for _, t := range tasks {
			rows = append(rows, m.taskRow(t, today, "  "))
			rows = append(rows, m.childNoteRows(t.ID)...)
		}
	}
	return rows, nil
}

func (m Model) statusRows() ([]row, error) {
	groups, err := m.svc.StatusView()
	if err != nil {
		return nil, err
	}
	today := due.Date(time.Now())
	var rows []row
	for _, status := range due.StatusOrder {
		tasks := groups[status]
		if len(tasks) == 0 {
			continue
		}
		rows = append(rows, headerRow(string(status)))
		for _, t := range tasks {
			rows = append(rows, m.taskRow(t, today, "  "))
		}
	}
	return rows, nil
}

func (m Model) doneRows() ([]row, error) {
	days, err := m.svc.CompletedView()
	if err != nil {
		return nil, err
	}
	today := due.Date(time.Now())
	var rows []row
	for _, day := range days {
		rows = append(rows, headerRow(due.Format(day.Date)))
		for _, t := range day.Tasks {
			rows = append(rows, m.taskRow(t, today, "  "))
		}
	}
	return rows, nil
}

func (m Model) noteRows() ([]row, error) {
	entries, err := m.svc.NotesView()
	if err != nil {
		return nil, err
	}
	var rows []row
	for _, e := range entries {
		rows = append(rows, noteRow(e.Note, ""))
		for _, linked := range e.Linked {
			text := noteStyle.Render(fmt.Sprintf("    <-> %s (id:%d)", linked.Title, linked.ID))
			rows = append(rows, row{text: text, id: linked.ID, isTask: linked.Kind == item.KindTask})
		}
	}
	return rows, nil
}

func (m Model) searchRows() []row {
	var rows []row
	for _, it := range m.results {
		if it.Kind == item.KindNote {
			rows = append(rows, noteRow(it, ""))
			continue
		}
		rows = append(rows, row{
			text:   fmt.Sprintf("%s (id:%d)", it.Title, it.ID),
			id:     it.ID,
			isTask: true,
		})
	}
	return rows
}

func (m Model) childNoteRows(taskID int64) []row {
	notes, err := m.svc.ChildNotes(taskID)
	if err != nil {
		return nil
	}
	var rows []row
	for _, n := range notes {
		rows = append(rows, noteRow(n, "      "))
	}
	return rows
}

func (m Model) taskRow(t item.Task, today time.Time, indent string) row {
	checkbox := "[ ]"
	if t.Info.Status == item.StatusDone {
		checkbox = "[x]"
	}
	text := fmt.Sprintf("%s %s (id:%d)", checkbox, t.Title, t.ID)
	switch t.Info.Status {
	case item.StatusDoing:
		text = doingStyle.Render(text)
	case item.StatusWaiting:
		text = waitingStyle.Render(text)
	case item.StatusDone:
		text = doneStyle.Render(text)
	}
	if t.Info.Recur != nil {
		text += fmt.Sprintf(" (recur: %s)", t.Info.Recur)
	}
	if t.Info.DueDate != nil && t.Info.Status != item.StatusDone {
		d := due.Date(*t.Info.DueDate)
		label := fmt.Sprintf(" (due: %s)", due.Format(d))
		switch {
		case d.Before(today):
			label = overdueStyle.Render(label)
		case d.Equal(today):
			label = dueTodayStyle.Render(label)
		}
		text += label
	}
	return row{text: indent + text, id: t.ID, isTask: true, task: t}
}

func noteRow(n item.Item, indent string) row {
	return row{
		text: indent + noteStyle.Render(fmt.Sprintf("- %s (id:%d)", n.Title, n.ID)),
		id:   n.ID,
	}
}

func headerRow(text string) row {
	return row{text: headerStyle.Render(text), header: true}
}

// splitDueSuffix peels an "@spec" due suffix off an add-task line.
func splitDueSuffix(s string) (title, dueSpec string) {
	if i := strings.LastIndex(s, "@"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s), ""
}

func formatDue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return due.Format(*d)
}

func formatRecur(rec *item.Recurrence) string {
	if rec == nil {
		return ""
	}
	return rec.String()
}

func describeErr(err error) string {
	switch {
	case errors.Is(err, item.ErrValidation):
		return fmt.Sprintf("Invalid: %v", err)
	case errors.Is(err, item.ErrNotFound):
		return fmt.Sprintf("Not found: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func nextView(v view, step int) view {
	order := []view{viewJournal, viewDue, viewStatus, viewDone, viewNotes}
	for i, candidate := range order {
		if candidate == v {
			return order[(i+step+len(order))%len(order)]
		}
	}
	return viewJournal
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
