// Package tui is the interactive task list view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"gtodo/internal/credential"
	"gtodo/internal/editintent"
	"gtodo/internal/guard"
	"gtodo/internal/service"
	"gtodo/internal/session"
	"gtodo/internal/tasklist"
)

// Model is the Bubble Tea model for one session's task list.
type Model struct {
	ctx     context.Context
	list    *tasklist.Synchronizer
	edits   *editintent.Reconciler
	store   credential.Store
	outcome session.Outcome

	tasks  []service.Task
	user   string
	cursor int

	mode    mode
	input   textinput.Model
	loading bool
	busy    bool

	status    string
	isError   bool
	redirect  string
	signedOut bool

	help  help.Model
	width int
}

// New builds the model. The initial fetch runs from Init.
func New(ctx context.Context, list *tasklist.Synchronizer, store credential.Store, outcome session.Outcome) Model {
	in := textinput.New()
	in.Placeholder = "What needs doing?"
	in.CharLimit = 200
	in.Width = 50

	h := help.New()
	h.ShowAll = false

	return Model{
		ctx:     ctx,
		list:    list,
		edits:   editintent.New(list),
		store:   store,
		outcome: outcome,
		input:   in,
		loading: true,
		busy:    true,
		help:    h,
	}
}

// Redirect returns where the session went when the model quit, or "" for a
// plain quit.
func (m Model) Redirect() string { return m.redirect }

// SignedOut reports whether the user logged out from the view.
func (m Model) SignedOut() bool { return m.signedOut }

func (m Model) Init() tea.Cmd {
	list, ctx, outcome := m.list, m.ctx, m.outcome
	return func() tea.Msg {
		return loadedMsg{err: list.Start(ctx, outcome)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.loading = false
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.sync()
		m.setStatus("", false)
		return m, nil

	case mutatedMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.sync()
		m.setStatus(msg.op, false)
		return m, nil

	case committedMsg:
		m.busy = false
		if msg.err != nil {
			// The intent and its draft survive a failed commit.
			return m.fail(msg.err)
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		m.sync()
		m.setStatus(fmt.Sprintf("saved #%d", msg.id), false)
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.list.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Logout):
		return m.logout()
	}

	if m.busy {
		if isActionKey(msg) {
			m.setStatus("busy: wait for the current operation", true)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Refresh):
		m.busy = true
		list, ctx, outcome := m.list, m.ctx, m.outcome
		return m, func() tea.Msg {
			// A failed initial load leaves the list uninitialized.
			if list.State() == tasklist.Uninitialized {
				return loadedMsg{err: list.Start(ctx, outcome)}
			}
			return loadedMsg{err: list.Refresh(ctx)}
		}
	case key.Matches(msg, keys.New):
		m.mode = modeAdd
		m.input.SetValue("")
		return m, m.input.Focus()
	}

	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Toggle):
		return m.mutate("toggled", func(ctx context.Context) error {
			return m.list.Toggle(ctx, task.ID)
		})
	case key.Matches(msg, keys.Delete):
		return m.mutate("deleted", func(ctx context.Context) error {
			return m.list.Delete(ctx, task.ID)
		})
	case key.Matches(msg, keys.Edit):
		m.edits.Begin(task.ID, task.Text)
		m.mode = modeEdit
		m.input.SetValue(task.Text)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.list.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.Cancel):
		if m.mode == modeEdit {
			m.edits.Cancel()
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		m.setStatus("", false)
		return m, nil
	case key.Matches(msg, keys.Confirm):
		if m.busy {
			m.setStatus("busy: wait for the current operation", true)
			return m, nil
		}
		return m.submit()
	case key.Matches(msg, keys.InputUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.InputDown):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.InputToggle):
		// The open intent and its draft are left alone.
		if m.busy {
			m.setStatus("busy: wait for the current operation", true)
			return m, nil
		}
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.mutate("toggled", func(ctx context.Context) error {
			return m.list.Toggle(ctx, task.ID)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeEdit {
		m.edits.UpdateDraft(m.input.Value())
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if err := tasklist.ValidateText(text); err != nil {
		m.setStatus("task cannot be empty", true)
		return m, nil
	}

	if m.mode == modeAdd {
		m.mode = modeBrowse
		m.input.Blur()
		m.input.SetValue("")
		return m.mutate("created", func(ctx context.Context) error {
			return m.list.Create(ctx, text)
		})
	}

	intent, ok := m.edits.Active()
	if !ok {
		m.mode = modeBrowse
		return m, nil
	}
	m.busy = true
	edits, ctx := m.edits, m.ctx
	return m, func() tea.Msg {
		return committedMsg{id: intent.TaskID, err: edits.Commit(ctx)}
	}
}

func (m Model) mutate(op string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	ctx := m.ctx
	return m, func() tea.Msg {
		return mutatedMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.list.Close()
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.setStatus(fmt.Sprintf("log out failed: %v", err), true)
			return m, nil
		}
	}
	pslog.Ctx(m.ctx).Info("signed out")
	m.redirect = guard.SignInPath
	m.signedOut = true
	return m, tea.Quit
}

// fail shows err inline, or ends the view when the session is gone.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(err, tasklist.ErrUnauthenticated), errors.Is(err, tasklist.ErrNotConfirmed):
		m.redirect = guard.SignInPath
		return m, tea.Quit
	case errors.Is(err, tasklist.ErrDiscarded), errors.Is(err, tasklist.ErrClosed):
		return m, nil
	case errors.Is(err, service.ErrValidation):
		m.setStatus("task cannot be empty", true)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrRejected):
		m.setStatus(err.Error(), true)
	case errors.Is(err, tasklist.ErrBusy):
		m.setStatus("busy: wait for the current operation", true)
	default:
		m.setStatus(fmt.Sprintf("%v (press r to retry)", err), true)
	}
	return m, nil
}

// sync copies the synchronizer snapshot into the model.
func (m *Model) sync() {
	m.tasks = m.list.Tasks()
	m.user = m.list.UserName()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.isError = isError
}

func (m Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return service.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func isActionKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Toggle, keys.New, keys.Edit, keys.Delete, keys.Refresh)
}

func (m Model) View() string {
	var b strings.Builder

	greeting := "Hello!"
	if m.user != "" {
		greeting = fmt.Sprintf("Hello, %s!", m.user)
	}
	b.WriteString(titleStyle.Render(greeting))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(emptyStyle.Render("Loading…"))
		b.WriteString("\n")
	case len(m.tasks) == 0:
		b.WriteString(emptyStyle.Render("No tasks yet. Press n to add one."))
		b.WriteString("\n")
	default:
		for i, t := range m.tasks {
			b.WriteString(m.renderTask(i, t))
			b.WriteString("\n")
		}
	}

	switch m.mode {
	case modeAdd:
		b.WriteString("\n" + promptStyle.Render("New task: ") + m.input.View() + "\n")
	case modeEdit:
		if intent, ok := m.edits.Active(); ok {
			b.WriteString("\n" + promptStyle.Render(fmt.Sprintf("Edit #%d: ", intent.TaskID)) + m.input.View() + "\n")
		}
	}

	if m.status != "" {
		style := statusStyle
		if m.isError {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	if m.mode != modeBrowse {
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{keys.Confirm, keys.Cancel, keys.InputToggle}))
		return b.String()
	}
	b.WriteString("\n" + m.help.View(keys))
	return b.String()
}

func (m Model) renderTask(i int, t service.Task) string {
	pointer := "  "
	if i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}
	box := "[ ]"
	text := taskStyle.Render(t.Text)
	if t.Done {
		box = "[x]"
		text = doneStyle.Render(t.Text)
	}
	if m.edits.Editing(t.ID) {
		text += promptStyle.Render(" (editing)")
	}
	return fmt.Sprintf("%s%s %s %s", pointer, box, idStyle.Render(fmt.Sprintf("%4d", t.ID)), text)
}
