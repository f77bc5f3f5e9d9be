// Package calculator is the terminal front end of the quote calculator: one
// screen per wizard step, driven by bubbletea.
package calculator

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/logger"
	"github.com/vield/calculadora/internal/wizard"
)

// Opener builds the wizard, loading persisted state. It runs inside a
// tea.Cmd so the first frame is not blocked on storage.
type Opener func(ctx context.Context) *wizard.Wizard

// Contact input focus.
const (
	focusName = iota
	focusPhone
)

// Model is the bubbletea model for the calculator.
type Model struct {
	ctx    context.Context
	open   Opener
	wiz    *wizard.Wizard
	keys   KeyMap
	width  int
	height int

	cursor int // row in the type, work or field list of the current step
	focus  int // contact input with focus on the last step

	name    textinput.Model
	phone   textinput.Model
	spinner spinner.Model

	submitting bool
	result     *wizard.SubmitResult
	err        string
}

// New creates the model. The wizard is opened by Init.
func New(ctx context.Context, open Opener) *Model {
	name := textinput.New()
	name.Placeholder = "Tu nombre"
	name.CharLimit = 80
	name.Prompt = ""

	phone := textinput.New()
	phone.Placeholder = "000 000 000"
	phone.CharLimit = 11 // 9 digits and 2 spaces
	phone.Prompt = ""

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return &Model{
		ctx:     ctx,
		open:    open,
		keys:    DefaultKeyMap(),
		name:    name,
		phone:   phone,
		spinner: s,
	}
}

// Run starts a program for the calculator and blocks until the user quits.
func Run(ctx context.Context, open Opener) error {
	p := tea.NewProgram(New(ctx, open), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("calculator failed: %w", err)
	}
	return nil
}

// Init loads the wizard.
func (m *Model) Init() tea.Cmd {
	ctx, open := m.ctx, m.open
	return func() tea.Msg {
		return LoadedMsg{Wizard: open(ctx)}
	}
}

// Loaded reports whether the wizard has been opened.
func (m *Model) Loaded() bool {
	return m.wiz != nil
}

// Update handles messages for the calculator.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LoadedMsg:
		m.wiz = msg.Wizard
		st := m.wiz.State()
		m.name.SetValue(st.Contact.Name)
		m.phone.SetValue(st.Contact.Phone)
		return m, m.enterStep()

	case SubmitDoneMsg:
		m.submitting = false
		if msg.Err != nil {
			m.result = nil
			m.err = msg.Err.Error()
			return m, nil
		}
		m.result = &msg.Result
		m.err = ""
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.wiz == nil || m.submitting {
			return m, nil
		}
		return m, m.handleKey(msg)
	}

	// Cursor blink and other input housekeeping.
	if m.wiz != nil && m.wiz.Step() == wizard.StepContact {
		return m, m.updateInputs(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	step := m.wiz.Step()

	switch {
	case key.Matches(msg, m.keys.Back):
		if m.wiz.Back() {
			return m.enterStep()
		}
		return nil
	case key.Matches(msg, m.keys.Next):
		if step == wizard.StepContact {
			return m.submit()
		}
		if m.wiz.Next() {
			return m.enterStep()
		}
		return nil
	}

	switch step {
	case wizard.StepType:
		m.handleTypeKey(msg)
	case wizard.StepWorks:
		m.handleWorksKey(msg)
	case wizard.StepMeasurements:
		m.handleMeasurementKey(msg)
	case wizard.StepContact:
		return m.handleContactKey(msg)
	}
	return nil
}

func (m *Model) handleTypeKey(msg tea.KeyPressMsg) {
	types := catalog.Types()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, len(types)-1)
	case key.Matches(msg, m.keys.Select):
		if err := m.wiz.SelectReformaType(types[m.cursor].ID); err != nil {
			logger.Warn("Selecting type: %v", err)
		}
	}
}

func (m *Model) handleWorksKey(msg tea.KeyPressMsg) {
	options := catalog.WorkOptions(m.wiz.State().ReformaType)
	if len(options) == 0 {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, len(options)-1)
	case key.Matches(msg, m.keys.Toggle):
		if _, err := m.wiz.ToggleWork(options[m.cursor]); err != nil {
			logger.Warn("Toggling work: %v", err)
		}
	}
}

func (m *Model) handleMeasurementKey(msg tea.KeyPressMsg) {
	fields := catalog.MeasurementFields(m.wiz.State().ReformaType)
	var err error
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, len(fields)-1)
	case key.Matches(msg, m.keys.Increase):
		_, err = m.wiz.Increment(fields[m.cursor].ID)
	case key.Matches(msg, m.keys.Decrease):
		_, err = m.wiz.Decrement(fields[m.cursor].ID)
	}
	if err != nil {
		logger.Warn("Adjusting measurement: %v", err)
	}
}

func (m *Model) handleContactKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.SwitchTab):
		if m.focus == focusName {
			m.focus = focusPhone
		} else {
			m.focus = focusName
		}
		return m.focusInputs()
	case msg.String() == "enter":
		return m.submit()
	}
	return m.updateInputs(msg)
}

// updateInputs forwards msg to the focused input and writes any change
// through to the wizard. The phone is re-formatted on every edit.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	st := m.wiz.State()

	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
		if v := m.name.Value(); v != st.Contact.Name {
			m.setContact(wizard.ContactName, v)
		}
		return cmd
	}

	m.phone, cmd = m.phone.Update(msg)
	formatted := wizard.FormatPhone(m.phone.Value())
	if formatted != m.phone.Value() {
		m.phone.SetValue(formatted)
		m.phone.CursorEnd()
	}
	if formatted != st.Contact.Phone {
		m.setContact(wizard.ContactPhone, formatted)
	}
	return cmd
}

func (m *Model) setContact(field wizard.ContactField, value string) {
	if err := m.wiz.SetContactField(field, value); err != nil {
		logger.Warn("Setting contact %s: %v", field, err)
	}
	// Editing after a result starts a new attempt.
	m.result = nil
	m.err = ""
}

// submit starts a background submit when the contact is complete.
func (m *Model) submit() tea.Cmd {
	if !m.wiz.CanAdvance(wizard.StepContact) {
		return nil
	}
	m.submitting = true
	m.result = nil
	m.err = ""

	ctx, wiz := m.ctx, m.wiz
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			res, err := wiz.Submit(ctx)
			return SubmitDoneMsg{Result: res, Err: err}
		},
	)
}

// enterStep resets per-step cursors after the step changed.
func (m *Model) enterStep() tea.Cmd {
	m.cursor = 0
	switch m.wiz.Step() {
	case wizard.StepType:
		st := m.wiz.State()
		for i, info := range catalog.Types() {
			if info.ID == st.ReformaType {
				m.cursor = i
			}
		}
	case wizard.StepContact:
		m.focus = focusName
		return m.focusInputs()
	}
	m.name.Blur()
	m.phone.Blur()
	return nil
}

func (m *Model) focusInputs() tea.Cmd {
	if m.focus == focusName {
		m.phone.Blur()
		return m.name.Focus()
	}
	m.name.Blur()
	return m.phone.Focus()
}

// View renders the calculator centered on an ultraviolet canvas.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	if m.wiz == nil || m.width == 0 || m.height == 0 {
		view.Content = lipgloss.NewLayer("")
		return view
	}

	centered := lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		m.render(),
	)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(centered).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}
