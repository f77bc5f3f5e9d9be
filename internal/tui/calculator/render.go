package calculator

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/wizard"
)

const contentWidth = 56

// render builds the whole screen as a string. It is empty until the wizard
// has been loaded.
func (m *Model) render() string {
	if m.wiz == nil {
		return ""
	}
	step := m.wiz.Step()
	st := m.wiz.State()

	var body string
	switch step {
	case wizard.StepType:
		body = m.renderTypes(st)
	case wizard.StepWorks:
		body = m.renderWorks(st)
	case wizard.StepMeasurements:
		body = m.renderMeasurements(st)
	case wizard.StepContact:
		body = m.renderContact()
	}

	parts := []string{
		m.renderHeader(step),
		"",
		body,
		"",
		m.renderFooter(step),
	}
	if status := m.renderStatus(); status != "" {
		parts = append(parts, "", status)
	}
	parts = append(parts, "", renderHintBar(m.stepHints(step)...))

	return styleContainer.Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m *Model) renderHeader(step wizard.Step) string {
	label := styleStepLabel.Render(fmt.Sprintf("Paso %d de %d", step, wizard.LastStep))
	bar := renderProgress(int(step), int(wizard.LastStep))
	gap := max(contentWidth-lipgloss.Width(label)-lipgloss.Width(bar), 1)
	return label + strings.Repeat(" ", gap) + bar
}

func (m *Model) renderTypes(st wizard.State) string {
	lines := []string{styleTitle.Render("¿Qué tipo de reforma necesitas?")}
	for i, info := range catalog.Types() {
		lines = append(lines, listRow(i == m.cursor, st.ReformaType == info.ID, "(•)", "( )",
			info.Icon+"  "+info.Label))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderWorks(st wizard.State) string {
	lines := []string{styleTitle.Render("Detalles de la " + st.ReformaType.Label())}
	for i, option := range catalog.WorkOptions(st.ReformaType) {
		lines = append(lines, listRow(i == m.cursor, st.HasWork(option), "[✓]", "[ ]", option))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) renderMeasurements(st wizard.State) string {
	lines := []string{styleTitle.Render("ESPACIO A TRANSFORMAR")}
	for i, f := range catalog.MeasurementFields(st.ReformaType) {
		value := fmt.Sprintf("%d", st.Measurement(f.ID))
		if f.Unit != "" {
			value += " " + f.Unit
		}
		control := fmt.Sprintf("−  %s  +", value)

		label := styleFieldLabel.Render(f.Label)
		if i == m.cursor {
			control = styleSelected.Render("‹ " + control + " ›")
		} else {
			control = styleBody.Render("  " + control)
		}
		lines = append(lines, label, control, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines[:len(lines)-1]...)
}

func (m *Model) renderContact() string {
	nameStyle, phoneStyle := styleInput, styleInput
	if m.focus == focusName {
		nameStyle = styleInputFocused
	} else {
		phoneStyle = styleInputFocused
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styleTitle.Render("¡Casi lo tenemos!"),
		styleBody.Width(contentWidth).Render(
			"Déjanos tus datos para enviarte una estimación preliminar y contactarte si necesitamos afinar detalles."),
		"",
		styleFieldLabel.Render("NOMBRE COMPLETO"),
		nameStyle.Width(contentWidth).Render(m.name.View()),
		styleFieldLabel.Render("TELÉFONO"),
		phoneStyle.Width(contentWidth).Render(styleMuted.Render("+34 ")+m.phone.View()),
	)
}

func (m *Model) renderFooter(step wizard.Step) string {
	back := ""
	if step > wizard.FirstStep {
		back = styleButton.Render("‹ Atrás")
	}

	label := "Siguiente ›"
	if step == wizard.LastStep {
		label = "VER PRESUPUESTO"
	}
	primary := styleButtonPrimary
	if !m.wiz.CanAdvance(step) || m.submitting {
		primary = styleButtonDisabled
	}
	next := primary.Render(label)

	gap := max(contentWidth-lipgloss.Width(back)-lipgloss.Width(next), 1)
	return lipgloss.JoinHorizontal(lipgloss.Center, back, strings.Repeat(" ", gap), next)
}

func (m *Model) renderStatus() string {
	switch {
	case m.submitting:
		return m.spinner.View() + " " + styleBody.Render("Enviando solicitud...")
	case m.err != "":
		return styleError.Render("✗ " + m.err)
	case m.result != nil && m.result.OK:
		return styleSuccess.Render("✓ " + m.result.Message + ". Te llamaremos pronto.")
	case m.result != nil:
		return styleError.Render("✗ "+m.result.Message) + "\n" + styleHintDesc.Render("Pulsa enter para reintentar")
	}
	return ""
}

func (m *Model) stepHints(step wizard.Step) []string {
	k := m.keys
	switch step {
	case wizard.StepType:
		return hints(k.Up, k.Down, k.Select, k.Next, k.Quit)
	case wizard.StepWorks:
		return hints(k.Up, k.Down, k.Toggle, k.Next, k.Back)
	case wizard.StepMeasurements:
		return hints(k.Up, k.Down, k.Decrease, k.Increase, k.Next, k.Back)
	default:
		return append(hints(k.SwitchTab, k.Back), "enter", "enviar")
	}
}

// listRow renders one selectable row with a cursor marker.
func listRow(cursor, selected bool, on, off, text string) string {
	mark := off
	if selected {
		mark = on
	}
	pointer := "  "
	if cursor {
		pointer = "› "
	}
	row := pointer + mark + " " + text
	switch {
	case selected:
		return styleSelected.Render(row)
	case cursor:
		return styleBody.Bold(true).Render(row)
	default:
		return styleBody.Render(row)
	}
}
