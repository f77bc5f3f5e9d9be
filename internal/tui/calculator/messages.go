package calculator

import "github.com/vield/calculadora/internal/wizard"

// LoadedMsg carries the wizard once persisted state has been read. Nothing
// is rendered before it arrives.
type LoadedMsg struct {
	Wizard *wizard.Wizard
}

// SubmitDoneMsg reports the outcome of a submit command.
type SubmitDoneMsg struct {
	Result wizard.SubmitResult
	Err    error
}
