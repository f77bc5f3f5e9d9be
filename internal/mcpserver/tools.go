package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/vield/calculadora/internal/catalog"
	"github.com/vield/calculadora/internal/wizard"
)

// fieldView describes one measurement field of the current type.
type fieldView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Step  int    `json:"step"`
	Unit  string `json:"unit,omitempty"`
	Value int    `json:"value"`
}

// stateView is the JSON body every tool returns on success.
type stateView struct {
	State       wizard.State         `json:"state"`
	Step        wizard.Step          `json:"step"`
	CanAdvance  bool                 `json:"can_advance"`
	WorkOptions []string             `json:"work_options,omitempty"`
	Fields      []fieldView          `json:"fields"`
	Submit      *wizard.SubmitResult `json:"submit,omitempty"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get-state",
			mcp.WithDescription("Return the calculator state, current step and whether it can advance"),
		),
		s.handleGetState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("select-type",
			mcp.WithDescription("Choose the renovation type (step 1). Changing type clears the selected works"),
			mcp.WithString("type", mcp.Required(),
				mcp.Description("Type id or label"),
				mcp.Enum(string(catalog.Bathroom), string(catalog.Kitchen), string(catalog.Full)),
			),
		),
		s.handleSelectType,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle-work",
			mcp.WithDescription("Select or deselect a work item offered for the chosen type (step 2)"),
			mcp.WithString("label", mcp.Required(),
				mcp.Description("Work item label exactly as listed in work_options"),
			),
		),
		s.handleToggleWork,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("adjust-measurement",
			mcp.WithDescription("Move a measurement one step up or down within its bounds (step 3)"),
			mcp.WithString("field", mcp.Required(),
				mcp.Description("Measurement field id"),
				mcp.Enum(catalog.FieldIDs()...),
			),
			mcp.WithString("direction", mcp.Required(),
				mcp.Enum("increment", "decrement"),
			),
		),
		s.handleAdjustMeasurement,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-contact",
			mcp.WithDescription("Set the contact name or phone (step 4). Phones are reformatted to groups of three digits"),
			mcp.WithString("field", mcp.Required(),
				mcp.Enum(string(wizard.ContactName), string(wizard.ContactPhone)),
			),
			mcp.WithString("value", mcp.Required()),
		),
		s.handleSetContact,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("next",
			mcp.WithDescription("Advance to the next step if the current one is complete"),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("back",
			mcp.WithDescription("Return to the previous step"),
		),
		s.handleBack,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit",
			mcp.WithDescription("Send the quote request. Only allowed on step 4 with a valid contact"),
		),
		s.handleSubmit,
	)
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.viewResult(nil)
}

func (s *Server) handleSelectType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := stringArg(request, "type")
	if errResult != nil {
		return errResult, nil
	}
	t, err := catalog.ParseType(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.wiz.SelectReformaType(t); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleToggleWork(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label, errResult := stringArg(request, "label")
	if errResult != nil {
		return errResult, nil
	}
	if _, err := s.wiz.ToggleWork(label); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleAdjustMeasurement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, errResult := stringArg(request, "field")
	if errResult != nil {
		return errResult, nil
	}
	direction, errResult := stringArg(request, "direction")
	if errResult != nil {
		return errResult, nil
	}

	var err error
	switch direction {
	case "increment":
		_, err = s.wiz.Increment(field)
	case "decrement":
		_, err = s.wiz.Decrement(field)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("'direction' must be increment or decrement, got %q", direction)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleSetContact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, errResult := stringArg(request, "field")
	if errResult != nil {
		return errResult, nil
	}
	// An empty value is allowed: it clears the field.
	value, ok := request.GetArguments()["value"].(string)
	if !ok {
		return mcp.NewToolResultError("missing 'value' parameter"), nil
	}

	if wizard.ContactField(field) == wizard.ContactPhone {
		value = wizard.FormatPhone(value)
	}
	if err := s.wiz.SetContactField(wizard.ContactField(field), value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step := s.wiz.Step()
	if !s.wiz.Next() {
		if step == wizard.LastStep {
			return mcp.NewToolResultError("already on the last step, use submit"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("step %d (%s) is not complete", step, step)), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.wiz.Back() {
		return mcp.NewToolResultError("already on the first step"), nil
	}
	return s.viewResult(nil)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.wiz.Submit(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.OK {
		return mcp.NewToolResultError(fmt.Sprintf("submission failed: %s", res.Message)), nil
	}
	return s.viewResult(&res)
}

// stringArg extracts a required non-empty string argument.
func stringArg(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("no arguments provided")
	}
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("missing or empty '%s' parameter", name))
	}
	return v, nil
}

func (s *Server) view(res *wizard.SubmitResult) stateView {
	st := s.wiz.State()
	step := s.wiz.Step()

	v := stateView{
		State:       st,
		Step:        step,
		CanAdvance:  s.wiz.CanAdvance(step),
		WorkOptions: catalog.WorkOptions(st.ReformaType),
		Submit:      res,
	}
	for _, f := range catalog.MeasurementFields(st.ReformaType) {
		v.Fields = append(v.Fields, fieldView{
			ID:    f.ID,
			Label: f.Label,
			Min:   f.Min,
			Max:   f.Max,
			Step:  f.Step,
			Unit:  f.Unit,
			Value: st.Measurement(f.ID),
		})
	}
	return v
}

func (s *Server) viewResult(res *wizard.SubmitResult) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(s.view(res))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
