package presenter

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Ajay03299/DevForge/internal/application/dto"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// JSONPresenter implements output.RepairPresenter for JSON output.
// Progress events are dropped; only the final report is printed so stdout
// stays a single JSON document.
type JSONPresenter struct {
	output io.Writer
}

var _ output.RepairPresenter = (*JSONPresenter)(nil)

// NewJSONPresenter creates a new JSON presenter
func NewJSONPresenter(output io.Writer) *JSONPresenter {
	return &JSONPresenter{output: output}
}

func (p *JSONPresenter) AttemptStarted(context.Context, repair.AttemptStarted)   {}
func (p *JSONPresenter) AttemptFinished(context.Context, repair.AttemptFinished) {}
func (p *JSONPresenter) SessionFinished(context.Context, repair.SessionFinished) {}

// PresentReport presents the session report as JSON
func (p *JSONPresenter) PresentReport(out *dto.RunRepairOutput) error {
	result := map[string]interface{}{
		"success": out.Outcome.IsSuccess(),
		"message": "repair session " + string(out.Outcome),
		"data":    out,
	}
	return p.encode(result)
}

// PresentError presents an error as JSON
func (p *JSONPresenter) PresentError(err error) error {
	result := map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	}
	return p.encode(result)
}

func (p *JSONPresenter) encode(v interface{}) error {
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
