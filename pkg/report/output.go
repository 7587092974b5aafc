package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/limaJavier/coursetabling/pkg/model"
)

const exportTitle = "Lịch học"

func WriteJSON(w io.Writer, run *Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(run); err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	return nil
}

// Write renders run in format: "table", "json" or one of the exporter formats
func Write(w io.Writer, format string, run *Run, input model.ModelInput) error {
	switch format {
	case "table":
		WriteReport(w, run, input)
		return nil
	case "json":
		return WriteJSON(w, run)
	}

	exporter, err := NewExporter(format)
	if err != nil {
		return err
	}
	content, err := exporter.Render(NewDataset(run.Rows), exportTitle)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}
