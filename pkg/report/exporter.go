package report

import (
	"fmt"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

// Exporter renders a dataset into a file format. Formats without a title ignore it.
type Exporter interface {
	Render(data Dataset, title string) ([]byte, error)
}

func NewExporter(format string) (Exporter, error) {
	switch format {
	case "csv":
		return NewCSVExporter(), nil
	case "pdf":
		return NewPDFExporter(), nil
	case "xlsx":
		return NewXLSXExporter(), nil
	}
	return nil, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("unsupported export format \"%v\"", format))
}
