package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sidediff/internal/fold"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json or yaml)", s)
	}
}

// ContentType returns the media type for HTTP responses.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, format Format) *Formatter {
	if format == "" {
		format = FormatJSON
	}
	return &Formatter{
		writer: writer,
		format: format,
	}
}

// FormatResult writes a full diff result.
func (f *Formatter) FormatResult(result ResultDTO) error {
	return f.encode(result)
}

// FormatPlan writes a folded diff result.
func (f *Formatter) FormatPlan(plan PlanDTO) error {
	return f.encode(plan)
}

// FormatMethods writes the method list.
func (f *Formatter) FormatMethods(methods []MethodDTO) error {
	return f.encode(methods)
}

// FormatBatch writes batch outcomes in request order.
func (f *Formatter) FormatBatch(items []BatchItemDTO) error {
	return f.encode(items)
}

// FormatError writes an error body.
func (f *Formatter) FormatError(e ErrorDTO) error {
	return f.encode(e)
}

// FormatStatus writes a small key/value document such as a health check.
func (f *Formatter) FormatStatus(status map[string]string) error {
	return f.encode(status)
}

// FormatSummaryLine writes a one-line human summary, used by the watch loop.
func (f *Formatter) FormatSummaryLine(label string, s fold.Summary) error {
	status := "differ"
	if s.Identical() {
		status = "identical"
	}
	_, err := fmt.Fprintf(f.writer, "%s: %s, %d blocks, %d changed, %d removed, %d added, %d unchanged\n",
		label, status, s.Blocks, s.Changed, s.Removed, s.Added, s.Unchanged)
	return err
}

func (f *Formatter) encode(v any) error {
	switch f.format {
	case FormatYAML:
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return encoder.Close()
	default:
		encoder := json.NewEncoder(f.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
}
