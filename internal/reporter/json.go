package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/lintinsights/internal/insights"
	"github.com/ppiankov/lintinsights/internal/uploader"
)

// Payload is everything an upload would send for one commit.
type Payload struct {
	ReportID    string                 `json:"report_id" yaml:"report_id"`
	Report      insights.ReportSummary `json:"report" yaml:"report"`
	Annotations []insights.Annotation  `json:"annotations" yaml:"annotations"`
	// Batches is the size of each annotations request, in order.
	Batches []int `json:"batches" yaml:"batches"`
	// Dropped counts annotations beyond the per-report limit.
	Dropped int `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// NewPayload builds the payload an upload of annotations would send,
// applying the same per-report cap and batching as the uploader.
func NewPayload(reportID string, report insights.ReportSummary, annotations []insights.Annotation) *Payload {
	p := &Payload{
		ReportID:    reportID,
		Report:      report,
		Annotations: annotations,
		Batches:     []int{},
	}
	if p.Annotations == nil {
		p.Annotations = []insights.Annotation{}
	}
	if len(p.Annotations) > uploader.MaxTotalAnnotations {
		p.Dropped = len(p.Annotations) - uploader.MaxTotalAnnotations
		p.Annotations = p.Annotations[:uploader.MaxTotalAnnotations]
	}
	for _, batch := range uploader.Chunk(p.Annotations, uploader.MaxAnnotationsPerRequest) {
		p.Batches = append(p.Batches, len(batch))
	}
	return p
}

// JSONReporter generates machine-readable JSON payloads
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the payload as JSON
func (r *JSONReporter) Generate(payload *Payload) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}
