package reporter

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLReporter writes payloads as YAML
type YAMLReporter struct {
	writer io.Writer
}

// NewYAMLReporter creates a new YAML reporter
func NewYAMLReporter(writer io.Writer) *YAMLReporter {
	return &YAMLReporter{writer: writer}
}

// Generate writes the payload as YAML
func (r *YAMLReporter) Generate(payload *Payload) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	return enc.Close()
}
