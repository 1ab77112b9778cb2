// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONExporter exports the full transcript structure as JSON.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export implements Exporter.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension implements Exporter.
func (e *JSONExporter) FileExtension() string { return ".json" }

// MimeType implements Exporter.
func (e *JSONExporter) MimeType() string { return "application/json" }

// YAMLExporter exports the full transcript structure as YAML.
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAML exporter.
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Export implements Exporter.
func (e *YAMLExporter) Export(t *Transcript) ([]byte, error) {
	return yaml.Marshal(t)
}

// FileExtension implements Exporter.
func (e *YAMLExporter) FileExtension() string { return ".yaml" }

// MimeType implements Exporter.
func (e *YAMLExporter) MimeType() string { return "application/yaml" }
