// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
	"github.com/vitorsmc/analise-solo-app/internal/soil/sources"
)

// MetadataExtractSoilReport describes the extract_soil_report tool.
var MetadataExtractSoilReport = &mcp.Tool{
	Name: "extract_soil_report",
	Description: "Extract per-sample soil analysis results from one page of a laboratory report and " +
		"compare them with the reference targets of each sample's depth class. " +
		"The page is given as YAML/JSON ({text, tables}) or as text with Markdown pipe tables. " +
		"The result holds the measurements by sample id and parameter code (P, K, Ca, Mg, S, B, " +
		"Fe, Mn, Cu, Zn, CTC), the depth class of every sample and a reason code. A reason other " +
		"than \"ok\" means the page could not be fully interpreted. The raw primary table is " +
		"returned whenever one was selected.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Extracted page content",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for the page. One of: yaml, json, markdown, text. If omitted, auto-detection is used.",
				"enum":        []string{"yaml", "json", "markdown", "text"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the page (file path, upload name) used in error messages.",
			},
		},
	},
}

// InputExtractSoilReport is the input for the ExtractSoilReport tool.
type InputExtractSoilReport struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	SourceID string `json:"source_id"`
}

// OutputExtractSoilReport is the output for the ExtractSoilReport tool.
type OutputExtractSoilReport struct {
	// Reason is "ok" or the code of the step that stopped the extraction.
	Reason      string `json:"reason"`
	DecoderUsed string `json:"decoder_used"`
	// Measurements holds the values by sample id, then parameter code.
	Measurements map[string]map[string]float64 `json:"measurements"`
	Depths       map[string]string             `json:"depths"`
	Comparison   []soil.SampleComparison       `json:"comparison,omitempty"`
	// Table is the selected primary table, absent cells as "".
	Table [][]string `json:"table,omitempty"`
}

// ReportTool serves extraction requests with a fixed engine and catalog.
type ReportTool struct {
	registry *sources.Registry
	engine   *soil.Engine
	catalog  *soil.Catalog
	logger   *zap.Logger
}

// NewReportTool wires the tool to its collaborators. A nil logger disables logging.
func NewReportTool(registry *sources.Registry, engine *soil.Engine, catalog *soil.Catalog, logger *zap.Logger) *ReportTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportTool{
		registry: registry,
		engine:   engine,
		catalog:  catalog,
		logger:   logger,
	}
}

// Register adds the tool to server.
func (t *ReportTool) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataExtractSoilReport, t.ExtractSoilReport)
}

// ExtractSoilReport decodes the page, runs the extraction engine and compares
// the measurements with the catalog. Extraction failures are reported through
// Reason; only invalid input and undecodable pages are errors.
func (t *ReportTool) ExtractSoilReport(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractSoilReport) (*mcp.CallToolResult, OutputExtractSoilReport, error) {
	if input.Content == "" {
		return nil, OutputExtractSoilReport{}, fmt.Errorf("content is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	src := sources.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	}

	decoded, err := t.registry.Decode(ctx, src)
	if err != nil {
		return nil, OutputExtractSoilReport{}, err
	}

	result := t.engine.Extract(decoded.Page)
	t.logger.Info("extracted soil report",
		zap.String("source", sourceID),
		zap.String("decoder", decoded.DecoderUsed),
		zap.String("reason", string(result.Reason)),
		zap.Int("samples", len(result.Depths)))

	out := OutputExtractSoilReport{
		Reason:       string(result.Reason),
		DecoderUsed:  decoded.DecoderUsed,
		Measurements: make(map[string]map[string]float64, len(result.Measurements)),
		Depths:       make(map[string]string, len(result.Depths)),
		Table:        tableStrings(result.Table),
	}
	for id, values := range result.Measurements {
		row := make(map[string]float64, len(values))
		for code, v := range values {
			row[string(code)] = v
		}
		out.Measurements[string(id)] = row
	}
	for id, depth := range result.Depths {
		out.Depths[string(id)] = string(depth)
	}
	if result.Reason == soil.ReasonOK {
		out.Comparison = soil.Compare(result.Measurements, result.Depths, t.catalog)
	}
	return nil, out, nil
}

func tableStrings(table soil.Table) [][]string {
	if table == nil {
		return nil
	}
	out := make([][]string, len(table))
	for i, row := range table {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j], _ = cell.Get()
		}
	}
	return out
}
