// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
	"github.com/vitorsmc/analise-solo-app/internal/soil/sources"
)

var (
	extractFormat string
	outputFormat  string
	withCompare   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract per-sample measurements from an extracted report page",
	Long: `Reads a page produced by the document extraction step and prints the
measurements by sample id and parameter code, together with each sample's
depth class. Use "-" to read from standard input.

Supported page formats:
  - yaml/json: {text: "...", tables: [[[cell, ...], ...], ...]}
  - markdown:  plain text with pipe tables`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "", "Page format hint (yaml, json, markdown, text); auto-detected when empty")
	extractCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "Output format (json or yaml)")
	extractCmd.Flags().BoolVar(&withCompare, "compare", false, "Include the comparison with reference targets")
}

// extractOutput is what the extract command prints.
type extractOutput struct {
	Source       string                  `json:"source"`
	Decoder      string                  `json:"decoder"`
	Reason       soil.Reason             `json:"reason"`
	Measurements soil.Measurements       `json:"measurements"`
	Depths       soil.Depths             `json:"depths"`
	Comparison   []soil.SampleComparison `json:"comparison,omitempty"`
	Table        soil.Table              `json:"table,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := cfg.NewEngine(logger)
	if err != nil {
		return err
	}

	format := extractFormat
	if format == "" && args[0] != "-" {
		format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
	}
	decoded, err := sources.DefaultRegistry().Decode(cmd.Context(), sources.Source{
		Content: content,
		Format:  format,
		ID:      args[0],
	})
	if err != nil {
		return err
	}

	result := engine.Extract(decoded.Page)
	logger.Info("extraction finished",
		zap.String("source", args[0]),
		zap.String("decoder", decoded.DecoderUsed),
		zap.String("reason", string(result.Reason)),
		zap.Int("samples", len(result.Depths)))

	out := extractOutput{
		Source:       args[0],
		Decoder:      decoded.DecoderUsed,
		Reason:       result.Reason,
		Measurements: result.Measurements,
		Depths:       result.Depths,
		Table:        result.Table,
	}
	if result.Reason == soil.ReasonOK && withCompare {
		out.Comparison = soil.Compare(result.Measurements, result.Depths, cfg.Catalog())
	}

	if err := writeOutput(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return data, nil
}

func writeOutput(w io.Writer, v any) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		data, err := yaml.MarshalWithOptions(v, yaml.UseJSONMarshaler())
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q", outputFormat)
}
