// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vitorsmc/analise-solo-app/internal/config"
	"github.com/vitorsmc/analise-solo-app/internal/soil/sources"
)

func newTestTool(t *testing.T) *ReportTool {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	engine, err := cfg.NewEngine(logger)
	require.NoError(t, err)
	return NewReportTool(sources.DefaultRegistry(), engine, cfg.Catalog(), logger)
}

func TestExtractSoilReport(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	rt := newTestTool(t)

	tests := []struct {
		name           string
		input          InputExtractSoilReport
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputExtractSoilReport)
	}{
		{
			name:        "empty content returns error",
			input:       InputExtractSoilReport{Content: ""},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name: "yaml page produces measurements and comparison",
			input: InputExtractSoilReport{
				Content: `text: "Reg. 000111 Fazenda 0-20cm"
tables:
  - - [null, "000111"]
    - ["P (ppm)", "17,0"]
    - ["K (ppm)", "136,85"]
`,
				Format:   "yaml",
				SourceID: "laudo.yaml",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoilReport) {
				assert.Equal(t, "ok", output.Reason)
				assert.Equal(t, "yaml", output.DecoderUsed)
				assert.Equal(t, map[string]string{"000111": "0-20"}, output.Depths)
				assert.Equal(t, 17.0, output.Measurements["000111"]["P"])
				assert.InEpsilon(t, 0.35, output.Measurements["000111"]["K"], 1e-3)
				require.Len(t, output.Comparison, 1)
				require.Len(t, output.Comparison[0].Rows, 2)
				assert.InDelta(t, 0.0, output.Comparison[0].Rows[0].Difference, 1e-9)
				assert.Equal(t, [][]string{{"", "000111"}, {"P (ppm)", "17,0"}, {"K (ppm)", "136,85"}}, output.Table,
					"the primary table is returned with the results")
			},
		},
		{
			name: "markdown page with subsoil sample",
			input: InputExtractSoilReport{
				Content: "Reg. 000112 Fazenda 20-40cm\n\n| | 000112 |\n|---|---|\n| C.T.C. Efetiva | 8,1 |\n",
				Format:  "markdown",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoilReport) {
				assert.Equal(t, "ok", output.Reason)
				assert.Equal(t, "20-40", output.Depths["000112"])
				require.Len(t, output.Comparison, 1)
				assert.InDelta(t, 8.1-9.6, output.Comparison[0].Rows[0].Difference, 1e-9)
			},
		},
		{
			name: "ids missing from table surface the raw table",
			input: InputExtractSoilReport{
				Content: "Reg. 000111 Fazenda 0-20cm\n\n| | 999999 |\n| P (ppm) | 17,0 |\n",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoilReport) {
				assert.Equal(t, "ids_not_in_table", output.Reason)
				assert.Equal(t, [][]string{{"", "999999"}, {"P (ppm)", "17,0"}}, output.Table)
				assert.Empty(t, output.Comparison)
			},
		},
		{
			name: "no identifiers is a reason, not an error",
			input: InputExtractSoilReport{
				Content: "| P (ppm) | 17,0 |\n",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoilReport) {
				assert.Equal(t, "no_identifiers", output.Reason)
				assert.Empty(t, output.Measurements)
				assert.Nil(t, output.Table)
			},
		},
		{
			name: "unquoted yaml id with leading zeros",
			input: InputExtractSoilReport{
				Content: "text: Reg. 000111 Fazenda 0-20cm\ntables: [[[null, 000111], [\"P (ppm)\", 17]]]\n",
				Format:  "yaml",
			},
			validateOutput: func(t *testing.T, output OutputExtractSoilReport) {
				assert.Equal(t, "ok", output.Reason)
				assert.Equal(t, 17.0, output.Measurements["000111"]["P"])
			},
		},
		{
			name: "unsupported format returns error",
			input: InputExtractSoilReport{
				Content: "some binary or unsupported content",
				Format:  "pdf",
			},
			wantErr:     true,
			errContains: "unsupported page format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := rt.ExtractSoilReport(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestReportTool_Register(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "soilreport-test", Version: "v0.0.0"}, nil)
	assert.NotPanics(t, func() { newTestTool(t).Register(server) })
}
