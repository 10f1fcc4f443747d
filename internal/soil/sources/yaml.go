// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
)

// pageDocument is the YAML/JSON shape written by the extraction step:
//
//	text: |
//	  Reg. 000111 ... 0-20cm
//	tables:
//	  - - [null, "000111"]
//	    - ["P (ppm)", "17,0"]
//
// Tables are read from the syntax tree so every cell keeps its literal text:
// an unquoted 000111 stays "000111" instead of being resolved as a number.
type pageDocument struct {
	Text string `yaml:"text"`
}

var tablesPath = mustPath("$.tables")

func mustPath(s string) *yaml.Path {
	p, err := yaml.PathString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// YAMLDecoder reads pages serialized as YAML or JSON.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a new YAMLDecoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// Name returns the decoder name reported as DecoderUsed.
func (d *YAMLDecoder) Name() string {
	return "yaml"
}

// CanHandle returns true for the "yaml", "yml" and "json" hints, for content
// starting with a JSON object, or for content with a top-level text or tables key.
func (d *YAMLDecoder) CanHandle(source Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	}
	content := strings.TrimSpace(string(source.Content))
	if strings.HasPrefix(content, "{") {
		return true
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "text:") || strings.HasPrefix(line, "tables:") {
			return true
		}
	}
	return false
}

// Decode reads the page text and every table. Null cells become absent;
// other scalars keep their source text. Nested mappings or sequences inside
// a cell are rejected.
func (d *YAMLDecoder) Decode(_ context.Context, source Source) (soil.Page, error) {
	var doc pageDocument
	if err := yaml.Unmarshal(source.Content, &doc); err != nil {
		return soil.Page{}, fmt.Errorf("failed to unmarshal page YAML/JSON: %w", err)
	}
	page := soil.Page{Text: doc.Text}

	file, err := parser.ParseBytes(source.Content, 0)
	if err != nil {
		return soil.Page{}, fmt.Errorf("failed to parse page YAML/JSON: %w", err)
	}
	node, err := tablesPath.FilterFile(file)
	if err != nil {
		if yaml.IsNotFoundNodeError(err) {
			return page, nil
		}
		return soil.Page{}, fmt.Errorf("failed to locate tables: %w", err)
	}
	switch unwrap(node).(type) {
	case nil, *ast.NullNode:
		return page, nil
	}

	tables, err := sequence(node, "tables")
	if err != nil {
		return soil.Page{}, err
	}
	for ti, rawTable := range tables {
		rows, err := sequence(rawTable, fmt.Sprintf("table %d", ti))
		if err != nil {
			return soil.Page{}, err
		}
		table := make(soil.Table, 0, len(rows))
		for ri, rawRow := range rows {
			cells, err := sequence(rawRow, fmt.Sprintf("table %d row %d", ti, ri))
			if err != nil {
				return soil.Page{}, err
			}
			row := make(soil.Row, len(cells))
			for ci, v := range cells {
				cell, err := toCell(v)
				if err != nil {
					return soil.Page{}, fmt.Errorf("table %d row %d col %d: %w", ti, ri, ci, err)
				}
				row[ci] = cell
			}
			table = append(table, row)
		}
		page.Tables = append(page.Tables, table)
	}
	return page, nil
}

// unwrap strips tags and anchors around a node.
func unwrap(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.TagNode:
			node = n.Value
		case *ast.AnchorNode:
			node = n.Value
		default:
			return node
		}
	}
}

func sequence(node ast.Node, what string) ([]ast.Node, error) {
	node = unwrap(node)
	if node == nil {
		return nil, fmt.Errorf("%s: expected a sequence, got nothing", what)
	}
	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		return nil, fmt.Errorf("%s: expected a sequence, got %s", what, node.Type())
	}
	return seq.Values, nil
}

func toCell(node ast.Node) (soil.Cell, error) {
	switch n := unwrap(node).(type) {
	case nil, *ast.NullNode:
		return soil.Absent, nil
	case *ast.LiteralNode:
		return soil.Text(n.Value.Value), nil
	case *ast.StringNode, *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode,
		*ast.InfinityNode, *ast.NanNode:
		return soil.Text(n.GetToken().Value), nil
	}
	return soil.Absent, fmt.Errorf("unsupported cell of type %s", node.Type())
}
