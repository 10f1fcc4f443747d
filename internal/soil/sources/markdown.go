// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"strings"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
)

// MarkdownDecoder reads a plain-text page whose tables are written as
// Markdown pipe tables. The whole content is the page text, as with a PDF
// text layer; each run of consecutive "|" lines becomes one table.
type MarkdownDecoder struct{}

// NewMarkdownDecoder creates a new MarkdownDecoder.
func NewMarkdownDecoder() *MarkdownDecoder {
	return &MarkdownDecoder{}
}

// Name returns the decoder name reported as DecoderUsed.
func (d *MarkdownDecoder) Name() string {
	return "markdown"
}

// CanHandle returns true for the "markdown", "md", "text" and "txt" hints,
// or for content holding at least one pipe-table line.
func (d *MarkdownDecoder) CanHandle(source Source) bool {
	switch strings.ToLower(source.Format) {
	case "markdown", "md", "text", "txt":
		return true
	}
	for _, line := range strings.Split(string(source.Content), "\n") {
		if isTableLine(line) {
			return true
		}
	}
	return false
}

// Decode keeps the content as page text and collects its pipe tables.
// Alignment rows are dropped and blank cells become absent.
func (d *MarkdownDecoder) Decode(_ context.Context, source Source) (soil.Page, error) {
	content := strings.ReplaceAll(string(source.Content), "\r\n", "\n")
	page := soil.Page{Text: content}

	var current soil.Table
	flush := func() {
		if len(current) > 0 {
			page.Tables = append(page.Tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if !isTableLine(line) {
			flush()
			continue
		}
		cells := splitTableLine(line)
		if isAlignmentRow(cells) {
			continue
		}
		row := make(soil.Row, len(cells))
		for i, c := range cells {
			c = strings.TrimSpace(strings.ReplaceAll(c, "<br>", "\n"))
			if c != "" {
				row[i] = soil.Text(c)
			}
		}
		current = append(current, row)
	}
	flush()

	return page, nil
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func splitTableLine(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	return strings.Split(line, "|")
}

// isAlignmentRow matches the |---|:--:| separator under a header.
func isAlignmentRow(cells []string) bool {
	for _, c := range cells {
		c = strings.Trim(strings.TrimSpace(c), ":")
		if c == "" || strings.Trim(c, "-") != "" {
			return false
		}
	}
	return len(cells) > 0
}
