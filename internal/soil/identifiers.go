// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"fmt"
	"regexp"
	"strings"
)

// IdentifierExtractor finds registry lines of the form
// "Reg ... <id> ... <d>-<d>cm" in the free text of a report.
type IdentifierExtractor struct {
	pattern *regexp.Regexp
}

// NewIdentifierExtractor builds an extractor. digits == 0 accepts any run of
// digits as the sample id; digits > 0 requires exactly that many.
func NewIdentifierExtractor(digits int) (*IdentifierExtractor, error) {
	if digits < 0 {
		return nil, fmt.Errorf("id digit length must not be negative, got %d", digits)
	}
	id := `\d+`
	if digits > 0 {
		id = fmt.Sprintf(`\d{%d}`, digits)
	}
	// Optional groups are lazy so the leftmost digit run after "Reg" is
	// tried first; the \D guards keep an exact-length id from being cut
	// out of a longer number.
	pattern, err := regexp.Compile(`Reg(?:.*?\D)??(` + id + `)(?:\D.*?)??(\d{1,2}-\d{1,2})cm`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile registry pattern: %w", err)
	}
	return &IdentifierExtractor{pattern: pattern}, nil
}

// Extract returns every sample id found in text with its depth class.
// Later lines overwrite the depth of an id seen earlier.
func (e *IdentifierExtractor) Extract(text string) Depths {
	depths := make(Depths)
	for _, line := range strings.Split(text, "\n") {
		match := e.pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		depths[SampleID(match[1])] = depthFromExpression(match[2])
	}
	return depths
}

func depthFromExpression(expr string) DepthClass {
	if strings.Contains(expr, string(DepthSubsoil)) {
		return DepthSubsoil
	}
	return DefaultDepth
}
