// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minPartialLen is the shortest fragment allowed to match as a substring.
// Shorter fragments ("P", "S", "Ca") only ever match exactly.
const minPartialLen = 3

// LabelRule maps a raw label fragment to a parameter code.
type LabelRule struct {
	Fragment string
	Code     ParameterCode
}

// Dictionary resolves table row labels to parameter codes.
type Dictionary struct {
	rules      []LabelRule
	exclusions []string
}

// NewDictionary normalizes every fragment once. Rule order is kept: it is the
// order partial matches are tried in. A fragment listed twice keeps its first code.
func NewDictionary(rules []LabelRule, exclusions []string) (*Dictionary, error) {
	d := &Dictionary{}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		fragment := normalizeLabel(r.Fragment)
		if fragment == "" {
			return nil, fmt.Errorf("label %q for code %s is empty after normalization", r.Fragment, r.Code)
		}
		if _, ok := ParseParameterCode(string(r.Code)); !ok {
			return nil, fmt.Errorf("label %q maps to unknown parameter code %q", r.Fragment, r.Code)
		}
		if seen[fragment] {
			continue
		}
		seen[fragment] = true
		d.rules = append(d.rules, LabelRule{Fragment: fragment, Code: r.Code})
	}
	for _, x := range exclusions {
		if fragment := normalizeLabel(x); fragment != "" {
			d.exclusions = append(d.exclusions, fragment)
		}
	}
	return d, nil
}

// Match describes how a row label was resolved.
type Match struct {
	Code   ParameterCode
	Column int
	Label  string
	Rule   string
}

type verdict int

const (
	verdictNext verdict = iota
	verdictSkipCell
	verdictResolved
)

type labelRule struct {
	name  string
	apply func(d *Dictionary, label string) (ParameterCode, verdict)
}

// labelRules are evaluated in order for every cell. The exclusion gate runs
// before any match so indicator rows such as "PST" or "Soma de Bases" never
// reach the P or S codes; exact matches beat partial ones.
var labelRules = []labelRule{
	{name: "exclusion", apply: (*Dictionary).excluded},
	{name: "exact", apply: (*Dictionary).exact},
	{name: "partial", apply: (*Dictionary).partial},
}

// Resolve scans every cell of row and returns the first code found.
func (d *Dictionary) Resolve(row Row) (Match, bool) {
	for col, cell := range row {
		raw, ok := cell.Get()
		if !ok {
			continue
		}
		label := normalizeLabel(raw)
		if label == "" {
			continue
		}
	rules:
		for _, rule := range labelRules {
			code, v := rule.apply(d, label)
			switch v {
			case verdictSkipCell:
				break rules
			case verdictResolved:
				return Match{Code: code, Column: col, Label: label, Rule: rule.name}, true
			}
		}
	}
	return Match{}, false
}

// ResolveLabel resolves a single label as if it were a one-cell row.
func (d *Dictionary) ResolveLabel(label string) (ParameterCode, bool) {
	m, ok := d.Resolve(Row{Text(label)})
	return m.Code, ok
}

func (d *Dictionary) excluded(label string) (ParameterCode, verdict) {
	for _, x := range d.exclusions {
		if strings.Contains(label, x) {
			return "", verdictSkipCell
		}
	}
	return "", verdictNext
}

func (d *Dictionary) exact(label string) (ParameterCode, verdict) {
	for _, r := range d.rules {
		if r.Fragment == label {
			return r.Code, verdictResolved
		}
	}
	return "", verdictNext
}

func (d *Dictionary) partial(label string) (ParameterCode, verdict) {
	for _, r := range d.rules {
		if utf8.RuneCountInString(r.Fragment) < minPartialLen {
			continue
		}
		if strings.Contains(label, r.Fragment) {
			return r.Code, verdictResolved
		}
	}
	return "", verdictNext
}

// normalizeLabel collapses whitespace, drops the parenthetical unit suffix,
// folds accents and uppercases. Transformers and casers carry state, so they
// are built per call.
func normalizeLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	return strings.TrimSpace(cases.Upper(language.Und).String(s))
}
