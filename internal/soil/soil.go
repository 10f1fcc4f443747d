// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"encoding/json"
	"slices"
	"strings"
)

// SampleID is the registry number of a soil sample, kept as the digit string
// found in the report text.
type SampleID string

// DepthClass is the sampling interval that selects a reference vector.
type DepthClass string

const (
	DepthTopsoil DepthClass = "0-20"
	DepthSubsoil DepthClass = "20-40"
)

// DefaultDepth is used whenever a depth expression does not name a known class.
const DefaultDepth = DepthTopsoil

// ParameterCode is the canonical short identifier of a measured property.
type ParameterCode string

const (
	CodeP   ParameterCode = "P"
	CodeK   ParameterCode = "K"
	CodeCa  ParameterCode = "Ca"
	CodeMg  ParameterCode = "Mg"
	CodeS   ParameterCode = "S"
	CodeB   ParameterCode = "B"
	CodeFe  ParameterCode = "Fe"
	CodeMn  ParameterCode = "Mn"
	CodeCu  ParameterCode = "Cu"
	CodeZn  ParameterCode = "Zn"
	CodeCTC ParameterCode = "CTC"
)

// ReportOrder lists every parameter code in the order reports present them.
var ReportOrder = []ParameterCode{
	CodeP, CodeK, CodeCa, CodeMg, CodeS, CodeB, CodeFe, CodeMn, CodeCu, CodeZn, CodeCTC,
}

// ParseParameterCode returns the code matching s, ignoring case.
func ParseParameterCode(s string) (ParameterCode, bool) {
	for _, code := range ReportOrder {
		if strings.EqualFold(string(code), strings.TrimSpace(s)) {
			return code, true
		}
	}
	return "", false
}

// ParseDepthClass accepts only the exact names of the known depth classes.
func ParseDepthClass(s string) (DepthClass, bool) {
	switch DepthClass(strings.TrimSpace(s)) {
	case DepthTopsoil:
		return DepthTopsoil, true
	case DepthSubsoil:
		return DepthSubsoil, true
	}
	return "", false
}

// Unit is the reporting unit of the code once values are normalized.
func (c ParameterCode) Unit() string {
	switch c {
	case CodeK, CodeCa, CodeMg, CodeCTC:
		return "cmol/dm3"
	}
	return "mg/dm3"
}

// Cell is a table cell as produced by document extraction. Merged or empty
// cells come out absent rather than as an empty string.
type Cell struct {
	text    string
	present bool
}

// Absent is the zero Cell.
var Absent = Cell{}

// Text wraps s as a present cell.
func Text(s string) Cell {
	return Cell{text: s, present: true}
}

// Get returns the raw text and whether the cell is present.
func (c Cell) Get() (string, bool) {
	return c.text, c.present
}

// Trimmed returns the text without surrounding whitespace, or "" when absent.
func (c Cell) Trimmed() string {
	if !c.present {
		return ""
	}
	return strings.TrimSpace(c.text)
}

// MarshalJSON renders absent cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.present {
		return []byte("null"), nil
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON reads null as an absent cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Absent
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Text(s)
	return nil
}

// Row is an ordered sequence of cells.
type Row []Cell

// At returns the cell at col, or Absent when the row is shorter.
func (r Row) At(col int) Cell {
	if col < 0 || col >= len(r) {
		return Absent
	}
	return r[col]
}

// Table is a raw extracted table. The engine never mutates it.
type Table []Row

// NewTable builds a table from plain strings; nil entries become absent cells.
func NewTable(rows ...[]*string) Table {
	table := make(Table, 0, len(rows))
	for _, raw := range rows {
		row := make(Row, len(raw))
		for i, s := range raw {
			if s != nil {
				row[i] = Text(*s)
			}
		}
		table = append(table, row)
	}
	return table
}

// StringTable builds a table where every cell is present.
func StringTable(rows ...[]string) Table {
	table := make(Table, 0, len(rows))
	for _, raw := range rows {
		row := make(Row, len(raw))
		for i, s := range raw {
			row[i] = Text(s)
		}
		table = append(table, row)
	}
	return table
}

// Page is the extracted content of one source page.
type Page struct {
	Text   string
	Tables []Table
}

// Measurements maps each sample to its parameter values.
type Measurements map[SampleID]map[ParameterCode]float64

// Depths maps each sample to its depth class.
type Depths map[SampleID]DepthClass

// IDs returns the sample ids in ascending order.
func (d Depths) IDs() []SampleID {
	ids := make([]SampleID, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func newMeasurements(depths Depths) Measurements {
	m := make(Measurements, len(depths))
	for id := range depths {
		m[id] = make(map[ParameterCode]float64)
	}
	return m
}

// setOnce stores v for (id, code) unless a value is already there.
func (m Measurements) setOnce(id SampleID, code ParameterCode, v float64) bool {
	values, ok := m[id]
	if !ok {
		values = make(map[ParameterCode]float64)
		m[id] = values
	}
	if _, taken := values[code]; taken {
		return false
	}
	values[code] = v
	return true
}
