// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"maps"
	"slices"
)

// SelectTable returns the table with the most rows. Ties go to the table
// extracted first. ok is false when there are no tables.
func SelectTable(tables []Table) (primary Table, ok bool) {
	best := -1
	for i, t := range tables {
		if best < 0 || len(t) > len(tables[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	return tables[best], true
}

// ColumnMap is the layout of sample columns inside the primary table.
type ColumnMap struct {
	// HeaderRow is the index of the row holding the sample ids.
	HeaderRow int
	Columns   map[int]SampleID
}

// Indexes returns the mapped column indexes from left to right.
func (c ColumnMap) Indexes() []int {
	return slices.Sorted(maps.Keys(c.Columns))
}

// ResolveColumns finds the first row that names at least one known sample id
// and maps each of its id cells to the column index. Later rows are not
// considered even if they also carry ids.
func ResolveColumns(table Table, known Depths) (ColumnMap, bool) {
	for i, row := range table {
		columns := make(map[int]SampleID)
		for col, cell := range row {
			id := SampleID(cell.Trimmed())
			if id == "" {
				continue
			}
			if _, ok := known[id]; ok {
				columns[col] = id
			}
		}
		if len(columns) > 0 {
			return ColumnMap{HeaderRow: i, Columns: columns}, true
		}
	}
	return ColumnMap{HeaderRow: -1}, false
}
