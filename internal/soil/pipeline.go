// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"errors"

	"go.uber.org/zap"
)

// Reason tells why an extraction stopped.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonNoIdentifiers Reason = "no_identifiers"
	ReasonNoTables      Reason = "no_tables"
	ReasonIDsNotInTable Reason = "ids_not_in_table"
)

var (
	ErrNoIdentifiers = errors.New("no sample identifiers found in text")
	ErrNoTables      = errors.New("no tables found on page")
	ErrIDsNotInTable = errors.New("identifiers found in text but not in table")
)

// Engine turns an extracted page into per-sample measurements. It keeps no
// state between calls and may be shared across goroutines.
type Engine struct {
	ids    *IdentifierExtractor
	dict   *Dictionary
	logger *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine from its two configured components.
func NewEngine(ids *IdentifierExtractor, dict *Dictionary, opts ...Option) *Engine {
	e := &Engine{
		ids:    ids,
		dict:   dict,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the output of one extraction. Table is set whenever a primary
// table was selected, including when its columns could not be resolved.
type Result struct {
	Measurements Measurements
	Depths       Depths
	Table        Table
	Columns      ColumnMap
	Reason       Reason
}

// Err returns the sentinel error for a failed extraction, or nil.
func (r Result) Err() error {
	switch r.Reason {
	case ReasonNoIdentifiers:
		return ErrNoIdentifiers
	case ReasonNoTables:
		return ErrNoTables
	case ReasonIDsNotInTable:
		return ErrIDsNotInTable
	}
	return nil
}

// Extract runs identifier discovery, table selection, column and parameter
// resolution and value normalization over page.
func (e *Engine) Extract(page Page) Result {
	depths := e.ids.Extract(page.Text)
	if len(depths) == 0 {
		e.logger.Debug("no registry lines matched", zap.Int("text_len", len(page.Text)))
		return Result{Reason: ReasonNoIdentifiers, Columns: ColumnMap{HeaderRow: -1}}
	}
	result := Result{
		Measurements: newMeasurements(depths),
		Depths:       depths,
		Columns:      ColumnMap{HeaderRow: -1},
	}

	table, ok := SelectTable(page.Tables)
	if !ok {
		e.logger.Debug("page has no tables", zap.Int("samples", len(depths)))
		result.Reason = ReasonNoTables
		return result
	}
	result.Table = table

	columns, ok := ResolveColumns(table, depths)
	if !ok {
		e.logger.Debug("sample ids not located in primary table",
			zap.Int("samples", len(depths)),
			zap.Int("rows", len(table)))
		result.Reason = ReasonIDsNotInTable
		return result
	}
	result.Columns = columns

	cols := columns.Indexes()
	for i := columns.HeaderRow + 1; i < len(table); i++ {
		row := table[i]
		match, ok := e.dict.Resolve(row)
		if !ok {
			continue
		}
		for _, col := range cols {
			id := columns.Columns[col]
			v, ok := NormalizeValue(row.At(col), match.Code)
			if !ok {
				e.logger.Debug("skipping unparseable cell",
					zap.Int("row", i),
					zap.Int("col", col),
					zap.String("code", string(match.Code)))
				continue
			}
			if !result.Measurements.setOnce(id, match.Code, v) {
				e.logger.Debug("keeping earlier value",
					zap.String("sample", string(id)),
					zap.String("code", string(match.Code)),
					zap.String("rule", match.Rule))
			}
		}
	}
	result.Reason = ReasonOK
	return result
}
