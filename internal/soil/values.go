// SPDX-License-Identifier: Apache-2.0

package soil

import (
	"math"
	"strconv"
	"strings"
)

// potassiumFactor converts K from mg/dm3 to cmol/dm3 (39.1 g/mol, x10).
const potassiumFactor = 391.0

// NormalizeValue parses a lab cell written with a decimal comma. ok is false
// for absent, blank or non-numeric cells; those are skipped, never fatal.
func NormalizeValue(cell Cell, code ParameterCode) (value float64, ok bool) {
	raw := cell.Trimmed()
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if code == CodeK {
		v /= potassiumFactor
	}
	return v, true
}
