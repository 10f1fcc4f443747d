// SPDX-License-Identifier: Apache-2.0

package soil

// Comparison sets one measured parameter against its reference target.
type Comparison struct {
	Code       ParameterCode `json:"code"`
	Unit       string        `json:"unit"`
	Lab        float64       `json:"lab"`
	Reference  float64       `json:"reference"`
	Difference float64       `json:"difference"`
}

// SampleComparison groups the comparisons of a sample.
type SampleComparison struct {
	Sample SampleID     `json:"sample"`
	Depth  DepthClass   `json:"depth"`
	Rows   []Comparison `json:"rows"`
}

// Compare lines up every measured parameter with the catalog target for the
// sample's depth. Samples come out in id order, parameters in ReportOrder.
// A parameter without a target is compared against zero.
func Compare(measurements Measurements, depths Depths, catalog *Catalog) []SampleComparison {
	var out []SampleComparison
	for _, id := range depths.IDs() {
		depth := depths[id]
		targets := catalog.Targets(depth)
		values := measurements[id]

		sc := SampleComparison{Sample: id, Depth: depth}
		for _, code := range ReportOrder {
			lab, ok := values[code]
			if !ok {
				continue
			}
			ref := targets[code]
			sc.Rows = append(sc.Rows, Comparison{
				Code:       code,
				Unit:       code.Unit(),
				Lab:        lab,
				Reference:  ref,
				Difference: lab - ref,
			})
		}
		out = append(out, sc)
	}
	return out
}
