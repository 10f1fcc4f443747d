// SPDX-License-Identifier: Apache-2.0

package soil_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vitorsmc/analise-solo-app/internal/soil"
)

func testEngine(t *testing.T) *soil.Engine {
	t.Helper()
	ids, err := soil.NewIdentifierExtractor(0)
	require.NoError(t, err)
	return soil.NewEngine(ids, testDictionary(t), soil.WithLogger(zaptest.NewLogger(t)))
}

const singleSampleText = "Laboratório de Solos\nReg. 000111 Fazenda Santa Rita 0-20cm\n"

func TestEngine_Extract_Phosphorus(t *testing.T) {
	page := soil.Page{
		Text: singleSampleText,
		Tables: []soil.Table{
			soil.StringTable(
				[]string{"", "000111"},
				[]string{"P (ppm)", "17,0"},
			),
		},
	}

	result := testEngine(t).Extract(page)
	require.NoError(t, result.Err())
	assert.Equal(t, soil.ReasonOK, result.Reason)
	assert.Equal(t, soil.Measurements{"000111": {soil.CodeP: 17.0}}, result.Measurements)
	assert.Equal(t, soil.Depths{"000111": soil.DepthTopsoil}, result.Depths)
}

func TestEngine_Extract_PotassiumConversion(t *testing.T) {
	page := soil.Page{
		Text: singleSampleText,
		Tables: []soil.Table{
			soil.StringTable(
				[]string{"", "000111"},
				[]string{"K (ppm)", "136,85"},
			),
		},
	}

	result := testEngine(t).Extract(page)
	require.Equal(t, soil.ReasonOK, result.Reason)
	assert.InEpsilon(t, 0.35, result.Measurements["000111"][soil.CodeK], 1e-3)
}

func TestEngine_Extract_FullReport(t *testing.T) {
	page := soil.Page{
		Text: "Reg. 000111 Talhão 1 0-20cm\nReg. 000112 Talhão 1 20-40cm\n",
		Tables: []soil.Table{
			soil.StringTable([]string{"Cliente", "Fazenda"}),
			soil.NewTable(
				[]*string{strPtr("Determinação"), nil, nil},
				[]*string{nil, strPtr("000111"), strPtr("000112")},
				[]*string{strPtr("P (ppm)"), strPtr("12,5"), strPtr("4,2")},
				[]*string{strPtr("K (ppm)"), strPtr("78,2"), nil},
				[]*string{strPtr("Ca (meq/100mL)"), strPtr("2,10"), strPtr("1,05")},
				[]*string{strPtr("PST (%)"), strPtr("1,5"), strPtr("1,1")},
				[]*string{strPtr("Soma de Bases"), strPtr("3,0"), strPtr("1,9")},
				[]*string{strPtr("Fósforo remanescente"), strPtr("31,0"), strPtr("29,0")},
				[]*string{strPtr("Manganês\n(ppm)"), strPtr("n.d."), strPtr("6,3")},
				[]*string{strPtr("C.T.C. Efetiva"), strPtr("5,4"), strPtr("3,2")},
			),
		},
	}

	result := testEngine(t).Extract(page)
	require.Equal(t, soil.ReasonOK, result.Reason)
	assert.Equal(t, 1, result.Columns.HeaderRow)

	top := result.Measurements["000111"]
	assert.Equal(t, 12.5, top[soil.CodeP], "a later P row must not overwrite the first one")
	assert.InDelta(t, 78.2/391.0, top[soil.CodeK], 1e-12)
	assert.Equal(t, 2.10, top[soil.CodeCa])
	assert.Equal(t, 5.4, top[soil.CodeCTC])
	assert.NotContains(t, top, soil.CodeS)
	assert.NotContains(t, top, soil.CodeMn, "unparseable cells are skipped")

	sub := result.Measurements["000112"]
	assert.Equal(t, 4.2, sub[soil.CodeP])
	assert.NotContains(t, sub, soil.CodeK, "absent cells are skipped")
	assert.Equal(t, 6.3, sub[soil.CodeMn])

	assert.Equal(t, soil.Depths{"000111": soil.DepthTopsoil, "000112": soil.DepthSubsoil}, result.Depths)
}

func TestEngine_Extract_WriteOnce(t *testing.T) {
	page := soil.Page{
		Text: singleSampleText,
		Tables: []soil.Table{
			soil.StringTable(
				[]string{"", "000111"},
				[]string{"P (ppm)", "-"},
				[]string{"P (ppm)", "8,0"},
				[]string{"Fósforo", "9,0"},
			),
		},
	}

	result := testEngine(t).Extract(page)
	assert.Equal(t, 8.0, result.Measurements["000111"][soil.CodeP], "first successfully parsed value wins")
}

func TestEngine_Extract_Failures(t *testing.T) {
	tests := []struct {
		name       string
		page       soil.Page
		wantReason soil.Reason
		wantErr    error
		check      func(t *testing.T, r soil.Result)
	}{
		{
			name:       "no identifiers",
			page:       soil.Page{Text: "Relatório sem registro", Tables: []soil.Table{soil.StringTable([]string{"P", "1"})}},
			wantReason: soil.ReasonNoIdentifiers,
			wantErr:    soil.ErrNoIdentifiers,
			check: func(t *testing.T, r soil.Result) {
				assert.Empty(t, r.Measurements)
				assert.Empty(t, r.Depths)
				assert.Nil(t, r.Table)
			},
		},
		{
			name:       "no tables",
			page:       soil.Page{Text: singleSampleText},
			wantReason: soil.ReasonNoTables,
			wantErr:    soil.ErrNoTables,
			check: func(t *testing.T, r soil.Result) {
				assert.Equal(t, soil.Depths{"000111": soil.DepthTopsoil}, r.Depths)
				assert.Empty(t, r.Measurements["000111"])
				assert.Nil(t, r.Table)
			},
		},
		{
			name: "ids not in table keeps the raw table",
			page: soil.Page{
				Text:   singleSampleText,
				Tables: []soil.Table{soil.StringTable([]string{"", "999999"}, []string{"P (ppm)", "17,0"})},
			},
			wantReason: soil.ReasonIDsNotInTable,
			wantErr:    soil.ErrIDsNotInTable,
			check: func(t *testing.T, r soil.Result) {
				assert.Len(t, r.Table, 2)
				assert.Empty(t, r.Measurements["000111"])
				assert.Equal(t, -1, r.Columns.HeaderRow)
			},
		},
	}

	engine := testEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := engine.Extract(tt.page)
			assert.Equal(t, tt.wantReason, r.Reason)
			assert.ErrorIs(t, r.Err(), tt.wantErr)
			tt.check(t, r)
		})
	}
}

func TestEngine_Extract_DeterministicAndConcurrent(t *testing.T) {
	engine := testEngine(t)
	page := soil.Page{
		Text: "Reg. 000111 A 0-20cm\nReg. 000112 B 20-40cm",
		Tables: []soil.Table{soil.StringTable(
			[]string{"", "000111", "000112", "000111"},
			[]string{"Zinco (ppm)", "1,1", "2,2", "3,3"},
			[]string{"Cobre", "0,4", "0,5", "0,6"},
		)},
	}
	want := engine.Extract(page)
	assert.Equal(t, 1.1, want.Measurements["000111"][soil.CodeZn], "the leftmost duplicate column wins")

	var wg sync.WaitGroup
	results := make([]soil.Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Extract(page)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, want.Measurements, r.Measurements)
		assert.Equal(t, want.Depths, r.Depths)
	}
}
