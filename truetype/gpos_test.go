// seehuhn.de/go/fontnorm - normalize glyph outlines and metrics of font files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package truetype

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/opentype/anchor"
	"seehuhn.de/go/sfnt/opentype/coverage"
	"seehuhn.de/go/sfnt/opentype/gtab"
	"seehuhn.de/go/sfnt/opentype/markarray"
)

var kernPair = glyph.Pair{Left: 36, Right: 57}

// makeGpos returns a "GPOS" table with a pair kerning lookup, a single
// adjustment lookup and a mark attachment lookup.
func makeGpos() *gtab.Info {
	return &gtab.Info{
		ScriptList: gtab.ScriptListInfo{
			language.MustParse("und-Latn"): {
				Required: 0xFFFF,
				Optional: []gtab.FeatureIndex{0, 1},
			},
		},
		FeatureList: gtab.FeatureListInfo{
			{Tag: "kern", Lookups: []gtab.LookupIndex{0, 1}},
			{Tag: "mark", Lookups: []gtab.LookupIndex{2}},
		},
		LookupList: gtab.LookupList{
			{
				Meta: &gtab.LookupMetaInfo{LookupType: 2},
				Subtables: []gtab.Subtable{
					gtab.Gpos2_1{
						kernPair: &gtab.PairAdjust{
							First: &gtab.GposValueRecord{XAdvance: -200},
						},
					},
				},
			},
			{
				Meta: &gtab.LookupMetaInfo{LookupType: 1},
				Subtables: []gtab.Subtable{
					&gtab.Gpos1_1{
						Cov:    coverage.Table{40: 0},
						Adjust: &gtab.GposValueRecord{XPlacement: 30, YPlacement: -60},
					},
				},
			},
			{
				Meta: &gtab.LookupMetaInfo{LookupType: 4},
				Subtables: []gtab.Subtable{
					&gtab.Gpos4_1{
						MarkCov: coverage.Table{100: 0},
						BaseCov: coverage.Table{36: 0},
						MarkArray: []markarray.Record{
							{Class: 0, Table: anchor.Table{X: 150, Y: 700}},
						},
						BaseArray: [][]anchor.Table{
							{{X: 600, Y: 1400}},
						},
					},
				},
			},
		},
	}
}

func TestScaleGpos(t *testing.T) {
	scaled, err := scaleGpos(makeGpos().Encode(), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	info, err := gtab.Read(bytes.NewReader(scaled), gtab.TypeGpos)
	if err != nil {
		t.Fatal(err)
	}

	pairs := info.LookupList[0].Subtables[0].(gtab.Gpos2_1)
	if got := pairs[kernPair].First.XAdvance; got != -100 {
		t.Errorf("kerning: got %d, want -100", got)
	}

	single := info.LookupList[1].Subtables[0].(*gtab.Gpos1_1)
	want := &gtab.GposValueRecord{XPlacement: 15, YPlacement: -30}
	if d := cmp.Diff(want, single.Adjust); d != "" {
		t.Errorf("single adjustment differs (-want +got):\n%s", d)
	}

	mark := info.LookupList[2].Subtables[0].(*gtab.Gpos4_1)
	if got := mark.MarkArray[0].Table; got != (anchor.Table{X: 75, Y: 350}) {
		t.Errorf("mark anchor: got %v", got)
	}
	if got := mark.BaseArray[0][0]; got != (anchor.Table{X: 300, Y: 700}) {
		t.Errorf("base anchor: got %v", got)
	}
}

func TestScaleGposShared(t *testing.T) {
	// class-based kerning tables may use the same record for many cells
	adj := &gtab.PairAdjust{
		First: &gtab.GposValueRecord{
			XAdvance:        -80,
			XAdvanceDevOffs: 12,
		},
	}
	sub := &gtab.Gpos2_2{
		Adjust: [][]*gtab.PairAdjust{{adj, adj}, {adj, nil}},
	}
	s := &gposScaler{q: 0.5, seen: make(map[*gtab.GposValueRecord]bool)}
	s.subtable(sub)
	if s.err != nil {
		t.Fatal(s.err)
	}
	want := &gtab.GposValueRecord{XAdvance: -40}
	if d := cmp.Diff(want, adj.First); d != "" {
		t.Errorf("value record differs (-want +got):\n%s", d)
	}
}

func TestScaleGposOverflow(t *testing.T) {
	info := makeGpos()
	info.LookupList[0].Subtables[0] = gtab.Gpos2_1{
		kernPair: &gtab.PairAdjust{
			First: &gtab.GposValueRecord{XAdvance: 20000},
		},
	}
	_, err := scaleGpos(info.Encode(), 2)
	if err == nil {
		t.Fatal("overflow not detected")
	}
	if isMalformed(err) {
		t.Errorf("overflow reported as malformed table: %v", err)
	}
}

func TestScaleGposInvalid(t *testing.T) {
	_, err := scaleGpos([]byte{0, 1, 0, 0, 0xFF}, 0.5)
	if !isMalformed(err) {
		t.Errorf("truncated table: got %v", err)
	}
}

// TestSetUnitsPerEmGpos checks that kerning in the "GPOS" table is kept
// when the em size changes.
func TestSetUnitsPerEmGpos(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	f.tables["GPOS"] = makeGpos().Encode()

	err = f.SetUnitsPerEm(1000)
	if err != nil {
		t.Fatal(err)
	}
	data, err := f.Encode()
	if err != nil {
		t.Fatal(err)
	}

	hdr, err := header.Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	gposData, err := hdr.ReadTableBytes(bytes.NewReader(data), "GPOS")
	if err != nil {
		t.Fatal(err)
	}
	info, err := gtab.Read(bytes.NewReader(gposData), gtab.TypeGpos)
	if err != nil {
		t.Fatal(err)
	}
	pairs := info.LookupList[0].Subtables[0].(gtab.Gpos2_1)
	// -200 * 1000 / 2048 = -97.66
	if got := pairs[kernPair].First.XAdvance; got != -98 {
		t.Errorf("kerning after rescaling: got %d, want -98", got)
	}
	if info.FeatureList[0].Tag != "kern" {
		t.Errorf("feature list changed: %v", info.FeatureList)
	}
}
