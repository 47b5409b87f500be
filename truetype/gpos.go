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

	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/opentype/anchor"
	"seehuhn.de/go/sfnt/opentype/gtab"
	"seehuhn.de/go/sfnt/opentype/markarray"
)

// scaleGpos returns a "GPOS" table with all adjustments and anchor points
// scaled by q.  References to device tables are removed.  If the table
// cannot be decoded, an *InvalidFontError is returned.
func scaleGpos(data []byte, q float64) ([]byte, error) {
	info, err := gtab.Read(bytes.NewReader(data), gtab.TypeGpos)
	if err != nil {
		return nil, &InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    err.Error(),
		}
	}

	s := &gposScaler{
		q:    q,
		seen: make(map[*gtab.GposValueRecord]bool),
	}
	for _, lookup := range info.LookupList {
		if lookup == nil {
			continue
		}
		for _, sub := range lookup.Subtables {
			s.subtable(sub)
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return info.Encode(), nil
}

type gposScaler struct {
	q    float64
	seen map[*gtab.GposValueRecord]bool
	err  error
}

func (s *gposScaler) subtable(sub gtab.Subtable) {
	switch l := sub.(type) {
	case *gtab.Gpos1_1:
		s.value(l.Adjust)
	case *gtab.Gpos1_2:
		for _, vr := range l.Adjust {
			s.value(vr)
		}
	case gtab.Gpos2_1:
		for _, adj := range l {
			s.pair(adj)
		}
	case *gtab.Gpos2_2:
		for _, row := range l.Adjust {
			for _, adj := range row {
				s.pair(adj)
			}
		}
	case *gtab.Gpos3_1:
		for i := range l.Records {
			s.anchor(&l.Records[i].Entry)
			s.anchor(&l.Records[i].Exit)
		}
	case *gtab.Gpos4_1:
		s.marks(l.MarkArray)
		for _, row := range l.BaseArray {
			s.anchors(row)
		}
	case *gtab.Gpos5_1:
		s.marks(l.MarkArray)
		for _, lig := range l.LigArray {
			for _, row := range lig {
				s.anchors(row)
			}
		}
	case *gtab.Gpos6_1:
		s.marks(l.Mark1Array)
		for _, row := range l.Mark2Array {
			s.anchors(row)
		}
	}
	// contextual lookups only refer to other lookups
}

func (s *gposScaler) pair(adj *gtab.PairAdjust) {
	if adj == nil {
		return
	}
	s.value(adj.First)
	s.value(adj.Second)
}

func (s *gposScaler) value(vr *gtab.GposValueRecord) {
	if vr == nil || s.seen[vr] {
		return
	}
	s.seen[vr] = true
	s.scale(&vr.XPlacement)
	s.scale(&vr.YPlacement)
	s.scale(&vr.XAdvance)
	s.scale(&vr.YAdvance)
	vr.XPlacementDevOffs = 0
	vr.YPlacementDevOffs = 0
	vr.XAdvanceDevOffs = 0
	vr.YAdvanceDevOffs = 0
}

func (s *gposScaler) marks(rr []markarray.Record) {
	for i := range rr {
		s.anchor(&rr[i].Table)
	}
}

func (s *gposScaler) anchors(aa []anchor.Table) {
	for i := range aa {
		s.anchor(&aa[i])
	}
}

// anchor scales a single anchor point.  Empty anchors mark missing
// entries and are left alone.
func (s *gposScaler) anchor(a *anchor.Table) {
	if a.IsEmpty() {
		return
	}
	s.scale(&a.X)
	s.scale(&a.Y)
}

func (s *gposScaler) scale(v *funit.Int16) {
	if s.err != nil {
		return
	}
	*v, s.err = scaleFUnit(*v, s.q)
}
