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
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyf"
)

// maxF2Dot14 is the largest value which can be stored as a 2.14 fixed
// point number.
const maxF2Dot14 = 32767.0 / 16384

// decode sets the outline of g from the glyph data in the "glyf" table.
// Nil stands for a blank glyph.
func (g *Glyph) decode(data *glyf.Glyph) error {
	if data == nil {
		return nil
	}
	switch d := data.Data.(type) {
	case glyf.SimpleGlyph:
		su, err := d.Unpack()
		if err != nil {
			return err
		}
		g.contours = make([]Contour, len(su.Contours))
		for i, c := range su.Contours {
			cc := make(Contour, len(c))
			for j, p := range c {
				cc[j] = Point{
					Vec2:    vec.Vec2{X: float64(p.X), Y: float64(p.Y)},
					OnCurve: p.OnCurve,
				}
			}
			g.contours[i] = cc
		}
		g.instructions = su.Instructions
	case glyf.CompositeGlyph:
		g.components = make([]glyf.ComponentUnpacked, len(d.Components))
		for i, gc := range d.Components {
			cu, err := gc.Unpack()
			if err != nil {
				return err
			}
			if cu.ScaledComponentOffset && !cu.AlignPoints {
				L := cu.Trfm
				L[4], L[5] = 0, 0
				cu.Trfm[4], cu.Trfm[5] = L.Apply(cu.Trfm[4], cu.Trfm[5])
			}
			cu.ScaledComponentOffset = false
			if cu.AlignPoints && gc.Flags&glyf.FlagArg1And2AreWords == 0 && len(gc.Data) >= 2 {
				// byte-sized point numbers are unsigned
				cu.OurPoint = uint16(gc.Data[0])
				cu.TheirPoint = uint16(gc.Data[1])
			}
			g.components[i] = *cu
		}
		if len(d.Instructions) > 0 {
			g.instructions = clone(d.Instructions)
		}
	default:
		return &InvalidFontError{
			SubSystem: "sfnt/glyf",
			Reason:    fmt.Sprintf("unexpected glyph data %T", data.Data),
		}
	}
	g.manualHints = len(g.instructions) > 0
	return nil
}

// encode converts the outline of g into the form used in the "glyf" table.
// Coordinates are rounded to design units.  The bounding box is passed in
// by the caller, since the box of a composite glyph depends on the other
// glyphs of the font.
func (g *Glyph) encode(bbox funit.Rect16) (*glyf.Glyph, error) {
	if g.IsBlank() {
		return nil, nil
	}

	if !g.IsComposite() {
		su := &glyf.SimpleUnpacked{
			Contours:     make([]glyf.Contour, 0, len(g.contours)),
			Instructions: g.instructions,
		}
		numPoints := 0
		for _, c := range g.contours {
			if len(c) == 0 {
				continue
			}
			cc := make(glyf.Contour, len(c))
			for j, p := range c {
				x, err := toFUnit(p.X)
				if err != nil {
					return nil, err
				}
				y, err := toFUnit(p.Y)
				if err != nil {
					return nil, err
				}
				cc[j] = glyf.Point{X: x, Y: y, OnCurve: p.OnCurve}
			}
			su.Contours = append(su.Contours, cc)
			numPoints += len(c)
		}
		if numPoints > math.MaxUint16 || len(su.Contours) > math.MaxInt16 {
			return nil, errGlyphTooLarge
		}
		return &glyf.Glyph{Rect16: bbox, Data: su.Pack()}, nil
	}

	comps := make([]glyf.GlyphComponent, len(g.components))
	for i, cu := range g.components {
		for _, v := range cu.Trfm[:4] {
			if v < -2 || v > maxF2Dot14 {
				return nil, &InvalidFontError{
					SubSystem: "sfnt/glyf",
					Reason:    fmt.Sprintf("component %d: scale %g out of range", i, v),
				}
			}
		}
		if !cu.AlignPoints {
			for _, v := range cu.Trfm[4:] {
				if _, err := toFUnit(v); err != nil {
					return nil, err
				}
			}
		}
		gc := cu.Pack()
		if cu.AlignPoints && gc.Flags&glyf.FlagArg1And2AreWords == 0 &&
			max(cu.OurPoint, cu.TheirPoint) > math.MaxInt8 {
			// store point numbers which do not fit into int8 as words
			data := []byte{
				byte(cu.OurPoint >> 8), byte(cu.OurPoint),
				byte(cu.TheirPoint >> 8), byte(cu.TheirPoint),
			}
			gc.Data = append(data, gc.Data[2:]...)
			gc.Flags |= glyf.FlagArg1And2AreWords
		}
		comps[i] = gc
	}
	data := glyf.CompositeGlyph{Components: comps}
	if len(g.instructions) > 0 {
		comps[len(comps)-1].Flags |= glyf.FlagWeHaveInstructions
		data.Instructions = g.instructions
	}
	return &glyf.Glyph{Rect16: bbox, Data: data}, nil
}

// toFUnit rounds x to the nearest integer in the range of funit.Int16.
func toFUnit(x float64) (funit.Int16, error) {
	r := math.Round(x)
	if r < math.MinInt16 || r > math.MaxInt16 || math.IsNaN(r) {
		return 0, &InvalidFontError{
			SubSystem: "sfnt/glyf",
			Reason:    fmt.Sprintf("coordinate %g out of range", x),
		}
	}
	return funit.Int16(r), nil
}

func toFUnitRect(box rect.Rect) (funit.Rect16, error) {
	var res funit.Rect16
	var err error
	for _, field := range []struct {
		dst *funit.Int16
		v   float64
	}{
		{&res.LLx, box.LLx}, {&res.LLy, box.LLy},
		{&res.URx, box.URx}, {&res.URy, box.URy},
	} {
		*field.dst, err = toFUnit(field.v)
		if err != nil {
			return funit.Rect16{}, err
		}
	}
	return res, nil
}

var errGlyphTooLarge = &InvalidFontError{
	SubSystem: "sfnt/glyf",
	Reason:    "too many points",
}
