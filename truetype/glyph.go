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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyf"
	"seehuhn.de/go/sfnt/glyph"
)

// A Point is a point in a glyph outline.
type Point struct {
	vec.Vec2
	OnCurve bool
}

// A Contour describes a connected part of a glyph outline.
// The contour is closed: the last point connects back to the first one.
type Contour []Point

// Glyph is a single glyph of a TrueType font.
//
// Coordinates are kept as floating point numbers until the font is saved,
// so that several transformations can be applied without accumulating
// rounding errors.
type Glyph struct {
	font *Font
	gid  glyph.ID
	name string

	width    float64
	contours []Contour

	// Component offsets are always stored unscaled, in Trfm[4] and
	// Trfm[5].  They are ignored when AlignPoints is set.
	components []glyf.ComponentUnpacked

	instructions []byte
	manualHints  bool
}

// Name returns the glyph name.
func (g *Glyph) Name() string {
	return g.name
}

// GID returns the glyph index of g.
func (g *Glyph) GID() glyph.ID {
	return g.gid
}

// Width returns the advance width of the glyph, rounded to design units.
func (g *Glyph) Width() funit.Int16 {
	return funit.Int16(math.Round(g.width))
}

// IsComposite reports whether the glyph is built from other glyphs.
func (g *Glyph) IsComposite() bool {
	return len(g.components) > 0
}

// IsBlank reports whether the glyph has neither an outline nor components.
func (g *Glyph) IsBlank() bool {
	return len(g.contours) == 0 && len(g.components) == 0
}

// Contours returns a copy of the outline of a simple glyph.
func (g *Glyph) Contours() []Contour {
	res := make([]Contour, len(g.contours))
	for i, c := range g.contours {
		res[i] = append(Contour(nil), c...)
	}
	return res
}

// Components returns a copy of the components of a composite glyph.
func (g *Glyph) Components() []glyf.ComponentUnpacked {
	return append([]glyf.ComponentUnpacked(nil), g.components...)
}

// Instructions returns the TrueType instructions of the glyph.
func (g *Glyph) Instructions() []byte {
	return g.instructions
}

// SetInstructions replaces the TrueType instructions of the glyph.
// Use nil to remove all instructions.
func (g *Glyph) SetInstructions(data []byte) {
	if len(data) == 0 {
		data = nil
	}
	g.instructions = data
}

// HasManualHints reports whether the hints of the glyph are marked as
// manually authored.
func (g *Glyph) HasManualHints() bool {
	return g.manualHints
}

// SetManualHints sets or clears the manual-hints flag.
// The flag is only kept in memory; TrueType files have no place to store it.
func (g *Glyph) SetManualHints(manual bool) {
	g.manualHints = manual
}

// Transform applies the affine transformation M to the glyph.
//
// If M is a scaling without shear and with positive factors, the advance
// width is transformed as well.
//
// For composite glyphs, the component glyphs are assumed to be transformed
// by the same matrix.  Only the placement of the components is changed,
// such that the composite glyph is transformed by M as a whole.
func (g *Glyph) Transform(M matrix.Matrix) {
	for _, c := range g.contours {
		for i := range c {
			c[i].Vec2 = apply(M, c[i].Vec2)
		}
	}

	// A component maps child coordinates by C.  After the children have
	// been transformed by M, the component must use M^-1 C M instead.
	if len(g.components) > 0 && M[0]*M[3]-M[1]*M[2] != 0 {
		Minv := M.Inv()
		for i := range g.components {
			comp := &g.components[i]
			comp.Trfm = Minv.Mul(comp.Trfm).Mul(M)
		}
	}

	if M[1] == 0 && M[2] == 0 && M[0] > 0 && M[3] > 0 {
		g.width = g.width*M[0] + M[4]
	}

	if g.font != nil {
		g.font.geometryChanged = true
	}
}

// Round rounds all coordinates, component offsets and the advance width to
// integers.
func (g *Glyph) Round() {
	for _, c := range g.contours {
		for i := range c {
			c[i].X = math.Round(c[i].X)
			c[i].Y = math.Round(c[i].Y)
		}
	}
	for i := range g.components {
		comp := &g.components[i]
		comp.Trfm[4] = math.Round(comp.Trfm[4])
		comp.Trfm[5] = math.Round(comp.Trfm[5])
	}
	g.width = math.Round(g.width)
}

// BoundingBox returns the exact bounding box of the glyph outline.
// For blank glyphs, the zero rectangle is returned.
func (g *Glyph) BoundingBox() rect.Rect {
	var contours []Contour
	if g.IsComposite() {
		contours = g.font.flatten(g, 0)
	} else {
		contours = g.contours
	}
	return outlineBox(contours)
}

// pointBox returns the bounding box of all points, including control points.
func pointBox(contours []Contour) (rect.Rect, bool) {
	var box rect.Rect
	first := true
	for _, c := range contours {
		for _, p := range c {
			if first {
				box = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
				first = false
				continue
			}
			box.LLx = math.Min(box.LLx, p.X)
			box.LLy = math.Min(box.LLy, p.Y)
			box.URx = math.Max(box.URx, p.X)
			box.URy = math.Max(box.URy, p.Y)
		}
	}
	return box, !first
}

// outlineBox returns the bounding box of the curves described by the
// contours.  Control points outside the curve do not contribute.
func outlineBox(contours []Contour) rect.Rect {
	var box rect.Rect
	first := true
	include := func(p vec.Vec2) {
		if first {
			box = rect.Rect{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
			first = false
			return
		}
		box.LLx = math.Min(box.LLx, p.X)
		box.LLy = math.Min(box.LLy, p.Y)
		box.URx = math.Max(box.URx, p.X)
		box.URy = math.Max(box.URy, p.Y)
	}
	for _, c := range contours {
		for _, s := range segments(c) {
			include(s.P0)
			include(s.P2)
			if !s.Curved {
				continue
			}
			for _, t := range s.extrema() {
				include(s.At(t))
			}
		}
	}
	return box
}

// apply maps the point p using the affine transformation M.
func apply(M matrix.Matrix, p vec.Vec2) vec.Vec2 {
	x, y := M.Apply(p.X, p.Y)
	return vec.Vec2{X: x, Y: y}
}
