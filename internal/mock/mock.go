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

// Package mock implements an in-memory font engine for testing.
//
// All operations on a mock font are recorded in an event log, so that
// tests can check the order in which a pipeline calls the engine.
package mock

import (
	"errors"
	"fmt"
	"io/fs"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/fontnorm"
)

// Font is an in-memory font.
type Font struct {
	Name       string
	Em         uint16
	GlyphList  []*Glyph
	Runes      map[rune]bool
	SaveErr    error
	CloseErr   error
	SavedPaths []string
	Closed     bool

	// Events lists the operations which changed the font, in order.
	Events []string
}

var _ fontnorm.Font = (*Font)(nil)

// Glyph is a glyph of a mock font.  The outline is a polygon.
type Glyph struct {
	font *Font

	GlyphName    string
	Outline      []vec.Vec2
	Advance      float64
	ManualHints  bool
	Instructions []byte
	ExtremaCalls int
}

var _ fontnorm.Glyph = (*Glyph)(nil)

// NewFont returns a new font with the given glyphs.
func NewFont(name string, em uint16, glyphs ...*Glyph) *Font {
	f := &Font{
		Name:      name,
		Em:        em,
		GlyphList: glyphs,
		Runes:     make(map[rune]bool),
	}
	for _, g := range glyphs {
		g.font = f
	}
	return f
}

// Box returns a glyph whose outline is the given rectangle.
func Box(name string, width float64, llx, lly, urx, ury float64) *Glyph {
	return &Glyph{
		GlyphName: name,
		Advance:   width,
		Outline: []vec.Vec2{
			{X: llx, Y: lly}, {X: urx, Y: lly}, {X: urx, Y: ury}, {X: llx, Y: ury},
		},
		ManualHints:  true,
		Instructions: []byte{0xB0, 0x00},
	}
}

// Blank returns a glyph without outline.
func Blank(name string, width float64) *Glyph {
	return &Glyph{
		GlyphName: name,
		Advance:   width,
	}
}

func (f *Font) event(format string, args ...any) {
	f.Events = append(f.Events, fmt.Sprintf(format, args...))
}

// FontName implements the [fontnorm.Font] interface.
func (f *Font) FontName() string {
	return f.Name
}

// SetFontName implements the [fontnorm.Font] interface.
func (f *Font) SetFontName(name string) {
	f.event("set name %s", name)
	f.Name = name
}

// UnitsPerEm implements the [fontnorm.Font] interface.
func (f *Font) UnitsPerEm() uint16 {
	return f.Em
}

// SetUnitsPerEm implements the [fontnorm.Font] interface.
// All outlines and widths are scaled.
func (f *Font) SetUnitsPerEm(em uint16) error {
	if em == 0 {
		return errors.New("mock: invalid em size")
	}
	f.event("set em %d", em)
	q := float64(em) / float64(f.Em)
	for _, g := range f.GlyphList {
		g.scale(q)
	}
	f.Em = em
	return nil
}

// Glyphs implements the [fontnorm.Font] interface.
func (f *Font) Glyphs() []fontnorm.Glyph {
	res := make([]fontnorm.Glyph, len(f.GlyphList))
	for i, g := range f.GlyphList {
		res[i] = g
	}
	return res
}

// Glyph returns the named glyph, or nil if there is no such glyph.
func (f *Font) Glyph(name string) *Glyph {
	for _, g := range f.GlyphList {
		if g.GlyphName == name {
			return g
		}
	}
	return nil
}

// GlyphByName implements the [fontnorm.Font] interface.
func (f *Font) GlyphByName(name string) (fontnorm.Glyph, bool) {
	g := f.Glyph(name)
	if g == nil {
		return nil, false
	}
	return g, true
}

// SetGlyphWidth implements the [fontnorm.Font] interface.
func (f *Font) SetGlyphWidth(name string, width funit.Int16) error {
	g := f.Glyph(name)
	if g == nil {
		return fmt.Errorf("mock: no glyph %q", name)
	}
	f.event("set width %s %d", name, width)
	g.Advance = float64(width)
	return nil
}

// IsRenderable implements the [fontnorm.Font] interface.
func (f *Font) IsRenderable(g fontnorm.Glyph) bool {
	mg, ok := g.(*Glyph)
	return ok && len(mg.Outline) > 0
}

// HasRune implements the [fontnorm.Font] interface.
func (f *Font) HasRune(r rune) bool {
	return f.Runes[r]
}

// Save implements the [fontnorm.Font] interface.
func (f *Font) Save(path string) error {
	if f.Closed {
		return fs.ErrClosed
	}
	f.event("save %s", path)
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.SavedPaths = append(f.SavedPaths, path)
	return nil
}

// Close implements the [fontnorm.Font] interface.
func (f *Font) Close() error {
	f.event("close")
	f.Closed = true
	return f.CloseErr
}

// Name implements the [fontnorm.Glyph] interface.
func (g *Glyph) Name() string {
	return g.GlyphName
}

// Width implements the [fontnorm.Glyph] interface.
func (g *Glyph) Width() funit.Int16 {
	return funit.Int16(math.Round(g.Advance))
}

// BoundingBox implements the [fontnorm.Glyph] interface.
func (g *Glyph) BoundingBox() rect.Rect {
	if len(g.Outline) == 0 {
		return rect.Rect{}
	}
	box := rect.Rect{
		LLx: g.Outline[0].X, LLy: g.Outline[0].Y,
		URx: g.Outline[0].X, URy: g.Outline[0].Y,
	}
	for _, p := range g.Outline[1:] {
		box.LLx = math.Min(box.LLx, p.X)
		box.LLy = math.Min(box.LLy, p.Y)
		box.URx = math.Max(box.URx, p.X)
		box.URy = math.Max(box.URy, p.Y)
	}
	return box
}

// Transform implements the [fontnorm.Glyph] interface.
func (g *Glyph) Transform(M matrix.Matrix) {
	for i, p := range g.Outline {
		x, y := M.Apply(p.X, p.Y)
		g.Outline[i] = vec.Vec2{X: x, Y: y}
	}
	if M[1] == 0 && M[2] == 0 && M[0] > 0 && M[3] > 0 {
		g.Advance = g.Advance*M[0] + M[4]
	}
}

func (g *Glyph) scale(q float64) {
	g.Transform(matrix.Scale(q, q))
}

// Round implements the [fontnorm.Glyph] interface.
func (g *Glyph) Round() {
	for i, p := range g.Outline {
		g.Outline[i] = vec.Vec2{X: math.Round(p.X), Y: math.Round(p.Y)}
	}
	g.Advance = math.Round(g.Advance)
}

// SetManualHints implements the [fontnorm.Glyph] interface.
func (g *Glyph) SetManualHints(manual bool) {
	g.ManualHints = manual
}

// SetInstructions implements the [fontnorm.Glyph] interface.
func (g *Glyph) SetInstructions(data []byte) {
	g.Instructions = data
}

// AddExtrema implements the [fontnorm.Glyph] interface.
// Polygons have their extrema at the vertices, so only the call is
// recorded.
func (g *Glyph) AddExtrema() {
	g.ExtremaCalls++
	if g.font != nil {
		g.font.event("add extrema %s", g.GlyphName)
	}
}

// Opener opens mock fonts by path.
type Opener map[string]*Font

// Open implements the [fontnorm.Opener] interface.
func (o Opener) Open(path string) (fontnorm.Font, error) {
	f, ok := o[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	f.event("open %s", path)
	return f, nil
}
