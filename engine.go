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

package fontnorm

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/postscript/funit"
)

// Font is an open font file.
//
// A Font owns all glyphs obtained from it.  Neither the font nor its glyphs
// may be used after Close has been called.  A Font is not safe for
// concurrent use.
type Font interface {
	// FontName returns the PostScript name of the font.
	FontName() string

	// SetFontName changes the PostScript name of the font.
	SetFontName(name string)

	// UnitsPerEm returns the size of the em square in font design units.
	UnitsPerEm() uint16

	// SetUnitsPerEm changes the size of the em square.  All outlines and
	// metrics are rescaled, so that the font looks the same as before.
	SetUnitsPerEm(unitsPerEm uint16) error

	// Glyphs returns all glyphs of the font, in glyph ID order.
	Glyphs() []Glyph

	// GlyphByName returns the glyph with the given name.
	GlyphByName(name string) (Glyph, bool)

	// SetGlyphWidth sets the advance width of the named glyph.
	SetGlyphWidth(name string, width funit.Int16) error

	// IsRenderable reports whether the glyph leaves marks on the page.
	IsRenderable(g Glyph) bool

	// HasRune reports whether the font maps r to a glyph.
	HasRune(r rune) bool

	// Save writes the font to a file.
	Save(path string) error

	// Close releases all resources associated with the font.
	Close() error
}

// Glyph is a single glyph of a [Font].
type Glyph interface {
	// Name returns the glyph name.
	Name() string

	// Width returns the advance width of the glyph.
	Width() funit.Int16

	// BoundingBox returns the bounding box of the glyph outline.
	// The box is zero if the glyph is blank.
	BoundingBox() rect.Rect

	// Transform applies the affine transformation M to the glyph outline.
	Transform(M matrix.Matrix)

	// Round rounds all outline coordinates and the advance width to integers.
	Round()

	// SetManualHints sets or clears the flag which marks the hints of the
	// glyph as manually authored.
	SetManualHints(manual bool)

	// SetInstructions replaces the TrueType instructions of the glyph.
	SetInstructions(data []byte)

	// AddExtrema inserts on-curve points at all horizontal and vertical
	// extrema of the outline curves.
	AddExtrema()
}

// Opener opens font files.
type Opener interface {
	Open(path string) (Font, error)
}

// OpenerFunc adapts a function to the [Opener] interface.
type OpenerFunc func(path string) (Font, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Font, error) {
	return f(path)
}
