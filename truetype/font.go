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

// Package truetype implements a font engine for TrueType fonts.
//
// The engine reads sfnt files with "glyf" outlines, allows to change
// glyph outlines, advance widths, the em size and the font name, and
// writes the result back to a file.  Tables which are not affected by
// these changes are copied unchanged.
//
// The *Font type implements the [fontnorm.Font] interface.
package truetype

import (
	"bytes"
	"fmt"
	"os"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/postscript/type1/names"
	"seehuhn.de/go/sfnt/cmap"
	"seehuhn.de/go/sfnt/glyf"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/head"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/hmtx"
	"seehuhn.de/go/sfnt/maxp"
	"seehuhn.de/go/sfnt/name"
	"seehuhn.de/go/sfnt/post"

	"seehuhn.de/go/fontnorm"
)

// Font is a TrueType font which has been loaded into memory.
type Font struct {
	scalerType uint32
	tables     map[string][]byte

	glyphs []*Glyph
	byName map[string]*Glyph
	cmap   cmap.Subtable
	head   *head.Info
	hhea   *hmtx.Info
	post   *post.Info
	maxp   *maxp.TTFInfo
	names  *name.Info

	fontName   string
	unitsPerEm uint16

	// metricScale is the factor by which font-wide metrics must be
	// scaled when the font is written.
	metricScale float64

	rescaled        bool
	geometryChanged bool
	closed          bool
}

var _ fontnorm.Font = (*Font)(nil)

// Opener opens TrueType font files.
var Opener fontnorm.Opener = fontnorm.OpenerFunc(func(path string) (fontnorm.Font, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
})

// maxComponentDepth limits the nesting of composite glyphs.
const maxComponentDepth = 16

// Open reads a TrueType font from a file.
func Open(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Read decodes a TrueType font from the contents of a font file.
// The font does not retain references to data.
func Read(data []byte) (*Font, error) {
	r := bytes.NewReader(data)
	hdr, err := header.Read(r)
	if err != nil {
		return nil, err
	}
	_, isCFF := hdr.Toc["CFF "]
	_, isCFF2 := hdr.Toc["CFF2"]
	if isCFF || isCFF2 {
		return nil, &NotSupportedError{
			SubSystem: "truetype",
			Feature:   "CFF-based OpenType font",
		}
	}
	for _, name := range []string{"head", "hhea", "hmtx", "maxp", "loca", "glyf"} {
		if _, ok := hdr.Toc[name]; !ok {
			return nil, &InvalidFontError{
				SubSystem: "truetype",
				Reason:    fmt.Sprintf("missing %q table", name),
			}
		}
	}

	tables := make(map[string][]byte, len(hdr.Toc))
	for name := range hdr.Toc {
		body, err := hdr.ReadTableBytes(r, name)
		if err != nil {
			return nil, err
		}
		tables[name] = body
	}

	f := &Font{
		scalerType:  hdr.ScalerType,
		tables:      tables,
		metricScale: 1,
	}

	f.head, err = head.Read(bytes.NewReader(tables["head"]))
	if err != nil {
		return nil, err
	}
	f.unitsPerEm = f.head.UnitsPerEm
	if f.unitsPerEm < 16 || f.unitsPerEm > 16384 {
		return nil, &InvalidFontError{
			SubSystem: "sfnt/head",
			Reason:    fmt.Sprintf("invalid unitsPerEm %d", f.unitsPerEm),
		}
	}

	maxpInfo, err := maxp.Read(bytes.NewReader(tables["maxp"]))
	if err != nil {
		return nil, err
	}
	f.maxp = maxpInfo.TTF
	numGlyphs := maxpInfo.NumGlyphs

	outlines, err := glyf.Decode(&glyf.Encoded{
		GlyfData:   tables["glyf"],
		LocaData:   tables["loca"],
		LocaFormat: f.head.LocaFormat,
	})
	if err != nil {
		return nil, err
	}
	if len(outlines) < numGlyphs {
		return nil, &InvalidFontError{
			SubSystem: "sfnt/loca",
			Reason:    "too few entries",
		}
	}

	f.hhea, err = hmtx.Decode(tables["hhea"], tables["hmtx"])
	if err != nil {
		return nil, err
	}
	if len(f.hhea.Widths) < numGlyphs {
		return nil, &InvalidFontError{
			SubSystem: "sfnt/hmtx",
			Reason:    "too few entries",
		}
	}

	f.glyphs = make([]*Glyph, numGlyphs)
	for i := range f.glyphs {
		g := &Glyph{
			font:  f,
			gid:   glyph.ID(i),
			width: float64(f.hhea.Widths[i]),
		}
		err := g.decode(outlines[i])
		if err != nil {
			return nil, fmt.Errorf("glyph %d: %w", i, err)
		}
		for _, comp := range g.components {
			if int(comp.Child) >= numGlyphs {
				return nil, &InvalidFontError{
					SubSystem: "sfnt/glyf",
					Reason:    fmt.Sprintf("glyph %d: invalid component %d", i, comp.Child),
				}
			}
		}
		f.glyphs[i] = g
	}
	f.hhea.Widths = nil
	f.hhea.LSB = nil
	for _, name := range []string{"head", "hhea", "hmtx", "glyf", "loca"} {
		delete(f.tables, name)
	}

	log := fontnorm.Logger()
	if cmapData, ok := tables["cmap"]; ok {
		sub, err := decodeCmap(cmapData)
		if err != nil {
			log.Warn("cannot decode cmap table", "error", err)
		} else {
			f.cmap = sub
		}
	}
	if postData, ok := tables["post"]; ok {
		info, err := post.Read(bytes.NewReader(postData))
		if err != nil {
			log.Warn("cannot decode post table", "error", err)
		} else {
			f.post = info
		}
	}
	if nameData, ok := tables["name"]; ok {
		info, err := name.Decode(nameData)
		if err != nil {
			log.Warn("cannot decode name table", "error", err)
		} else {
			f.names = info
			f.fontName = postScriptName(info)
		}
	}

	f.assignNames()

	return f, nil
}

func decodeCmap(data []byte) (cmap.Subtable, error) {
	subtables, err := cmap.Decode(data)
	if err != nil {
		return nil, err
	}
	return subtables.GetBest()
}

// assignNames sets the glyph names.  Names are taken from the "post" table
// if possible, and are derived from the character map otherwise.
func (f *Font) assignNames() {
	n := len(f.glyphs)

	var postNames []string
	if f.post != nil && len(f.post.Names) >= n {
		postNames = f.post.Names[:n]
	}

	var firstRune []rune
	if postNames == nil && f.cmap != nil {
		firstRune = make([]rune, n)
		for r := rune(1); r <= 0xFFFF; r++ {
			if r >= 0xD800 && r <= 0xDFFF {
				continue
			}
			gid := int(f.cmap.Lookup(r))
			if gid > 0 && gid < n && firstRune[gid] == 0 {
				firstRune[gid] = r
			}
		}
	}

	f.byName = make(map[string]*Glyph, n)
	for i, g := range f.glyphs {
		var name string
		switch {
		case postNames != nil:
			name = postNames[i]
		case i == 0:
			name = ".notdef"
		case firstRune != nil && firstRune[i] != 0:
			name = names.FromUnicode(string(firstRune[i]))
		}
		if _, taken := f.byName[name]; name == "" || taken {
			name = fmt.Sprintf("glyph%d", i)
			for {
				if _, taken := f.byName[name]; !taken {
					break
				}
				name += "#"
			}
		}
		g.name = name
		f.byName[name] = g
	}
}

// FontName returns the PostScript name of the font.
func (f *Font) FontName() string {
	return f.fontName
}

// SetFontName changes the PostScript name of the font.
func (f *Font) SetFontName(name string) {
	f.fontName = name
}

// UnitsPerEm returns the size of the em square in font design units.
func (f *Font) UnitsPerEm() uint16 {
	return f.unitsPerEm
}

// SetUnitsPerEm changes the size of the em square.  All glyph outlines,
// advance widths and font-wide metrics are scaled, so that the appearance
// of the font does not change.  Coordinates are not rounded.
func (f *Font) SetUnitsPerEm(unitsPerEm uint16) error {
	if f.closed {
		return ErrClosed
	}
	if unitsPerEm < 16 || unitsPerEm > 16384 {
		return &NotSupportedError{
			SubSystem: "truetype",
			Feature:   fmt.Sprintf("unitsPerEm %d", unitsPerEm),
		}
	}
	if unitsPerEm == f.unitsPerEm {
		return nil
	}

	q := float64(unitsPerEm) / float64(f.unitsPerEm)
	fontnorm.Logger().Debug("changing em size",
		"font", f.fontName, "from", f.unitsPerEm, "to", unitsPerEm)
	M := matrix.Scale(q, q)
	for _, g := range f.glyphs {
		g.Transform(M)
	}
	f.metricScale *= q
	f.unitsPerEm = unitsPerEm
	f.rescaled = true
	return nil
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return len(f.glyphs)
}

// Glyphs returns all glyphs of the font, in glyph ID order.
func (f *Font) Glyphs() []fontnorm.Glyph {
	res := make([]fontnorm.Glyph, len(f.glyphs))
	for i, g := range f.glyphs {
		res[i] = g
	}
	return res
}

// GlyphByName returns the glyph with the given name.
func (f *Font) GlyphByName(name string) (fontnorm.Glyph, bool) {
	g, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return g, true
}

// Glyph returns the glyph with the given glyph ID, or nil if gid is out of
// range.
func (f *Font) Glyph(gid glyph.ID) *Glyph {
	if int(gid) >= len(f.glyphs) {
		return nil
	}
	return f.glyphs[gid]
}

// SetGlyphWidth sets the advance width of the named glyph.
func (f *Font) SetGlyphWidth(name string, width funit.Int16) error {
	if f.closed {
		return ErrClosed
	}
	g, ok := f.byName[name]
	if !ok {
		return fmt.Errorf("truetype: no glyph %q", name)
	}
	g.width = float64(width)
	f.geometryChanged = true
	return nil
}

// IsRenderable reports whether the glyph has an outline or components.
// Glyphs which belong to a different font are not renderable.
func (f *Font) IsRenderable(g fontnorm.Glyph) bool {
	tg, ok := g.(*Glyph)
	if !ok || tg.font != f {
		return false
	}
	return !tg.IsBlank()
}

// HasRune reports whether the character map of the font maps r to a glyph
// other than ".notdef".
func (f *Font) HasRune(r rune) bool {
	if f.cmap == nil {
		return false
	}
	return f.cmap.Lookup(r) != 0
}

// Close releases the font data.  After Close, the font cannot be saved.
func (f *Font) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.tables = nil
	f.glyphs = nil
	f.byName = nil
	f.cmap = nil
	return nil
}

// flatten returns the outline of a glyph, with all components of composite
// glyphs resolved.  The returned contours must not be modified.
func (f *Font) flatten(g *Glyph, depth int) []Contour {
	if !g.IsComposite() {
		return g.contours
	}
	if depth >= maxComponentDepth {
		return nil
	}

	var res []Contour
	for _, comp := range g.components {
		child := f.Glyph(comp.Child)
		if child == nil {
			continue
		}
		parts := f.flatten(child, depth+1)

		M := comp.Trfm
		if comp.AlignPoints {
			M[4], M[5] = 0, 0
		}
		moved := make([]Contour, len(parts))
		for i, c := range parts {
			mc := make(Contour, len(c))
			for j, p := range c {
				mc[j] = Point{Vec2: apply(M, p.Vec2), OnCurve: p.OnCurve}
			}
			moved[i] = mc
		}

		if comp.AlignPoints {
			p1, ok1 := pointAt(res, int(comp.OurPoint))
			p2, ok2 := pointAt(moved, int(comp.TheirPoint))
			if ok1 && ok2 {
				shift := p1.Sub(p2)
				for _, c := range moved {
					for j := range c {
						c[j].Vec2 = c[j].Vec2.Add(shift)
					}
				}
			}
		}
		res = append(res, moved...)
	}
	return res
}

// componentDepth returns the nesting depth of a composite glyph.
// Simple glyphs have depth 0.
func (f *Font) componentDepth(g *Glyph, depth int) int {
	if !g.IsComposite() || depth >= maxComponentDepth {
		return 0
	}
	res := 0
	for _, comp := range g.components {
		child := f.Glyph(comp.Child)
		if child == nil {
			continue
		}
		res = max(res, f.componentDepth(child, depth+1))
	}
	return res + 1
}

func pointAt(contours []Contour, idx int) (vec.Vec2, bool) {
	for _, c := range contours {
		if idx < len(c) {
			return c[idx].Vec2, true
		}
		idx -= len(c)
	}
	return vec.Vec2{}, false
}
