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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	xsfnt "golang.org/x/image/font/sfnt"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/glyf"
	"seehuhn.de/go/sfnt/header"
	"seehuhn.de/go/sfnt/maxp"
	"seehuhn.de/go/sfnt/name"
	"seehuhn.de/go/sfnt/post"

	"seehuhn.de/go/fontnorm"
)

// Tables which store data derived from the glyph outlines.  These become
// invalid when the outlines change.
var outlineDependent = []string{
	"hdmx", "LTSH", "VDMX",
	"gvar", "cvar", "fvar", "avar", "HVAR", "VVAR", "MVAR",
}

// Tables which store values in design units that cannot be rescaled.
var unscalable = []string{"vhea", "vmtx"}

// Save writes the font to a file.
//
// The output is checked by parsing it with an independent sfnt
// implementation before the file is written.  The data is first written
// to a temporary file, which is then renamed, so that path is never left
// with partial output.
func (f *Font) Save(path string) error {
	if f.closed {
		return ErrClosed
	}
	data, err := f.Encode()
	if err != nil {
		return err
	}
	err = f.verify(data)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Encode returns the binary representation of the font.
func (f *Font) Encode() ([]byte, error) {
	if f.closed {
		return nil, ErrClosed
	}
	tables, err := f.buildTables()
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	_, err = header.Write(buf, f.scalerType, tables)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// glyfStats collects values from the glyph outlines which are needed for
// the "head", "hhea" and "maxp" tables.
type glyfStats struct {
	widths  []funit.Int16
	extents []funit.Rect16
	bbox    funit.Rect16

	maxPoints, maxContours                   int
	maxCompositePoints, maxCompositeContours int
	maxComponentElements, maxComponentDepth  int
	maxSizeOfInstructions                    int
	hasInstructions                          bool
}

func (f *Font) buildTables() (map[string][]byte, error) {
	log := fontnorm.Logger()

	tables := make(map[string][]byte, len(f.tables)+6)
	for name, body := range f.tables {
		tables[name] = body
	}
	drop := func(level slog.Level, reason string, names ...string) {
		for _, name := range names {
			if _, ok := tables[name]; !ok {
				continue
			}
			delete(tables, name)
			log.Log(context.Background(), level, "dropping table",
				"font", f.fontName, "table", name, "reason", reason)
		}
	}

	drop(slog.LevelWarn, "signature no longer valid", "DSIG")
	if f.geometryChanged || f.rescaled {
		drop(slog.LevelWarn, "glyph outlines changed", outlineDependent...)
	}
	if f.rescaled {
		drop(slog.LevelWarn, "units per em changed", unscalable...)
	}

	outlines, stats, err := f.encodeGlyphs()
	if err != nil {
		return nil, err
	}
	enc := outlines.Encode()
	tables["glyf"] = enc.GlyfData
	tables["loca"] = enc.LocaData
	if !stats.hasInstructions {
		drop(slog.LevelDebug, "no glyph has instructions", "fpgm", "prep", "cvt ")
	}

	q := f.metricScale

	hd := *f.head
	hd.UnitsPerEm = f.unitsPerEm
	hd.FontBBox = stats.bbox
	hd.LocaFormat = enc.LocaFormat
	hd.Modified = time.Now()
	tables["head"] = hd.Encode()

	hh := *f.hhea
	for _, v := range []*funit.Int16{&hh.Ascent, &hh.Descent, &hh.LineGap, &hh.CaretOffset} {
		*v, err = scaleFUnit(*v, q)
		if err != nil {
			return nil, err
		}
	}
	hh.Widths = stats.widths
	hh.GlyphExtents = stats.extents
	hh.LSB = nil
	tables["hhea"], tables["hmtx"] = hh.Encode()

	tables["maxp"] = f.encodeMaxp(stats)

	if q != 1 {
		if data, ok := tables["OS/2"]; ok {
			tables["OS/2"], err = scaleOS2(data, q)
			if err != nil {
				return nil, err
			}
		}
		if data, ok := tables["cvt "]; ok {
			tables["cvt "], err = scaleCvt(data, q)
			if err != nil {
				return nil, err
			}
		}
		if data, ok := tables["kern"]; ok {
			scaled, err := scaleKern(data, q)
			if isMalformed(err) {
				drop(slog.LevelWarn, err.Error(), "kern")
			} else if err != nil {
				return nil, err
			} else {
				tables["kern"] = scaled
			}
		}
		if data, ok := tables["GPOS"]; ok {
			scaled, err := scaleGpos(data, q)
			if isMalformed(err) {
				drop(slog.LevelWarn, err.Error(), "GPOS")
			} else if err != nil {
				return nil, err
			} else {
				tables["GPOS"] = scaled
			}
		}
	}

	tables["post"], err = f.encodePost(q)
	if err != nil {
		return nil, err
	}

	if f.names != nil || f.fontName != "" {
		info := f.names
		if info == nil {
			info = &name.Info{}
		}
		if f.fontName != postScriptName(info) {
			setPostScriptName(info, f.fontName)
		}
		tables["name"] = info.Encode(windowsEncodingID)
	}

	return tables, nil
}

// isMalformed reports whether err indicates a table which could not be
// decoded.  Such tables are dropped instead of failing the whole font.
func isMalformed(err error) bool {
	if err == nil {
		return false
	}
	var invalid *InvalidFontError
	return IsUnsupported(err) || errors.As(err, &invalid)
}

// encodeGlyphs converts all glyphs into the form used in the "glyf" table.
// Widths are rounded to design units, and the bounding boxes of
// composite glyphs are computed from the flattened outlines.
func (f *Font) encodeGlyphs() (glyf.Glyphs, *glyfStats, error) {
	n := len(f.glyphs)
	stats := &glyfStats{
		widths:  make([]funit.Int16, n),
		extents: make([]funit.Rect16, n),
	}
	outlines := make(glyf.Glyphs, n)
	for i, g := range f.glyphs {
		width := math.Round(g.width)
		if width < 0 || width > math.MaxInt16 {
			return nil, nil, &InvalidFontError{
				SubSystem: "sfnt/hmtx",
				Reason:    fmt.Sprintf("glyph %q: invalid advance width %g", g.name, g.width),
			}
		}
		stats.widths[i] = funit.Int16(width)

		if g.IsBlank() {
			continue
		}

		var outline []Contour
		if g.IsComposite() {
			outline = f.flatten(g, 0)
		} else {
			outline = g.contours
		}
		var bbox funit.Rect16
		if box, ok := pointBox(outline); ok {
			var err error
			bbox, err = toFUnitRect(box)
			if err != nil {
				return nil, nil, fmt.Errorf("glyph %q: %w", g.name, err)
			}
		}
		data, err := g.encode(bbox)
		if err != nil {
			return nil, nil, fmt.Errorf("glyph %q: %w", g.name, err)
		}
		outlines[i] = data
		stats.extents[i] = bbox

		numPoints, numContours := 0, 0
		for _, c := range outline {
			numPoints += len(c)
			if len(c) > 0 {
				numContours++
			}
		}
		if g.IsComposite() {
			stats.maxCompositePoints = max(stats.maxCompositePoints, numPoints)
			stats.maxCompositeContours = max(stats.maxCompositeContours, numContours)
			stats.maxComponentElements = max(stats.maxComponentElements, len(g.components))
			stats.maxComponentDepth = max(stats.maxComponentDepth, f.componentDepth(g, 0))
		} else {
			stats.maxPoints = max(stats.maxPoints, numPoints)
			stats.maxContours = max(stats.maxContours, numContours)
		}
		if len(g.instructions) > 0 {
			stats.hasInstructions = true
			stats.maxSizeOfInstructions = max(stats.maxSizeOfInstructions, len(g.instructions))
		}

		stats.bbox.Extend(bbox)
	}
	return outlines, stats, nil
}

func (f *Font) encodeMaxp(stats *glyfStats) []byte {
	info := &maxp.Info{NumGlyphs: len(f.glyphs)}
	ttf := &maxp.TTFInfo{MaxZones: 1}
	if f.maxp != nil {
		*ttf = *f.maxp
	}
	ttf.MaxPoints = clampUint16(stats.maxPoints)
	ttf.MaxContours = clampUint16(stats.maxContours)
	ttf.MaxCompositePoints = clampUint16(stats.maxCompositePoints)
	ttf.MaxCompositeContours = clampUint16(stats.maxCompositeContours)
	ttf.MaxComponentElements = clampUint16(stats.maxComponentElements)
	ttf.MaxComponentDepth = clampUint16(stats.maxComponentDepth)
	ttf.MaxSizeOfInstructions = clampUint16(stats.maxSizeOfInstructions)
	if !stats.hasInstructions {
		ttf.MaxZones = 1
		ttf.MaxTwilightPoints = 0
		ttf.MaxStorage = 0
		ttf.MaxFunctionDefs = 0
		ttf.MaxInstructionDefs = 0
		ttf.MaxStackElements = 0
	}
	info.TTF = ttf
	return info.Encode()
}

// encodePost encodes the "post" table, including the current glyph names.
func (f *Font) encodePost(q float64) ([]byte, error) {
	var info post.Info
	if f.post != nil {
		info = *f.post
	}
	info.Names = make([]string, len(f.glyphs))
	for i, g := range f.glyphs {
		info.Names[i] = g.name
	}
	if q != 1 {
		var err error
		info.UnderlinePosition, err = scaleFUnit(info.UnderlinePosition, q)
		if err != nil {
			return nil, err
		}
		info.UnderlineThickness, err = scaleFUnit(info.UnderlineThickness, q)
		if err != nil {
			return nil, err
		}
	}
	return info.Encode(), nil
}

// verify checks that data can be parsed as a font, and that the parsed
// font agrees with f.
func (f *Font) verify(data []byte) error {
	parsed, err := xsfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("truetype: generated font is invalid: %w", err)
	}
	if parsed.NumGlyphs() != len(f.glyphs) {
		return fmt.Errorf("truetype: generated font has %d glyphs, expected %d",
			parsed.NumGlyphs(), len(f.glyphs))
	}
	if upem := parsed.UnitsPerEm(); int(upem) != int(f.unitsPerEm) {
		return fmt.Errorf("truetype: generated font has unitsPerEm %d, expected %d",
			upem, f.unitsPerEm)
	}
	if f.fontName != "" {
		name, err := parsed.Name(nil, xsfnt.NameIDPostScript)
		if err != nil && !errors.Is(err, xsfnt.ErrNotFound) {
			return fmt.Errorf("truetype: generated font: %w", err)
		}
		if err == nil && name != f.fontName {
			return fmt.Errorf("truetype: generated font has name %q, expected %q",
				name, f.fontName)
		}
	}
	return nil
}

// writeFile writes data to a temporary file in the directory of path,
// and then renames the temporary file to path.
func writeFile(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".fontnorm-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	err = os.Chmod(tmp.Name(), 0o644)
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func clampUint16(x int) uint16 {
	if x > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(x)
}
