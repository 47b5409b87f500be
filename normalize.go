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
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/postscript/funit"
)

// Parameters of the normalized form of a font.
const (
	// EmSize is the em size of a normalized font.  PDF font metrics are
	// given in thousandths of an em.
	EmSize = 1000

	// XHeightRatio is the height of the reference glyph, as a fraction of
	// the em size.
	XHeightRatio = 0.47

	// SpaceWidthRatio is the advance width of the space glyph, as a
	// fraction of the em size.
	SpaceWidthRatio = 0.35

	// ReferenceGlyph is the name of the glyph used to measure the x-height.
	// The outline of "o" is used instead of the x-height field of the
	// font, since many fonts leave that field unset.
	ReferenceGlyph = "o"

	// SpaceGlyph is the name of the space glyph.
	SpaceGlyph = "space"

	// NormalizedSuffix is appended to the name of normalized fonts.
	NormalizedSuffix = "-rw"

	// SmallCapsSuffix is appended to the name of small-caps variants.
	SmallCapsSuffix = "-small-caps"
)

// A Stage is one step of a font processing pipeline.
type Stage struct {
	Name string
	Run  func(f Font) error
}

// A Pipeline is a sequence of stages, applied in order.
type Pipeline []Stage

// Apply runs all stages of the pipeline on f.
// Processing stops at the first stage which returns an error.
func (p Pipeline) Apply(f Font) error {
	log := Logger()
	for _, stage := range p {
		log.Debug("running stage", "stage", stage.Name, "font", f.FontName())
		err := stage.Run(f)
		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name, err)
		}
	}
	return nil
}

// The pipeline stages.
//
// The order in [Normalize] matters: size-relative measurements need the
// final em size, hints must be gone before outlines are transformed, and
// extrema must be added after all other geometric changes, since scaling
// and rounding can create extrema without points.
var (
	RescaleUnits     = Stage{Name: "rescale units", Run: rescaleUnits}
	StripHints       = Stage{Name: "strip hints", Run: stripHints}
	ScaleXHeight     = Stage{Name: "scale x-height", Run: scaleXHeight}
	AdjustSpaceWidth = Stage{Name: "adjust space width", Run: adjustSpaceWidth}
	InsertExtrema    = Stage{Name: "insert extrema", Run: insertExtrema}
)

// TagName returns a stage which appends suffix to the font name.
func TagName(suffix string) Stage {
	return Stage{
		Name: "tag name",
		Run: func(f Font) error {
			f.SetFontName(f.FontName() + suffix)
			return nil
		},
	}
}

// Normalize converts a font into the normalized form.
var Normalize = Pipeline{
	RescaleUnits,
	StripHints,
	ScaleXHeight,
	AdjustSpaceWidth,
	InsertExtrema,
	TagName(NormalizedSuffix),
}

// SmallCaps renames a font for use as a small-caps variant.
// The outlines are not changed.
var SmallCaps = Pipeline{
	TagName(SmallCapsSuffix),
}

// Process opens the font file inPath, applies the pipeline and saves the
// result to outPath.  The font is closed on all exit paths.  If any stage
// fails, no output is written.
func Process(o Opener, inPath, outPath string, p Pipeline) (err error) {
	f, err := o.Open(inPath)
	if err != nil {
		return &FontIOError{Op: "open", Path: inPath, Err: err}
	}
	defer func() {
		cerr := f.Close()
		if err == nil && cerr != nil {
			err = &FontIOError{Op: "close", Path: inPath, Err: cerr}
		}
	}()

	err = p.Apply(f)
	if err != nil {
		return err
	}

	err = f.Save(outPath)
	if err != nil {
		return &FontIOError{Op: "save", Path: outPath, Err: err}
	}
	return nil
}

func rescaleUnits(f Font) error {
	return f.SetUnitsPerEm(EmSize)
}

func stripHints(f Font) error {
	for _, g := range f.Glyphs() {
		g.SetManualHints(false)
		g.SetInstructions(nil)
	}
	return nil
}

// XHeightScale returns the factor which scales the reference glyph of f to
// the normalized x-height.  The target height is computed from the current
// em size of f.
func XHeightScale(f Font) (float64, error) {
	o, ok := f.GlyphByName(ReferenceGlyph)
	if !ok {
		return 0, &MissingReferenceGlyphError{Font: f.FontName(), Glyph: ReferenceGlyph}
	}
	box := o.BoundingBox()
	height := box.URy - box.LLy
	if !(height > 0) {
		return 0, &DegenerateGlyphError{Font: f.FontName(), Glyph: ReferenceGlyph}
	}

	target := float64(f.UnitsPerEm()) * XHeightRatio
	return target / height, nil
}

func scaleXHeight(f Font) error {
	q, err := XHeightScale(f)
	if err != nil {
		return err
	}
	Logger().Debug("x-height scale", "font", f.FontName(), "factor", q)

	M := matrix.Scale(q, q)
	for _, g := range f.Glyphs() {
		g.Transform(M)
		g.Round()
	}
	return nil
}

func adjustSpaceWidth(f Font) error {
	space, ok := f.GlyphByName(SpaceGlyph)
	if !ok {
		return &MissingSpaceGlyphError{Font: f.FontName(), Glyph: SpaceGlyph}
	}

	width := funit.Int16(math.Round(float64(f.UnitsPerEm()) * SpaceWidthRatio))
	err := f.SetGlyphWidth(SpaceGlyph, width)
	if err != nil {
		return err
	}
	space.Round()
	return nil
}

func insertExtrema(f Font) error {
	for _, g := range f.Glyphs() {
		if g.Name() == SpaceGlyph || !f.IsRenderable(g) {
			continue
		}
		g.AddExtrema()
	}
	return nil
}
