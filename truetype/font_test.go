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
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/fontnorm"
)

func TestReadGoRegular(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.UnitsPerEm() != 2048 {
		t.Errorf("unitsPerEm: got %d, want 2048", f.UnitsPerEm())
	}
	if f.FontName() == "" {
		t.Error("missing font name")
	}
	for _, name := range []string{".notdef", "space", "o", "A"} {
		if _, ok := f.GlyphByName(name); !ok {
			t.Errorf("glyph %q not found", name)
		}
	}
	if !f.HasRune('A') || !f.HasRune('o') {
		t.Error("missing Latin letters")
	}
	if f.HasRune(0x4E00) {
		t.Error("unexpected CJK glyph")
	}

	o, _ := f.GlyphByName("o")
	if !f.IsRenderable(o) {
		t.Error("glyph o is not renderable")
	}
	space, _ := f.GlyphByName("space")
	if f.IsRenderable(space) {
		t.Error("space glyph is renderable")
	}
}

func TestNamesUnique(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, g := range f.Glyphs() {
		name := g.Name()
		if name == "" {
			t.Error("empty glyph name")
		}
		if seen[name] {
			t.Errorf("duplicate glyph name %q", name)
		}
		seen[name] = true
	}
}

func TestNamesFromCmap(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	// without a "post" table, names are derived from the character map
	f.post = nil
	f.assignNames()

	for r, want := range map[rune]string{'a': "a", 'é': "eacute", '1': "one"} {
		gid := f.cmap.Lookup(r)
		if got := f.glyphs[gid].Name(); got != want {
			t.Errorf("%q: got %q, want %q", r, got, want)
		}
	}
	if got := f.glyphs[0].Name(); got != ".notdef" {
		t.Errorf("glyph 0: got %q", got)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	f1, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	data, err := f1.Encode()
	if err != nil {
		t.Fatal(err)
	}
	f2, err := Read(data)
	if err != nil {
		t.Fatal(err)
	}

	if f1.NumGlyphs() != f2.NumGlyphs() {
		t.Fatalf("got %d glyphs, want %d", f2.NumGlyphs(), f1.NumGlyphs())
	}
	if f1.FontName() != f2.FontName() {
		t.Errorf("font name: got %q, want %q", f2.FontName(), f1.FontName())
	}
	for i := 0; i < f1.NumGlyphs(); i++ {
		g1 := f1.glyphs[i]
		g2 := f2.glyphs[i]
		if g1.name != g2.name || g1.width != g2.width {
			t.Errorf("glyph %d: got %q/%g, want %q/%g",
				i, g2.name, g2.width, g1.name, g1.width)
		}
		if d := cmp.Diff(g1.contours, g2.contours, cmpopts.EquateEmpty()); d != "" {
			t.Errorf("glyph %d: contours differ (-want +got):\n%s", i, d)
		}
		if d := cmp.Diff(g1.components, g2.components); d != "" {
			t.Errorf("glyph %d: components differ (-want +got):\n%s", i, d)
		}
		if d := cmp.Diff(g1.instructions, g2.instructions); d != "" {
			t.Errorf("glyph %d: instructions differ (-want +got):\n%s", i, d)
		}
	}
}

func TestSetUnitsPerEm(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := f.GlyphByName("o")
	o := g.(*Glyph)
	box1 := o.BoundingBox()
	width1 := o.width

	err = f.SetUnitsPerEm(1000)
	if err != nil {
		t.Fatal(err)
	}
	if f.UnitsPerEm() != 1000 {
		t.Errorf("unitsPerEm: got %d, want 1000", f.UnitsPerEm())
	}

	q := 1000.0 / 2048.0
	box2 := o.BoundingBox()
	for _, pair := range [][2]float64{
		{box1.LLx, box2.LLx}, {box1.LLy, box2.LLy},
		{box1.URx, box2.URx}, {box1.URy, box2.URy},
		{width1, o.width},
	} {
		if math.Abs(pair[0]*q-pair[1]) > 1e-9 {
			t.Errorf("%g scaled to %g, expected %g", pair[0], pair[1], pair[0]*q)
		}
	}

	err = f.SetUnitsPerEm(8)
	if !IsUnsupported(err) {
		t.Errorf("invalid unitsPerEm: got %v", err)
	}
}

func TestSetGlyphWidth(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	err = f.SetGlyphWidth("space", 777)
	if err != nil {
		t.Fatal(err)
	}
	data, err := f.Encode()
	if err != nil {
		t.Fatal(err)
	}
	f2, err := Read(data)
	if err != nil {
		t.Fatal(err)
	}
	space, _ := f2.GlyphByName("space")
	if w := space.Width(); w != 777 {
		t.Errorf("space width: got %d, want 777", w)
	}

	err = f.SetGlyphWidth("no-such-glyph", 1)
	if err == nil {
		t.Error("missing glyph not detected")
	}
}

func TestClosed(t *testing.T) {
	f, err := Read(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	err = f.Close()
	if err != nil {
		t.Fatal(err)
	}
	err = f.Save(filepath.Join(t.TempDir(), "out.ttf"))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Save after Close: got %v", err)
	}
	err = f.Close()
	if err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestReadInvalid(t *testing.T) {
	_, err := Read([]byte("this is not a font file"))
	if err == nil {
		t.Error("invalid data not detected")
	}
}

func TestNormalizeGoRegular(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.ttf")
	outPath := filepath.Join(dir, "out.ttf")
	err := os.WriteFile(inPath, goregular.TTF, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	orig, err := Open(inPath)
	if err != nil {
		t.Fatal(err)
	}
	origName := orig.FontName()
	origGlyphs := orig.NumGlyphs()
	orig.Close()

	err = fontnorm.Process(Opener, inPath, outPath, fontnorm.Normalize)
	if err != nil {
		t.Fatal(err)
	}

	f, err := Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if f.UnitsPerEm() != fontnorm.EmSize {
		t.Errorf("unitsPerEm: got %d, want %d", f.UnitsPerEm(), fontnorm.EmSize)
	}
	if want := origName + fontnorm.NormalizedSuffix; f.FontName() != want {
		t.Errorf("font name: got %q, want %q", f.FontName(), want)
	}
	if f.NumGlyphs() != origGlyphs {
		t.Errorf("got %d glyphs, want %d", f.NumGlyphs(), origGlyphs)
	}

	space, ok := f.GlyphByName("space")
	if !ok {
		t.Fatal("space glyph missing")
	}
	if w := space.Width(); w != 350 {
		t.Errorf("space width: got %d, want 350", w)
	}

	o, ok := f.GlyphByName("o")
	if !ok {
		t.Fatal("glyph o missing")
	}
	box := o.BoundingBox()
	if h := box.URy - box.LLy; math.Abs(h-470) > 1 {
		t.Errorf("x-height: got %g, want 470±1", h)
	}

	for _, g := range f.glyphs {
		if len(g.instructions) > 0 {
			t.Errorf("glyph %q has instructions", g.name)
		}
	}
	for _, name := range []string{"fpgm", "prep", "cvt ", "DSIG"} {
		if _, ok := f.tables[name]; ok {
			t.Errorf("table %q was not removed", name)
		}
	}
}

func TestSmallCapsGoRegular(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.ttf")
	outPath := filepath.Join(dir, "out.ttf")
	err := os.WriteFile(inPath, goregular.TTF, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	err = fontnorm.Process(Opener, inPath, outPath, fontnorm.SmallCaps)
	if err != nil {
		t.Fatal(err)
	}

	in, err := Open(inPath)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	out, err := Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if want := in.FontName() + fontnorm.SmallCapsSuffix; out.FontName() != want {
		t.Errorf("font name: got %q, want %q", out.FontName(), want)
	}
	if out.UnitsPerEm() != in.UnitsPerEm() {
		t.Errorf("unitsPerEm changed from %d to %d", in.UnitsPerEm(), out.UnitsPerEm())
	}
	for i, g := range in.glyphs {
		if d := cmp.Diff(g.contours, out.glyphs[i].contours, cmpopts.EquateEmpty()); d != "" {
			t.Errorf("glyph %q changed (-in +out):\n%s", g.name, d)
			break
		}
	}
}

func TestCoverageGoRegular(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "font.ttf")
	charPath := filepath.Join(dir, "chars.txt")
	err := os.WriteFile(fontPath, goregular.TTF, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(charPath, []byte("  Hello, World! 一\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	report, err := fontnorm.CheckCoverage(Opener, fontPath, charPath)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]rune{0x4E00}, report.Missing); d != "" {
		t.Errorf("missing characters differ (-want +got):\n%s", d)
	}
}
