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

// Package fontnorm prepares font files for use in a canvas or PDF text layer.
//
// The package provides two independent batch operations:
//
//   - The normalizer, [Normalize], brings a font into a canonical form:
//     the em size is set to 1000 units, TrueType hints are removed, all
//     glyphs are scaled uniformly so that the lower-case "o" is 0.47em
//     high, the space glyph is widened to 0.35em, points are added at
//     curve extrema, and the suffix "-rw" is appended to the font name.
//   - The coverage checker, [CheckCoverage], reports which characters of a
//     text file have no glyph in a font.
//
// Both operations only use the [Font] and [Glyph] interfaces.  The package
// seehuhn.de/go/fontnorm/truetype implements these interfaces for
// TrueType font files.
//
// A font is normalized as follows:
//
//	err := fontnorm.Process(truetype.Opener, "in.ttf", "out.ttf", fontnorm.Normalize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// [Process] closes the font on every exit path and does not write an output
// file if any stage of the pipeline fails.
package fontnorm
