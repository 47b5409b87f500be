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

	"seehuhn.de/go/sfnt/parser"
)

// InvalidFontError indicates a problem with font data.
// The same type is used by the table decoders in seehuhn.de/go/sfnt.
type InvalidFontError = parser.InvalidFontError

// NotSupportedError indicates that a font file seems valid but uses a
// feature which is not supported by this package.
type NotSupportedError = parser.NotSupportedError

// IsUnsupported returns true if err wraps a NotSupportedError.
func IsUnsupported(err error) bool {
	var target *NotSupportedError
	return errors.As(err, &target)
}

// ErrClosed is returned when a font is used after Close has been called.
var ErrClosed = errors.New("truetype: font is closed")
