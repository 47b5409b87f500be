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
	"strconv"
)

// UsageError indicates that a command line tool was called with the wrong
// arguments.
type UsageError struct {
	Usage string
}

func (err *UsageError) Error() string {
	return "usage: " + err.Usage
}

// MissingReferenceGlyphError indicates that the glyph used to measure the
// x-height of a font is missing.
type MissingReferenceGlyphError struct {
	Font  string
	Glyph string
}

func (err *MissingReferenceGlyphError) Error() string {
	return "font " + quote(err.Font) + ": missing reference glyph " + strconv.Quote(err.Glyph)
}

// DegenerateGlyphError indicates that the reference glyph has zero height.
type DegenerateGlyphError struct {
	Font  string
	Glyph string
}

func (err *DegenerateGlyphError) Error() string {
	return "font " + quote(err.Font) + ": glyph " + strconv.Quote(err.Glyph) + " has zero height"
}

// MissingSpaceGlyphError indicates that a font has no space glyph.
type MissingSpaceGlyphError struct {
	Font  string
	Glyph string
}

func (err *MissingSpaceGlyphError) Error() string {
	return "font " + quote(err.Font) + ": missing space glyph " + strconv.Quote(err.Glyph)
}

// FontIOError indicates that a font file could not be read or written.
type FontIOError struct {
	Op   string // "open", "save" or "close"
	Path string
	Err  error
}

func (err *FontIOError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return "cannot " + err.Op + " " + strconv.Quote(err.Path) + middle
}

func (err *FontIOError) Unwrap() error {
	return err.Err
}

func quote(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return strconv.Quote(name)
}
