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
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/runenames"
)

// Report lists the characters which are missing from a font.
type Report struct {
	FontName string
	FontPath string

	// Missing lists the missing characters in increasing order.
	Missing []rune
}

// CheckCoverage reports which characters from the text file charPath have
// no glyph in the font at fontPath.  The font is not modified.
//
// Missing characters are not an error: the returned report lists them.
// An error is only returned if one of the files cannot be read.
func CheckCoverage(o Opener, fontPath, charPath string) (*Report, error) {
	chars, err := ReadCharSet(charPath)
	if err != nil {
		return nil, err
	}

	f, err := o.Open(fontPath)
	if err != nil {
		return nil, &FontIOError{Op: "open", Path: fontPath, Err: err}
	}
	defer f.Close()

	res := &Report{
		FontName: f.FontName(),
		FontPath: fontPath,
		Missing:  MissingRunes(f, chars),
	}
	Logger().Debug("coverage checked",
		"font", res.FontName, "chars", len(chars), "missing", len(res.Missing))
	return res, nil
}

// MissingRunes returns the elements of chars which f does not map to a
// glyph, in the order they appear in chars.
func MissingRunes(f Font, chars []rune) []rune {
	var missing []rune
	for _, r := range chars {
		if !f.HasRune(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// ReadCharSet reads a UTF-8 text file and returns the set of characters it
// contains, see [ParseCharSet].  A leading byte order mark is ignored.
// Files which are not valid UTF-8 are rejected.
func ReadCharSet(path string) ([]rune, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	dec := transform.Chain(encoding.UTF8Validator,
		unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(transform.NewReader(fd, dec))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ParseCharSet(string(data)), nil
}

// ParseCharSet returns the set of characters in text, in increasing order.
// Leading and trailing white space is removed first; white space inside
// the text is kept.
func ParseCharSet(text string) []rune {
	text = strings.TrimSpace(text)

	seen := make(map[rune]bool)
	var res []rune
	for _, r := range text {
		if seen[r] {
			continue
		}
		seen[r] = true
		res = append(res, r)
	}
	slices.Sort(res)
	return res
}

// String returns the one-line summary of the report.
func (r *Report) String() string {
	if len(r.Missing) == 0 {
		return fmt.Sprintf("All characters are present in font %s (%s).",
			r.FontName, r.FontPath)
	}

	parts := make([]string, len(r.Missing))
	for i, c := range r.Missing {
		parts[i] = strconv.QuoteRune(c)
	}
	return fmt.Sprintf("Missing characters for font %s (%s): [%s]",
		r.FontName, r.FontPath, strings.Join(parts, ", "))
}

// Describe writes one line for every missing character, giving the code
// point and the Unicode character name.
func (r *Report) Describe(w io.Writer) error {
	for _, c := range r.Missing {
		name := runenames.Name(c)
		if name == "" {
			name = "<unnamed>"
		}
		_, err := fmt.Fprintf(w, "U+%04X %s\n", c, name)
		if err != nil {
			return err
		}
	}
	return nil
}
