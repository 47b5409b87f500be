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

package fontnorm_test

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding"

	"seehuhn.de/go/fontnorm"
	"seehuhn.de/go/fontnorm/internal/mock"
)

func TestParseCharSet(t *testing.T) {
	cases := []struct {
		in   string
		want []rune
	}{
		{"", nil},
		{" \n\t", nil},
		{"abc", []rune{'a', 'b', 'c'}},
		{"  aAb a\n", []rune{' ', 'A', 'a', 'b'}},
		{"ééé", []rune{'é'}},
		{"z\ny", []rune{'\n', 'y', 'z'}},
	}
	for _, test := range cases {
		got := fontnorm.ParseCharSet(test.in)
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%q: (-want +got):\n%s", test.in, d)
		}
	}
}

func writeChars(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chars.txt")
	err := os.WriteFile(path, []byte(data), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCharSetBOM(t *testing.T) {
	path := writeChars(t, "\ufeffba")
	got, err := fontnorm.ReadCharSet(path)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]rune{'a', 'b'}, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestReadCharSetInvalid(t *testing.T) {
	for _, body := range []string{"a\xffb", "\ufeffa\xc3", "\xed\xa0\x80"} {
		path := writeChars(t, body)
		_, err := fontnorm.ReadCharSet(path)
		if !errors.Is(err, encoding.ErrInvalidUTF8) {
			t.Errorf("%q: unexpected error %v", body, err)
		}
	}
}

func TestReadCharSetMissing(t *testing.T) {
	_, err := fontnorm.ReadCharSet(filepath.Join(t.TempDir(), "none.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}
}

func coverageFont() *mock.Font {
	f := mock.NewFont("Test", 1000, mock.Blank("space", 250))
	for _, r := range " abcdefghijklmnopqrstuvwxyz" {
		f.Runes[r] = true
	}
	return f
}

func TestCheckCoverage(t *testing.T) {
	f := coverageFont()
	opener := mock.Opener{"font.ttf": f}
	path := writeChars(t, "aA é a\n")

	report, err := fontnorm.CheckCoverage(opener, "font.ttf", path)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]rune{'A', 'é'}, report.Missing); d != "" {
		t.Errorf("missing characters (-want +got):\n%s", d)
	}

	want := "Missing characters for font Test (font.ttf): ['A', 'é']"
	if got := report.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf := &bytes.Buffer{}
	err = report.Describe(buf)
	if err != nil {
		t.Fatal(err)
	}
	wantLines := "U+0041 LATIN CAPITAL LETTER A\nU+00E9 LATIN SMALL LETTER E WITH ACUTE\n"
	if d := cmp.Diff(wantLines, buf.String()); d != "" {
		t.Errorf("description (-want +got):\n%s", d)
	}

	if !f.Closed {
		t.Error("font not closed")
	}
	if len(f.SavedPaths) > 0 || f.Name != "Test" {
		t.Error("font was modified")
	}
}

func TestCheckCoverageComplete(t *testing.T) {
	opener := mock.Opener{"font.ttf": coverageFont()}
	for _, text := range []string{"", "\n\n", "hello world"} {
		report, err := fontnorm.CheckCoverage(opener, "font.ttf", writeChars(t, text))
		if err != nil {
			t.Fatal(err)
		}
		want := "All characters are present in font Test (font.ttf)."
		if got := report.String(); got != want {
			t.Errorf("%q: got %q, want %q", text, got, want)
		}
	}
}

func TestCheckCoverageErrors(t *testing.T) {
	f := coverageFont()
	opener := mock.Opener{"font.ttf": f}

	_, err := fontnorm.CheckCoverage(opener, "font.ttf", filepath.Join(t.TempDir(), "none"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}
	if len(f.Events) > 0 {
		t.Error("font opened although the character file is missing")
	}

	_, err = fontnorm.CheckCoverage(opener, "other.ttf", writeChars(t, "a"))
	var ioErr *fontnorm.FontIOError
	if !errors.As(err, &ioErr) || ioErr.Op != "open" || ioErr.Path != "other.ttf" {
		t.Errorf("unexpected error %v", err)
	}
}
