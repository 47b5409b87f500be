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

package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"seehuhn.de/go/fontnorm"
)

func writeInputs(t *testing.T) (fontPath, charPath string) {
	t.Helper()
	dir := t.TempDir()
	fontPath = filepath.Join(dir, "goregular.ttf")
	charPath = filepath.Join(dir, "chars.txt")
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(charPath, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	return fontPath, charPath
}

func TestRunUsage(t *testing.T) {
	err := run([]string{"only-one"})
	var usage *fontnorm.UsageError
	if !errors.As(err, &usage) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRun(t *testing.T) {
	fontPath, charPath := writeInputs(t)
	err := run([]string{fontPath, charPath})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunProfileError(t *testing.T) {
	fontPath, charPath := writeInputs(t)

	saved := *memprofile
	defer func() { *memprofile = saved }()
	*memprofile = filepath.Join(t.TempDir(), "missing", "mem.prof")

	err := run([]string{fontPath, charPath})
	if err == nil || !strings.Contains(err.Error(), "memory profile") {
		t.Errorf("unexpected error %v", err)
	}
}
