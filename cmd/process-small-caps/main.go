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
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"seehuhn.de/go/fontnorm"
	"seehuhn.de/go/fontnorm/internal/buildinfo"
	"seehuhn.de/go/fontnorm/internal/profile"
	"seehuhn.de/go/fontnorm/truetype"
)

var (
	verbose    = flag.Bool("v", false, "log processing steps to stderr")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "process-small-caps \u2014 rename a TrueType font for use as a small-caps variant\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("process-small-caps"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  process-small-caps [options] <input_font> <output_font>\n\n")
		fmt.Fprintf(os.Stderr, "The outlines are copied unchanged and %q is appended to the\n",
			fontnorm.SmallCapsSuffix)
		fmt.Fprintf(os.Stderr, "font name.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	err := run(flag.Args())
	if err != nil {
		var usage *fontnorm.UsageError
		if errors.As(err, &usage) {
			flag.Usage()
		} else {
			fmt.Fprintln(os.Stderr, "process-small-caps:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 2 {
		return &fontnorm.UsageError{Usage: "process-small-caps <input_font> <output_font>"}
	}
	inPath, outPath := args[0], args[1]

	if *verbose {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		fontnorm.SetLogger(slog.New(h))
	}

	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}

	err = fontnorm.Process(truetype.Opener, inPath, outPath, fontnorm.SmallCaps)
	if stopErr := stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		summary(outPath)
	}
	return nil
}

// summary describes the output font on stderr.
func summary(path string) {
	f, err := truetype.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return
	}
	defer f.Close()

	fmt.Fprintf(os.Stderr, "%s: %s, %d glyphs, %d units/em\n",
		path, f.FontName(), f.NumGlyphs(), f.UnitsPerEm())
}
