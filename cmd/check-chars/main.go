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

	"seehuhn.de/go/fontnorm"
	"seehuhn.de/go/fontnorm/internal/buildinfo"
	"seehuhn.de/go/fontnorm/internal/profile"
	"seehuhn.de/go/fontnorm/truetype"
)

var (
	verbose    = flag.Bool("v", false, "log debug information to stderr")
	names      = flag.Bool("names", false, "list the Unicode names of missing characters")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "check-chars \u2014 check whether a font contains a set of characters\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("check-chars"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  check-chars [options] <font_file> <char_file>\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  font_file  a TrueType font\n")
		fmt.Fprintf(os.Stderr, "  char_file  a UTF-8 text file listing the required characters\n\n")
		fmt.Fprintf(os.Stderr, "Missing characters are reported, but do not cause a non-zero\n")
		fmt.Fprintf(os.Stderr, "exit status.\n\n")
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
			fmt.Fprintln(os.Stderr, "check-chars:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 2 {
		return &fontnorm.UsageError{Usage: "check-chars <font_file> <char_file>"}
	}
	fontPath, charPath := args[0], args[1]

	if *verbose {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		fontnorm.SetLogger(slog.New(h))
	}

	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}

	report, err := fontnorm.CheckCoverage(truetype.Opener, fontPath, charPath)
	if stopErr := stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		return err
	}

	fmt.Println(report)
	if *names {
		return report.Describe(os.Stdout)
	}
	return nil
}
