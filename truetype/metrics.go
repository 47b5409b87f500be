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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"seehuhn.de/go/sfnt/kern"
)

// os2Fields lists the offsets of the int16 fields in the "OS/2" table
// which are given in design units, together with the minimal table
// version which contains the field.
//
// The table is patched in place, since os2.Info.Encode always writes a
// version 4 table and drops fields it does not model.
var os2Fields = []struct {
	Pos     int
	Version uint16
}{
	{2, 0}, // xAvgCharWidth

	// subscript, superscript and strikeout
	{10, 0}, {12, 0}, {14, 0}, {16, 0},
	{18, 0}, {20, 0}, {22, 0}, {24, 0},
	{26, 0}, {28, 0},

	// typographic ascender, descender and line gap
	{68, 0}, {70, 0}, {72, 0},

	// sxHeight and sCapHeight
	{86, 2}, {88, 2},
}

// scaleOS2 returns a copy of the "OS/2" table with all metrics scaled by q.
func scaleOS2(data []byte, q float64) ([]byte, error) {
	if len(data) < 2 {
		return nil, &InvalidFontError{
			SubSystem: "sfnt/OS/2",
			Reason:    "table too short",
		}
	}
	res := clone(data)
	version := getUint16(res, 0)
	for _, field := range os2Fields {
		if version < field.Version || field.Pos+2 > len(res) {
			continue
		}
		err := scaleInt16At(res, field.Pos, q)
		if err != nil {
			return nil, err
		}
	}
	// usWinAscent and usWinDescent are unsigned
	for _, pos := range []int{74, 76} {
		if pos+2 > len(res) {
			continue
		}
		v := math.Round(float64(getUint16(res, pos)) * q)
		if v > math.MaxUint16 {
			return nil, errMetricOverflow("OS/2", pos)
		}
		binary.BigEndian.PutUint16(res[pos:], uint16(v))
	}
	return res, nil
}

// scaleKern returns a "kern" table with all kerning values scaled by q.
// Only horizontal format 0 subtables are kept, see [kern.Read].
func scaleKern(data []byte, q float64) ([]byte, error) {
	info, err := kern.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(info) == 0 {
		return nil, &NotSupportedError{
			SubSystem: "sfnt/kern",
			Feature:   "kern table without format 0 subtables",
		}
	}
	for pair, v := range info {
		info[pair], err = scaleFUnit(v, q)
		if err != nil {
			return nil, err
		}
	}
	return info.Encode(), nil
}

// scaleCvt returns a copy of the control value table with all values
// scaled by q.
func scaleCvt(data []byte, q float64) ([]byte, error) {
	res := clone(data)
	for pos := 0; pos+2 <= len(res); pos += 2 {
		err := scaleInt16At(res, pos, q)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// scaleFUnit scales a value given in design units.
func scaleFUnit[T ~int16](v T, q float64) (T, error) {
	x := math.Round(float64(v) * q)
	if x < math.MinInt16 || x > math.MaxInt16 {
		return 0, fmt.Errorf("truetype: value %d out of range after scaling", v)
	}
	return T(x), nil
}

func scaleInt16At(buf []byte, pos int, q float64) error {
	v, err := scaleFUnit(int16(getUint16(buf, pos)), q)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(buf[pos:], uint16(v))
	return nil
}

func getUint16(buf []byte, pos int) uint16 {
	return binary.BigEndian.Uint16(buf[pos:])
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}

func errMetricOverflow(table string, pos int) error {
	return &InvalidFontError{
		SubSystem: "sfnt/" + table,
		Reason:    fmt.Sprintf("value at offset %d out of range after scaling", pos),
	}
}
