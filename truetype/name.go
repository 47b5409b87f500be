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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"seehuhn.de/go/sfnt/name"
)

// windowsEncodingID is the encoding used for Windows name records.  It
// must agree with the Windows subtables in the "cmap" table, which always
// use Unicode BMP (1) for the fonts handled by this package.
const windowsEncodingID = 1

// postScriptName returns the PostScript name stored in a "name" table.
// Windows records are preferred over Macintosh records, and US English
// over other languages.
func postScriptName(info *name.Info) string {
	for _, tables := range []name.Tables{info.Windows, info.Mac} {
		if t, _ := tables.Choose(language.AmericanEnglish); t != nil && t.PostScriptName != "" {
			return t.PostScriptName
		}
		keys := maps.Keys(tables)
		slices.Sort(keys)
		for _, key := range keys {
			if val := tables[key].PostScriptName; val != "" {
				return val
			}
		}
	}
	return ""
}

// setPostScriptName replaces the PostScript name in all languages of the
// "name" table.  If the table has no entries at all, US English entries
// are added for the Macintosh and Windows platforms.
func setPostScriptName(info *name.Info, psName string) {
	if len(info.Mac) == 0 && len(info.Windows) == 0 {
		info.Mac = name.Tables{"en": &name.Table{}}
		info.Windows = name.Tables{"en-US": &name.Table{}}
	}
	for _, tables := range []name.Tables{info.Mac, info.Windows} {
		for _, t := range tables {
			t.PostScriptName = psName
		}
	}
}
