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
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"
)

// A segment is a part of a contour between two on-curve points.
// Straight segments have Curved set to false and ignore P1.
type segment struct {
	P0, P1, P2 vec.Vec2
	Curved     bool

	// StartImplied and EndImplied are set when P0 or P2 is not stored
	// in the contour, but is the midpoint of two off-curve points.
	StartImplied, EndImplied bool
}

// At returns the point on the segment at parameter t.
func (s segment) At(t float64) vec.Vec2 {
	if !s.Curved {
		return lerp(s.P0, s.P2, t)
	}
	a := (1 - t) * (1 - t)
	b := 2 * t * (1 - t)
	c := t * t
	return s.P0.Mul(a).Add(s.P1.Mul(b)).Add(s.P2.Mul(c))
}

// extrema returns the parameter values in the open interval (0, 1) where
// the curve has a horizontal or vertical tangent, in increasing order.
func (s segment) extrema() []float64 {
	if !s.Curved {
		return nil
	}
	var res []float64
	for _, t := range []float64{
		extremum(s.P0.X, s.P1.X, s.P2.X),
		extremum(s.P0.Y, s.P1.Y, s.P2.Y),
	} {
		if t > 0 && t < 1 {
			res = append(res, t)
		}
	}
	sort.Float64s(res)
	if len(res) == 2 && res[1]-res[0] < 1e-9 {
		res = res[:1]
	}
	return res
}

// extremum returns the parameter where the derivative of the quadratic
// Bézier polynomial with coefficients a, b, c vanishes, or NaN.
func extremum(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return math.NaN()
	}
	return (a - b) / den
}

// split divides the curve at parameter t, using de Casteljau's algorithm.
func (s segment) split(t float64) (segment, segment) {
	q0 := lerp(s.P0, s.P1, t)
	q1 := lerp(s.P1, s.P2, t)
	m := lerp(q0, q1, t)
	left := segment{P0: s.P0, P1: q0, P2: m, Curved: true}
	right := segment{P0: m, P1: q1, P2: s.P2, Curved: true}
	return left, right
}

func lerp(a, b vec.Vec2, t float64) vec.Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

func round(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// normalize rotates the contour so that it starts with an on-curve point.
// If the contour has no on-curve points, the implied point between the
// last and the first point is made explicit.
func normalize(c Contour) Contour {
	for i, p := range c {
		if p.OnCurve {
			res := make(Contour, 0, len(c))
			res = append(res, c[i:]...)
			res = append(res, c[:i]...)
			return res
		}
	}
	if len(c) == 0 {
		return nil
	}
	start := Point{Vec2: vec.Middle(c[len(c)-1].Vec2, c[0].Vec2), OnCurve: true}
	res := make(Contour, 0, len(c)+1)
	res = append(res, start)
	res = append(res, c...)
	return res
}

// segments splits a contour into straight lines and quadratic curves.
func segments(c Contour) []segment {
	c = normalize(c)
	n := len(c)
	if n < 2 {
		return nil
	}

	var res []segment
	cur := c[0].Vec2
	curImplied := false
	var ctrl vec.Vec2
	pending := false
	for k := 1; k <= n; k++ {
		p := c[k%n]
		if p.OnCurve {
			if pending {
				res = append(res, segment{
					P0: cur, P1: ctrl, P2: p.Vec2, Curved: true,
					StartImplied: curImplied,
				})
			} else if cur != p.Vec2 {
				res = append(res, segment{
					P0: cur, P2: p.Vec2,
					StartImplied: curImplied,
				})
			}
			cur = p.Vec2
			curImplied = false
			pending = false
			continue
		}

		if pending {
			mid := vec.Middle(ctrl, p.Vec2)
			res = append(res, segment{
				P0: cur, P1: ctrl, P2: mid, Curved: true,
				StartImplied: curImplied, EndImplied: true,
			})
			cur = mid
			curImplied = true
		}
		ctrl = p.Vec2
		pending = true
	}
	return res
}

// AddExtrema inserts on-curve points at the horizontal and vertical extrema
// of all curves in the glyph outline.  New coordinates are rounded to
// integers.  Composite glyphs are not changed.
//
// Since the point numbering changes, the instructions of the glyph are
// removed if any points are added.
func (g *Glyph) AddExtrema() {
	changed := false
	for i, c := range g.contours {
		res, ok := addExtrema(c)
		if ok {
			g.contours[i] = res
			changed = true
		}
	}
	if changed {
		g.instructions = nil
		if g.font != nil {
			g.font.geometryChanged = true
		}
	}
}

// addExtrema returns a copy of c with extra on-curve points at the extrema
// of all curves.  The second return value indicates whether points were
// added.
func addExtrema(c Contour) (Contour, bool) {
	segs := segments(c)

	needsWork := false
	for _, s := range segs {
		if len(s.significantSplits()) > 0 {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return c, false
	}

	start := normalize(c)[0]
	if !isIntegral(start.Vec2) {
		start.Vec2 = round(start.Vec2)
	}
	res := Contour{start}
	lastOn := true
	for k, s := range segs {
		closing := k == len(segs)-1

		if !s.Curved {
			if !closing {
				res = append(res, Point{Vec2: s.P2, OnCurve: true})
				lastOn = true
			}
			continue
		}

		ts := s.significantSplits()
		if len(ts) == 0 {
			res = append(res, Point{Vec2: s.P1})
			lastOn = false
			if !s.EndImplied && !closing {
				res = append(res, Point{Vec2: s.P2, OnCurve: true})
				lastOn = true
			}
			continue
		}

		if s.StartImplied && !lastOn {
			res = append(res, Point{Vec2: round(s.P0), OnCurve: true})
		}
		rest := s
		prev := 0.0
		for _, t := range ts {
			left, right := rest.split((t - prev) / (1 - prev))
			res = append(res,
				Point{Vec2: round(left.P1)},
				Point{Vec2: round(left.P2), OnCurve: true})
			rest = right
			prev = t
		}
		res = append(res, Point{Vec2: round(rest.P1)})
		lastOn = false
		if !closing {
			P2 := s.P2
			if s.EndImplied {
				P2 = round(P2)
			}
			res = append(res, Point{Vec2: P2, OnCurve: true})
			lastOn = true
		}
	}
	return res, true
}

// significantSplits returns the parameters of the extrema of the segment,
// leaving out extrema which round to one of the end points.
func (s segment) significantSplits() []float64 {
	var res []float64
	P0 := round(s.P0)
	P2 := round(s.P2)
	for _, t := range s.extrema() {
		p := round(s.At(t))
		if p == P0 || p == P2 {
			continue
		}
		res = append(res, t)
	}
	return res
}

func isIntegral(p vec.Vec2) bool {
	return p.X == math.Round(p.X) && p.Y == math.Round(p.Y)
}
