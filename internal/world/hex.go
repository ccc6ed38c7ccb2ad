// Package world turns geographic bounds into a campaign hex grid and places
// point features on it.
//
// Cells are addressed by offset coordinates (col, row) on a flat-top grid with
// odd rows shifted right (odd-r). Axial coordinates are available for true
// hex distances.
package world

import "fmt"

// HexPosition is a cell in the rectangular campaign grid.
// Row 0 is the northern edge, col 0 the western edge.
type HexPosition struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

func (p HexPosition) String() string {
	return fmt.Sprintf("(%d, %d)", p.Col, p.Row)
}

// HexCoord is an axial hex coordinate. The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Axial converts an odd-r offset position to axial coordinates.
func (p HexPosition) Axial() HexCoord {
	return HexCoord{Q: p.Col - (p.Row-(p.Row&1))/2, R: p.Row}
}

// Distance returns the hex distance between two axial coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

// HexDistance is the number of hex steps between two grid cells.
func HexDistance(a, b HexPosition) int {
	return Distance(a.Axial(), b.Axial())
}

// RingRadius is the Chebyshev distance in offset space, i.e. which square
// ring around a lies b on.
func RingRadius(a, b HexPosition) int {
	return max(abs(a.Col-b.Col), abs(a.Row-b.Row))
}

// SquareRing returns the 8k cells at Chebyshev distance k from c, in a fixed
// clockwise order starting due north: along the top edge eastward, down the
// east edge, west along the bottom, then up the west edge back toward north.
// Cells may fall outside any grid; callers filter. k==0 returns [c].
func SquareRing(c HexPosition, k int) []HexPosition {
	if k == 0 {
		return []HexPosition{c}
	}
	res := make([]HexPosition, 0, 8*k)
	top, bottom := c.Row-k, c.Row+k
	left, right := c.Col-k, c.Col+k

	for col := c.Col; col < right; col++ {
		res = append(res, HexPosition{Col: col, Row: top})
	}
	for row := top; row < bottom; row++ {
		res = append(res, HexPosition{Col: right, Row: row})
	}
	for col := right; col > left; col-- {
		res = append(res, HexPosition{Col: col, Row: bottom})
	}
	for row := bottom; row > top; row-- {
		res = append(res, HexPosition{Col: left, Row: row})
	}
	for col := left; col < c.Col; col++ {
		res = append(res, HexPosition{Col: col, Row: top})
	}
	return res
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
