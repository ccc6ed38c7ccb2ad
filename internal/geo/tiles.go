package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// DefaultTileSize is the pixel edge of a standard slippy-map tile.
const DefaultTileSize = 256

// TileWindow is the rectangle of whole raster tiles covering a bounds
// rectangle, as a tile fetcher needs it. Min/Max are inclusive.
type TileWindow struct {
	Zoom int `json:"zoom"`
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// TileWindowFor returns the integer tile window for b. Corners sitting
// exactly on the antimeridian or the Mercator limit are pulled back into the
// last valid tile.
func TileWindowFor(b Bounds, zoom int) (TileWindow, error) {
	sw, err := ProjectInteger(b.South, b.West, zoom)
	if err != nil {
		return TileWindow{}, cornerErr(err, "bounds.south", "bounds.west")
	}
	ne, err := ProjectInteger(b.North, b.East, zoom)
	if err != nil {
		return TileWindow{}, cornerErr(err, "bounds.north", "bounds.east")
	}

	last := int(TilesPerAxis(zoom)) - 1
	return TileWindow{
		Zoom: zoom,
		MinX: clampTile(int(sw.X), last),
		MaxX: clampTile(int(ne.X), last),
		MinY: clampTile(int(ne.Y), last),
		MaxY: clampTile(int(sw.Y), last),
	}, nil
}

func clampTile(v, last int) int {
	if v < 0 {
		return 0
	}
	if v > last {
		return last
	}
	return v
}

// Cols is the number of tile columns to fetch.
func (w TileWindow) Cols() int { return w.MaxX - w.MinX + 1 }

// Rows is the number of tile rows to fetch.
func (w TileWindow) Rows() int { return w.MaxY - w.MinY + 1 }

// Count is the total number of tiles in the window.
func (w TileWindow) Count() int { return w.Cols() * w.Rows() }

// Tiles lists the window's tiles row by row, north to south.
func (w TileWindow) Tiles() []maptile.Tile {
	z := maptile.Zoom(w.Zoom)
	tiles := make([]maptile.Tile, 0, w.Count())
	for y := w.MinY; y <= w.MaxY; y++ {
		for x := w.MinX; x <= w.MaxX; x++ {
			tiles = append(tiles, maptile.New(uint32(x), uint32(y), z))
		}
	}
	return tiles
}

// Bound returns the geographic extent of the whole window. It always
// contains the bounds the window was built from.
func (w TileWindow) Bound() orb.Bound {
	z := maptile.Zoom(w.Zoom)
	nw := maptile.New(uint32(w.MinX), uint32(w.MinY), z).Bound()
	se := maptile.New(uint32(w.MaxX), uint32(w.MaxY), z).Bound()
	return nw.Union(se)
}

// TruncatedSpan expresses the window's floor corners as a TileSpan. It exists
// so the offset between truncated and fractional normalization can be
// measured; placement never normalizes against it.
func (w TileWindow) TruncatedSpan() TileSpan {
	return TileSpan{
		Zoom:   w.Zoom,
		WestX:  float64(w.MinX),
		EastX:  float64(w.MaxX),
		NorthY: float64(w.MinY),
		SouthY: float64(w.MaxY),
	}
}

// PixelFrame locates a fractional span inside the stitched raster image.
type PixelFrame struct {
	Left, Top, Right, Bottom float64
	ImageWidth, ImageHeight  int
}

// Frame returns where span falls inside the image stitched from this window,
// so a terrain painter can sample exactly the region the hex grid covers.
func (w TileWindow) Frame(span TileSpan, tileSize int) PixelFrame {
	ts := float64(tileSize)
	return PixelFrame{
		Left:        (span.WestX - float64(w.MinX)) * ts,
		Top:         (span.NorthY - float64(w.MinY)) * ts,
		Right:       (span.EastX - float64(w.MinX)) * ts,
		Bottom:      (span.SouthY - float64(w.MinY)) * ts,
		ImageWidth:  w.Cols() * tileSize,
		ImageHeight: w.Rows() * tileSize,
	}
}

// Width is the pixel width of the framed region.
func (f PixelFrame) Width() float64 { return f.Right - f.Left }

// Height is the pixel height of the framed region.
func (f PixelFrame) Height() float64 { return f.Bottom - f.Top }
