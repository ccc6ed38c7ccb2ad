package geo

import (
	"errors"
	"math"
	"testing"
)

func europe(t *testing.T) Bounds {
	t.Helper()
	b, err := NewBounds(-15, 45, 35, 70)
	if err != nil {
		t.Fatalf("unexpected bounds error: %v", err)
	}
	return b
}

func TestNewBoundsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name                     string
		west, east, south, north float64
		field                    string
	}{
		{"west after east", 10, 5, 40, 50, "bounds.west"},
		{"west equals east", 5, 5, 40, 50, "bounds.west"},
		{"south after north", 0, 10, 50, 40, "bounds.south"},
		{"west out of range", -181, 10, 40, 50, "bounds.west"},
		{"east out of range", 0, 180.5, 40, 50, "bounds.east"},
		{"north out of range", 0, 10, 40, 91, "bounds.north"},
		{"south NaN", 0, 10, math.NaN(), 50, "bounds.south"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBounds(tc.west, tc.east, tc.south, tc.north)
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if ce.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ce.Field)
			}
		})
	}
}

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("-15, 35, 45, 70")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.West != -15 || b.South != 35 || b.East != 45 || b.North != 70 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	if b.String() != "-15,35,45,70" {
		t.Errorf("expected round-trippable string, got %s", b.String())
	}

	_, err = ParseBounds("1,2,x,4")
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "bounds.east" {
		t.Fatalf("expected bounds.east configuration error, got %v", err)
	}
	if _, err := ParseBounds("1,2,3"); err == nil {
		t.Fatal("expected error for three values")
	}
}

func TestProjectFractionalKnownPoints(t *testing.T) {
	tc, err := ProjectFractional(0, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(tc.X-0.5) > 1e-12 || math.Abs(tc.Y-0.5) > 1e-12 {
		t.Errorf("expected (0.5, 0.5) at zoom 0, got %v", tc)
	}

	tc, err = ProjectFractional(MaxLatitude, 180, 2)
	if err != nil {
		t.Fatalf("unexpected error at the Mercator limit: %v", err)
	}
	if math.Abs(tc.X-4) > 1e-9 || math.Abs(tc.Y) > 1e-9 {
		t.Errorf("expected (4, 0), got %v", tc)
	}
}

func TestProjectFractionalDomainErrors(t *testing.T) {
	for _, lat := range []float64{85.3, -85.3, 90, math.NaN()} {
		_, err := ProjectFractional(lat, 10, 6)
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatalf("lat %v: expected DomainError, got %v", lat, err)
		}
		if de.Field != "lat" {
			t.Errorf("lat %v: expected field lat, got %s", lat, de.Field)
		}
	}

	_, err := ProjectFractional(10, 200, 6)
	var de *DomainError
	if !errors.As(err, &de) || de.Field != "lon" {
		t.Fatalf("expected lon DomainError, got %v", err)
	}
}

func TestProjectRejectsBadZoom(t *testing.T) {
	for _, z := range []int{-1, MaxZoom + 1} {
		_, err := ProjectFractional(10, 10, z)
		var ce *ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "zoom" {
			t.Fatalf("zoom %d: expected zoom ConfigurationError, got %v", z, err)
		}
	}
}

func TestProjectIntegerIsFloor(t *testing.T) {
	frac, err := ProjectFractional(50, 13.4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	whole, err := ProjectInteger(50, 13.4, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if whole.X != 34 || whole.Y != 21 {
		t.Fatalf("expected tile (34, 21), got %v", whole)
	}
	if whole.X != math.Floor(frac.X) || whole.Y != math.Floor(frac.Y) {
		t.Errorf("integer %v is not the floor of %v", whole, frac)
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	points := [][2]float64{{0, 0}, {52.52, 13.405}, {-33.87, 151.21}, {70, -15}, {35, 45}}
	for _, p := range points {
		for _, z := range []int{0, 6, 12} {
			tc, err := ProjectFractional(p[0], p[1], z)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lat, lon := Unproject(tc, z)
			if math.Abs(lat-p[0]) > 1e-9 || math.Abs(lon-p[1]) > 1e-9 {
				t.Errorf("z%d: expected %v, got (%v, %v)", z, p, lat, lon)
			}
		}
	}
}

func TestFractionalSpanAspectIsZoomInvariant(t *testing.T) {
	b := europe(t)
	base, err := FractionalSpan(b, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(base.TilesX()-32.0/3) > 1e-9 {
		t.Errorf("expected 10.667 tiles across, got %v", base.TilesX())
	}
	if math.Abs(base.Aspect()-1.0338) > 1e-3 {
		t.Errorf("expected aspect near 1.0338, got %v", base.Aspect())
	}
	for _, z := range []int{2, 4, 8, 10, 14} {
		s, err := FractionalSpan(b, z)
		if err != nil {
			t.Fatalf("z%d: unexpected error: %v", z, err)
		}
		if math.Abs(s.Aspect()-base.Aspect()) > 1e-12 {
			t.Errorf("z%d: aspect %v differs from %v", z, s.Aspect(), base.Aspect())
		}
	}
}

func TestFractionalSpanNamesOffendingBound(t *testing.T) {
	b, err := NewBounds(0, 10, 40, 86)
	if err != nil {
		t.Fatalf("bounds should be geographically valid: %v", err)
	}
	_, err = FractionalSpan(b, 6)
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if de.Field != "bounds.north" {
		t.Errorf("expected bounds.north, got %s", de.Field)
	}
}

func TestNormalizeCorners(t *testing.T) {
	s, err := FractionalSpan(europe(t), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nx, ny := s.Normalize(TileCoord{X: s.WestX, Y: s.SouthY})
	if nx != 0 || ny != 1 {
		t.Errorf("south-west should normalize to (0,1), got (%v,%v)", nx, ny)
	}
	nx, ny = s.Normalize(TileCoord{X: s.EastX, Y: s.NorthY})
	if nx != 1 || ny != 0 {
		t.Errorf("north-east should normalize to (1,0), got (%v,%v)", nx, ny)
	}
	back := s.Denormalize(0.25, 0.75)
	if rx, ry := s.Normalize(back); math.Abs(rx-0.25) > 1e-12 || math.Abs(ry-0.75) > 1e-12 {
		t.Errorf("denormalize round trip gave (%v,%v)", rx, ry)
	}
}

func TestTileWindowSquareTrap(t *testing.T) {
	b := europe(t)
	w, err := TileWindowFor(b, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.MinX != 29 || w.MaxX != 40 || w.MinY != 14 || w.MaxY != 25 {
		t.Fatalf("unexpected window %+v", w)
	}
	// The raster window is square even though the region is not.
	if w.Cols() != 12 || w.Rows() != 12 || w.Count() != 144 {
		t.Errorf("expected 12x12 tiles, got %dx%d", w.Cols(), w.Rows())
	}
	if got := len(w.Tiles()); got != 144 {
		t.Errorf("expected 144 tiles listed, got %d", got)
	}

	bound := w.Bound()
	if bound.Min[0] > b.West || bound.Max[0] < b.East || bound.Min[1] > b.South || bound.Max[1] < b.North {
		t.Errorf("window bound %v does not cover %v", bound, b)
	}
}

func TestTileWindowClampsEdges(t *testing.T) {
	b, err := NewBounds(170, 180, -MaxLatitude, -80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := TileWindowFor(b, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.MaxX != 7 || w.MaxY != 7 {
		t.Errorf("expected edges clamped to tile 7, got %+v", w)
	}
}

func TestTileWindowFrame(t *testing.T) {
	b := europe(t)
	span, err := FractionalSpan(b, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := TileWindowFor(b, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := w.Frame(span, DefaultTileSize)
	if f.ImageWidth != 12*256 || f.ImageHeight != 12*256 {
		t.Fatalf("unexpected image size %dx%d", f.ImageWidth, f.ImageHeight)
	}
	if f.Left <= 0 || f.Left >= 256 {
		t.Errorf("expected west edge inside the first tile column, got %v", f.Left)
	}
	if math.Abs(f.Height()/f.Width()-span.Aspect()) > 1e-9 {
		t.Errorf("frame aspect %v does not match span aspect %v", f.Height()/f.Width(), span.Aspect())
	}
}
