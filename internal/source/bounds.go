package source

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// Bounds is the lat/lng box listings of a region must fall within. The zero
// value accepts every coordinate.
type Bounds struct {
	box *geom.Bounds
}

// NewBounds builds Bounds from config. An all-zero box disables the check.
func NewBounds(b config.RegionBounds) Bounds {
	if b == (config.RegionBounds{}) {
		return Bounds{}
	}
	return Bounds{box: geom.NewBounds(geom.XY).Set(b.MinLng, b.MinLat, b.MaxLng, b.MaxLat)}
}

// Contains reports whether c lies inside the box, edges included.
func (b Bounds) Contains(c model.Coordinates) bool {
	if b.box == nil {
		return true
	}
	pt := geom.NewPointFlat(geom.XY, []float64{c.Lng, c.Lat})
	return b.box.OverlapsPoint(geom.XY, pt.Coords())
}

// Admit clears coordinates that fall outside the box. It reports whether
// the record's coordinates were dropped.
func (b Bounds) Admit(r *model.RawRecord) bool {
	if r.Coordinates == nil || b.Contains(*r.Coordinates) {
		return false
	}
	r.Coordinates = nil
	return true
}

// Box returns min/max lat/lng, or ok=false for an unbounded region.
func (b Bounds) Box() (minLat, minLng, maxLat, maxLng float64, ok bool) {
	if b.box == nil {
		return 0, 0, 0, 0, false
	}
	return b.box.Min(1), b.box.Min(0), b.box.Max(1), b.box.Max(0), true
}
