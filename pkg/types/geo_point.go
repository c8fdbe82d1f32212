package types

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point carries no coordinates.
func (g GeoPoint) IsZero() bool {
	return g.Lat == 0 && g.Lng == 0
}
