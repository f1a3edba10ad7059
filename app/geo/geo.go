package geo

import "math"

const earthRadiusMeters = 6371000

// BoundingBox is a rectangular geographic extent.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Distance returns the haversine distance in meters between two
// coordinates, assuming a spherical earth.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// BoxAround returns a bounding box extending delta degrees in each
// direction from the given center.
func BoxAround(lat, lng, delta float64) BoundingBox {
	return BoundingBox{
		West:  lng - delta,
		South: lat - delta,
		East:  lng + delta,
		North: lat + delta,
	}
}
