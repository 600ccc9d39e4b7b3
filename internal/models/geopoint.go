package models

// GeoPoint хранит координаты в порядке GeoJSON: [долгота, широта]
type GeoPoint [2]float64

// NewGeoPoint строит точку из пары широта/долгота
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{lon, lat}
}

func (p GeoPoint) Lon() float64 { return p[0] }
func (p GeoPoint) Lat() float64 { return p[1] }
