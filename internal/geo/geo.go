// Package geo - чистые геодезические функции для ранжирования заявок по расстоянию.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm - средний радиус Земли, км
const EarthRadiusKm = 6371.0

// Point - точка в десятичных градусах
type Point struct {
	Lat float64
	Lon float64
}

// Valid проверяет диапазоны широты и долготы
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// HaversineKm возвращает расстояние по большому кругу между двумя точками, км
func HaversineKm(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLon := degreesToRadians(b.Lon - a.Lon)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Within сообщает, лежит ли точка p не дальше radiusKm от center (граница включительно)
func Within(center, p Point, radiusKm float64) bool {
	return HaversineKm(center, p) <= radiusKm
}

// RoundKm округляет расстояние до одного знака после запятой для выдачи клиенту
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// SortByDistance стабильно сортирует элементы по возрастанию расстояния
func SortByDistance[T any](items []T, dist func(T) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return dist(items[i]) < dist(items[j])
	})
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
