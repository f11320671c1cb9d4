// Package market summarises competing clinics around a location.
package market

import (
	"errors"
	"math"
	"sort"

	"dentalboard-backend/internal/models"
)

const (
	DefaultRadiusKM = 2.0
	MaxRadiusKM     = 50.0
)

var (
	ErrInvalidRadius      = errors.New("radius_km must be greater than 0 and at most 50")
	ErrInvalidCoordinates = errors.New("latitude/longitude out of range")
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lng float64
}

// Summary is the outcome of one radius analysis.
type Summary struct {
	Center          Point
	RadiusKM        float64
	Competitors     []models.NearbyCompetitor
	CompetitorCount int
	DensityPerKM2   float64
	NearestKM       *float64
	TotalChairs     int
}

// Analyze keeps the competitors within radiusKM of center, nearest first.
// A zero radius selects DefaultRadiusKM.
func Analyze(center Point, radiusKM float64, competitors []models.Competitor) (Summary, error) {
	if radiusKM == 0 {
		radiusKM = DefaultRadiusKM
	}
	if radiusKM < 0 || radiusKM > MaxRadiusKM || math.IsNaN(radiusKM) {
		return Summary{}, ErrInvalidRadius
	}
	if !ValidCoordinates(center.Lat, center.Lng) {
		return Summary{}, ErrInvalidCoordinates
	}

	s := Summary{Center: center, RadiusKM: radiusKM, Competitors: []models.NearbyCompetitor{}}
	for _, c := range competitors {
		d := HaversineKM(center.Lat, center.Lng, c.Latitude, c.Longitude)
		if d > radiusKM {
			continue
		}
		s.Competitors = append(s.Competitors, models.NearbyCompetitor{Competitor: c, DistanceKM: math.Round(d*1000) / 1000})
		s.TotalChairs += c.Chairs
	}
	sort.SliceStable(s.Competitors, func(i, j int) bool {
		return s.Competitors[i].DistanceKM < s.Competitors[j].DistanceKM
	})

	s.CompetitorCount = len(s.Competitors)
	s.DensityPerKM2 = float64(s.CompetitorCount) / (math.Pi * radiusKM * radiusKM)
	if s.CompetitorCount > 0 {
		nearest := s.Competitors[0].DistanceKM
		s.NearestKM = &nearest
	}
	return s, nil
}

// Record converts a summary into the stored analysis row.
func (s Summary) Record(clinicID, address, createdBy string) models.MarketAnalysis {
	return models.MarketAnalysis{
		ClinicID:        clinicID,
		Address:         address,
		Latitude:        s.Center.Lat,
		Longitude:       s.Center.Lng,
		RadiusKM:        s.RadiusKM,
		CompetitorCount: s.CompetitorCount,
		DensityPerKM2:   s.DensityPerKM2,
		NearestKM:       s.NearestKM,
		TotalChairs:     s.TotalChairs,
		Competitors:     s.Competitors,
		CreatedBy:       createdBy,
	}
}

// BoundingBox returns a lat/lng box enclosing the radius, for prefiltering
// candidates in storage.
func BoundingBox(center Point, radiusKM float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKM / EarthRadiusKM * 180 / math.Pi
	cos := math.Cos(center.Lat * math.Pi / 180)
	dLng := 180.0
	if cos > 1e-9 {
		dLng = math.Min(180, dLat/cos)
	}
	return center.Lat - dLat, center.Lat + dLat, center.Lng - dLng, center.Lng + dLng
}
