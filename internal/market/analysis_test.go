package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dentalboard-backend/internal/models"
)

// Tokyo Station and nearby points.
var tokyo = Point{Lat: 35.681236, Lng: 139.767125}

func TestHaversineKM(t *testing.T) {
	assert.InDelta(t, 0, HaversineKM(10, 20, 10, 20), 1e-9)
	// Tokyo Station to Shinjuku Station is roughly 6.1 km.
	assert.InDelta(t, 6.1, HaversineKM(tokyo.Lat, tokyo.Lng, 35.690921, 139.700258), 0.2)
	// One degree of latitude is about 111.2 km.
	assert.InDelta(t, 111.2, HaversineKM(0, 0, 1, 0), 0.1)
}

func TestAnalyze(t *testing.T) {
	competitors := []models.Competitor{
		{ID: "far", Latitude: 35.690921, Longitude: 139.700258, Chairs: 5},
		{ID: "near", Latitude: 35.6820, Longitude: 139.7680, Chairs: 3},
		{ID: "mid", Latitude: 35.6900, Longitude: 139.7700, Chairs: 4},
	}
	s, err := Analyze(tokyo, 2, competitors)
	require.NoError(t, err)

	require.Equal(t, 2, s.CompetitorCount)
	assert.Equal(t, "near", s.Competitors[0].ID)
	assert.Equal(t, "mid", s.Competitors[1].ID)
	assert.Equal(t, 7, s.TotalChairs)
	require.NotNil(t, s.NearestKM)
	assert.Equal(t, s.Competitors[0].DistanceKM, *s.NearestKM)
	assert.InDelta(t, 2/(math.Pi*4), s.DensityPerKM2, 1e-9)

	rec := s.Record("clinic-1", "東京都千代田区丸の内1丁目", "user-1")
	assert.Equal(t, "clinic-1", rec.ClinicID)
	assert.Equal(t, tokyo.Lat, rec.Latitude)
	assert.Len(t, rec.Competitors, 2)
}

func TestAnalyze_NoCompetitors(t *testing.T) {
	s, err := Analyze(tokyo, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRadiusKM, s.RadiusKM)
	assert.Zero(t, s.CompetitorCount)
	assert.Nil(t, s.NearestKM)
	assert.NotNil(t, s.Competitors)
}

func TestAnalyze_Validation(t *testing.T) {
	_, err := Analyze(tokyo, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = Analyze(tokyo, 51, nil)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = Analyze(Point{Lat: 91}, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	minLat, maxLat, minLng, maxLng := BoundingBox(tokyo, 5)
	assert.InDelta(t, 5, HaversineKM(tokyo.Lat, tokyo.Lng, maxLat, tokyo.Lng), 0.01)
	assert.InDelta(t, 5, HaversineKM(tokyo.Lat, tokyo.Lng, minLat, tokyo.Lng), 0.01)
	assert.GreaterOrEqual(t, HaversineKM(tokyo.Lat, tokyo.Lng, tokyo.Lat, maxLng), 4.99)
	assert.Less(t, minLng, tokyo.Lng)
}
