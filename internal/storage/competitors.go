package storage

import (
	"context"

	"dentalboard-backend/internal/models"
)

const competitorColumns = `id, name, address, latitude, longitude, chairs, source, created_at`

func (s *Storage) ListCompetitors(ctx context.Context) ([]models.Competitor, error) {
	competitors := []models.Competitor{}
	if err := s.db.SelectContext(ctx, &competitors, `SELECT `+competitorColumns+` FROM competitors ORDER BY name`); err != nil {
		return nil, err
	}
	return competitors, nil
}

// CompetitorsInBox returns competitors inside a lat/lng bounding box.
func (s *Storage) CompetitorsInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Competitor, error) {
	competitors := []models.Competitor{}
	query := `
		SELECT ` + competitorColumns + `
		FROM competitors
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
	`
	if err := s.db.SelectContext(ctx, &competitors, query, minLat, maxLat, minLng, maxLng); err != nil {
		return nil, err
	}
	return competitors, nil
}

func (s *Storage) CreateCompetitor(ctx context.Context, c *models.Competitor) error {
	if c.ID == "" {
		c.ID = newID()
	}
	query := `
		INSERT INTO competitors (id, name, address, latitude, longitude, chairs, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	return s.db.QueryRowxContext(ctx, query, c.ID, c.Name, c.Address, c.Latitude, c.Longitude, c.Chairs, c.Source).
		Scan(&c.CreatedAt)
}

func (s *Storage) DeleteCompetitor(ctx context.Context, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM competitors WHERE id = $1`, id))
}
