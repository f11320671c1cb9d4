package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dentalboard-backend/internal/models"
)

const analysisColumns = `id, clinic_id, address, latitude, longitude, radius_km, competitor_count,
	density_per_km2, nearest_km, total_chairs, competitors, created_by, created_at`

func (s *Storage) CreateMarketAnalysis(ctx context.Context, a *models.MarketAnalysis) error {
	if a.ID == "" {
		a.ID = newID()
	}
	competitors := a.Competitors
	if competitors == nil {
		competitors = []models.NearbyCompetitor{}
	}
	raw, err := json.Marshal(competitors)
	if err != nil {
		return fmt.Errorf("encode competitors: %w", err)
	}
	a.CompetitorsJSON = raw

	query := `
		INSERT INTO market_analyses (id, clinic_id, address, latitude, longitude, radius_km, competitor_count,
			density_per_km2, nearest_km, total_chairs, competitors, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`
	return s.db.QueryRowxContext(ctx, query, a.ID, a.ClinicID, a.Address, a.Latitude, a.Longitude, a.RadiusKM,
		a.CompetitorCount, a.DensityPerKM2, a.NearestKM, a.TotalChairs, string(raw), a.CreatedBy).
		Scan(&a.CreatedAt)
}

func (s *Storage) ListMarketAnalyses(ctx context.Context, clinicID string, limit int) ([]models.MarketAnalysis, error) {
	analyses := []models.MarketAnalysis{}
	query := `SELECT ` + analysisColumns + ` FROM market_analyses WHERE clinic_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := s.db.SelectContext(ctx, &analyses, query, clinicID, limit); err != nil {
		return nil, err
	}
	for i := range analyses {
		if err := decodeCompetitors(&analyses[i]); err != nil {
			return nil, err
		}
	}
	return analyses, nil
}

func (s *Storage) GetMarketAnalysis(ctx context.Context, clinicID, id string) (*models.MarketAnalysis, error) {
	var a models.MarketAnalysis
	err := s.db.GetContext(ctx, &a, `SELECT `+analysisColumns+` FROM market_analyses WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeCompetitors(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeCompetitors(a *models.MarketAnalysis) error {
	a.Competitors = []models.NearbyCompetitor{}
	if len(a.CompetitorsJSON) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.CompetitorsJSON, &a.Competitors); err != nil {
		return fmt.Errorf("decode competitors of analysis %s: %w", a.ID, err)
	}
	return nil
}

const simulationColumns = `id, clinic_id, name, params, result, created_by, created_at`

func (s *Storage) CreateSimulation(ctx context.Context, sim *models.Simulation) error {
	if sim.ID == "" {
		sim.ID = newID()
	}
	params, err := json.Marshal(sim.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	result, err := json.Marshal(sim.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	sim.ParamsJSON, sim.ResultJSON = params, result

	query := `
		INSERT INTO simulations (id, clinic_id, name, params, result, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return s.db.QueryRowxContext(ctx, query, sim.ID, sim.ClinicID, sim.Name, string(params), string(result), sim.CreatedBy).
		Scan(&sim.CreatedAt)
}

// ListSimulations returns a clinic's saved simulations without their results.
func (s *Storage) ListSimulations(ctx context.Context, clinicID string) ([]models.Simulation, error) {
	sims := []models.Simulation{}
	query := `SELECT ` + simulationColumns + ` FROM simulations WHERE clinic_id = $1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &sims, query, clinicID); err != nil {
		return nil, err
	}
	for i := range sims {
		if err := json.Unmarshal(sims[i].ParamsJSON, &sims[i].Params); err != nil {
			return nil, fmt.Errorf("decode params of simulation %s: %w", sims[i].ID, err)
		}
	}
	return sims, nil
}

func (s *Storage) GetSimulation(ctx context.Context, clinicID, id string) (*models.Simulation, error) {
	var sim models.Simulation
	err := s.db.GetContext(ctx, &sim, `SELECT `+simulationColumns+` FROM simulations WHERE clinic_id = $1 AND id = $2`, clinicID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sim.ParamsJSON, &sim.Params); err != nil {
		return nil, fmt.Errorf("decode params of simulation %s: %w", id, err)
	}
	if err := json.Unmarshal(sim.ResultJSON, &sim.Result); err != nil {
		return nil, fmt.Errorf("decode result of simulation %s: %w", id, err)
	}
	return &sim, nil
}

func (s *Storage) DeleteSimulation(ctx context.Context, clinicID, id string) error {
	return affectedOne(s.db.ExecContext(ctx, `DELETE FROM simulations WHERE clinic_id = $1 AND id = $2`, clinicID, id))
}
