package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrAddressNotFound = errors.New("address not found")

// Geocoder resolves Japanese addresses through the GSI address search API.
type Geocoder struct {
	endpoint string
	client   *http.Client
}

type gsiFeature struct {
	Geometry struct {
		// Coordinates are [longitude, latitude].
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
}

func NewGeocoder(endpoint string) *Geocoder {
	return &Geocoder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode returns the coordinates of the best match for address.
func (g *Geocoder) Geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, 0, ErrAddressNotFound
	}

	u, err := url.Parse(g.endpoint)
	if err != nil {
		return 0, 0, fmt.Errorf("parse geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("q", address)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("create request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder returned %d", resp.StatusCode)
	}

	var features []gsiFeature
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return 0, 0, fmt.Errorf("decode geocoder response: %w", err)
	}
	for _, f := range features {
		if len(f.Geometry.Coordinates) >= 2 {
			return f.Geometry.Coordinates[1], f.Geometry.Coordinates[0], nil
		}
	}
	return 0, 0, ErrAddressNotFound
}
