// Package geo wraps the OpenCage forward geocoder. Single provider, no
// fallback chain: the first result is authoritative.
package geo

import (
	"context"
	"errors"
	"net/url"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const defaultOpenCageBaseURL = "https://api.opencagedata.com"

var ErrNoResults = errors.New("no geocoding results for location")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geocoder struct {
	client  *upstream.Client
	baseURL string
	key     string
}

func NewGeocoder(client *upstream.Client, key string) *Geocoder {
	return &Geocoder{
		client:  client,
		baseURL: defaultOpenCageBaseURL,
		key:     key,
	}
}

// WithBaseURL points the geocoder at a different host. Used by tests.
func (g *Geocoder) WithBaseURL(url string) *Geocoder {
	g.baseURL = url
	return g
}

type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Formatted string `json:"formatted"`
	} `json:"results"`
}

// Geocode resolves a freeform location to coordinates and a canonical name.
func (g *Geocoder) Geocode(ctx context.Context, location string) (Coordinates, string, error) {
	endpoint := g.baseURL + "/geocode/v1/json?q=" + url.QueryEscape(location) + "&key=" + url.QueryEscape(g.key)

	var res openCageResponse

	err := g.client.GetJSON(ctx, endpoint, nil, &res)

	if err != nil {
		return Coordinates{}, "", err
	}

	if len(res.Results) == 0 {
		return Coordinates{}, "", ErrNoResults
	}

	top := res.Results[0]

	coords := Coordinates{
		Lat: top.Geometry.Lat,
		Lng: top.Geometry.Lng,
	}

	formatted := top.Formatted

	if formatted == "" {
		formatted = location
	}

	return coords, formatted, nil
}
