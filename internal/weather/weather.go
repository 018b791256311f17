// Package weather fetches current conditions from OpenWeather by coordinates.
package weather

import (
	"context"
	"fmt"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org"

type Data struct {
	Temperature           float64 `json:"temperature"`
	TemperatureFahrenheit float64 `json:"temperature_fahrenheit"`
	Conditions            string  `json:"conditions"`
	Humidity              int     `json:"humidity"`
	WindSpeed             float64 `json:"wind_speed"`
	Location              string  `json:"location"`
}

type Service struct {
	client  *upstream.Client
	baseURL string
	key     string
}

func NewService(client *upstream.Client, key string) *Service {
	return &Service{
		client:  client,
		baseURL: defaultOpenWeatherBaseURL,
		key:     key,
	}
}

// WithBaseURL points the service at a different host. Used by tests.
func (s *Service) WithBaseURL(url string) *Service {
	s.baseURL = url
	return s
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

// Current returns the weather at lat/lng in metric units, with Fahrenheit
// derived locally.
func (s *Service) Current(ctx context.Context, lat, lng float64) (Data, error) {
	endpoint := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&appid=%s&units=metric", s.baseURL, lat, lng, s.key)

	var res openWeatherResponse

	err := s.client.GetJSON(ctx, endpoint, nil, &res)

	if err != nil {
		return Data{}, fmt.Errorf("weather lookup: %w", err)
	}

	conditions := ""

	if len(res.Weather) > 0 {
		conditions = res.Weather[0].Main
	}

	return Data{
		Temperature:           res.Main.Temp,
		TemperatureFahrenheit: res.Main.Temp*9/5 + 32,
		Conditions:            conditions,
		Humidity:              res.Main.Humidity,
		WindSpeed:             res.Wind.Speed,
		Location:              res.Name,
	}, nil
}
