package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/cache"
	"github.com/omnibothq/omnibot/internal/geo"
	"github.com/omnibothq/omnibot/internal/weather"
)

type Geocoder interface {
	Geocode(ctx context.Context, location string) (geo.Coordinates, string, error)
}

type WeatherReader interface {
	Current(ctx context.Context, lat, lng float64) (weather.Data, error)
}

type WeatherHandler struct {
	geocoder Geocoder
	svc      WeatherReader
	reports  cache.Store
}

func NewWeatherHandler(geocoder Geocoder, svc WeatherReader, reports cache.Store) *WeatherHandler {
	return &WeatherHandler{
		geocoder: geocoder,
		svc:      svc,
		reports:  reports,
	}
}

type WeatherRequest struct {
	Location string `json:"location" binding:"required"`
}

type WeatherResponse struct {
	Weather        weather.Data    `json:"weather"`
	LocationCoords geo.Coordinates `json:"location_coords"`
}

func (h *WeatherHandler) Current(ctx *gin.Context) {
	var req WeatherRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()
	key := "weather:" + strings.ToLower(strings.TrimSpace(req.Location))

	if cached, ok := h.reports.Get(rctx, key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	coords, _, err := h.geocoder.Geocode(rctx, req.Location)

	if err != nil {
		RespondInternal(ctx, "Could not find the requested location")
		return
	}

	data, err := h.svc.Current(rctx, coords.Lat, coords.Lng)

	if err != nil {
		RespondInternal(ctx, "Weather service is currently unavailable")
		return
	}

	resp := WeatherResponse{
		Weather:        data,
		LocationCoords: coords,
	}

	if body, err := json.Marshal(resp); err == nil {
		h.reports.Set(rctx, key, body)
	}

	ctx.JSON(http.StatusOK, resp)
}
