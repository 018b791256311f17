package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/ev"
)

type StationFinder interface {
	Nearby(ctx context.Context, lat, lng float64, radius int) ([]ev.Station, error)
}

type EVHandler struct {
	geocoder Geocoder
	svc      StationFinder
}

func NewEVHandler(geocoder Geocoder, svc StationFinder) *EVHandler {
	return &EVHandler{
		geocoder: geocoder,
		svc:      svc,
	}
}

type NearbyRequest struct {
	Location string `json:"location" binding:"required"`
	Radius   int    `json:"radius" binding:"omitempty,min=1,max=100"`
}

func (h *EVHandler) Nearby(ctx *gin.Context) {
	var req NearbyRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Radius == 0 {
		req.Radius = 5
	}

	rctx := ctx.Request.Context()

	coords, formatted, err := h.geocoder.Geocode(rctx, req.Location)

	if err != nil {
		RespondInternal(ctx, "Could not find the requested location")
		return
	}

	stations, err := h.svc.Nearby(rctx, coords.Lat, coords.Lng, req.Radius)

	if err != nil {
		RespondInternal(ctx, "Charging station lookup is currently unavailable")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"location": formatted,
		"stations": stations,
		"map_url":  ev.MapURL(coords.Lat, coords.Lng),
		// per-station counts are synthesized, there is no live occupancy feed
		"availability_estimated": true,
	})
}
