package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/video"
)

const summaryPoints = 3

type VideoReader interface {
	Title(ctx context.Context, videoID string) string
	Transcript(ctx context.Context, videoID string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string, maxPoints int) []string
}

type YouTubeHandler struct {
	videos     VideoReader
	summarizer Summarizer
}

func NewYouTubeHandler(videos VideoReader, summarizer Summarizer) *YouTubeHandler {
	return &YouTubeHandler{
		videos:     videos,
		summarizer: summarizer,
	}
}

type SummarizeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *YouTubeHandler) Summarize(ctx *gin.Context) {
	var req SummarizeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	videoID, err := video.ExtractVideoID(req.URL)

	if err != nil {
		RespondBadRequest(ctx, "Invalid YouTube URL", nil)
		return
	}

	rctx := ctx.Request.Context()

	transcript, err := h.videos.Transcript(rctx, videoID)

	if err != nil {
		if errors.Is(err, video.ErrNoTranscript) {
			RespondInternal(ctx, "No transcript is available for this video")
			return
		}

		RespondInternal(ctx, "Could not retrieve the video transcript")
		return
	}

	summary := h.summarizer.Summarize(rctx, transcript, summaryPoints)

	ctx.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"title":   h.videos.Title(rctx, videoID),
		"url":     req.URL,
	})
}
