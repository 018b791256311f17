package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (url, source string)
}

type ImageHandler struct {
	svc ImageGenerator
}

func NewImageHandler(svc ImageGenerator) *ImageHandler {
	return &ImageHandler{svc: svc}
}

type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

func (h *ImageHandler) Generate(ctx *gin.Context) {
	var req GenerateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	prompt := strings.TrimSpace(req.Prompt)

	// characters, not bytes: a two-rune multibyte prompt is still too short
	if utf8.RuneCountInString(prompt) < 3 {
		RespondBadRequest(ctx, "prompt must be at least 3 characters", nil)
		return
	}

	url, source := h.svc.Generate(ctx.Request.Context(), prompt)

	ctx.JSON(http.StatusOK, gin.H{
		"image_url": url,
		"prompt":    prompt,
		"source":    source,
	})
}
