package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/omnibothq/omnibot/internal/cache"
	"github.com/omnibothq/omnibot/internal/crypto"
)

type PriceResolver interface {
	Price(ctx context.Context, symbol string) (crypto.Result, string)
}

type CryptoHandler struct {
	svc    PriceResolver
	quotes cache.Store
}

func NewCryptoHandler(svc PriceResolver, quotes cache.Store) *CryptoHandler {
	return &CryptoHandler{
		svc:    svc,
		quotes: quotes,
	}
}

type PriceRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

type PriceResponse struct {
	Crypto crypto.Quote `json:"crypto"`
	Symbol string       `json:"symbol"`
	Name   string       `json:"name"`
	Source string       `json:"source"`
}

func (h *CryptoHandler) Price(ctx *gin.Context) {
	var req PriceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	if symbol == "" {
		RespondBadRequest(ctx, "symbol must not be empty", nil)
		return
	}

	rctx := ctx.Request.Context()
	key := "crypto:" + symbol

	if cached, ok := h.quotes.Get(rctx, key); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
		return
	}

	result, source := h.svc.Price(rctx, symbol)

	resp := PriceResponse{
		Crypto: result.Quote,
		Symbol: symbol,
		Name:   result.Name,
		Source: source,
	}

	if body, err := json.Marshal(resp); err == nil {
		h.quotes.Set(rctx, key, body)
	}

	ctx.JSON(http.StatusOK, resp)
}
