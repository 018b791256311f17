package video

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	geminiModelPath      = "/v1beta/models/gemini-1.5-flash:generateContent"

	// context cap for the model
	maxTranscriptChars = 25000

	summaryUnavailable = "Unable to summarize the video. Please try a different video or try again later."
)

// GeminiSummarizer condenses a transcript into key points. Model failure is
// absorbed: callers always get a usable (if apologetic) summary line instead
// of an error, matching the feature's degrade-not-fail posture.
type GeminiSummarizer struct {
	client  *upstream.Client
	baseURL string
	key     string
	log     *slog.Logger
}

func NewGeminiSummarizer(client *upstream.Client, key string, log *slog.Logger) *GeminiSummarizer {
	return &GeminiSummarizer{
		client:  client,
		baseURL: defaultGeminiBaseURL,
		key:     key,
		log:     log,
	}
}

// WithBaseURL points the summarizer at a different host. Used by tests.
func (g *GeminiSummarizer) WithBaseURL(url string) *GeminiSummarizer {
	g.baseURL = url
	return g
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Summarize asks the model for up to maxPoints key points.
func (g *GeminiSummarizer) Summarize(ctx context.Context, text string, maxPoints int) []string {
	if len(text) > maxTranscriptChars {
		text = text[:maxTranscriptChars] + "..."
	}

	prompt := "Please summarize the following text into " + strconv.Itoa(maxPoints) + " key points. " +
		"Format your response as a JSON array of strings, with each string being a key point from the text.\n\n" +
		"Text to summarize:\n" + text + "\n\nResponse (JSON array only):"

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	var res geminiResponse

	err := g.client.PostJSON(ctx, g.baseURL+geminiModelPath+"?key="+g.key, nil, req, &res)

	if err != nil {
		g.log.Warn("summarization failed", "err", err)
		return []string{summaryUnavailable}
	}

	if len(res.Candidates) == 0 || len(res.Candidates[0].Content.Parts) == 0 {
		g.log.Warn("summarization returned no candidates")
		return []string{summaryUnavailable}
	}

	return parsePoints(res.Candidates[0].Content.Parts[0].Text, maxPoints)
}

// parsePoints handles both shapes the model answers with: a JSON array, or
// loose bullet lines.
func parsePoints(raw string, maxPoints int) []string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		var points []string

		if err := json.Unmarshal([]byte(raw), &points); err == nil {
			if len(points) > maxPoints {
				points = points[:maxPoints]
			}
			return points
		}
	}

	var points []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•-* "))

		if line != "" {
			points = append(points, line)
		}
	}

	if len(points) > maxPoints {
		points = points[:maxPoints]
	}

	if len(points) == 0 {
		return []string{summaryUnavailable}
	}

	return points
}
