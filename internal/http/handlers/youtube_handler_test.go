package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/omnibothq/omnibot/internal/http/handlers"
	"github.com/omnibothq/omnibot/internal/video"
)

type fakeVideos struct {
	titleFn      func(ctx context.Context, videoID string) string
	transcriptFn func(ctx context.Context, videoID string) (string, error)
}

func (f *fakeVideos) Title(ctx context.Context, videoID string) string {
	if f.titleFn != nil {
		return f.titleFn(ctx, videoID)
	}

	return "Test Video"
}

func (f *fakeVideos) Transcript(ctx context.Context, videoID string) (string, error) {
	if f.transcriptFn != nil {
		return f.transcriptFn(ctx, videoID)
	}

	return "hello world", nil
}

type fakeSummarizer struct {
	summarizeFn func(ctx context.Context, text string, maxPoints int) []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, maxPoints int) []string {
	if f.summarizeFn != nil {
		return f.summarizeFn(ctx, text, maxPoints)
	}

	return []string{"point one", "point two"}
}

func TestSummarizeHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		videos         *fakeVideos
		wantStatusCode int
	}{
		{
			name:           "success",
			body:           `{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`,
			videos:         &fakeVideos{},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_url",
			body:           `{"url": "https://vimeo.com/12345"}`,
			videos:         &fakeVideos{},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "no_transcript",
			body: `{"url": "https://youtu.be/dQw4w9WgXcQ"}`,
			videos: &fakeVideos{
				transcriptFn: func(ctx context.Context, videoID string) (string, error) {
					return "", video.ErrNoTranscript
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "missing_url",
			body:           `{}`,
			videos:         &fakeVideos{},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewYouTubeHandler(tt.videos, &fakeSummarizer{})
			r := setupRouter(http.MethodPost, "/api/youtube/summarize", h.Summarize)

			w := doJSON(t, r, http.MethodPost, "/api/youtube/summarize", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d (body %s)", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				body := decodeBody(t, w)

				summary, ok := body["summary"].([]any)

				if !ok || len(summary) != 2 {
					t.Fatalf("unexpected summary %v", body["summary"])
				}

				if body["title"] != "Test Video" {
					t.Fatalf("unexpected title %v", body["title"])
				}

				if body["url"] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
					t.Fatalf("response must echo the url, got %v", body["url"])
				}
			}
		})
	}
}

func TestSummarizeForwardsTranscriptToSummarizer(t *testing.T) {
	gotText := ""
	gotMax := 0

	summarizer := &fakeSummarizer{
		summarizeFn: func(ctx context.Context, text string, maxPoints int) []string {
			gotText = text
			gotMax = maxPoints
			return []string{"ok"}
		},
	}

	videos := &fakeVideos{
		transcriptFn: func(ctx context.Context, videoID string) (string, error) {
			return "the full transcript", nil
		},
	}

	h := handlers.NewYouTubeHandler(videos, summarizer)
	r := setupRouter(http.MethodPost, "/api/youtube/summarize", h.Summarize)

	w := doJSON(t, r, http.MethodPost, "/api/youtube/summarize", `{"url": "https://youtu.be/abc123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
	}

	if gotText != "the full transcript" {
		t.Fatalf("summarizer got %q", gotText)
	}

	if gotMax != 3 {
		t.Fatalf("summarizer got maxPoints %d, want 3", gotMax)
	}
}
