// Package video turns a YouTube URL into a transcript and a short summary.
package video

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/omnibothq/omnibot/internal/upstream"
)

const (
	defaultWatchBaseURL     = "https://www.youtube.com"
	defaultTimedTextBaseURL = "https://video.google.com"
)

var (
	ErrInvalidURL   = errors.New("invalid YouTube URL, could not extract video ID")
	ErrNoTranscript = errors.New("no transcript found for this video")
)

// the URL shapes a video id hides in
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/|youtube\.com/e/|youtube\.com/watch\?.*v=|youtube\.com/watch\?.*&v=)([^&\n?#]+)`),
	regexp.MustCompile(`(?:youtube\.com/shorts/)([^&\n?#]+)`),
}

var titleTagPattern = regexp.MustCompile(`(?s)<title>(.*?)</title>`)

// ExtractVideoID pulls the video id out of the supported URL formats.
func ExtractVideoID(rawURL string) (string, error) {
	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}

	return "", ErrInvalidURL
}

type Service struct {
	client           *upstream.Client
	watchBaseURL     string
	timedTextBaseURL string
}

func NewService(client *upstream.Client) *Service {
	return &Service{
		client:           client,
		watchBaseURL:     defaultWatchBaseURL,
		timedTextBaseURL: defaultTimedTextBaseURL,
	}
}

// WithBaseURLs points the service at different hosts. Used by tests.
func (s *Service) WithBaseURLs(watch, timedText string) *Service {
	s.watchBaseURL = watch
	s.timedTextBaseURL = timedText
	return s
}

// Title scrapes the watch page <title>. Best effort: any failure falls back
// to a generic title rather than failing the request.
func (s *Service) Title(ctx context.Context, videoID string) string {
	fallback := "YouTube Video " + videoID

	body, err := s.client.GetText(ctx, s.watchBaseURL+"/watch?v="+videoID)

	if err != nil {
		return fallback
	}

	m := titleTagPattern.FindStringSubmatch(body)

	if m == nil {
		return fallback
	}

	title := strings.ReplaceAll(m[1], " - YouTube", "")
	title = strings.TrimSpace(html.UnescapeString(title))

	if title == "" {
		return fallback
	}

	return title
}

type timedTextDocument struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript fetches the English caption track and joins its segments.
func (s *Service) Transcript(ctx context.Context, videoID string) (string, error) {
	body, err := s.client.GetText(ctx, s.timedTextBaseURL+"/timedtext?lang=en&v="+videoID)

	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}

	if strings.TrimSpace(body) == "" {
		return "", ErrNoTranscript
	}

	var doc timedTextDocument

	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return "", fmt.Errorf("parse transcript: %w", err)
	}

	if len(doc.Texts) == 0 {
		return "", ErrNoTranscript
	}

	parts := make([]string, 0, len(doc.Texts))

	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Value))

		if text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", ErrNoTranscript
	}

	return strings.Join(parts, " "), nil
}
