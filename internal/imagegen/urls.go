package imagegen

import (
	"math/rand"
	"net/url"
	"strings"
)

// fixed accent palette for placeholder images
var placeholderColors = []string{
	"6200ea", "00bfa5", "d50000", "304ffe", "00c853", "ff6d00", "aa00ff",
}

// UnsplashURL builds a curated stock-photo URL from the prompt's significant
// words (longer than 2 characters, up to 3, hyphen-joined, stripped to
// alphanumerics and hyphens). This stands in for persisting the generated
// binary, which the generation provider never actually surfaces.
func UnsplashURL(prompt string) string {
	var words []string

	for _, word := range strings.Fields(prompt) {
		if len(word) > 2 {
			words = append(words, word)
		}

		if len(words) == 3 {
			break
		}
	}

	searchTerm := strings.Join(words, "-")

	var b strings.Builder

	for _, c := range searchTerm {
		if c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}

	searchTerm = b.String()

	if searchTerm == "" {
		searchTerm = "landscape"
	}

	return "https://source.unsplash.com/640x480/?" + searchTerm
}

// PlaceholderURL is the synthetic fallback: a colored block encoding the first
// two words of the prompt, with a random accent color from the palette.
func PlaceholderURL(prompt string) string {
	words := strings.Fields(prompt)

	if len(words) > 2 {
		words = words[:2]
	}

	var b strings.Builder

	for _, c := range strings.Join(words, " ") {
		if c == ' ' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}

	safeText := b.String()

	if safeText == "" {
		safeText = "Image"
	}

	color := placeholderColors[rand.Intn(len(placeholderColors))]

	return "https://via.placeholder.com/640x480/" + color + "/FFFFFF?text=" + url.QueryEscape(safeText)
}
