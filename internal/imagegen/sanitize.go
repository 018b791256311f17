package imagegen

import "strings"

// terms masked out of prompts before they reach any generation provider
var prohibitedTerms = []string{
	"nude", "naked", "sex", "porn", "explicit", "violence", "gore",
	"bloody", "terrorist", "racism", "racist", "nazi",
}

const (
	maskString    = "****"
	qualityPrefix = "A high quality, detailed digital art image of "
)

// SanitizePrompt lowercases the prompt, masks every occurrence of each
// denylisted term, and prepends the quality instruction the generation models
// are tuned for. Lowercasing first makes the term match case-insensitive.
func SanitizePrompt(prompt string) string {
	sanitized := strings.ToLower(prompt)

	for _, term := range prohibitedTerms {
		sanitized = strings.ReplaceAll(sanitized, term, maskString)
	}

	return qualityPrefix + sanitized
}
