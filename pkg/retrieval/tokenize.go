package retrieval

import "strings"

// maxKeywords bounds the number of keyword tokens extracted from any one
// document or query, matching the original tokenizer's cap.
const maxKeywords = 32

// minTokenLen is the shortest alphanumeric run kept as a keyword token.
const minTokenLen = 3

// Tokenize extracts up to maxKeywords unique lowercase alphanumeric runs of
// length >= minTokenLen from text, preserving first-occurrence order.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, maxKeywords)
	tokens := make([]string, 0, maxKeywords)

	var run strings.Builder
	flush := func() {
		if run.Len() >= minTokenLen {
			tok := run.String()
			if _, ok := seen[tok]; !ok && len(tokens) < maxKeywords {
				seen[tok] = struct{}{}
				tokens = append(tokens, tok)
			}
		}
		run.Reset()
	}

	for _, r := range lower {
		if len(tokens) >= maxKeywords {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			run.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// lexicalBoost computes |queryTokens ∩ docKeywords| / |queryTokens|,
// returning 0 when queryTokens is empty (never negative, never dominant
// on its own — it is additive to the dense similarity score).
func lexicalBoost(queryTokens, docKeywords []string) float32 {
	if len(queryTokens) == 0 {
		return 0
	}
	keywordSet := make(map[string]struct{}, len(docKeywords))
	for _, k := range docKeywords {
		keywordSet[k] = struct{}{}
	}
	var hits int
	for _, t := range queryTokens {
		if _, ok := keywordSet[t]; ok {
			hits++
		}
	}
	return float32(hits) / float32(len(queryTokens))
}
