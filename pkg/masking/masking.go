// Package masking redacts credential-shaped substrings from free-text
// session output before it is written to the session log, and reports
// which pattern classes fired so the orchestrator can emit an audit line.
package masking

import "regexp"

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// builtinPatterns covers the pattern classes named in the redaction
// contract: api keys, generic secrets, bearer tokens, and sk- prefixed
// provider keys.
var builtinPatterns = []*CompiledPattern{
	{
		Name:        "api_key",
		Regex:       regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([A-Za-z0-9_\-]{8,})`),
		Replacement: "${1}[REDACTED]",
		Description: "API key assignment",
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)(secret\s*[:=]\s*)([A-Za-z0-9_\-]{8,})`),
		Replacement: "${1}[REDACTED]",
		Description: "generic secret assignment",
	},
	{
		Name:        "bearer",
		Regex:       regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9_\-.]{8,})`),
		Replacement: "${1}[REDACTED]",
		Description: "bearer token",
	},
	{
		Name:        "sk_prefixed",
		Regex:       regexp.MustCompile(`\bsk-[A-Za-z0-9_\-]{8,}`),
		Replacement: "[REDACTED]",
		Description: "sk- prefixed provider key",
	},
}

// Redact applies every built-in pattern to text and returns the redacted
// result plus the names of the patterns that matched the input text, in a
// stable order, for the audit line.
func Redact(text string) (string, []string) {
	var fired []string
	out := text
	for _, p := range builtinPatterns {
		if p.Regex.MatchString(text) {
			fired = append(fired, p.Name)
			out = p.Regex.ReplaceAllString(out, p.Replacement)
		}
	}
	return out, fired
}
