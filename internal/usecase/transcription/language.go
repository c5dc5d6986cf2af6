package transcription

import "strings"

// regionCodes maps requested language codes to the provider's
// region-qualified codes. The table is explicit rather than derived from
// string length so unknown input degrades predictably.
var regionCodes = map[string]string{
	"en": "en-IN",
	"hi": "hi-IN",
	"bn": "bn-IN",
	"ta": "ta-IN",
	"te": "te-IN",
	"kn": "kn-IN",
	"ml": "ml-IN",
	"mr": "mr-IN",
	"gu": "gu-IN",
	"pa": "pa-IN",
	"od": "od-IN",
}

// ResolveLanguage maps a requested language to the region code handed to
// the recognizer. "auto" and empty map to the default; known short codes
// expand through the table; already-qualified codes pass through unchanged;
// anything unrecognized falls back to the default.
func ResolveLanguage(requested, defaultCode string) string {
	req := strings.ToLower(strings.TrimSpace(requested))
	switch {
	case req == "" || req == "auto":
		return defaultCode
	case strings.Contains(req, "-"):
		// Preserve the caller's casing convention (e.g. en-IN).
		return strings.TrimSpace(requested)
	}
	if mapped, ok := regionCodes[req]; ok {
		return mapped
	}
	return defaultCode
}
