package transcription

import "testing"

func TestResolveLanguage(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		want      string
	}{
		{"empty uses default", "", "en-IN"},
		{"auto uses default", "auto", "en-IN"},
		{"auto is case insensitive", "AUTO", "en-IN"},
		{"short code expands", "hi", "hi-IN"},
		{"odia expands", "od", "od-IN"},
		{"qualified passes through", "en-US", "en-US"},
		{"unknown falls back", "zz", "en-IN"},
		{"whitespace trimmed", "  ta  ", "ta-IN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveLanguage(tc.requested, "en-IN"); got != tc.want {
				t.Fatalf("ResolveLanguage(%q) = %q, want %q", tc.requested, got, tc.want)
			}
		})
	}
}

func TestResolveLanguage_CustomDefault(t *testing.T) {
	if got := ResolveLanguage("auto", "hi-IN"); got != "hi-IN" {
		t.Fatalf("got %q, want hi-IN", got)
	}
}
