// ABOUTME: Base URL normalization for OpenAI-compatible endpoints
// ABOUTME: Strips a sole trailing /v1 so providers append their own versioned path

package httputil

import (
	"net/url"
	"strings"
)

// NormalizeBaseURL trims trailing slashes and a sole "/v1" path segment.
// Providers append "/v1/chat/completions" themselves, so a user-supplied
// "http://host:8000/v1" must not turn into ".../v1/v1/...". A nested
// path like "/api/v1" is left alone.
func NormalizeBaseURL(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.TrimRight(raw, "/")

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Path == "/v1" {
		u.Path = ""
		return strings.TrimRight(u.String(), "/")
	}
	return raw
}
