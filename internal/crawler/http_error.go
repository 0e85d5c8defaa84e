package crawler

import (
	"fmt"
	"strings"
)

// NewHTTPStatusError classifies a non-2xx platform response: 401/403
// become forbidden (cookie or device checks), 429 rate_limited,
// anything else a plain upstream http error. The body snippet is
// capped; Douyin error pages embed full HTML documents.
func NewHTTPStatusError(platform, url string, statusCode int, body string) error {
	kind := ErrorKindHTTP
	switch statusCode {
	case 401, 403:
		kind = ErrorKindForbidden
	case 429:
		kind = ErrorKindRateLimited
	}
	msg := fmt.Sprintf("http status=%d", statusCode)

	snippet := strings.TrimSpace(body)
	const maxSnippet = 1024
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}
	if snippet != "" {
		msg = msg + " body=" + snippet
	}

	return Error{
		Kind:     kind,
		Platform: platform,
		URL:      url,
		Msg:      msg,
	}
}
