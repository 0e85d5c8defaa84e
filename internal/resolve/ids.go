package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"video-relay-go/internal/crawler"
)

var reBVID = regexp.MustCompile(`(?i)\bBV[0-9A-Za-z]{10}\b`)

// ParseBilibiliID extracts the BV token from an already expanded URL.
// Pure; short links must be expanded first.
func ParseBilibiliID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", crawler.NewIdentifierNotFoundError(string(PlatformBilibili), input)
	}
	u, err := url.Parse(s)
	if err == nil && u.Host != "" {
		if m := reBVID.FindString(u.Path); m != "" {
			return canonicalBVID(m), nil
		}
		if bv := strings.TrimSpace(u.Query().Get("bvid")); bv != "" {
			if m := reBVID.FindString(bv); m != "" {
				return canonicalBVID(m), nil
			}
		}
	}
	if m := reBVID.FindString(s); m != "" {
		return canonicalBVID(m), nil
	}
	return "", crawler.NewIdentifierNotFoundError(string(PlatformBilibili), input)
}

func canonicalBVID(s string) string {
	// The BV prefix is case-insensitive in the wild; the API is not.
	return "BV" + s[2:]
}
