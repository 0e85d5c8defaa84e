package resolve

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"video-relay-go/internal/crawler"
)

// classifyRules is evaluated in order against the (expanded) URL.
// Adding a platform is a data change here plus a normalizer.
var classifyRules = []struct {
	re       *regexp.Regexp
	platform Platform
}{
	{regexp.MustCompile(`(?i)douyin\.com`), PlatformDouyin},
	{regexp.MustCompile(`(?i)iesdouyin\.com`), PlatformDouyin},
	{regexp.MustCompile(`(?i)tiktok\.com`), PlatformTikTok},
	{regexp.MustCompile(`(?i)bilibili\.com`), PlatformBilibili},
	{regexp.MustCompile(`(?i)b23\.tv`), PlatformBilibili},
}

// shortLinkHosts are redirect-only share domains whose canonical URL
// must be discovered before id extraction.
var shortLinkHosts = map[string]struct{}{
	"v.douyin.com":  {},
	"vm.tiktok.com": {},
	"vt.tiktok.com": {},
	"t.tiktok.com":  {},
	"b23.tv":        {},
}

// Classify maps a URL to a platform tag without touching the network.
func Classify(rawURL string) (Platform, error) {
	s := strings.TrimSpace(rawURL)
	for _, r := range classifyRules {
		if r.re.MatchString(s) {
			return r.platform, nil
		}
	}
	return "", crawler.NewUnrecognizedSourceError(rawURL)
}

// IsShortLink reports whether the URL points at a known share-redirect
// host and needs expansion before id extraction.
func IsShortLink(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	_, ok := shortLinkHosts[host]
	return ok
}

// LinkExpander follows share-link redirects to the canonical URL.
type LinkExpander struct {
	httpClient *resty.Client
}

func NewLinkExpander(timeout time.Duration) *LinkExpander {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	rc := resty.NewWithClient(hc)
	rc.SetHeader("user-agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1")
	return &LinkExpander{httpClient: rc}
}

// Expand issues a HEAD request following redirects and returns the
// final URL. Network failure surfaces as an upstream error, never as
// "pattern not recognized".
func (l *LinkExpander) Expand(ctx context.Context, rawURL string) (string, error) {
	resp, err := l.httpClient.R().SetContext(ctx).Head(rawURL)
	if err != nil {
		return "", crawler.Error{
			Kind: crawler.ErrorKindHTTP,
			URL:  rawURL,
			Msg:  "short link expansion failed",
			Err:  err,
		}
	}
	final := resp.RawResponse.Request.URL.String()
	if final == "" {
		final = rawURL
	}
	return final, nil
}
