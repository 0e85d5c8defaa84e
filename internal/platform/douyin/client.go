package douyin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"video-relay-go/internal/config"
	"video-relay-go/internal/crawler"
)

type Client struct {
	httpClient *resty.Client
}

func NewClient() *Client {
	timeoutSec := config.AppConfig.HttpTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	hc := &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}
	rc := resty.NewWithClient(hc)
	rc.SetBaseURL("https://www.iesdouyin.com")
	rc.SetHeaders(map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "zh-CN,zh;q=0.9",
		"referer":         "https://www.douyin.com/",
		// The share page only renders the embedded router payload for
		// a mobile user agent.
		"user-agent": "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
	})
	if ck := strings.TrimSpace(config.AppConfig.DouyinCookies); ck != "" {
		rc.SetHeader("cookie", ck)
	}

	retryCount := config.AppConfig.HttpRetryCount
	if retryCount <= 0 {
		retryCount = 3
	}
	baseMs := config.AppConfig.HttpRetryBaseDelayMs
	if baseMs <= 0 {
		baseMs = 500
	}
	maxMs := config.AppConfig.HttpRetryMaxDelayMs
	if maxMs <= 0 {
		maxMs = 4000
	}
	rc.SetRetryCount(retryCount)
	rc.SetRetryWaitTime(time.Duration(baseMs) * time.Millisecond)
	rc.SetRetryMaxWaitTime(time.Duration(maxMs) * time.Millisecond)
	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return crawler.ShouldRetryError(err)
		}
		if r == nil {
			return true
		}
		return crawler.ShouldRetryStatus(r.StatusCode())
	})

	return &Client{httpClient: rc}
}

var (
	reAwemePath = regexp.MustCompile(`(?:/video/|/note/|/share/video/)(\d+)`)
	reModalID   = regexp.MustCompile(`modal_id=(\d+)`)
	reDigits    = regexp.MustCompile(`^\d+$`)
	reRouter    = regexp.MustCompile(`(?s)window\._ROUTER_DATA\s*=\s*(.*?)</script>`)
)

// AwemeID extracts the numeric aweme id from a canonical douyin URL.
// Share links must already be expanded.
func (c *Client) AwemeID(ctx context.Context, url string) (string, error) {
	s := strings.TrimSpace(url)
	if reDigits.MatchString(s) {
		return s, nil
	}
	if m := reAwemePath.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	if m := reModalID.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", crawler.NewIdentifierNotFoundError("douyin", url)
}

// FetchAweme loads the share page and lifts the aweme detail out of the
// embedded router payload. No signing is required on this route.
func (c *Client) FetchAweme(ctx context.Context, awemeID string) (json.RawMessage, error) {
	path := fmt.Sprintf("/share/video/%s/", awemeID)
	resp, err := c.httpClient.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindHTTP,
			Platform: "douyin",
			URL:      path,
			Msg:      "share page request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, crawler.NewHTTPStatusError("douyin", path, resp.StatusCode(), resp.String())
	}

	m := reRouter.FindStringSubmatch(resp.String())
	if len(m) != 2 {
		return nil, crawler.NewMalformedMetadataError("douyin", awemeID, "_ROUTER_DATA")
	}
	data := gjson.Parse(strings.TrimSpace(m[1]))

	// The payload keys the result under video_<id>/page for videos and
	// note_<id>/page for image posts.
	for _, page := range []string{"video_" + awemeID + "/page", "note_" + awemeID + "/page"} {
		res := data.Get("loaderData").Get(page).Get("videoInfoRes")
		if !res.Exists() {
			continue
		}
		if fl := res.Get("filter_list"); fl.IsArray() && len(fl.Array()) > 0 {
			detail := fl.Get("0.detail_msg").String()
			if detail == "" {
				detail = fl.Get("0.filter_reason").String()
			}
			return nil, crawler.Error{
				Kind:     crawler.ErrorKindMediaResolution,
				Platform: "douyin",
				URL:      path,
				Msg:      fmt.Sprintf("content filtered: %s", detail),
			}
		}
		it := res.Get("item_list.0")
		if it.Exists() {
			return json.RawMessage(it.Raw), nil
		}
	}
	return nil, crawler.NewMalformedMetadataError("douyin", awemeID, "item_list")
}
