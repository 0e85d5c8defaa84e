package tiktok

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"video-relay-go/internal/config"
	"video-relay-go/internal/crawler"
	"video-relay-go/internal/resolve"
)

// Client talks to two surfaces: the unsigned app feed endpoint for
// aweme metadata and the web user-detail endpoint for author stats.
type Client struct {
	appClient *resty.Client
	webClient *resty.Client
}

func NewClient() *Client {
	timeoutSec := config.AppConfig.HttpTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	app := resty.NewWithClient(&http.Client{Timeout: time.Duration(timeoutSec) * time.Second})
	app.SetBaseURL("https://api16-normal-c-useast1a.tiktokv.com")
	app.SetHeaders(map[string]string{
		"accept":     "application/json",
		"user-agent": "com.ss.android.ugc.trill/494+Mozilla/5.0+(Linux;+Android+12;+2112123G+Build/SKQ1.211006.001;+wv)+AppleWebKit/537.36+(KHTML,+like+Gecko)+Version/4.0+Chrome/107.0.5304.105+Mobile+Safari/537.36",
	})

	web := resty.NewWithClient(&http.Client{Timeout: time.Duration(timeoutSec) * time.Second})
	web.SetBaseURL("https://www.tiktok.com")
	web.SetHeaders(map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": "en-US,en;q=0.9",
		"referer":         "https://www.tiktok.com/",
		"user-agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	})

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
	for _, rc := range []*resty.Client{app, web} {
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
	}

	return &Client{appClient: app, webClient: web}
}

var reTikTokItem = regexp.MustCompile(`(?:/video/|/photo/|/v/)(\d+)`)

// AwemeID extracts the numeric item id from a canonical tiktok URL.
func (c *Client) AwemeID(ctx context.Context, url string) (string, error) {
	s := strings.TrimSpace(url)
	if m := reTikTokItem.FindStringSubmatch(s); len(m) == 2 {
		return m[1], nil
	}
	return "", crawler.NewIdentifierNotFoundError("tiktok", url)
}

// FetchAweme pulls the item through the app feed endpoint, which
// answers without signature for a single aweme_id.
func (c *Client) FetchAweme(ctx context.Context, awemeID string) (json.RawMessage, error) {
	const path = "/aweme/v1/feed/"
	resp, err := c.appClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"aweme_id":        awemeID,
			"iid":             "7318518857994389254",
			"device_id":       "7318517321748022790",
			"channel":         "googleplay",
			"app_name":        "musical_ly",
			"version_code":    "300904",
			"device_platform": "android",
			"device_type":     "ASUS_Z01QD",
			"os_version":      "9",
		}).
		Get(path)
	if err != nil {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindHTTP,
			Platform: "tiktok",
			URL:      path,
			Msg:      "feed request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, crawler.NewHTTPStatusError("tiktok", path, resp.StatusCode(), resp.String())
	}
	item := gjson.GetBytes(resp.Body(), "aweme_list.0")
	if !item.Exists() {
		return nil, crawler.NewMalformedMetadataError("tiktok", awemeID, "aweme_list")
	}
	// The feed endpoint may answer with an unrelated item when the id
	// is gone; treat a mismatch as not found.
	if got := item.Get("aweme_id").String(); got != "" && got != awemeID {
		return nil, crawler.NewMalformedMetadataError("tiktok", awemeID, "aweme_id")
	}
	return json.RawMessage(item.Raw), nil
}

// AuthorStats fetches follower and total-like counts from the web
// user-detail endpoint.
func (c *Client) AuthorStats(ctx context.Context, secUID string) (resolve.AuthorStats, error) {
	const path = "/api/user/detail/"
	resp, err := c.webClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secUid":   secUID,
			"uniqueId": "",
		}).
		Get(path)
	if err != nil {
		return resolve.AuthorStats{}, crawler.Error{
			Kind:     crawler.ErrorKindHTTP,
			Platform: "tiktok",
			URL:      path,
			Msg:      "user detail request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return resolve.AuthorStats{}, crawler.NewHTTPStatusError("tiktok", path, resp.StatusCode(), resp.String())
	}
	stats := gjson.GetBytes(resp.Body(), "userInfo.stats")
	if !stats.Exists() {
		return resolve.AuthorStats{}, crawler.NewMalformedMetadataError("tiktok", secUID, "userInfo.stats")
	}
	return resolve.AuthorStats{
		FollowerCount:  stats.Get("followerCount").Int(),
		TotalFavorited: stats.Get("heartCount").Int(),
	}, nil
}
