package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

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
	rc.SetBaseURL("https://api.bilibili.com")
	rc.SetHeaders(map[string]string{
		"accept":          "application/json, text/plain, */*",
		"accept-language": "zh-CN,zh;q=0.9",
		"referer":         "https://www.bilibili.com/",
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

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FetchView returns the view document for a bvid. The data object
// carries title, owner, stat and the cid needed for playback lookup.
func (c *Client) FetchView(ctx context.Context, bvid string) (json.RawMessage, error) {
	const path = "/x/web-interface/view"
	var out apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("bvid", bvid).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindHTTP,
			Platform: "bilibili",
			URL:      path,
			Msg:      "view request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, crawler.NewHTTPStatusError("bilibili", path, resp.StatusCode(), resp.String())
	}
	if out.Code != 0 {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindMalformedMetadata,
			Platform: "bilibili",
			URL:      path,
			Msg:      fmt.Sprintf("api error: code=%d message=%s", out.Code, out.Message),
		}
	}
	return out.Data, nil
}

// FetchPlayURL requests the DASH playback document for a bvid/cid pair.
func (c *Client) FetchPlayURL(ctx context.Context, bvid string, cid int64) (json.RawMessage, error) {
	const path = "/x/player/playurl"
	qn := config.AppConfig.BiliQn
	if qn <= 0 {
		qn = 80
	}
	var out apiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"bvid": bvid,
			"cid":  strconv.FormatInt(cid, 10),
			"qn":   strconv.Itoa(qn),
			// fnval 4048 selects the full DASH feature set.
			"fnval": "4048",
			"fnver": "0",
			"fourk": "1",
		}).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindHTTP,
			Platform: "bilibili",
			URL:      path,
			Msg:      "playurl request failed",
			Err:      err,
		}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, crawler.NewHTTPStatusError("bilibili", path, resp.StatusCode(), resp.String())
	}
	if out.Code != 0 {
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindMediaResolution,
			Platform: "bilibili",
			URL:      path,
			Msg:      fmt.Sprintf("api error: code=%d message=%s", out.Code, out.Message),
		}
	}
	return out.Data, nil
}
