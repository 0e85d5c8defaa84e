package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"video-relay-go/internal/analyze"
	"video-relay-go/internal/cache"
	"video-relay-go/internal/config"
	"video-relay-go/internal/crawler"
	"video-relay-go/internal/relay"
	"video-relay-go/internal/resolve"
	"video-relay-go/internal/store"
)

type stubResolver struct {
	res *resolve.Resolution
	err error
}

func (s *stubResolver) Resolve(ctx context.Context, url string, minimal bool) (*resolve.Resolution, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !minimal {
		return &resolve.Resolution{Platform: s.res.Platform, ContentID: s.res.ContentID, Raw: s.res.Raw}, nil
	}
	return s.res, nil
}

type stubAnalyzer struct {
	res analyze.Result
	err error
}

func (s *stubAnalyzer) Probe(ctx context.Context, url string) (analyze.Result, error) {
	return s.res, s.err
}

type captureSink struct {
	sent []string
}

func (s *captureSink) SendVideo(ctx context.Context, media, caption string) (string, error) {
	s.sent = append(s.sent, media)
	return "file-1", nil
}

func (s *captureSink) SendAlbum(ctx context.Context, media []string, caption string) ([]string, error) {
	s.sent = append(s.sent, media...)
	ids := make([]string, len(media))
	for i := range media {
		ids[i] = "file-" + media[i]
	}
	return ids, nil
}

func newTestServer(r Resolver, a Analyzer) *httptest.Server {
	return httptest.NewServer(NewServer(r, a, nil).Handler())
}

func videoRes() *resolve.Resolution {
	return &resolve.Resolution{
		Platform:  resolve.PlatformTikTok,
		ContentID: "42",
		Record: &resolve.Record{
			Type:      resolve.TypeVideo,
			Platform:  resolve.PlatformTikTok,
			ContentID: "42",
			Video:     &resolve.VideoMedia{PlayURL: "https://cdn/42.mp4"},
		},
		Raw: json.RawMessage(`{"aweme_id": "42"}`),
	}
}

func TestVideoDataMinimal(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/hybrid/video_data?url=https://www.tiktok.com/@x/video/42&minimal=true")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Code int             `json:"code"`
		Data *resolve.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data == nil || body.Data.Video == nil || body.Data.Video.PlayURL != "https://cdn/42.mp4" {
		t.Fatalf("body = %+v", body)
	}
}

func TestVideoDataPassthrough(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/hybrid/video_data?url=https://www.tiktok.com/@x/video/42&minimal=false")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["aweme_id"] != "42" {
		t.Fatalf("raw payload missing: %+v", body.Data)
	}
}

func TestVideoDataMissingURL(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/hybrid/video_data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestVideoDataErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{crawler.NewUnrecognizedSourceError("https://example.com/x"), http.StatusBadRequest},
		{crawler.NewIdentifierNotFoundError("tiktok", "u"), http.StatusBadRequest},
		{crawler.NewMalformedMetadataError("tiktok", "42", "aweme_list"), http.StatusBadGateway},
		{crawler.NewMediaResolutionError("douyin", "42", "no play address"), http.StatusBadGateway},
		{crawler.NewHTTPStatusError("tiktok", "/feed", 429, ""), http.StatusTooManyRequests},
		{crawler.NewHTTPStatusError("tiktok", "/feed", 403, ""), http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		ts := newTestServer(&stubResolver{err: tc.err}, &stubAnalyzer{})
		resp, err := http.Get(ts.URL + "/api/hybrid/video_data?url=https://x/y")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		ts.Close()
		if resp.StatusCode != tc.status {
			t.Fatalf("err %v: status = %d, want %d", tc.err, resp.StatusCode, tc.status)
		}
	}
}

func TestVideoExtraData(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{res: analyze.Result{FPS: 30, SizeMB: "4.20 MB"}})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/video_extra_data", "application/json",
		strings.NewReader(`{"url": "https://cdn/42.mp4"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var body analyze.Result
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.FPS != 30 || body.SizeMB != "4.20 MB" {
		t.Fatalf("body = %+v", body)
	}
}

func TestVideoExtraDataRejectsEmptyBody(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/video_extra_data", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestDeliverEndpoint(t *testing.T) {
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.DataDir = t.TempDir()
	config.AppConfig.CacheDefaultTTLSec = 60

	sink := &captureSink{}
	rel := relay.New(relay.Options{
		Resolver: &stubResolver{res: videoRes()},
		Sink:     sink,
		Cache:    cache.NewMemoryCache(),
		History:  relay.StoreHistory{},
	})
	ts := httptest.NewServer(NewServer(&stubResolver{res: videoRes()}, &stubAnalyzer{}, rel).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/deliver", "application/json",
		strings.NewReader(`{"url": "https://www.tiktok.com/@x/video/42"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Data relay.Artifact `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.FileID != "file-1" || body.Data.Caption == "" {
		t.Fatalf("artifact = %+v", body.Data)
	}

	// The delivery landed in the history store.
	hist, err := http.Get(ts.URL + "/api/history?limit=10")
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	defer hist.Body.Close()
	var histBody struct {
		Data []store.ResolutionRow `json:"data"`
	}
	if err := json.NewDecoder(hist.Body).Decode(&histBody); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(histBody.Data) != 1 || histBody.Data[0].ContentID != "42" {
		t.Fatalf("history = %+v", histBody.Data)
	}

	// A second request replays the cached handle instead of the CDN URL.
	again, err := http.Post(ts.URL+"/api/deliver", "application/json",
		strings.NewReader(`{"url": "https://www.tiktok.com/@x/video/42"}`))
	if err != nil {
		t.Fatalf("POST again: %v", err)
	}
	again.Body.Close()
	if len(sink.sent) != 2 || sink.sent[1] != "file-1" {
		t.Fatalf("sink.sent = %v", sink.sent)
	}
}

func TestDeliverEndpointMissingURL(t *testing.T) {
	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/deliver", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.DataDir = t.TempDir()

	row := store.ResolutionRow{
		Platform: "tiktok", ContentID: "42", SourceURL: "https://t/42",
		Type: "video", Caption: "c", CreatedAt: time.Now().UTC(),
	}
	if err := store.SaveResolution(context.Background(), row); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/history?limit=10")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Data []store.ResolutionRow `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ContentID != "42" {
		t.Fatalf("data = %+v", body.Data)
	}
}

func TestHistoryExportEndpoint(t *testing.T) {
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.DataDir = t.TempDir()

	ts := newTestServer(&stubResolver{res: videoRes()}, &stubAnalyzer{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/history/export")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("content-type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content-type = %q", ct)
	}
}
