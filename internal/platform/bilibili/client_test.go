package bilibili

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
)

func TestFetchView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/x/web-interface/view" || r.URL.Query().Get("bvid") != "BV1Q5411W7bH" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code": 0, "message": "0", "data": {"title": "demo", "cid": 333}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	data, err := c.FetchView(context.Background(), "BV1Q5411W7bH")
	if err != nil {
		t.Fatalf("FetchView: %v", err)
	}
	if gjson.GetBytes(data, "title").String() != "demo" {
		t.Fatalf("data = %s", data)
	}
}

func TestFetchViewAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code": -404, "message": "啥都木有", "data": null}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	if _, err := c.FetchView(context.Background(), "BV1Q5411W7bH"); crawler.KindOf(err) != crawler.ErrorKindMalformedMetadata {
		t.Fatalf("expected malformed_metadata: %v", err)
	}
}

func TestFetchPlayURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("bvid") != "BV1Q5411W7bH" || q.Get("cid") != "333" || q.Get("fnval") != "4048" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code": 0, "data": {"dash": {"video": [{"baseUrl": "https://cdn/v.m4s"}]}}}`)
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	data, err := c.FetchPlayURL(context.Background(), "BV1Q5411W7bH", 333)
	if err != nil {
		t.Fatalf("FetchPlayURL: %v", err)
	}
	if gjson.GetBytes(data, "dash.video.0.baseUrl").String() != "https://cdn/v.m4s" {
		t.Fatalf("data = %s", data)
	}
}

func TestFetchPlayURLRateLimited(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)
	c.httpClient.SetRetryCount(1)

	_, err := c.FetchPlayURL(context.Background(), "BV1Q5411W7bH", 333)
	if crawler.KindOf(err) != crawler.ErrorKindRateLimited {
		t.Fatalf("expected rate_limited: %v", err)
	}
	if calls < 2 {
		t.Fatalf("429 should be retried, calls=%d", calls)
	}
}
