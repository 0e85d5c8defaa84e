package douyin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
)

func TestAwemeID(t *testing.T) {
	c := NewClient()
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.douyin.com/video/7372484719365098803", "7372484719365098803"},
		{"https://www.douyin.com/note/7372484719365098803", "7372484719365098803"},
		{"https://www.iesdouyin.com/share/video/7372484719365098803/?region=CN", "7372484719365098803"},
		{"https://www.douyin.com/discover?modal_id=7372484719365098803", "7372484719365098803"},
		{"7372484719365098803", "7372484719365098803"},
	}
	for _, tc := range cases {
		got, err := c.AwemeID(context.Background(), tc.url)
		if err != nil {
			t.Fatalf("AwemeID(%q): %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("AwemeID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestAwemeIDNotFound(t *testing.T) {
	c := NewClient()
	_, err := c.AwemeID(context.Background(), "https://www.douyin.com/user/MS4wLjAB")
	if err == nil {
		t.Fatalf("expected error")
	}
	var ce crawler.Error
	if !errors.As(err, &ce) || ce.Kind != crawler.ErrorKindIdentifierNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func sharePage(awemeID, inner string) string {
	return fmt.Sprintf(`<!DOCTYPE html><html><head></head><body>
<script>window._ROUTER_DATA = {"loaderData": {"video_%s/page": {"videoInfoRes": %s}}}</script>
</body></html>`, awemeID, inner)
}

func TestFetchAweme(t *testing.T) {
	const id = "7372484719365098803"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/share/video/"+id+"/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, sharePage(id, `{"item_list": [{"aweme_id": "`+id+`", "desc": "hello"}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	raw, err := c.FetchAweme(context.Background(), id)
	if err != nil {
		t.Fatalf("FetchAweme: %v", err)
	}
	if got := gjson.GetBytes(raw, "desc").String(); got != "hello" {
		t.Fatalf("desc = %q", got)
	}
}

func TestFetchAwemeFiltered(t *testing.T) {
	const id = "123"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sharePage(id, `{"filter_list": [{"filter_reason": "content gone", "detail_msg": "removed by author"}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	_, err := c.FetchAweme(context.Background(), id)
	if err == nil {
		t.Fatalf("expected error for filtered content")
	}
	if crawler.KindOf(err) != crawler.ErrorKindMediaResolution {
		t.Fatalf("kind=%s err=%v", crawler.KindOf(err), err)
	}
}

func TestFetchAwemeNoRouterData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>verify</body></html>")
	}))
	defer srv.Close()

	c := NewClient()
	c.httpClient.SetBaseURL(srv.URL)

	_, err := c.FetchAweme(context.Background(), "42")
	if crawler.KindOf(err) != crawler.ErrorKindMalformedMetadata {
		t.Fatalf("kind=%s err=%v", crawler.KindOf(err), err)
	}
}
