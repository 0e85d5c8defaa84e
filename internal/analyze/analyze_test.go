package analyze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"video-relay-go/internal/downloader"
)

func TestProbe(t *testing.T) {
	payload := make([]byte, 3*1024*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var probed string
	a := New(downloader.NewDownloader(t.TempDir()))
	a.probe = func(ctx context.Context, path string) ([]byte, error) {
		probed = path
		return []byte(`{"streams": [{"r_frame_rate": "30000/1001"}]}`), nil
	}

	res, err := a.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.FPS != 30 {
		t.Fatalf("fps = %d", res.FPS)
	}
	if res.SizeMB != "3.00 MB" {
		t.Fatalf("size = %q", res.SizeMB)
	}
	if _, err := os.Stat(probed); !os.IsNotExist(err) {
		t.Fatalf("temp file must be removed after probing")
	}
}

func TestProbeRemovesTempOnFFprobeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	var probed string
	a := New(downloader.NewDownloader(t.TempDir()))
	a.probe = func(ctx context.Context, path string) ([]byte, error) {
		probed = path
		return nil, errors.New("no video stream")
	}

	_, err := a.Probe(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "ffprobe") {
		t.Fatalf("expected ffprobe error, got %v", err)
	}
	if _, err := os.Stat(probed); !os.IsNotExist(err) {
		t.Fatalf("temp file must be removed on failure")
	}
}

func TestParseFrameRate(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"30000/1001", 30},
		{"25/1", 25},
		{"24000/1001", 24},
		{"60/1", 60},
		{"0/0", 0},
	}
	for _, tc := range cases {
		got, err := parseFrameRate(tc.in)
		if err != nil {
			t.Fatalf("parseFrameRate(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseFrameRate(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if _, err := parseFrameRate("thirty"); err == nil {
		t.Fatalf("expected error for malformed rate")
	}
}
