package downloader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(dir)
	if err := d.Download(context.Background(), ts.URL, "a.txt"); err != nil {
		t.Fatalf("Download err: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil || string(b) != "ok" {
		t.Fatalf("file content: %q err=%v", b, err)
	}
}

func TestDownloadBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(dir)
	if err := d.Download(context.Background(), ts.URL, "a.txt"); err == nil {
		t.Fatalf("expected error on 403")
	}
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); !os.IsNotExist(err) {
		t.Fatalf("partial file must be cleaned up")
	}
}

func TestDownloadTemp(t *testing.T) {
	payload := make([]byte, 2048)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	d := NewDownloader(t.TempDir())
	path, size, err := d.DownloadTemp(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("DownloadTemp err: %v", err)
	}
	defer os.Remove(path)

	if size != int64(len(payload)) {
		t.Fatalf("size = %d", size)
	}
	if st, err := os.Stat(path); err != nil || st.Size() != int64(len(payload)) {
		t.Fatalf("stat: %v", err)
	}
}

func TestBatchDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(dir)
	errs := d.BatchDownload(context.Background(),
		[]string{ts.URL + "/1", ts.URL + "/2"},
		[]string{"one.txt", "two.txt"})
	for i, err := range errs {
		if err != nil {
			t.Fatalf("errs[%d] = %v", i, err)
		}
	}
	if b, _ := os.ReadFile(filepath.Join(dir, "two.txt")); string(b) != "/2" {
		t.Fatalf("two.txt = %q", b)
	}
}
