package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"video-relay-go/internal/crawler"
)

type Downloader struct {
	Client *http.Client
	Dir    string
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
		Dir: dir,
	}
}

func (d *Downloader) Download(ctx context.Context, url, filename string) error {
	if url == "" {
		return fmt.Errorf("url is empty")
	}

	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(d.Dir, filename)
	if _, err := os.Stat(path); err == nil {
		return nil // already downloaded
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = d.fetch(ctx, url, out)
	if err != nil {
		os.Remove(path)
	}
	return err
}

// DownloadTemp streams the media into a fresh temp file and returns
// its path and size. The caller owns the file and must remove it.
func (d *Downloader) DownloadTemp(ctx context.Context, url string) (string, int64, error) {
	if url == "" {
		return "", 0, fmt.Errorf("url is empty")
	}

	tmp, err := os.CreateTemp("", "video-relay-*.mp4")
	if err != nil {
		return "", 0, err
	}
	defer tmp.Close()

	n, err := d.fetch(ctx, url, tmp)
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, err
	}
	return tmp.Name(), n, nil
}

func (d *Downloader) fetch(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, crawler.NewHTTPStatusError("", url, resp.StatusCode, "")
	}
	return io.Copy(w, resp.Body)
}

// BatchDownload fetches multiple files concurrently; the returned
// slice lines up with the input urls.
func (d *Downloader) BatchDownload(ctx context.Context, urls []string, filenames []string) []error {
	if len(urls) != len(filenames) {
		return []error{fmt.Errorf("urls and filenames length mismatch")}
	}

	var wg sync.WaitGroup
	errs := make([]error, len(urls))

	for i, url := range urls {
		wg.Add(1)
		go func(i int, u, f string) {
			defer wg.Done()
			errs[i] = d.Download(ctx, u, f)
		}(i, url, filenames[i])
	}

	wg.Wait()
	return errs
}
