// Package analyze probes downloaded media files for the tech facts
// that never appear in platform metadata: real frame rate and on-disk
// size.
package analyze

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/config"
	"video-relay-go/internal/downloader"
	"video-relay-go/internal/logger"
)

// Result carries probe output. SizeMB is pre-formatted for captions.
type Result struct {
	FPS    int    `json:"fps"`
	SizeMB string `json:"size_mb"`
}

// probeRunner abstracts the ffprobe invocation for tests.
type probeRunner func(ctx context.Context, path string) ([]byte, error)

type Analyzer struct {
	dl    *downloader.Downloader
	probe probeRunner
}

func New(dl *downloader.Downloader) *Analyzer {
	return &Analyzer{dl: dl, probe: runFFprobe}
}

// Probe downloads the media to a temp file, extracts the frame rate
// with ffprobe and reports the file size. The temp file is removed in
// every path.
func (a *Analyzer) Probe(ctx context.Context, url string) (Result, error) {
	path, size, err := a.dl.DownloadTemp(ctx, url)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			logger.Warn("temp media not removed", "path", path, "err", err)
		}
	}()

	out, err := a.probe(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe: %w", err)
	}

	rate := gjson.GetBytes(out, "streams.0.r_frame_rate").String()
	fps, err := parseFrameRate(rate)
	if err != nil {
		return Result{}, err
	}

	return Result{
		FPS:    fps,
		SizeMB: fmt.Sprintf("%.2f MB", float64(size)/(1024*1024)),
	}, nil
}

func runFFprobe(ctx context.Context, path string) ([]byte, error) {
	bin := config.AppConfig.FFprobePath
	if bin == "" {
		bin = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "json",
		path,
	)
	return cmd.Output()
}

// parseFrameRate turns ffprobe's "30000/1001" form into a rounded
// integer fps.
func parseFrameRate(s string) (int, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, fmt.Errorf("unexpected frame rate %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("unexpected frame rate %q", s)
	}
	d, err := strconv.Atoi(den)
	if err != nil {
		return 0, fmt.Errorf("unexpected frame rate %q", s)
	}
	if d == 0 {
		return 0, nil
	}
	return int(float64(n)/float64(d) + 0.5), nil
}
