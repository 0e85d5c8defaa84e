package relay

import (
	"context"
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"

	"video-relay-go/internal/downloader"
)

// FileSink delivers media into the local data directory, standing in
// for a chat transport in command-line use. The file handles it hands
// back are the downloaded paths, so a cached replay resends the local
// file without touching the CDN again.
type FileSink struct {
	dl *downloader.Downloader
}

func NewFileSink(dl *downloader.Downloader) *FileSink {
	return &FileSink{dl: dl}
}

func (s *FileSink) SendVideo(ctx context.Context, media, caption string) (string, error) {
	return s.materialize(ctx, media, ".mp4")
}

func (s *FileSink) SendAlbum(ctx context.Context, media []string, caption string) ([]string, error) {
	paths := make([]string, len(media))
	for i, m := range media {
		p, err := s.materialize(ctx, m, ".jpg")
		if err != nil {
			return nil, err
		}
		paths[i] = p
	}
	return paths, nil
}

// materialize maps a media reference to a local path. A reference that
// already names an existing file is a replayed handle and is returned
// as-is; anything else is treated as a URL and downloaded under a name
// derived from it, so repeated sends of the same URL reuse the file.
func (s *FileSink) materialize(ctx context.Context, media, ext string) (string, error) {
	if _, err := os.Stat(media); err == nil {
		return media, nil
	}
	name := fmt.Sprintf("%x%s", sha1.Sum([]byte(media)), ext)
	if err := s.dl.Download(ctx, media, name); err != nil {
		return "", err
	}
	return filepath.Join(s.dl.Dir, name), nil
}
