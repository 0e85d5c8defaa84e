// Package relay drives a resolved link to the delivery channel: cache
// gate first, then resolution, caption rendering, media hand-off and
// cache write-back.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"video-relay-go/internal/cache"
	"video-relay-go/internal/config"
	"video-relay-go/internal/crawler"
	"video-relay-go/internal/logger"
	"video-relay-go/internal/render"
	"video-relay-go/internal/resolve"
)

// Artifact is what the delivery channel hands back after a successful
// send and what the cache stores: channel file handles plus the
// caption they were sent with.
type Artifact struct {
	Type    resolve.ContentType `json:"type"`
	FileID  string              `json:"file_id,omitempty"`
	FileIDs []string            `json:"file_ids,omitempty"`
	Caption string              `json:"caption"`
}

// Sink delivers media to the channel. Sends accept either a direct
// media URL or a channel file handle from a previous send.
type Sink interface {
	SendVideo(ctx context.Context, media, caption string) (fileID string, err error)
	SendAlbum(ctx context.Context, media []string, caption string) (fileIDs []string, err error)
}

// Resolver is the resolution entry point; *resolve.Resolver satisfies
// it.
type Resolver interface {
	Resolve(ctx context.Context, url string, minimal bool) (*resolve.Resolution, error)
}

// Prober supplies the optional tech facts for video captions;
// *analyze.Analyzer satisfies it. Probe failure degrades the caption,
// it never fails the delivery.
type Prober interface {
	ProbeExtra(ctx context.Context, url string) (*render.Extra, error)
}

// HistoryEntry is the best-effort audit record appended after each
// non-cached delivery.
type HistoryEntry struct {
	Platform  string
	ContentID string
	SourceURL string
	Type      string
	Caption   string
	CreatedAt time.Time
}

type History interface {
	Append(ctx context.Context, e HistoryEntry) error
}

type Relay struct {
	resolver Resolver
	sink     Sink
	cache    cache.Cache
	prober   Prober
	history  History
}

type Options struct {
	Resolver Resolver
	Sink     Sink
	Cache    cache.Cache
	Prober   Prober
	History  History
}

func New(opts Options) *Relay {
	return &Relay{
		resolver: opts.Resolver,
		sink:     opts.Sink,
		cache:    opts.Cache,
		prober:   opts.Prober,
		history:  opts.History,
	}
}

// Deliver resolves the URL and pushes the media to the sink. A cache
// hit on either the source URL or the content id replays the stored
// artifact without any platform traffic. Nothing is cached unless the
// send succeeded.
func (r *Relay) Deliver(ctx context.Context, url string) (*Artifact, error) {
	if art, ok := r.cachedArtifact(ctx, url); ok {
		if err := r.replay(ctx, art); err != nil {
			return nil, err
		}
		return art, nil
	}

	res, err := r.resolver.Resolve(ctx, url, true)
	if err != nil {
		return nil, err
	}
	rec := res.Record

	idKey := contentKey(res.Platform, res.ContentID)
	if art, ok := r.cachedArtifact(ctx, idKey); ok {
		if err := r.replay(ctx, art); err != nil {
			return nil, err
		}
		// Future hits on this exact URL skip resolution entirely.
		r.cacheArtifact(ctx, url, art)
		return art, nil
	}

	var extra *render.Extra
	if rec.Type == resolve.TypeVideo && rec.Video != nil && r.prober != nil {
		extra, err = r.prober.ProbeExtra(ctx, rec.Video.PlayURL)
		if err != nil {
			logger.Warn("media probe failed", "content_id", res.ContentID, "err", err)
			extra = nil
		}
	}
	caption := render.Caption(rec, extra)

	art := &Artifact{Type: rec.Type, Caption: caption}
	switch {
	case rec.Type == resolve.TypeVideo && rec.Video != nil:
		fileID, err := r.sink.SendVideo(ctx, rec.Video.PlayURL, caption)
		if err != nil {
			return nil, err
		}
		art.FileID = fileID
	case rec.Type == resolve.TypeImage && rec.Images != nil:
		fileIDs, err := r.sendAlbum(ctx, rec.Images.URLs, caption)
		if err != nil {
			return nil, err
		}
		art.FileIDs = fileIDs
	default:
		return nil, crawler.Error{
			Kind:     crawler.ErrorKindUnsupportedType,
			Platform: string(res.Platform),
			URL:      url,
			Msg:      "record has no deliverable media",
		}
	}

	r.cacheArtifact(ctx, idKey, art)
	r.cacheArtifact(ctx, url, art)

	if r.history != nil {
		entry := HistoryEntry{
			Platform:  string(res.Platform),
			ContentID: res.ContentID,
			SourceURL: url,
			Type:      string(rec.Type),
			Caption:   caption,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.history.Append(ctx, entry); err != nil {
			logger.Warn("history append failed", "content_id", res.ContentID, "err", err)
		}
	}
	return art, nil
}

// replay re-sends a cached artifact through the sink using the stored
// channel file handles.
func (r *Relay) replay(ctx context.Context, art *Artifact) error {
	switch art.Type {
	case resolve.TypeVideo:
		_, err := r.sink.SendVideo(ctx, art.FileID, art.Caption)
		return err
	case resolve.TypeImage:
		_, err := r.sendAlbum(ctx, art.FileIDs, art.Caption)
		return err
	default:
		return fmt.Errorf("cached artifact has unknown type %q", art.Type)
	}
}

// sendAlbum chunks the album to the channel's media-group limit; only
// the first chunk carries the caption.
func (r *Relay) sendAlbum(ctx context.Context, media []string, caption string) ([]string, error) {
	size := config.AppConfig.AlbumChunkSize
	if size <= 0 {
		size = 10
	}
	var fileIDs []string
	for i := 0; i < len(media); i += size {
		end := i + size
		if end > len(media) {
			end = len(media)
		}
		chunkCaption := ""
		if i == 0 {
			chunkCaption = caption
		}
		ids, err := r.sink.SendAlbum(ctx, media[i:end], chunkCaption)
		if err != nil {
			return nil, err
		}
		fileIDs = append(fileIDs, ids...)
	}
	return fileIDs, nil
}

func (r *Relay) cachedArtifact(ctx context.Context, key string) (*Artifact, bool) {
	if r.cache == nil {
		return nil, false
	}
	b, ok, err := r.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var art Artifact
	if err := json.Unmarshal(b, &art); err != nil {
		return nil, false
	}
	return &art, true
}

func (r *Relay) cacheArtifact(ctx context.Context, key string, art *Artifact) {
	if r.cache == nil {
		return
	}
	b, err := json.Marshal(art)
	if err != nil {
		return
	}
	ttl := time.Duration(config.AppConfig.CacheDefaultTTLSec) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := r.cache.Set(ctx, key, b, ttl); err != nil {
		logger.Warn("artifact cache write failed", "key", key, "err", err)
	}
}

func contentKey(platform resolve.Platform, contentID string) string {
	return fmt.Sprintf("artifact:%s:%s", platform, contentID)
}
