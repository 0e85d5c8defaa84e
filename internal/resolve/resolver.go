package resolve

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
	"video-relay-go/internal/logger"
)

// DouyinFetcher resolves and fetches douyin content. The id step is
// pure once the share link has been expanded.
type DouyinFetcher interface {
	AwemeID(ctx context.Context, url string) (string, error)
	FetchAweme(ctx context.Context, awemeID string) (json.RawMessage, error)
}

// TikTokFetcher discovers the aweme id (may fetch the share page) and
// fetches raw metadata; AuthorStats backs the best-effort enrichment.
type TikTokFetcher interface {
	AwemeID(ctx context.Context, url string) (string, error)
	FetchAweme(ctx context.Context, awemeID string) (json.RawMessage, error)
	AuthorStats(ctx context.Context, secUID string) (AuthorStats, error)
}

// BilibiliFetcher exposes the view document and the deferred
// playback-address lookup.
type BilibiliFetcher interface {
	FetchView(ctx context.Context, bvid string) (json.RawMessage, error)
	FetchPlayURL(ctx context.Context, bvid string, cid int64) (json.RawMessage, error)
}

type AuthorStats struct {
	FollowerCount  int64
	TotalFavorited int64
}

type Options struct {
	Douyin   DouyinFetcher
	TikTok   TikTokFetcher
	Bilibili BilibiliFetcher
	Expander *LinkExpander

	// EnrichAuthor toggles the extra TikTok profile call.
	EnrichAuthor bool
}

type Resolver struct {
	douyin   DouyinFetcher
	tiktok   TikTokFetcher
	bilibili BilibiliFetcher
	expander *LinkExpander
	enrich   bool
}

func New(opts Options) *Resolver {
	exp := opts.Expander
	if exp == nil {
		exp = NewLinkExpander(0)
	}
	return &Resolver{
		douyin:   opts.Douyin,
		tiktok:   opts.TikTok,
		bilibili: opts.Bilibili,
		expander: exp,
		enrich:   opts.EnrichAuthor,
	}
}

// Resolve classifies the URL, drives the platform fetcher and returns
// either the canonical record (minimal=true) or the raw platform
// payload (minimal=false). Apart from author enrichment every failure
// below propagates unmodified.
func (r *Resolver) Resolve(ctx context.Context, rawURL string, minimal bool) (*Resolution, error) {
	target := rawURL
	if IsShortLink(target) {
		expanded, err := r.expander.Expand(ctx, target)
		if err != nil {
			return nil, err
		}
		target = expanded
	}

	platform, err := Classify(target)
	if err != nil {
		return nil, err
	}

	switch platform {
	case PlatformDouyin:
		return r.resolveDouyin(ctx, target, minimal)
	case PlatformTikTok:
		return r.resolveTikTok(ctx, target, minimal)
	case PlatformBilibili:
		return r.resolveBilibili(ctx, target, minimal)
	default:
		return nil, crawler.NewUnrecognizedSourceError(rawURL)
	}
}

func (r *Resolver) resolveDouyin(ctx context.Context, url string, minimal bool) (*Resolution, error) {
	id, err := r.douyin.AwemeID(ctx, url)
	if err != nil {
		return nil, err
	}
	raw, err := r.douyin.FetchAweme(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &Resolution{Platform: PlatformDouyin, ContentID: id, Raw: raw}
	if !minimal {
		return out, nil
	}
	rec, err := normalizeDouyin(id, gjson.ParseBytes(raw))
	if err != nil {
		return nil, err
	}
	out.Record = rec
	return out, nil
}

func (r *Resolver) resolveTikTok(ctx context.Context, url string, minimal bool) (*Resolution, error) {
	id, err := r.tiktok.AwemeID(ctx, url)
	if err != nil {
		return nil, err
	}
	raw, err := r.tiktok.FetchAweme(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &Resolution{Platform: PlatformTikTok, ContentID: id, Raw: raw}

	parsed := gjson.ParseBytes(raw)
	var stats *AuthorStats
	if r.enrich {
		if secUID := parsed.Get("author.sec_uid").String(); secUID != "" {
			s, err := r.tiktok.AuthorStats(ctx, secUID)
			if err != nil {
				// Enrichment is best-effort; the only swallowed
				// failure in the pipeline.
				logger.Warn("tiktok author stats unavailable", "aweme_id", id, "err", err)
			} else {
				stats = &s
			}
		}
	}

	if !minimal {
		if stats != nil {
			out.Raw = injectAuthorStats(raw, *stats)
		}
		return out, nil
	}

	rec, err := normalizeTikTok(id, parsed)
	if err != nil {
		return nil, err
	}
	if stats != nil {
		follower, favorited := stats.FollowerCount, stats.TotalFavorited
		rec.Author.FollowerCount = &follower
		rec.Author.TotalFavorited = &favorited
	}
	out.Record = rec
	return out, nil
}

func (r *Resolver) resolveBilibili(ctx context.Context, url string, minimal bool) (*Resolution, error) {
	bvid, err := ParseBilibiliID(url)
	if err != nil {
		return nil, err
	}
	raw, err := r.bilibili.FetchView(ctx, bvid)
	if err != nil {
		return nil, err
	}
	out := &Resolution{Platform: PlatformBilibili, ContentID: bvid, Raw: raw}
	if !minimal {
		return out, nil
	}
	rec, err := r.normalizeBilibili(ctx, bvid, gjson.ParseBytes(raw))
	if err != nil {
		return nil, err
	}
	out.Record = rec
	return out, nil
}

// injectAuthorStats merges the enrichment result into the raw payload
// for passthrough consumers. Failure falls back to the original bytes.
func injectAuthorStats(raw json.RawMessage, stats AuthorStats) json.RawMessage {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	author, ok := m["author"].(map[string]any)
	if !ok {
		return raw
	}
	author["follower_count"] = stats.FollowerCount
	author["total_favorited"] = stats.TotalFavorited
	b, err := json.Marshal(m)
	if err != nil {
		return raw
	}
	return b
}
