package resolve

import (
	"context"
	"strconv"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
)

// normalizeBilibili maps a view document and, when a cid is present,
// resolves the DASH playback address with a second call. A view
// without a cid (restricted content) yields a video record with no
// media, which the caller treats as incomplete rather than failed.
func (r *Resolver) normalizeBilibili(ctx context.Context, bvid string, raw gjson.Result) (*Record, error) {
	rec := &Record{
		Type:       TypeVideo,
		Platform:   PlatformBilibili,
		ContentID:  bvid,
		Desc:       raw.Get("title").String(),
		CreateTime: raw.Get("pubdate").Int(),
		Author: Author{
			Nickname: raw.Get("owner.name").String(),
			UniqueID: midString(raw.Get("owner.mid").Int()),
		},
		Statistics: Statistics{
			DiggCount:    nonNegative(raw.Get("stat.like").Int()),
			CommentCount: nonNegative(raw.Get("stat.reply").Int()),
			ShareCount:   nonNegative(raw.Get("stat.share").Int()),
			PlayCount:    nonNegative(raw.Get("stat.view").Int()),
		},
		Covers: map[string]string{},
	}
	if pic := raw.Get("pic").String(); pic != "" {
		rec.Covers["cover"] = pic
	}

	cid := raw.Get("cid").Int()
	if cid == 0 {
		return rec, nil
	}

	playRaw, err := r.bilibili.FetchPlayURL(ctx, bvid, cid)
	if err != nil {
		return nil, err
	}
	play := gjson.ParseBytes(playRaw)
	streams := play.Get("dash.video").Array()
	if len(streams) == 0 {
		return nil, crawler.NewMediaResolutionError(string(PlatformBilibili), bvid, "dash manifest has no video streams")
	}
	u := streams[0].Get("baseUrl").String()
	if u == "" {
		u = streams[0].Get("base_url").String()
	}
	if u == "" {
		return nil, crawler.NewMediaResolutionError(string(PlatformBilibili), bvid, "dash stream without base url")
	}
	rec.Video = &VideoMedia{
		PlayURL:    u,
		DurationMs: raw.Get("duration").Int() * 1000,
		Width:      streams[0].Get("width").Int(),
		Height:     streams[0].Get("height").Int(),
	}
	return rec, nil
}

// owner.mid is numeric in the payload; keep it as the handle string.
func midString(mid int64) string {
	if mid == 0 {
		return ""
	}
	return strconv.FormatInt(mid, 10)
}
