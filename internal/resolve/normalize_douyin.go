package resolve

import (
	"strings"

	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
)

func normalizeDouyin(awemeID string, raw gjson.Result) (*Record, error) {
	typ := TypeForCode(raw.Get("aweme_type").Int())

	rec := &Record{
		Type:       typ,
		Platform:   PlatformDouyin,
		ContentID:  awemeID,
		Desc:       raw.Get("desc").String(),
		CreateTime: raw.Get("create_time").Int(),
		Region:     raw.Get("region").String(),
		Author: Author{
			Nickname: raw.Get("author.nickname").String(),
			UniqueID: raw.Get("author.unique_id").String(),
			SecUID:   raw.Get("author.sec_uid").String(),
		},
		Statistics: statisticsFrom(raw.Get("statistics")),
		Covers:     coversFrom(raw.Get("video"), "cover", "origin_cover", "dynamic_cover"),
		Hashtags:   hashtagsFrom(raw.Get("text_extra")),
	}
	if title := raw.Get("music.title").String(); title != "" {
		rec.Music = &Music{Title: title}
	}

	switch typ {
	case TypeVideo:
		wm := raw.Get("video.play_addr.url_list.0").String()
		if wm == "" {
			return nil, crawler.NewMediaResolutionError(string(PlatformDouyin), awemeID, "play_addr url_list empty")
		}
		// The watermarked stream lives under /playwm/; the clean one
		// under /play/ on the same host. No second fetch needed.
		rec.Video = &VideoMedia{
			PlayURL:    strings.Replace(wm, "playwm", "play", 1),
			DurationMs: raw.Get("video.duration").Int(),
			Width:      raw.Get("video.width").Int(),
			Height:     raw.Get("video.height").Int(),
		}
	case TypeImage:
		images := raw.Get("images").Array()
		if len(images) == 0 {
			return nil, crawler.NewMalformedMetadataError(string(PlatformDouyin), awemeID, "images")
		}
		urls := make([]string, 0, len(images))
		for _, img := range images {
			u := img.Get("url_list.0").String()
			if u == "" {
				return nil, crawler.NewMediaResolutionError(string(PlatformDouyin), awemeID, "image entry without url_list")
			}
			urls = append(urls, u)
		}
		rec.Images = &ImageAlbum{URLs: urls}
	}
	return rec, nil
}
