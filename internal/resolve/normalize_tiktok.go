package resolve

import (
	"github.com/tidwall/gjson"

	"video-relay-go/internal/crawler"
)

func normalizeTikTok(awemeID string, raw gjson.Result) (*Record, error) {
	typ := TypeForCode(raw.Get("aweme_type").Int())

	rec := &Record{
		Type:       typ,
		Platform:   PlatformTikTok,
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
		// Variant 0 of the bit-rate list is the accepted default
		// quality; there is no per-call negotiation.
		u := raw.Get("video.bit_rate.0.play_addr.url_list.0").String()
		if u == "" {
			return nil, crawler.NewMediaResolutionError(string(PlatformTikTok), awemeID, "bit_rate play_addr url_list empty")
		}
		rec.Video = &VideoMedia{
			PlayURL:    u,
			DurationMs: raw.Get("video.duration").Int(),
			Width:      raw.Get("video.bit_rate.0.play_addr.width").Int(),
			Height:     raw.Get("video.bit_rate.0.play_addr.height").Int(),
		}
	case TypeImage:
		images := raw.Get("image_post_info.images").Array()
		if len(images) == 0 {
			return nil, crawler.NewMalformedMetadataError(string(PlatformTikTok), awemeID, "image_post_info.images")
		}
		urls := make([]string, 0, len(images))
		for _, img := range images {
			u := img.Get("display_image.url_list.0").String()
			if u == "" {
				return nil, crawler.NewMediaResolutionError(string(PlatformTikTok), awemeID, "image entry without display url")
			}
			urls = append(urls, u)
		}
		rec.Images = &ImageAlbum{URLs: urls}
	}
	return rec, nil
}
