package resolve

import "encoding/json"

type Platform string

const (
	PlatformDouyin   Platform = "douyin"
	PlatformTikTok   Platform = "tiktok"
	PlatformBilibili Platform = "bilibili"
)

type ContentType string

const (
	TypeVideo ContentType = "video"
	TypeImage ContentType = "image"
)

// Record is the canonical, platform-agnostic result of a resolution.
// It is built once and never mutated afterwards; callers derive their
// cached artifacts from it instead of storing it.
type Record struct {
	Type       ContentType       `json:"type"`
	Platform   Platform          `json:"platform"`
	ContentID  string            `json:"content_id"`
	Desc       string            `json:"desc,omitempty"`
	CreateTime int64             `json:"create_time,omitempty"`
	Region     string            `json:"region,omitempty"`
	Author     Author            `json:"author"`
	Music      *Music            `json:"music,omitempty"`
	Statistics Statistics        `json:"statistics"`
	Covers     map[string]string `json:"cover_data"`
	Hashtags   []Hashtag         `json:"hashtags,omitempty"`

	// Exactly one of Video/Images is set, matching Type. Exception:
	// a bilibili view without a cid resolves to a video record with
	// no Video at all (restricted content); the caller treats that as
	// incomplete, not failed.
	Video  *VideoMedia `json:"video_data,omitempty"`
	Images *ImageAlbum `json:"image_data,omitempty"`
}

type Author struct {
	Nickname string `json:"nickname,omitempty"`
	UniqueID string `json:"unique_id,omitempty"`
	SecUID   string `json:"sec_uid,omitempty"`

	// Enrichment fields, nil unless the optional profile call
	// succeeded.
	FollowerCount  *int64 `json:"follower_count,omitempty"`
	TotalFavorited *int64 `json:"total_favorited,omitempty"`
}

type Music struct {
	Title string `json:"title,omitempty"`
}

// Statistics render missing platform counters as zero.
type Statistics struct {
	DiggCount    int64 `json:"digg_count"`
	CommentCount int64 `json:"comment_count"`
	ShareCount   int64 `json:"share_count"`
	PlayCount    int64 `json:"play_count"`
}

type Hashtag struct {
	Name string `json:"hashtag_name"`
}

type VideoMedia struct {
	// PlayURL is the watermark-free direct URL at the highest
	// available quality, never a wrapper page.
	PlayURL    string `json:"nwm_video_url_hq"`
	DurationMs int64  `json:"duration,omitempty"`
	Width      int64  `json:"width,omitempty"`
	Height     int64  `json:"height,omitempty"`
}

type ImageAlbum struct {
	// URLs keep the source ordering; that ordering is part of the
	// album's presentation contract.
	URLs []string `json:"no_watermark_image_list"`
}

// Resolution is the output of Resolver.Resolve. Record is nil in raw
// passthrough mode; Raw always carries the platform-native payload.
type Resolution struct {
	Platform  Platform
	ContentID string
	Record    *Record
	Raw       json.RawMessage
}
