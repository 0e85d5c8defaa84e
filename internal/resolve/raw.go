package resolve

import "github.com/tidwall/gjson"

// Helpers for reading optional fields out of platform payloads.
// Upstream schemas change without notice; a missing field yields the
// zero value here, never a panic. Required fields are checked by the
// normalizers explicitly.

func statisticsFrom(stats gjson.Result) Statistics {
	return Statistics{
		DiggCount:    nonNegative(stats.Get("digg_count").Int()),
		CommentCount: nonNegative(stats.Get("comment_count").Int()),
		ShareCount:   nonNegative(stats.Get("share_count").Int()),
		PlayCount:    nonNegative(stats.Get("play_count").Int()),
	}
}

func coversFrom(video gjson.Result, keys ...string) map[string]string {
	out := map[string]string{}
	for _, k := range keys {
		if u := video.Get(k + ".url_list.0").String(); u != "" {
			out[k] = u
		}
	}
	return out
}

func hashtagsFrom(textExtra gjson.Result) []Hashtag {
	var out []Hashtag
	for _, e := range textExtra.Array() {
		name := e.Get("hashtag_name").String()
		if name == "" {
			continue
		}
		out = append(out, Hashtag{Name: name})
	}
	return out
}

// Some platforms report hidden counters as -1.
func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
