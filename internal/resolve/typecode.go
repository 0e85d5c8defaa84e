package resolve

// typeCodes maps the platform aweme_type discriminator to a content
// type. Bilibili has no discriminator and is always video.
var typeCodes = map[int64]ContentType{
	0:   TypeVideo,
	2:   TypeImage,
	4:   TypeVideo,
	51:  TypeVideo,
	55:  TypeVideo,
	58:  TypeVideo,
	61:  TypeVideo,
	68:  TypeImage,
	150: TypeImage,
}

// TypeForCode defaults unknown codes to video. That leniency mirrors
// upstream behavior for codes not yet catalogued; it is an
// approximation, not a guarantee that unseen codes are video.
func TypeForCode(code int64) ContentType {
	if t, ok := typeCodes[code]; ok {
		return t
	}
	return TypeVideo
}
