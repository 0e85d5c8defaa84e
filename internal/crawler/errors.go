package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type ErrorKind string

const (
	ErrorKindUnknown            ErrorKind = "unknown"
	ErrorKindUnrecognizedSource ErrorKind = "unrecognized_source"
	ErrorKindIdentifierNotFound ErrorKind = "identifier_not_found"
	ErrorKindMalformedMetadata  ErrorKind = "malformed_metadata"
	ErrorKindMediaResolution    ErrorKind = "media_resolution_failed"
	ErrorKindUnsupportedType    ErrorKind = "unsupported_content_type"
	ErrorKindHTTP               ErrorKind = "http"
	ErrorKindForbidden          ErrorKind = "forbidden"
	ErrorKindRateLimited        ErrorKind = "rate_limited"
	ErrorKindCanceled           ErrorKind = "canceled"
	ErrorKindTimeout            ErrorKind = "timeout"
)

type Error struct {
	Kind     ErrorKind
	Platform string
	URL      string
	Msg      string
	Err      error
}

func (e Error) Error() string {
	base := e.Msg
	if base == "" && e.Err != nil {
		base = e.Err.Error()
	}
	if base == "" {
		base = string(e.Kind)
	}
	if e.Platform != "" && e.URL != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Platform, base, e.URL)
	}
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s", e.Platform, base)
	}
	return base
}

func (e Error) Unwrap() error { return e.Err }

// KindOf classifies an error for reporting and retry decisions.
// Timeouts always classify as timeout, even when wrapped, so the
// caller can tell a retriable upstream stall from broken metadata.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}
	var ce Error
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorKindTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status=429") {
		return ErrorKindRateLimited
	}
	if strings.Contains(msg, "http status=401") || strings.Contains(msg, "http status=403") {
		return ErrorKindForbidden
	}
	if strings.Contains(msg, "http status=") {
		return ErrorKindHTTP
	}
	return ErrorKindUnknown
}

// Retriable reports whether the caller may reasonably retry the whole
// resolution. The core itself never retries.
func Retriable(err error) bool {
	switch KindOf(err) {
	case ErrorKindTimeout, ErrorKindHTTP, ErrorKindRateLimited:
		return true
	default:
		return false
	}
}

func NewUnrecognizedSourceError(url string) error {
	return Error{
		Kind: ErrorKindUnrecognizedSource,
		URL:  url,
		Msg:  "cannot judge the video source from the url",
	}
}

func NewIdentifierNotFoundError(platform, url string) error {
	return Error{
		Kind:     ErrorKindIdentifierNotFound,
		Platform: platform,
		URL:      url,
		Msg:      "cannot extract content id",
	}
}

func NewMalformedMetadataError(platform, contentID, field string) error {
	return Error{
		Kind:     ErrorKindMalformedMetadata,
		Platform: platform,
		Msg:      fmt.Sprintf("metadata for %s missing required field %s", contentID, field),
	}
}

func NewMediaResolutionError(platform, contentID, detail string) error {
	return Error{
		Kind:     ErrorKindMediaResolution,
		Platform: platform,
		Msg:      fmt.Sprintf("media resolution failed for %s: %s", contentID, detail),
	}
}
