package relay

import (
	"context"

	"video-relay-go/internal/analyze"
	"video-relay-go/internal/render"
)

// AnalyzeProber adapts the media analyzer to the caption pipeline.
type AnalyzeProber struct {
	Analyzer *analyze.Analyzer
}

func (p AnalyzeProber) ProbeExtra(ctx context.Context, url string) (*render.Extra, error) {
	res, err := p.Analyzer.Probe(ctx, url)
	if err != nil {
		return nil, err
	}
	return &render.Extra{FPS: float64(res.FPS), SizeMB: res.SizeMB}, nil
}
