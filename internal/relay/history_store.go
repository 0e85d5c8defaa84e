package relay

import (
	"context"

	"video-relay-go/internal/store"
)

// StoreHistory appends delivery history to the configured store
// backend.
type StoreHistory struct{}

func (StoreHistory) Append(ctx context.Context, e HistoryEntry) error {
	return store.SaveResolution(ctx, store.ResolutionRow{
		Platform:  e.Platform,
		ContentID: e.ContentID,
		SourceURL: e.SourceURL,
		Type:      e.Type,
		Caption:   e.Caption,
		CreatedAt: e.CreatedAt,
	})
}
