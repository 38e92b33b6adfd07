package fetcher

import (
	"context"
	"errors"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

var (
	// ErrTransport covers network errors and non-2xx responses.
	ErrTransport = errors.New("fetcher: transport failure")
	// ErrSchema covers bodies that decode badly or lack the data array.
	ErrSchema = errors.New("fetcher: schema failure")
)

// SentimentSource retrieves raw index entries, newest first.
type SentimentSource interface {
	FetchEntries(ctx context.Context) ([]sentiment.RawEntry, error)
}
