package scraper

import (
	"context"
	"io"
	"time"
)

// ComicClient defines the strip site operations the scraper needs
type ComicClient interface {
	FetchImageURL(ctx context.Context, date time.Time) (found bool, imageURL string, err error)
	DownloadImage(ctx context.Context, imageURL string) (io.ReadCloser, int64, error)
}
