package extract

import (
	"context"

	"github.com/shouni/go-news-collect/pkg/fetch"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// PageFetcher は、記事ページの取得機能のインターフェースを定義します。
// Extractor は、この抽象に依存します。*fetch.Client はこのインターフェースを満たします。
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*fetch.Page, error)
}
