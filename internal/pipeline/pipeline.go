package pipeline

import (
	"fmt"
	"time"

	"github.com/shouni/go-news-collect/pkg/collector"
	"github.com/shouni/go-news-collect/pkg/extract"
	"github.com/shouni/go-news-collect/pkg/feed"
	"github.com/shouni/go-news-collect/pkg/fetch"
)

// New は、収集パイプラインの既定の実装を配線して Collector を構築します。
// フィードの取得には共有フェッチャーを、記事ページの取得には専用の
// fetch.Client（リダイレクト追跡と最終URLの取得が必要なため）を使用します。
func New(feedFetcher feed.Fetcher, articleTimeout time.Duration) (*collector.Collector, error) {
	reader, err := feed.NewReader(feedFetcher)
	if err != nil {
		return nil, fmt.Errorf("Readerの初期化エラー: %w", err)
	}

	client := fetch.New(articleTimeout)
	extractor, err := extract.NewExtractor(client)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}

	c, err := collector.New(reader, extractor)
	if err != nil {
		return nil, fmt.Errorf("Collectorの初期化エラー: %w", err)
	}
	return c, nil
}
