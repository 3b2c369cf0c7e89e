package feed

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/mmcdole/gofeed"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、フィードの生バイト配列を取得する機能のインターフェースを定義します。
// *httpkit.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchBytes(url string, ctx context.Context) ([]byte, error)
}

// ----------------------------------------------------------------------
// データ型
// ----------------------------------------------------------------------

// Entry は、シンジケーションフィードの1アイテムを表す不変の値です。
// Published はフィードが提供したままの文字列であり、パースや検証は行いません。
type Entry struct {
	Title     string
	Link      string
	Published string
	Summary   string
}

// ----------------------------------------------------------------------
// Reader
// ----------------------------------------------------------------------

// Reader は、Fetcher を使ってフィードを取得し、Entry の列へ正規化します。
type Reader struct {
	client Fetcher
}

// NewReader は新しい Reader インスタンスを初期化し、依存関係を注入します。
func NewReader(client Fetcher) (*Reader, error) {
	if client == nil {
		return nil, fmt.Errorf("feed.NewReader: Fetcher cannot be nil")
	}
	return &Reader{client: client}, nil
}

// Entries は指定されたURLからフィードを取得・パースし、フィードの掲載順のまま
// 最大 limit 件の Entry を返します。
//
// フィードが到達不能、またはパース不能だった場合は「0件」という正常な結果として
// 空のスライスを返します（実行全体を失敗させません）。エラーの戻り値は、
// リクエストをそもそも発行できないような実行レベルの障害のために予約されています。
func (r *Reader) Entries(ctx context.Context, feedURL string, limit int) ([]Entry, error) {
	body, err := r.client.FetchBytes(feedURL, ctx)
	if err != nil {
		log.Printf("フィードの取得に失敗したため、0件として継続します (URL: %s): %v", feedURL, err)
		return nil, nil
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Printf("フィードのパースに失敗したため、0件として継続します (URL: %s): %v", feedURL, err)
		return nil, nil
	}

	return mapItems(parsed.Items, limit), nil
}

// mapItems は gofeed のアイテム列を掲載順のまま Entry 列に変換します。
func mapItems(items []*gofeed.Item, limit int) []Entry {
	count := len(items)
	if limit >= 0 && limit < count {
		count = limit
	}

	entries := make([]Entry, 0, count)
	for _, item := range items[:count] {
		if item == nil {
			continue
		}

		// 概要が空の場合は本文フィールドで代替する
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		entries = append(entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
			Summary:   summary,
		})
	}
	return entries
}
