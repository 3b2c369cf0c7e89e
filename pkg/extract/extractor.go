package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	textUtils "github.com/shouni/go-utils/text"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------

const (
	// authorMetaSelectors は著者名を探すメタタグのセレクターです。
	authorMetaSelectors = "meta[name='author'], meta[property='article:author']"

	// publishedMetaSelector は公開日時を保持するメタタグのセレクターです。
	publishedMetaSelector = "meta[property='article:published_time']"

	// ogImageSelector はリード画像のフォールバックに使うメタタグのセレクターです。
	ogImageSelector = "meta[property='og:image']"
)

// publishedTimeLayouts は公開日時のパースに試行するレイアウトの列です。
var publishedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02",
}

// ----------------------------------------------------------------------
// データ型
// ----------------------------------------------------------------------

// Result は、1つの記事URLの処理に成功した場合の抽出結果です。
// Text が空でも抽出の失敗とは見なしません（本文のないページは存在します）。
type Result struct {
	FinalURL    string
	Text        string
	Authors     []string
	PublishDate *time.Time
	TopImage    string
}

// ----------------------------------------------------------------------
// Extractor
// ----------------------------------------------------------------------

// Extractor は、PageFetcher を使って記事の本文とメタデータの抽出プロセスを管理します。
type Extractor struct {
	fetcher PageFetcher
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher PageFetcher) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: PageFetcher cannot be nil")
	}
	return &Extractor{
		fetcher: fetcher,
	}, nil
}

// Extract は指定されたURLから記事ページを取得し、本文テキストとメタデータを抽出します。
// 取得の失敗（タイムアウト、4xx/5xx、接続エラー）はそのままエラーとして返します。
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Result, error) {
	// 1. PageFetcherからページ全体を取得 (通信の責務)
	page, err := e.fetcher.FetchPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	finalURL, err := url.Parse(page.FinalURL)
	if err != nil {
		return nil, fmt.Errorf("最終URLのパースエラー (%s): %w", page.FinalURL, err)
	}

	// 2. readability による本文抽出 (解析の責務)
	article, err := readability.FromReader(bytes.NewReader(page.Body), finalURL)
	if err != nil {
		return nil, fmt.Errorf("本文抽出に失敗しました: %w", err)
	}

	// 3. goquery によるメタデータ抽出
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	topImage := article.Image
	if topImage == "" {
		topImage, _ = doc.Find(ogImageSelector).First().Attr("content")
	}

	return &Result{
		FinalURL:    page.FinalURL,
		Text:        strings.TrimSpace(article.TextContent),
		Authors:     collectAuthors(doc, article.Byline),
		PublishDate: findPublishedTime(doc),
		TopImage:    topImage,
	}, nil
}

// collectAuthors はメタタグから著者名を出現順に収集します。
// メタタグに著者がない場合は readability の byline で代替します。
func collectAuthors(doc *goquery.Document, byline string) []string {
	var authors []string
	seen := make(map[string]struct{})

	appendAuthor := func(name string) {
		name = textUtils.NormalizeText(name)
		if name == "" {
			return
		}
		// article:author にはプロフィールURLが入ることがあるため除外する
		if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		authors = append(authors, name)
	}

	doc.Find(authorMetaSelectors).Each(func(i int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			appendAuthor(content)
		}
	})

	if len(authors) == 0 && byline != "" {
		appendAuthor(byline)
	}

	return authors
}

// findPublishedTime はメタタグの公開日時をパースして返します。パースできない場合は nil を返します。
func findPublishedTime(doc *goquery.Document) *time.Time {
	content, ok := doc.Find(publishedMetaSelector).First().Attr("content")
	if !ok {
		return nil
	}

	content = strings.TrimSpace(content)
	for _, layout := range publishedTimeLayouts {
		if t, err := time.Parse(layout, content); err == nil {
			return &t
		}
	}
	return nil
}
