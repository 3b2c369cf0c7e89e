package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shouni/go-news-collect/pkg/extract"
	"github.com/shouni/go-news-collect/pkg/feed"
	"github.com/shouni/go-news-collect/pkg/query"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// EntrySource は、クエリエンドポイントからフィードアイテムの列を取得する機能の
// インターフェースを定義します。*feed.Reader はこのインターフェースを満たします。
type EntrySource interface {
	Entries(ctx context.Context, feedURL string, limit int) ([]feed.Entry, error)
}

// ArticleExtractor は、1つの記事URLから本文とメタデータを抽出する機能の
// インターフェースを定義します。*extract.Extractor はこのインターフェースを満たします。
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (*extract.Result, error)
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// Params は1回の収集実行の入力です。
type Params struct {
	Topic   string
	Limit   int
	Lang    string
	Country string

	// Sleep は、オリジンサイトとフィードプロバイダへの礼節として、
	// アイテムごとの処理の合間に置く待機時間です。
	Sleep time.Duration
}

// Collector は収集パイプラインの中核です。フィードアイテムを掲載順に1件ずつ
// 逐次処理し（並列化しない）、アイテム単位の失敗を隔離しながらレコードを組み立てます。
//
// Collector 自体は実行間で状態を持たないため、複数回の Run で安全に再利用できます。
type Collector struct {
	source    EntrySource
	extractor ArticleExtractor

	// テストから決定的に制御するための注入口
	sleep func(time.Duration)
	now   func() time.Time
}

// Option はCollectorの設定を行うための関数型です。
type Option func(*Collector)

// WithSleepFunc は待機処理を差し替えます（テスト用）。
func WithSleepFunc(fn func(time.Duration)) Option {
	return func(c *Collector) {
		c.sleep = fn
	}
}

// WithClock は現在時刻の取得処理を差し替えます（テスト用）。
func WithClock(fn func() time.Time) Option {
	return func(c *Collector) {
		c.now = fn
	}
}

// New は、新しいCollectorのインスタンスを生成します。
func New(source EntrySource, extractor ArticleExtractor, options ...Option) (*Collector, error) {
	if source == nil {
		return nil, fmt.Errorf("collector.New: EntrySource cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("collector.New: ArticleExtractor cannot be nil")
	}

	c := &Collector{
		source:    source,
		extractor: extractor,
		sleep:     time.Sleep,
		now:       time.Now,
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// Run は1回の収集実行を行い、処理済みレコードの順序付き列を返します。
//
//  1. トピックとロケールからクエリエンドポイントを組み立てる。
//  2. フィードから最大 Limit 件のアイテムを取得する（0件は正常な結果）。
//  3. アイテムごとに逐次: リンクがなければスキップ、あれば抽出を試行し、
//     成否にかかわらず1件のレコードを組み立てて追加する。1件の失敗が
//     他のアイテムの処理を妨げることはない。
//  4. アイテムの合間に Sleep だけ待機する（最後のアイテムの後は待機しない）。
//
// エラーを返すのはフィード取得自体の実行レベルの障害のみです。
func (c *Collector) Run(ctx context.Context, p Params) (*Run, error) {
	endpoint := query.NewsSearchURL(p.Topic, p.Lang, p.Country)

	entries, err := c.source.Entries(ctx, endpoint, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗しました (URL: %s): %w", endpoint, err)
	}

	run := &Run{
		Topic:     p.Topic,
		Requested: p.Limit,
		Fetched:   len(entries),
		Records:   make([]Record, 0, len(entries)),
	}

	total := len(entries)
	for i, entry := range entries {
		// リンクのないアイテムはレコードを生成せず、失敗にも数えない
		if entry.Link == "" {
			continue
		}

		record := c.collectOne(ctx, p.Topic, entry)
		run.Records = append(run.Records, record)

		status := "OK"
		if !record.OK {
			status = "NG"
		}
		log.Printf("[%d/%d] %s - %s", i+1, total, status, entry.Title)

		// 最後のアイテムの後の無駄な待機は行わない
		if p.Sleep > 0 && i < total-1 {
			c.sleep(p.Sleep)
		}
	}

	return run, nil
}

// collectOne は1つのフィードアイテムを処理し、完成したレコードを返します。
// 抽出の失敗はレコード内のエラーテキストに変換され、呼び出し元へは伝播しません。
func (c *Collector) collectOne(ctx context.Context, topic string, entry feed.Entry) Record {
	record := Record{
		Title:       entry.Title,
		Published:   entry.Published,
		Summary:     entry.Summary,
		Link:        entry.Link,
		Topic:       topic,
		CollectedAt: c.now().UTC(),
	}

	result, err := c.extractor.Extract(ctx, entry.Link)
	if err != nil {
		record.OK = false
		record.Error = err.Error()
		if record.Error == "" {
			record.Error = "原因不明の抽出エラー"
		}
		return record
	}

	record.OK = true
	record.FinalURL = result.FinalURL
	record.Text = result.Text
	record.Authors = result.Authors
	record.PublishDate = result.PublishDate
	record.TopImage = result.TopImage
	return record
}
