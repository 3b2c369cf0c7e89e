package collector_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-news-collect/pkg/collector"
	"github.com/shouni/go-news-collect/pkg/extract"
	"github.com/shouni/go-news-collect/pkg/feed"
)

// ======================================================================
// スタブ (決定的なフィード/抽出の代替実装)
// ======================================================================

type stubSource struct {
	entries []feed.Entry
	err     error

	// 呼び出し検証用
	lastURL   string
	lastLimit int
}

func (s *stubSource) Entries(ctx context.Context, feedURL string, limit int) ([]feed.Entry, error) {
	s.lastURL = feedURL
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubExtractor struct {
	results map[string]*extract.Result
	errs    map[string]error
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*extract.Result, error) {
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	if res, ok := s.results[url]; ok {
		return res, nil
	}
	return nil, errors.New("no stub for " + url)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func noSleep(time.Duration) {}

// ======================================================================
// テスト関数
// ======================================================================

func TestNew(t *testing.T) {
	t.Run("nil_sourceはエラー", func(t *testing.T) {
		c, err := collector.New(nil, &stubExtractor{})
		assert.Error(t, err)
		assert.Nil(t, c)
	})
	t.Run("nil_extractorはエラー", func(t *testing.T) {
		c, err := collector.New(&stubSource{}, nil)
		assert.Error(t, err)
		assert.Nil(t, c)
	})
	t.Run("有効な依存関係で成功", func(t *testing.T) {
		c, err := collector.New(&stubSource{}, &stubExtractor{})
		assert.NoError(t, err)
		assert.NotNil(t, c)
	})
}

// spec化されたシナリオ: A=成功, B=タイムアウト, C=リンクなし → レコードは2件。
func TestRun_PartialFailureIsolation(t *testing.T) {
	source := &stubSource{
		entries: []feed.Entry{
			{Title: "Article A", Link: "https://example.com/a", Published: "Mon, 01 Jan 2024 00:00:00 GMT", Summary: "sum A"},
			{Title: "Article B", Link: "https://example.com/b", Published: "Tue, 02 Jan 2024 00:00:00 GMT", Summary: "sum B"},
			{Title: "Article C (no link)", Link: ""},
		},
	}
	extractor := &stubExtractor{
		results: map[string]*extract.Result{
			"https://example.com/a": {
				FinalURL: "https://example.com/a-final",
				Text:     "body of A",
				Authors:  []string{"Author A"},
				TopImage: "https://example.com/a.jpg",
			},
		},
		errs: map[string]error{
			"https://example.com/b": context.DeadlineExceeded,
		},
	}

	c, err := collector.New(source, extractor,
		collector.WithSleepFunc(noSleep),
		collector.WithClock(fixedClock(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC))),
	)
	assert.NoError(t, err)

	run, err := c.Run(context.Background(), collector.Params{
		Topic: "AI regulation in South Africa", Limit: 25, Lang: "en", Country: "ZA",
	})
	assert.NoError(t, err)
	assert.NotNil(t, run)

	// リンクなしのCはレコードを生成しない
	assert.Len(t, run.Records, 2)
	assert.Equal(t, 3, run.Fetched)
	assert.Equal(t, 25, run.Requested)

	a := run.Records[0]
	assert.True(t, a.OK)
	assert.Equal(t, "Article A", a.Title)
	assert.Equal(t, "https://example.com/a-final", a.FinalURL)
	assert.Equal(t, "body of A", a.Text)
	assert.Equal(t, []string{"Author A"}, a.Authors)
	assert.Empty(t, a.Error)
	assert.Equal(t, "AI regulation in South Africa", a.Topic)
	assert.False(t, a.CollectedAt.IsZero())

	b := run.Records[1]
	assert.False(t, b.OK)
	assert.NotEmpty(t, b.Error)
	assert.Empty(t, b.FinalURL)
	assert.Empty(t, b.Text)
	assert.Nil(t, b.Authors)
	assert.Nil(t, b.PublishDate)
	assert.Empty(t, b.TopImage)
	// フィード由来のフィールドは失敗時も保持される
	assert.Equal(t, "Article B", b.Title)
	assert.Equal(t, "sum B", b.Summary)
}

// 0件のフィードは「失敗」ではなく空の成功した実行として完了する。
func TestRun_EmptyFeed(t *testing.T) {
	c, err := collector.New(&stubSource{}, &stubExtractor{}, collector.WithSleepFunc(noSleep))
	assert.NoError(t, err)

	run, err := c.Run(context.Background(), collector.Params{Topic: "nothing", Limit: 10, Lang: "en", Country: "ZA"})
	assert.NoError(t, err)
	assert.NotNil(t, run)
	assert.Empty(t, run.Records)
	assert.Equal(t, 0, run.Fetched)
}

// フィード取得自体の実行レベルの障害は隠蔽せずに伝播する。
func TestRun_SourceErrorPropagates(t *testing.T) {
	sourceErr := errors.New("request could not be issued")
	c, err := collector.New(&stubSource{err: sourceErr}, &stubExtractor{}, collector.WithSleepFunc(noSleep))
	assert.NoError(t, err)

	run, err := c.Run(context.Background(), collector.Params{Topic: "x", Limit: 5, Lang: "en", Country: "ZA"})
	assert.Error(t, err)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, sourceErr)
}

// レコードの順序はフィードの掲載順（リンクなしを除く）と一致する。
func TestRun_OrderPreserved(t *testing.T) {
	source := &stubSource{
		entries: []feed.Entry{
			{Title: "one", Link: "https://example.com/1"},
			{Title: "skip", Link: ""},
			{Title: "two", Link: "https://example.com/2"},
			{Title: "three", Link: "https://example.com/3"},
		},
	}
	extractor := &stubExtractor{
		results: map[string]*extract.Result{
			"https://example.com/1": {FinalURL: "https://example.com/1"},
			"https://example.com/3": {FinalURL: "https://example.com/3"},
		},
		errs: map[string]error{
			"https://example.com/2": errors.New("blocked by origin"),
		},
	}

	c, err := collector.New(source, extractor, collector.WithSleepFunc(noSleep))
	assert.NoError(t, err)

	run, err := c.Run(context.Background(), collector.Params{Topic: "t", Limit: 10, Lang: "en", Country: "ZA"})
	assert.NoError(t, err)
	assert.Len(t, run.Records, 3)

	titles := []string{run.Records[0].Title, run.Records[1].Title, run.Records[2].Title}
	assert.Equal(t, []string{"one", "two", "three"}, titles)

	// OK と各フィールド群の整合（相互排他の不変条件）
	for _, rec := range run.Records {
		if rec.OK {
			assert.Empty(t, rec.Error, "ok=true のレコードに error があってはならない: %s", rec.Title)
		} else {
			assert.NotEmpty(t, rec.Error)
			assert.Empty(t, rec.FinalURL)
			assert.Empty(t, rec.Text)
		}
	}
}

// クエリエンドポイントの組み立てとフィードへの委譲を検証する。
func TestRun_QueryEndpoint(t *testing.T) {
	source := &stubSource{}
	c, err := collector.New(source, &stubExtractor{}, collector.WithSleepFunc(noSleep))
	assert.NoError(t, err)

	_, err = c.Run(context.Background(), collector.Params{
		Topic: "AI regulation in South Africa", Limit: 7, Lang: "en", Country: "ZA",
	})
	assert.NoError(t, err)

	assert.Contains(t, source.lastURL, "q=AI+regulation+in+South+Africa")
	assert.Contains(t, source.lastURL, "hl=en&gl=ZA&ceid=ZA:en")
	assert.Equal(t, 7, source.lastLimit)
}

// 待機はアイテムの合間にのみ発生し、最後のアイテムの後には発生しない。
func TestRun_NoSleepAfterLastEntry(t *testing.T) {
	source := &stubSource{
		entries: []feed.Entry{
			{Title: "one", Link: "https://example.com/1"},
			{Title: "two", Link: "https://example.com/2"},
			{Title: "three", Link: "https://example.com/3"},
		},
	}
	extractor := &stubExtractor{
		results: map[string]*extract.Result{
			"https://example.com/1": {},
			"https://example.com/2": {},
			"https://example.com/3": {},
		},
	}

	var slept []time.Duration
	c, err := collector.New(source, extractor, collector.WithSleepFunc(func(d time.Duration) {
		slept = append(slept, d)
	}))
	assert.NoError(t, err)

	_, err = c.Run(context.Background(), collector.Params{
		Topic: "t", Limit: 10, Lang: "en", Country: "ZA", Sleep: 1 * time.Second,
	})
	assert.NoError(t, err)

	// 3件の処理に対して待機は2回だけ
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

// Sleep=0 の場合は一切待機しない。
func TestRun_ZeroSleep(t *testing.T) {
	source := &stubSource{
		entries: []feed.Entry{
			{Title: "one", Link: "https://example.com/1"},
			{Title: "two", Link: "https://example.com/2"},
		},
	}
	extractor := &stubExtractor{
		results: map[string]*extract.Result{
			"https://example.com/1": {},
			"https://example.com/2": {},
		},
	}

	sleeps := 0
	c, err := collector.New(source, extractor, collector.WithSleepFunc(func(time.Duration) { sleeps++ }))
	assert.NoError(t, err)

	_, err = c.Run(context.Background(), collector.Params{Topic: "t", Limit: 10, Lang: "en", Country: "ZA"})
	assert.NoError(t, err)
	assert.Zero(t, sleeps)
}

// 決定的なスタブに対して2回実行すると、CollectedAt を除いて同一の内容になる。
func TestRun_Idempotence(t *testing.T) {
	source := &stubSource{
		entries: []feed.Entry{
			{Title: "one", Link: "https://example.com/1", Published: "p1", Summary: "s1"},
			{Title: "two", Link: "https://example.com/2", Published: "p2", Summary: "s2"},
		},
	}
	extractor := &stubExtractor{
		results: map[string]*extract.Result{
			"https://example.com/1": {FinalURL: "https://example.com/1", Text: "t1"},
		},
		errs: map[string]error{
			"https://example.com/2": errors.New("always fails"),
		},
	}

	c, err := collector.New(source, extractor, collector.WithSleepFunc(noSleep))
	assert.NoError(t, err)

	params := collector.Params{Topic: "t", Limit: 5, Lang: "en", Country: "ZA"}
	first, err := c.Run(context.Background(), params)
	assert.NoError(t, err)
	second, err := c.Run(context.Background(), params)
	assert.NoError(t, err)

	normalize := func(run *collector.Run) []collector.Record {
		records := make([]collector.Record, len(run.Records))
		copy(records, run.Records)
		for i := range records {
			records[i].CollectedAt = time.Time{}
		}
		return records
	}
	assert.Equal(t, normalize(first), normalize(second))
}
