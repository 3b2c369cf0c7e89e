package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// DefaultHTTPTimeout は、デフォルトのHTTPタイムアウトです。
	DefaultHTTPTimeout = 10 * time.Second

	// MaxBodySize はレスポンスボディの最大読み込みサイズです (10MB)。
	MaxBodySize = int64(10 * 1024 * 1024)

	// maxErrorBodyLen はエラーメッセージに含めるボディの最大長です。
	maxErrorBodyLen = 1024

	// UserAgent は、サイトからのブロックを避けるための明示的な識別ヘッダーです。
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ----------------------------------------------------------------------
// データ型とエラー型
// ----------------------------------------------------------------------

// Page は、1つのURLに対するGETの結果を保持します。
// FinalURL はリダイレクト追跡後の最終的なURLです。
type Page struct {
	FinalURL   string
	StatusCode int
	Body       []byte
}

// StatusError は、成功 (2xx) 以外のHTTPステータスコードを示すエラー型です。
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("HTTPステータスエラー: ステータスコード %d, ボディなし", e.StatusCode)
	}
	body := strings.TrimSpace(string(e.Body))
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen] + "..."
	}
	return fmt.Sprintf("HTTPステータスエラー: ステータスコード %d, ボディ: %s", e.StatusCode, body)
}

// IsStatusError は与えられたエラーがHTTPステータスエラーであるかを判断します。
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// Client は記事ページの取得を担当します。リダイレクトは標準の http.Client の
// ポリシーに従って追跡されます。
type Client struct {
	httpClient Doer
}

// ClientOption はClientの設定を行うための関数型です。
type ClientOption func(*Client)

// WithHTTPClient はカスタムのDoerを設定します（テスト用の注入口）。
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// New は、新しいClientを生成します。timeout が0以下の場合はデフォルト値を適用します。
func New(timeout time.Duration, options ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// FetchPage は指定されたURLをGETし、最終URL・ステータスコード・ボディを返します。
// 2xx 以外のステータスは *StatusError として返します。
func (c *Client) FetchPage(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	limitedReader := io.LimitReader(resp.Body, MaxBodySize)
	bodyBytes, readErr := io.ReadAll(limitedReader)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       bodyBytes,
		}
	}

	if readErr != nil {
		return nil, fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", readErr)
	}

	// リダイレクト追跡後の最終URLを取得する。
	// モックされたDoerが Request を設定しない場合は元のURLのままとする。
	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		FinalURL:   finalURL,
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
	}, nil
}
