package query

import (
	"fmt"
	"net/url"
	"strings"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

const (
	// DefaultBaseURL は、Google News の検索フィードのベースURLです。
	DefaultBaseURL = "https://news.google.com"

	// searchPath は、トピック検索用のRSSエンドポイントのパスです。
	searchPath = "/rss/search"
)

// encodeTopic はトピック文字列をクエリ文字列用にパーセントエンコードします。
// 空白は application/x-www-form-urlencoded の慣習に従い "+" に変換されます。
func encodeTopic(topic string) string {
	return url.QueryEscape(strings.TrimSpace(topic))
}

// NewsSearchURL は、トピックとロケール（言語コード・国コード）から
// Google News のRSS検索エンドポイントURLを組み立てます。
//
// パラメータ名と順序（q, hl, gl, ceid）はフィードプロバイダとの互換性のために
// 固定であり、変更してはいけません。純粋関数であり、正しい文字列入力に対して
// 失敗することはありません。
func NewsSearchURL(topic, lang, country string) string {
	return fmt.Sprintf("%s%s?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		DefaultBaseURL, searchPath,
		encodeTopic(topic),
		lang, country,
		country, lang,
	)
}
