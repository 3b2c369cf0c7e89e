package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/shouni/go-news-collect/pkg/feed"
	"github.com/shouni/go-news-collect/pkg/query"
)

// コマンドラインフラグ変数を定義
var (
	feedTopic   string // --topic 検索トピック（自由テキスト、必須）
	feedLimit   int    // --limit 表示するフィードアイテムの最大数
	feedCountry string // --country 国コード (gl/ceid)
	feedLang    string // --lang 言語コード (hl/ceid)
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "トピックのフィードアイテムを本文抽出なしで一覧表示します",
	Long: `Google News のRSS検索フィードを取得・解析し、その内容
（タイトル、リンク、公開日時）を整形して表示します。記事ページへのアクセスは行いません。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}

		reader, err := feed.NewReader(fetcher)
		if err != nil {
			return fmt.Errorf("Readerの初期化エラー: %w", err)
		}

		endpoint := query.NewsSearchURL(feedTopic, feedLang, feedCountry)
		log.Printf("処理対象フィードURL: %s", endpoint)

		// 2. メインロジックの実行
		entries, err := reader.Entries(context.Background(), endpoint, feedLimit)
		if err != nil {
			return fmt.Errorf("フィード解析エラー: %w", err)
		}

		// 3. 結果の出力
		fmt.Printf("--- フィード解析結果 ---\n")
		fmt.Printf("トピック: %s\n", feedTopic)
		fmt.Printf("合計アイテム数: %d\n", len(entries))
		fmt.Println("-----------------------")

		for i, entry := range entries {
			fmt.Printf("[%d] %s\n", i+1, entry.Title)
			fmt.Printf("    URL: %s\n", entry.Link)
			if entry.Published != "" {
				fmt.Printf("    公開日: %s\n", entry.Published)
			}
		}
		// 最後に改行を加えて出力完了とする
		fmt.Println()

		return nil
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedTopic, "topic", "t", "",
		`検索トピック (例: "AI regulation in South Africa")`)
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 25,
		"表示するフィードアイテムの最大数")
	feedCmd.Flags().StringVar(&feedCountry, "country", "ZA",
		"Google News の国コード (gl/ceid)")
	feedCmd.Flags().StringVar(&feedLang, "lang", "en",
		"言語コード (hl/ceid)")

	feedCmd.MarkFlagRequired("topic")
}
