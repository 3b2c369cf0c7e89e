package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-news-collect/internal/pipeline"
	"github.com/shouni/go-news-collect/pkg/collector"
	"github.com/shouni/go-news-collect/pkg/sink"
)

// コマンドラインフラグ変数を定義
var (
	collectTopic   string  // --topic 検索トピック（自由テキスト、必須）
	collectLimit   int     // --limit 処理するフィードアイテムの最大数
	collectCountry string  // --country 国コード (gl/ceid)
	collectLang    string  // --lang 言語コード (hl/ceid)
	collectSleep   float64 // --sleep 記事取得の合間に待機する秒数
	collectOut     string  // --out 出力ファイルパス
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "トピックに合致するニュース記事を収集し、1ファイルのデータセットに保存します",
	Long: `Google News のRSS検索フィードからトピックに合致するアイテムを取得し、
各アイテムのリンク先から本文・著者・公開日・リード画像を抽出します。
アイテムは掲載順のまま1件ずつ逐次処理され、1件の失敗は他のアイテムに影響しません。
出力は1レコード1行のJSON（拡張子 .csv の場合は表形式）です。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}

		articleTimeout := time.Duration(Flags.TimeoutSec) * time.Second
		col, err := pipeline.New(fetcher, articleTimeout)
		if err != nil {
			return fmt.Errorf("収集パイプラインの初期化エラー: %w", err)
		}

		params := collector.Params{
			Topic:   collectTopic,
			Limit:   collectLimit,
			Lang:    collectLang,
			Country: collectCountry,
			Sleep:   time.Duration(collectSleep * float64(time.Second)),
		}

		log.Printf("収集開始 (トピック: %q, 最大件数: %d, ロケール: %s/%s, 待機: %s)",
			params.Topic, params.Limit, params.Lang, params.Country, params.Sleep)

		// 2. メインロジックの実行
		// NOTE: 実行途中のキャンセル機構は持たない。実行はアイテム単位で最後まで進むか、
		// プロセスごと外部から停止されるかのどちらかで、出力は完走後にのみ書かれる。
		run, err := col.Run(context.Background(), params)
		if err != nil {
			return fmt.Errorf("収集実行エラー: %w", err)
		}

		// 3. 結果の書き出し
		if err := sink.WriteFile(collectOut, run); err != nil {
			return fmt.Errorf("結果の書き出しエラー: %w", err)
		}

		// 4. 最終サマリの出力
		fmt.Printf("\n%d 件のレコードを %s に保存しました (フィード取得: %d 件 / 要求: %d 件)\n",
			len(run.Records), collectOut, run.Fetched, run.Requested)
		fmt.Println("ヒント: ok=true のレコードが本文抽出に成功した利用可能な行です。")

		return nil
	},
}

func init() {
	collectCmd.Flags().StringVarP(&collectTopic, "topic", "t", "",
		`検索トピック (例: "AI regulation in South Africa")`)
	collectCmd.Flags().IntVarP(&collectLimit, "limit", "n", 25,
		"処理するフィードアイテムの最大数")
	collectCmd.Flags().StringVar(&collectCountry, "country", "ZA",
		"Google News の国コード (gl/ceid)")
	collectCmd.Flags().StringVar(&collectLang, "lang", "en",
		"言語コード (hl/ceid)")
	collectCmd.Flags().Float64Var(&collectSleep, "sleep", 1,
		"記事取得の合間に待機する秒数")
	collectCmd.Flags().StringVarP(&collectOut, "out", "o", "articles.jsonl",
		"出力ファイルパス (.csv で表形式、それ以外は行区切りJSON)")

	collectCmd.MarkFlagRequired("topic")
}
