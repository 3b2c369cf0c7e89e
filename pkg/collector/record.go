package collector

import "time"

// Record は、1つのフィードアイテムの処理結果を表す、出力の最小単位です。
// 成功・失敗にかかわらず、処理されたアイテムごとに必ず1件生成されます。
//
// 不変条件: OK が true のとき抽出フィールド群が埋まり Error は空、
// OK が false のとき Error が非空で抽出フィールド群はゼロ値のままです。
// 抽出フィールドと Error には omitempty を付けており、JSON上の存在有無が
// この不変条件をそのまま反映します。
type Record struct {
	// フィード由来のフィールド
	Title     string `json:"title"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`

	// 実行時に付与されるフィールド
	Topic       string    `json:"topic"`
	CollectedAt time.Time `json:"collected_at"`
	OK          bool      `json:"ok"`

	// 抽出成功時のみ埋まるフィールド
	FinalURL    string     `json:"final_url,omitempty"`
	Text        string     `json:"text,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	TopImage    string     `json:"top_image,omitempty"`

	// 抽出失敗時のみ埋まるフィールド
	Error string `json:"error,omitempty"`
}

// Run は、1回の収集実行が生成したレコードの順序付き列と、その実行の要約です。
// Records の順序はフィードの掲載順（リンクのないアイテムを除く）と一致します。
type Run struct {
	Topic     string   `json:"topic"`
	Requested int      `json:"requested"`
	Fetched   int      `json:"fetched"`
	Records   []Record `json:"records"`
}
