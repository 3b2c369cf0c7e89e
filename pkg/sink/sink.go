package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/go-news-collect/pkg/collector"
)

// csvExtension は表形式出力を選択するファイル拡張子です。
const csvExtension = ".csv"

// csvHeader はCSV出力の固定カラム列です。欠けているフィールドは空セルになります。
var csvHeader = []string{
	"title", "published", "summary", "link",
	"topic", "collected_at", "ok",
	"final_url", "text", "authors", "publish_date", "top_image",
	"error",
}

// WriteJSONL は実行結果を1レコード1行のJSONとして書き出します。実行順を保持します。
func WriteJSONL(w io.Writer, run *collector.Run) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	for i, record := range run.Records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("レコードのJSONエンコードに失敗しました (index: %d): %w", i, err)
		}
	}
	return nil
}

// WriteCSV は実行結果を固定ヘッダー付きのCSVとして書き出します。実行順を保持します。
func WriteCSV(w io.Writer, run *collector.Run) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for i, record := range run.Records {
		if err := writer.Write(recordRow(record)); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました (index: %d): %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile は出力先パスの拡張子からフォーマットを選択し、実行結果を書き出します。
// 拡張子が .csv の場合は表形式、それ以外は行区切りJSONです。
func WriteFile(path string, run *collector.Run) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました (%s): %w", path, err)
	}

	var writeErr error
	if IsCSVPath(path) {
		writeErr = WriteCSV(file, run)
	} else {
		writeErr = WriteJSONL(file, run)
	}

	if closeErr := file.Close(); writeErr == nil && closeErr != nil {
		return fmt.Errorf("出力ファイルのクローズに失敗しました (%s): %w", path, closeErr)
	}
	return writeErr
}

// IsCSVPath は出力先パスが表形式 (CSV) を要求しているかを判定します。
func IsCSVPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), csvExtension)
}

// recordRow は1レコードをCSVの1行に変換します。csvHeader とカラム順を一致させます。
func recordRow(r collector.Record) []string {
	publishDate := ""
	if r.PublishDate != nil {
		publishDate = r.PublishDate.Format(time.RFC3339)
	}

	return []string{
		r.Title,
		r.Published,
		r.Summary,
		r.Link,
		r.Topic,
		r.CollectedAt.Format(time.RFC3339),
		strconv.FormatBool(r.OK),
		r.FinalURL,
		r.Text,
		strings.Join(r.Authors, "; "),
		publishDate,
		r.TopImage,
		r.Error,
	}
}
