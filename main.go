package main

import (
	"github.com/shouni/go-news-collect/cmd"
)

// main 関数は、CLIのエントリポイントです。エラーハンドリングは cmd.Execute() に一元化されています。
func main() {
	cmd.Execute()
}
