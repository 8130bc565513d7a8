package service

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// renderMarkdown 将 Markdown 转为 HTML 片段
func renderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("渲染 Markdown 失败: %w", err)
	}
	return buf.String(), nil
}

// htmlPage 包装为完整 HTML 文档（打印用）
func htmlPage(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>body{font-family:sans-serif;margin:24px}table{border-collapse:collapse}" +
		"th,td{border:1px solid #999;padding:4px 8px}@media print{button{display:none}}</style>\n</head><body>\n")
	b.WriteString(body)
	b.WriteString("</body></html>\n")
	return b.String()
}

// escapeCell 转义 Markdown 表格单元格中的特殊字符
func escapeCell(s string) string {
	r := strings.NewReplacer("|", "\\|", "<", "&lt;", ">", "&gt;", "\n", " ")
	return r.Replace(s)
}
