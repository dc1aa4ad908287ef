package planner

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeDescription 清理项目描述：去掉HTML标签（富文本编辑器提交的内容），合并空白
func NormalizeDescription(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// containsAny 小写描述中是否包含任一关键词
func containsAny(lower string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// excerpt 截取前n个字符，被截断时追加省略号
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
