// Package nlp 提供查询管线使用的纯文本处理：预处理、实体识别、情感打分、意图分类。
// 所有函数无状态、无副作用，相同输入恒等输出。
package nlp

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pleaseRe     = regexp.MustCompile(`(?i)\b(?:pls|plz)\b`)
	thanksRe     = regexp.MustCompile(`(?i)\b(?:thx|tnx)\b`)
	youRe        = regexp.MustCompile(`(?i)\b(?:u|ur)\b`)
)

// Preprocess 清洗文本：去首尾空白、压缩空白、规范常见缩写
func Preprocess(text string) string {
	text = strings.TrimSpace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = pleaseRe.ReplaceAllString(text, "please")
	text = thanksRe.ReplaceAllString(text, "thanks")
	text = youRe.ReplaceAllString(text, "you")
	return text
}
