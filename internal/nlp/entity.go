package nlp

import (
	"regexp"
	"strings"

	"github.com/supportbot/chatbot-go/internal/model"
)

// entityMatcher 按固定优先级排列的实体匹配器
type entityMatcher struct {
	entityType model.EntityType
	pattern    *regexp.Regexp
}

// 优先级顺序固定：两类实体争抢同一段文本时，靠前者胜出
var entityMatchers = []entityMatcher{
	{model.EntityEmail, regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{model.EntityPhone, regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{model.EntityOrderNumber, regexp.MustCompile(`(?i)\b[A-Z]{2,3}\d{6,8}\b|#\d{3,10}\b`)},
	{model.EntityAccountNumber, regexp.MustCompile(`\b\d{8,12}\b`)},
	{model.EntityURL, regexp.MustCompile(`(?i)https?://(?:[-\w.])+(?:[:\d]+)?(?:/(?:[\w/_.])*(?:\?(?:[\w&=%.])*)?(?:#(?:[\w.])*)?)?`)},
	{model.EntityProductName, regexp.MustCompile(`(?i)\b(?:product|service|item|subscription|plan)\s+([A-Za-z0-9 ]+)`)},
	{model.EntityErrorCode, regexp.MustCompile(`(?i)\b(?:error|error code|code)\s*[A-Z0-9]{3,8}\b`)},
	{model.EntityVersionNumber, regexp.MustCompile(`\bv?\d+\.\d+(?:\.\d+)?\b`)},
}

// ExtractEntities 从文本中提取结构化实体。
// 每个类型取全部不重叠匹配，跨类型重叠按匹配器顺序裁决，最后按 (type, text) 去重。
func ExtractEntities(text string) []model.Entity {
	var entities []model.Entity
	var claimed [][2]int
	seen := make(map[string]bool)

	for _, m := range entityMatchers {
		for _, loc := range m.pattern.FindAllStringIndex(text, -1) {
			if overlapsAny(claimed, loc[0], loc[1]) {
				continue
			}
			matched := text[loc[0]:loc[1]]
			// 订单号以 # 引导时，号码本身才是实体文本
			if m.entityType == model.EntityOrderNumber {
				matched = strings.TrimPrefix(matched, "#")
			}
			key := string(m.entityType) + "\x00" + matched
			if seen[key] {
				continue
			}
			seen[key] = true
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			entities = append(entities, model.Entity{
				Type:  m.entityType,
				Text:  matched,
				Start: loc[0],
				End:   loc[1],
			})
		}
	}

	return entities
}

// overlapsAny 判断 [start,end) 是否与已占用区间重叠
func overlapsAny(claimed [][2]int, start, end int) bool {
	for _, c := range claimed {
		if start < c[1] && end > c[0] {
			return true
		}
	}
	return false
}
