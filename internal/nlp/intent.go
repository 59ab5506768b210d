package nlp

import (
	"strings"

	"github.com/supportbot/chatbot-go/internal/model"
)

// intentProfile 单个意图的关键词集与实体加权
type intentProfile struct {
	keywords     []string
	entityBoosts map[model.EntityType]int
}

// 意图档案表（闭集，与 model.AllIntents 一一对应）
var intentProfiles = map[model.Intent]intentProfile{
	model.IntentReturnRefund: {
		keywords: []string{
			"return", "refund", "exchange", "wrong item", "wrong color", "wrong size",
			"not what i ordered", "send back", "ship back", "replace", "swap",
			"return policy", "refund policy", "damaged", "broken", "defective",
			"faulty", "damage", "destroyed", "torn", "ripped", "scratched", "cracked",
		},
		entityBoosts: map[model.EntityType]int{model.EntityOrderNumber: 2},
	},
	model.IntentTechnicalSupport: {
		keywords: []string{
			"error", "bug", "problem", "issue", "crash", "not working", "failed",
			"failure", "exception", "timeout", "slow", "performance", "lag",
			"freeze", "hang", "unresponsive",
		},
		entityBoosts: map[model.EntityType]int{
			model.EntityErrorCode:     2,
			model.EntityVersionNumber: 1,
		},
	},
	model.IntentBilling: {
		keywords: []string{
			"bill", "payment", "charge", "cost", "price", "subscription",
			"invoice", "receipt", "billing", "credit", "debit", "overcharge",
			"double charge",
		},
		entityBoosts: map[model.EntityType]int{
			model.EntityAccountNumber: 2,
			model.EntityOrderNumber:   1,
		},
	},
	model.IntentProductInfo: {
		keywords: []string{
			"product", "feature", "specification", "what is", "how to", "guide",
			"tutorial", "manual", "documentation", "capabilities", "functionality",
			"benefits", "comparison",
		},
		entityBoosts: map[model.EntityType]int{model.EntityProductName: 2},
	},
	model.IntentComplaint: {
		keywords: []string{
			"complaint", "unhappy", "dissatisfied", "angry", "frustrated", "bad",
			"terrible", "awful", "horrible", "disappointed", "upset", "annoyed",
			"irritated",
		},
	},
	model.IntentFeedback: {
		keywords: []string{
			"feedback", "suggest", "improve", "idea", "recommendation",
			"suggestion", "opinion", "thought", "review", "rating", "comment",
		},
	},
	model.IntentAccountManagement: {
		keywords: []string{
			"account", "profile", "settings", "preferences", "password", "login",
			"signin", "signup", "register", "create account", "delete account",
		},
		entityBoosts: map[model.EntityType]int{
			model.EntityEmail:         1,
			model.EntityAccountNumber: 1,
		},
	},
	model.IntentGeneralInquiry: {
		keywords: []string{
			"hello", "hi", "help", "support", "question", "info", "information",
			"assist", "assistance", "how", "what", "when", "where", "why",
		},
	},
}

// ClassifyIntent 基于关键词命中与实体加权为文本分类意图。
// 得分相同按 model.AllIntents 的固定优先级裁决；零命中时返回 general_inquiry、置信度 0。
func ClassifyIntent(text string, entities []model.Entity) (model.Intent, float64) {
	lower := strings.ToLower(text)

	entityTypes := make(map[model.EntityType]bool, len(entities))
	for _, e := range entities {
		entityTypes[e.Type] = true
	}

	scores := make(map[model.Intent]int, len(intentProfiles))
	totalScore := 0
	for intent, profile := range intentProfiles {
		score := 0
		for _, kw := range profile.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		for entityType, boost := range profile.entityBoosts {
			if entityTypes[entityType] {
				score += boost
			}
		}
		scores[intent] = score
		totalScore += score
	}

	if totalScore == 0 {
		return model.IntentGeneralInquiry, 0
	}

	// 按固定优先级遍历，保证同分时结果确定
	winner := model.IntentGeneralInquiry
	best := -1
	for _, intent := range model.AllIntents {
		if scores[intent] > best {
			best = scores[intent]
			winner = intent
		}
	}

	confidence := float64(best) / float64(totalScore)
	if confidence > 1 {
		confidence = 1
	}
	return winner, confidence
}
