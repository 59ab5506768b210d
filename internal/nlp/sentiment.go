package nlp

import (
	"strings"

	"github.com/supportbot/chatbot-go/internal/model"
)

// 情感词表（正负两极）
var (
	positiveLexicon = makeSet([]string{
		"great", "excellent", "amazing", "love", "perfect",
		"wonderful", "fantastic", "awesome", "good", "helpful",
	})
	negativeLexicon = makeSet([]string{
		"terrible", "awful", "horrible", "hate", "worst",
		"disappointed", "frustrated", "angry", "bad", "poor",
	})
)

// 极性超过此阈值才离开 neutral
const sentimentEpsilon = 0.1

const tokenCutset = ".,!?;:\"'()[]"

// ScoreSentiment 基于词表的情感打分。
// 极性为正负词命中数的归一化差值，落在 [-1, 1]；无命中时为 0。
func ScoreSentiment(text string) (model.Sentiment, float64) {
	var positive, negative int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, tokenCutset)
		if positiveLexicon[token] {
			positive++
		}
		if negativeLexicon[token] {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return model.SentimentNeutral, 0
	}

	polarity := float64(positive-negative) / float64(total)
	switch {
	case polarity > sentimentEpsilon:
		return model.SentimentPositive, polarity
	case polarity < -sentimentEpsilon:
		return model.SentimentNegative, polarity
	default:
		return model.SentimentNeutral, polarity
	}
}

func makeSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
