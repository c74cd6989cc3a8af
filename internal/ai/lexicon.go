package ai

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ObiAU/syncview/internal/models"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"

	neutralScore  = 0.5
	minLexiconLen = 10
)

var sentimentLabels = map[string]string{
	SentimentPositive: "긍정",
	SentimentNegative: "부정",
	SentimentNeutral:  "중립",
}

var positiveKeywords = map[string]int{
	"success": 3, "successful": 3, "achieve": 3, "achieved": 3,
	"accomplishment": 3, "breakthrough": 3, "triumph": 3,
	"win": 3, "wins": 3, "won": 3, "victory": 3, "champion": 3,

	"progress": 2, "improve": 2, "improved": 2, "improvement": 2,
	"growth": 2, "rise": 2, "rose": 2, "rising": 2, "increase": 2,
	"gain": 2, "surge": 2, "boost": 2, "recover": 2, "recovery": 2,
	"deal": 2, "deals": 2, "blockbuster": 2, "record": 2, "historic": 2,
	"excellent": 2, "outstanding": 2, "remarkable": 2, "impressive": 2,
	"positive": 2, "optimistic": 2, "favorable": 2, "promising": 2,

	"good": 1, "great": 1, "better": 1, "best": 1, "wonderful": 1,
	"fantastic": 1, "amazing": 1, "happy": 1, "pleased": 1, "hope": 1,
	"peace": 1, "celebrate": 1, "celebration": 1, "joy": 1, "love": 1,
	"support": 1, "help": 1, "agreement": 1, "cooperation": 1,
	"agree": 1, "agreed": 1, "welcome": 1, "welcomes": 1, "welcomed": 1,
	"benefit": 1, "benefits": 1, "opportunity": 1, "opportunities": 1,
}

var negativeKeywords = map[string]int{
	"kill": 3, "killed": 3, "death": 3, "deaths": 3, "die": 3, "died": 3,
	"attack": 3, "attacked": 3, "war": 3, "bomb": 3, "bombard": 3,
	"explosion": 3, "disaster": 3, "tragedy": 3, "crisis": 3,
	"emergency": 3, "terror": 3, "terrorism": 3, "violence": 3,
	"murder": 3, "crash": 3, "accident": 3, "fire": 3, "flood": 3,
	"earthquake": 3, "storm": 3, "hurricane": 3, "deadly": 3,
	"shooting": 3, "shot": 3, "fighting": 3, "fight": 3,

	"fail": 2, "failed": 2, "failure": 2, "loss": 2, "lost": 2,
	"lose": 2, "defeat": 2, "collapse": 2, "decline": 2, "fall": 2,
	"drop": 2, "decrease": 2, "cut": 2, "slash": 2,
	"bad": 2, "terrible": 2, "awful": 2, "worst": 2, "worse": 2,
	"poor": 2, "negative": 2, "pessimistic": 2, "concern": 2,
	"worry": 2, "fear": 2, "threat": 2, "risk": 2, "danger": 2,

	"problem": 1, "issue": 1, "difficult": 1, "challenge": 1,
	"trouble": 1, "conflict": 1, "dispute": 1, "protest": 1,
	"angry": 1, "sad": 1, "disappointed": 1, "sorry": 1,
}

// NewSentiment builds a result with the Korean display label for sentiment.
// Unknown sentiments become neutral.
func NewSentiment(sentiment string, score float64) *models.Sentiment {
	sentiment = strings.ToLower(strings.TrimSpace(sentiment))
	label, ok := sentimentLabels[sentiment]
	if !ok {
		sentiment, label = SentimentNeutral, sentimentLabels[SentimentNeutral]
	}

	return &models.Sentiment{
		Sentiment: sentiment,
		Label:     label,
		Score:     math.Round(score*100) / 100,
	}
}

// LexiconSentiment scores text against weighted news keywords. One side wins
// only when it leads by at least two points; confidence grows by 0.05 per
// point of lead from 0.55 up to 0.95.
func LexiconSentiment(text string) *models.Sentiment {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minLexiconLen {
		return NewSentiment(SentimentNeutral, neutralScore)
	}

	lower := strings.ToLower(text)
	positive := weigh(lower, positiveKeywords)
	negative := weigh(lower, negativeKeywords)

	switch {
	case positive > negative+1:
		return NewSentiment(SentimentPositive, confidence(positive-negative))
	case negative > positive+1:
		return NewSentiment(SentimentNegative, confidence(negative-positive))
	default:
		return NewSentiment(SentimentNeutral, neutralScore)
	}
}

func weigh(text string, keywords map[string]int) int {
	total := 0
	for word, weight := range keywords {
		if strings.Contains(text, word) {
			total += weight
		}
	}
	return total
}

func confidence(lead int) float64 {
	return math.Min(0.55+float64(lead)*0.05, 0.95)
}
