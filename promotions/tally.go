package promotions

import "modix/model"

// Tally counts live comments by sentiment.
type Tally struct {
	Approve int
	Oppose  int
	Neutral int
}

func CountSentiments(comments []model.PromotionComment) Tally {
	var t Tally
	for _, c := range comments {
		if c.IsDeleted() {
			continue
		}
		switch c.Sentiment {
		case model.SentimentApprove:
			t.Approve++
		case model.SentimentOppose:
			t.Oppose++
		case model.SentimentNeutral:
			t.Neutral++
		}
	}
	return t
}

// Total is the number of counted comments.
func (t Tally) Total() int {
	return t.Approve + t.Oppose + t.Neutral
}
