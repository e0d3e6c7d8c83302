package model

import "time"

// CampaignOutcome is how a promotion campaign was closed.
type CampaignOutcome string

const (
	OutcomeAccepted CampaignOutcome = "Accepted"
	OutcomeRejected CampaignOutcome = "Rejected"
)

func (o CampaignOutcome) Valid() bool {
	return o == OutcomeAccepted || o == OutcomeRejected
}

// CommentSentiment is a commenter's stance on a campaign.
type CommentSentiment string

const (
	SentimentApprove CommentSentiment = "Approve"
	SentimentOppose  CommentSentiment = "Oppose"
	SentimentNeutral CommentSentiment = "Neutral"
)

func (s CommentSentiment) Valid() bool {
	switch s {
	case SentimentApprove, SentimentOppose, SentimentNeutral:
		return true
	}
	return false
}

// PromotionCampaign proposes moving a member to a target role.
type PromotionCampaign struct {
	ID           int64
	GuildID      string
	SubjectID    string
	TargetRoleID string
	CreatedAt    time.Time
	CreatedByID  string

	CreateActionID int64
	CloseActionID  *int64
	Outcome        *CampaignOutcome
}

// IsOpen reports whether the campaign is still accepting comments.
func (c PromotionCampaign) IsOpen() bool {
	return c.CloseActionID == nil
}

// PromotionComment is one member's opinion on a campaign.
type PromotionComment struct {
	ID          int64
	CampaignID  int64
	Sentiment   CommentSentiment
	Content     string
	CreatedAt   time.Time
	CreatedByID string

	CreateActionID int64
	DeleteActionID *int64
}

func (c PromotionComment) IsDeleted() bool {
	return c.DeleteActionID != nil
}

// CampaignSearchCriteria filters SearchCampaigns.
type CampaignSearchCriteria struct {
	GuildID   string
	SubjectID string
	OpenOnly  bool
}
