package models

import "time"

type FeedbackType string

const (
	FeedbackComplaint  FeedbackType = "complaint"
	FeedbackSuggestion FeedbackType = "suggestion"
)

type FeedbackStatus string

const (
	FeedbackNew        FeedbackStatus = "new"
	FeedbackInProgress FeedbackStatus = "in_progress"
	FeedbackResolved   FeedbackStatus = "resolved"
	FeedbackClosed     FeedbackStatus = "closed"
	FeedbackRejected   FeedbackStatus = "rejected"
)

// ParseFeedbackStatus accepts the canonical values plus the legacy camel-case "inProgress".
func ParseFeedbackStatus(s string) (FeedbackStatus, bool) {
	switch s {
	case "inProgress":
		return FeedbackInProgress, true
	case string(FeedbackNew), string(FeedbackInProgress), string(FeedbackResolved),
		string(FeedbackClosed), string(FeedbackRejected):
		return FeedbackStatus(s), true
	}
	return "", false
}

// Terminal statuses accept no further transitions.
func (s FeedbackStatus) Terminal() bool {
	return s == FeedbackClosed || s == FeedbackRejected
}

// Feedback is a complaint or suggestion submitted by any signed-in account.
type Feedback struct {
	ID                string         `bson:"_id" json:"id"`
	Type              FeedbackType   `bson:"type" json:"type"`
	Title             string         `bson:"title" json:"title"`
	Description       string         `bson:"description" json:"description"`
	Status            FeedbackStatus `bson:"status" json:"status"`
	UserID            string         `bson:"userId" json:"userId"`
	UserName          string         `bson:"userName" json:"userName"`
	UserRole          string         `bson:"userRole" json:"userRole"`
	Response          string         `bson:"response" json:"response"`
	ResponseTimestamp *time.Time     `bson:"responseTimestamp" json:"responseTimestamp"`
	Timestamp         time.Time      `bson:"timestamp" json:"timestamp"`
}
